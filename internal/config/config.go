// Package config reads the site configuration from the environment.
// Every setting has a working default, so a bare `pubsite serve` against
// the production origin just works; .env loading happens in the root
// command before any of this runs.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Config carries everything the serve, generate, and tracks commands need.
type Config struct {
	HTTPAddr string

	// Origin is the base for default candidate URLs when explicit lists
	// are not configured.
	Origin string

	// BaseURL prefixes public file links in rendered pages.
	BaseURL string

	CatalogCandidates     []string
	NavCandidates         []string
	FooterCandidates      []string
	DiscographyCandidates []string
	FragmentMinLength     int

	StaticDir string

	PublicationsRoot string
	ShopMapPath      string
	ShopFallbackURL  string

	AudioRoot    string
	AudioBaseURL string
}

// Load reads env vars and fills in defaults.
func Load() *Config {
	origin := strings.TrimRight(withDefault(os.Getenv("PUBSITE_ORIGIN"), "https://schizostudios.org"), "/")

	return &Config{
		HTTPAddr: withDefault(os.Getenv("PUBSITE_ADDR"), ":8888"),
		Origin:   origin,
		BaseURL:  withDefault(os.Getenv("PUBSITE_BASE_URL"), "/publications/"),

		CatalogCandidates: splitList(os.Getenv("PUBSITE_CATALOG_URLS"), []string{
			origin + "/publications/publications.json",
		}),
		NavCandidates: splitList(os.Getenv("PUBSITE_NAV_URLS"), []string{
			origin + "/components/nav.html",
			origin + "/partials/nav.html",
			origin + "/includes/nav.html",
			origin + "/nav.html",
		}),
		FooterCandidates: splitList(os.Getenv("PUBSITE_FOOTER_URLS"), []string{
			origin + "/components/footer.html",
		}),
		DiscographyCandidates: splitList(os.Getenv("PUBSITE_DISCOGRAPHY_URLS"), []string{
			origin + "/music/data/discography.json",
		}),
		FragmentMinLength: intWithDefault(os.Getenv("PUBSITE_FRAGMENT_MIN_LENGTH"), 20),

		StaticDir: withDefault(os.Getenv("PUBSITE_STATIC_DIR"), "static"),

		PublicationsRoot: withDefault(os.Getenv("PUBSITE_PUBLICATIONS_ROOT"), "publications"),
		ShopMapPath:      withDefault(os.Getenv("PUBSITE_SHOP_MAP"), "publications/shop_map.yaml"),
		ShopFallbackURL:  withDefault(os.Getenv("PUBSITE_SHOP_FALLBACK_URL"), "https://shop.schizostudios.org/"),

		AudioRoot:    withDefault(os.Getenv("PUBSITE_AUDIO_ROOT"), "music/audio"),
		AudioBaseURL: withDefault(os.Getenv("PUBSITE_AUDIO_BASE_URL"), "audio/"),
	}
}

func withDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func intWithDefault(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// splitList parses a comma-separated URL list, dropping empty entries.
func splitList(value string, fallback []string) []string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

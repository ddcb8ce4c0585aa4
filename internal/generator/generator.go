// Package generator builds publications.json from a publications directory
// tree. Paid formats are cataloged but always route to a shop URL, never a
// direct download; public formats keep their local relative path.
package generator

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// PaidExts are listed in the catalog as visibility="paid" and must route
// to a shop URL.
var PaidExts = map[string]bool{
	"pdf":  true,
	"epub": true,
	"mobi": true,
	"azw3": true,
}

// Generator output and obvious junk, skipped anywhere in the tree.
var skipNames = map[string]bool{
	"index.html":        true,
	"publications.json": true,
	"shop_map.json":     true,
	"shop_map.yaml":     true,
	"shop_map.yml":      true,
	".DS_Store":         true,
}

var skipDirs = map[string]bool{
	".git":         true,
	".github":      true,
	"__pycache__":  true,
	"node_modules": true,
}

// Item is one generated catalog entry. ShopURL is a pointer so public
// entries serialize as an explicit null, matching the historical output.
type Item struct {
	Title        string   `json:"title"`
	RelativePath string   `json:"relative_path"`
	Category     string   `json:"category"`
	Tags         []string `json:"tags"`
	Ext          string   `json:"ext"`
	SizeBytes    int64    `json:"size_bytes"`
	UpdatedUTC   string   `json:"updated_utc"`
	Visibility   string   `json:"visibility"`
	ShopURL      *string  `json:"shop_url"`
}

// Document is the full publications.json payload.
type Document struct {
	GeneratedFrom   string   `json:"generated_from"`
	GeneratedUTC    string   `json:"generated_utc"`
	Count           int      `json:"count"`
	PaidExts        []string `json:"paid_exts"`
	ShopFallbackURL string   `json:"shop_fallback_url"`
	Items           []Item   `json:"items"`
}

// Generator walks Root and produces a Document.
type Generator struct {
	Root            string
	ShopMapPath     string
	ShopFallbackURL string

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

// Build walks the publications tree and assembles the catalog document,
// deterministically sorted.
func (g *Generator) Build() (*Document, error) {
	root, err := filepath.Abs(g.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}

	shopMap, err := LoadShopMap(g.ShopMapPath)
	if err != nil {
		return nil, err
	}

	var items []Item
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || skipNames[d.Name()] {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		info, err := d.Info()
		if err != nil {
			return err
		}

		items = append(items, g.buildItem(rel, info, shopMap))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk publications tree: %w", err)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return sortKey(items[i]) < sortKey(items[j])
	})

	now := time.Now
	if g.Now != nil {
		now = g.Now
	}

	doc := &Document{
		GeneratedFrom:   root,
		GeneratedUTC:    now().UTC().Format(time.RFC3339),
		Count:           len(items),
		PaidExts:        sortedPaidExts(),
		ShopFallbackURL: g.ShopFallbackURL,
		Items:           items,
	}

	g.reportUnmapped(doc)

	return doc, nil
}

func (g *Generator) buildItem(rel string, info fs.FileInfo, shopMap map[string]string) Item {
	parts := strings.Split(rel, "/")

	category := "Unsorted"
	if len(parts) > 1 {
		category = parts[0]
	}

	tags := []string{}
	if len(parts) > 2 {
		tags = append(tags, parts[1:len(parts)-1]...)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(rel), "."))

	item := Item{
		Title:        GuessTitle(filepath.Base(rel)),
		RelativePath: rel,
		Category:     category,
		Tags:         tags,
		Ext:          ext,
		SizeBytes:    info.Size(),
		UpdatedUTC:   info.ModTime().UTC().Format(time.RFC3339),
	}

	if PaidExts[ext] {
		shopURL := shopMap[rel]
		if shopURL == "" {
			shopURL = g.ShopFallbackURL
		}
		item.Visibility = "paid"
		item.ShopURL = &shopURL
	} else {
		item.Visibility = "public"
	}

	return item
}

func (g *Generator) reportUnmapped(doc *Document) {
	for _, it := range doc.Items {
		if it.Visibility == "paid" && it.ShopURL != nil && *it.ShopURL == g.ShopFallbackURL {
			slog.Warn("Paid item has no shop map entry; using fallback URL", "path", it.RelativePath)
		}
	}
}

// WriteJSON writes the document with 2-space indentation and a trailing
// newline, matching the historical generator output.
func (g *Generator) WriteJSON(doc *Document, path string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	return nil
}

// LoadShopMap reads the rel-path → shop URL mapping. YAML and JSON both
// parse; a missing file means an empty map. Keys are normalized to have no
// leading slashes and non-string entries are skipped.
func LoadShopMap(path string) (map[string]string, error) {
	out := make(map[string]string)
	if path == "" {
		return out, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read shop map: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse shop map: %w", err)
	}

	for k, v := range raw {
		url, ok := v.(string)
		if !ok {
			continue
		}
		out[strings.TrimLeft(k, "/")] = strings.TrimSpace(url)
	}
	return out, nil
}

var titleSpaceRun = regexp.MustCompile(`\s+`)

// GuessTitle derives a display title from a filename: the stem with
// underscores and hyphens turned into spaces and whitespace collapsed.
func GuessTitle(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	base = titleSpaceRun.ReplaceAllString(base, " ")
	return strings.TrimSpace(base)
}

func sortKey(it Item) string {
	return strings.ToLower(it.Category) + "\x00" +
		strings.ToLower(it.Visibility) + "\x00" +
		strings.ToLower(it.Title) + "\x00" +
		strings.ToLower(it.RelativePath)
}

func sortedPaidExts() []string {
	exts := make([]string, 0, len(PaidExts))
	for e := range PaidExts {
		exts = append(exts, e)
	}
	sort.Strings(exts)
	return exts
}

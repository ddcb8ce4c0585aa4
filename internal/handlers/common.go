// Package handlers implements the pubsite HTTP surface: the
// server-rendered publications browser, the JSON APIs, and static assets.
package handlers

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/schizo-studios/pubsite/internal/catalog"
	"github.com/schizo-studios/pubsite/internal/config"
	"github.com/schizo-studios/pubsite/internal/fragments"
	"github.com/schizo-studios/pubsite/internal/store"
)

//go:embed templates/publications.html
var templateFS embed.FS

type Handler struct {
	cfg    *config.Config
	store  *store.CatalogStore
	loader *fragments.Loader
	tmpl   *template.Template
}

func New(cfg *config.Config) *Handler {
	loader := fragments.NewLoader()
	loader.MinLength = cfg.FragmentMinLength

	tmpl := template.Must(template.New("publications.html").
		Funcs(template.FuncMap{"upper": strings.ToUpper}).
		ParseFS(templateFS, "templates/publications.html"))

	return &Handler{
		cfg:    cfg,
		store:  store.New(),
		loader: loader,
		tmpl:   tmpl,
	}
}

// LoadCatalog fetches publications.json through the candidate loop and
// replaces the store snapshot. On failure the previous snapshot stays in
// place, so a broken reload never blanks a working page.
func (h *Handler) LoadCatalog(ctx context.Context) error {
	frag, err := h.loader.FetchRaw(ctx, h.cfg.CatalogCandidates)
	if err != nil {
		return fmt.Errorf("catalog fetch failed: %w", err)
	}

	c, err := catalog.Parse(frag.Body)
	if err != nil {
		return err
	}

	h.store.Replace(c, frag.Body, frag.URL)
	slog.Info("Catalog loaded", "source", frag.URL, "items", len(c.Items))
	return nil
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

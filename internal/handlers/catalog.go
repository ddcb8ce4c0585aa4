package handlers

import (
	"log/slog"
	"net/http"

	"github.com/schizo-studios/pubsite/internal/catalog"
	"github.com/schizo-studios/pubsite/internal/view"
)

// booksResponse is the JSON shape of the books API: the rendered page
// model plus the dropdown options derived from the unfiltered catalog.
type booksResponse struct {
	view.Page
	TypeOptions []string `json:"type_options"`
	Loaded      bool     `json:"loaded"`
}

// HandleBooks serves the filtered, grouped book list. Query params `q`
// and `type` mirror the page controls; every call recomputes from the
// current snapshot.
func (h *Handler) HandleBooks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filter := catalog.Filter{
		Query: r.URL.Query().Get("q"),
		Type:  r.URL.Query().Get("type"),
	}

	resp := booksResponse{TypeOptions: []string{}}
	if c, ok := h.store.Get(); ok {
		resp.Loaded = true
		resp.Page = view.Shape(filter.Apply(c.Items), h.cfg.BaseURL)
		resp.TypeOptions = view.TypeOptions(catalog.GroupBooks(c.Items))
	} else {
		resp.Page = view.Shape(nil, h.cfg.BaseURL)
	}

	h.writeJSON(w, resp)
}

// HandleCatalogDownload serves the raw catalog document exactly as
// fetched, as a download named publications.json.
func (h *Handler) HandleCatalogDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	raw, ok := h.store.Raw()
	if !ok {
		h.writeError(w, "Catalog not available", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="publications.json"`)
	if _, err := w.Write(raw); err != nil {
		h.writeError(w, "Failed to write catalog", http.StatusInternalServerError)
	}
}

// HandleReload re-fetches the catalog on demand. A failed reload reports
// 502 and leaves the previous snapshot serving.
func (h *Handler) HandleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.LoadCatalog(r.Context()); err != nil {
		h.writeError(w, "Reload failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	items := 0
	if c, ok := h.store.Get(); ok {
		items = len(c.Items)
	}
	h.writeJSON(w, map[string]any{"status": "ok", "items": items})
}

// HandleReloadPage is the form-post variant of reload used by the page's
// reload button: it re-fetches and then sends the browser back to the
// publications page, banner and all.
func (h *Handler) HandleReloadPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Errors are not fatal here: the page itself shows the load state
	// after the redirect.
	if err := h.LoadCatalog(r.Context()); err != nil {
		slog.Error("Reload failed", "err", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

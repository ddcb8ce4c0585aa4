package handlers

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/schizo-studios/pubsite/internal/catalog"
	"github.com/schizo-studios/pubsite/internal/view"
)

type statusBanner struct {
	Kind    string // "info", "warn", or "bad"
	Icon    string
	Message string
}

func newStatus(kind, message string) *statusBanner {
	icon := "ℹ"
	switch kind {
	case "bad":
		icon = "✖"
	case "warn":
		icon = "⚠"
	}
	return &statusBanner{Kind: kind, Icon: icon, Message: message}
}

type pageData struct {
	Nav          template.HTML
	NavLoaded    bool
	Footer       template.HTML
	FooterLoaded bool
	Query        string
	Type         string
	TypeOptions  []string
	Page         view.Page
	Status       *statusBanner
}

// HandlePublications renders the publications browser. Filtering runs
// server-side from the query params; every request is a full recompute
// over the current catalog snapshot.
func (h *Handler) HandlePublications(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := pageData{
		Query: r.URL.Query().Get("q"),
		Type:  r.URL.Query().Get("type"),
	}

	// Fragments degrade independently: a missing nav never hides books.
	if nav, err := h.loader.FetchHTML(r.Context(), h.cfg.NavCandidates); err == nil {
		data.Nav = template.HTML(nav.Body)
		data.NavLoaded = true
	} else {
		slog.Warn("Nav fragment unavailable", "err", err)
	}
	if footer, err := h.loader.FetchHTML(r.Context(), h.cfg.FooterCandidates); err == nil {
		data.Footer = template.HTML(footer.Body)
		data.FooterLoaded = true
	} else {
		slog.Warn("Footer fragment unavailable", "err", err)
	}

	filter := catalog.Filter{Query: data.Query, Type: data.Type}

	c, loaded := h.store.Get()
	if loaded {
		data.Page = view.Shape(filter.Apply(c.Items), h.cfg.BaseURL)
		data.TypeOptions = view.TypeOptions(catalog.GroupBooks(c.Items))
		if data.Page.BookCount == 0 {
			data.Status = newStatus("warn", "No publications found. Only PDF and EPUB books are shown.")
		}
	} else {
		data.Page = view.Shape(nil, h.cfg.BaseURL)
		data.Status = newStatus("bad", "Could not load publications.json.")
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, "publications.html", data); err != nil {
		slog.Error("Failed to render publications page", "err", err)
	}
}

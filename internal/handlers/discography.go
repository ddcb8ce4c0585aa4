package handlers

import (
	"net/http"

	"github.com/schizo-studios/pubsite/internal/discography"
)

// HandleDiscography serves the music catalog as JSON, fetched through the
// same candidate loop as every other site resource. Failures degrade this
// widget only.
func (h *Handler) HandleDiscography(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	frag, err := h.loader.FetchRaw(r.Context(), h.cfg.DiscographyCandidates)
	if err != nil {
		h.writeError(w, "Could not load discography: "+err.Error(), http.StatusBadGateway)
		return
	}

	tracks, err := discography.Load(frag.Body)
	if err != nil {
		h.writeError(w, "Malformed discography: "+err.Error(), http.StatusBadGateway)
		return
	}

	h.writeJSON(w, tracks)
}

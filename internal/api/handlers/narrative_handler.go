package handlers

import (
	"context"
	"encoding/json"
	"net/http"
)

// NarrativeGenerator is the slice of the narrative service the handler needs.
type NarrativeGenerator interface {
	Generate(ctx context.Context, siteIDs []int64) (string, error)
}

// NarrativeHandler handles the guided-tour narrative endpoint.
type NarrativeHandler struct {
	narrative NarrativeGenerator
}

// NewNarrativeHandler creates a new narrative handler
func NewNarrativeHandler(narrative NarrativeGenerator) *NarrativeHandler {
	return &NarrativeHandler{narrative: narrative}
}

type narrativeRequest struct {
	SiteIDs []int64 `json:"site_ids"`
}

// Generate handles POST /api/narrative
func (h *NarrativeHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req narrativeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	text, err := h.narrative.Generate(r.Context(), req.SiteIDs)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"narrative": text,
		"site_ids":  req.SiteIDs,
	})
}

package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/sitelore/backend/internal/application/services"
	"github.com/sitelore/backend/internal/domain/entities"
)

// UserInspector reads back what the system knows about a user.
type UserInspector interface {
	GetUser(ctx context.Context, id int64) (*entities.User, error)
	RecentEvents(ctx context.Context, userID int64, limit int) ([]*entities.InteractionEvent, error)
}

// SiteLookup fetches single sites for inspection.
type SiteLookup interface {
	Load(ctx context.Context, id int64) (*entities.Site, error)
}

// DebugHandler exposes read-only introspection endpoints for development:
// what the system currently knows about a user or a site.
type DebugHandler struct {
	interactions UserInspector
	profiles     services.TasteProfileProvider
	sites        SiteLookup
}

// NewDebugHandler creates a new debug handler
func NewDebugHandler(interactions UserInspector, profiles services.TasteProfileProvider, sites SiteLookup) *DebugHandler {
	return &DebugHandler{interactions: interactions, profiles: profiles, sites: sites}
}

// UserInfo handles GET /debug/user_info?user_id=...
func (h *DebugHandler) UserInfo(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		respondWithError(w, http.StatusBadRequest, "user_id parameter must be a positive integer")
		return
	}

	user, err := h.interactions.GetUser(r.Context(), userID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	events, err := h.interactions.RecentEvents(r.Context(), userID, 50)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	profile, err := h.profiles.BuildProfile(r.Context(), userID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	positive := make([]int64, 0, len(profile.PositiveSiteIDs))
	for id := range profile.PositiveSiteIDs {
		positive = append(positive, id)
	}
	negative := make([]int64, 0, len(profile.NegativeSiteIDs))
	for id := range profile.NegativeSiteIDs {
		negative = append(negative, id)
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"user":          user,
		"recent_events": events,
		"profile": map[string]interface{}{
			"neutral":           profile.IsNeutral(),
			"positive_site_ids": positive,
			"negative_site_ids": negative,
			"engagement_scores": profile.EngagementScores,
			"vector_dim":        len(profile.SemanticVector),
		},
	})
}

// SiteInfo handles GET /debug/site_info?site_id=...
func (h *DebugHandler) SiteInfo(w http.ResponseWriter, r *http.Request) {
	siteID, err := strconv.ParseInt(r.URL.Query().Get("site_id"), 10, 64)
	if err != nil || siteID <= 0 {
		respondWithError(w, http.StatusBadRequest, "site_id parameter must be a positive integer")
		return
	}

	site, err := h.sites.Load(r.Context(), siteID)
	if err != nil || site == nil {
		respondWithError(w, http.StatusNotFound, "site not found")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"site":          site,
		"embedding_dim": len(site.Embedding),
	})
}

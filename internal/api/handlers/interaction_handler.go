package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sitelore/backend/internal/domain/entities"
)

// InteractionRecorder is the slice of the interaction service the handler
// needs for ingestion.
type InteractionRecorder interface {
	CreateUser(ctx context.Context, user *entities.User) (int64, error)
	RecordEvent(ctx context.Context, event *entities.InteractionEvent) error
}

// InteractionHandler handles user and interaction event ingestion.
type InteractionHandler struct {
	interactions InteractionRecorder
}

// NewInteractionHandler creates a new interaction handler
func NewInteractionHandler(interactions InteractionRecorder) *InteractionHandler {
	return &InteractionHandler{interactions: interactions}
}

type createUserRequest struct {
	Name     string            `json:"name"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// CreateUser handles POST /db/users
func (h *InteractionHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.interactions.CreateUser(r.Context(), &entities.User{
		Name:     req.Name,
		Metadata: req.Metadata,
	})
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"id":   id,
		"name": req.Name,
	})
}

type createEventRequest struct {
	UserID       int64    `json:"user_id"`
	SiteID       int64    `json:"site_id"`
	EventType    string   `json:"event_type"`
	DwellSeconds *float64 `json:"dwell_seconds,omitempty"`
	Value        *float64 `json:"value,omitempty"`
}

// CreateEvent handles POST /db/events
func (h *InteractionHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event := &entities.InteractionEvent{
		UserID:       req.UserID,
		SiteID:       req.SiteID,
		EventType:    entities.EventType(req.EventType),
		DwellSeconds: req.DwellSeconds,
		Value:        req.Value,
	}
	if err := h.interactions.RecordEvent(r.Context(), event); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"id":         event.ID,
		"user_id":    event.UserID,
		"site_id":    event.SiteID,
		"event_type": event.EventType,
	})
}

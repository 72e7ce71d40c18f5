package entities

import (
	"fmt"
	"time"
)

// EventType classifies a user interaction with a site.
type EventType string

const (
	EventTypeView    EventType = "view"
	EventTypeDwell   EventType = "dwell"
	EventTypeLike    EventType = "like"
	EventTypeDislike EventType = "dislike"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventTypeView, EventTypeDwell, EventTypeLike, EventTypeDislike:
		return true
	}
	return false
}

// InteractionEvent is one recorded user interaction. Events are append-only:
// created on interaction, never mutated, never deleted. History is the
// source of truth for taste profiles.
type InteractionEvent struct {
	ID           string    `json:"id" db:"id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	SiteID       int64     `json:"site_id" db:"site_id"`
	EventType    EventType `json:"event_type" db:"event_type"`
	DwellSeconds *float64  `json:"dwell_seconds,omitempty" db:"dwell_seconds"`
	Value        *float64  `json:"value,omitempty" db:"value"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Validate checks the insert contract for new events.
func (e *InteractionEvent) Validate() error {
	if e.UserID <= 0 {
		return fmt.Errorf("user_id must be positive")
	}
	if e.SiteID <= 0 {
		return fmt.Errorf("site_id must be positive")
	}
	if !e.EventType.Valid() {
		return fmt.Errorf("unknown event_type %q", e.EventType)
	}
	if e.EventType == EventTypeDwell && e.DwellSeconds == nil {
		return fmt.Errorf("dwell events require dwell_seconds")
	}
	return nil
}

package entities

import (
	"time"
)

// SearchEvent represents a single search request for analytics.
type SearchEvent struct {
	ID          string    `json:"id" db:"id"`
	Mode        string    `json:"mode" db:"mode"`
	Query       string    `json:"query" db:"query"`
	UserID      int64     `json:"user_id,omitempty" db:"user_id"`
	ResultCount int       `json:"result_count" db:"result_count"`
	LatencyMs   int       `json:"latency_ms" db:"latency_ms"`
	Latitude    float64   `json:"latitude,omitempty" db:"latitude"`
	Longitude   float64   `json:"longitude,omitempty" db:"longitude"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// InteractionNotice is what the event bus carries when a new interaction
// is recorded, so cached taste profiles can be dropped.
type InteractionNotice struct {
	EventID   string    `json:"event_id"`
	UserID    int64     `json:"user_id"`
	SiteID    int64     `json:"site_id"`
	EventType EventType `json:"event_type"`
	CreatedAt time.Time `json:"created_at"`
}

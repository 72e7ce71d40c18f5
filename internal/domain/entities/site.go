package entities

import (
	"time"
)

// Site represents a geolocated heritage site in the catalogue. Sites are
// immutable after ingestion; the catalogue is the source of truth for
// coordinates, text and metadata.
type Site struct {
	ID        int64             `json:"id" db:"id"`
	Title     string            `json:"title" db:"title"`
	Text      string            `json:"text" db:"text"`
	Location  Location          `json:"location" db:"-"`
	Metadata  map[string]string `json:"metadata,omitempty" db:"-"`
	Embedding []float64         `json:"-" db:"-"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
}

// Location represents geographical coordinates
type Location struct {
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}

package entities

import (
	"time"
)

// User represents a registered user. Created on first registration;
// personalization is keyed purely by the explicit user id.
type User struct {
	ID        int64             `json:"id" db:"id"`
	Name      string            `json:"name,omitempty" db:"name"`
	Metadata  map[string]string `json:"metadata,omitempty" db:"-"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
}

package repositories

import (
	"context"

	"github.com/sitelore/backend/internal/domain/entities"
)

// EventRepository defines the append-only interaction event store
type EventRepository interface {
	Create(ctx context.Context, event *entities.InteractionEvent) error

	// ListByUser returns the user's most recent events, newest first,
	// bounded by limit. Zero events is a valid result for any user id.
	ListByUser(ctx context.Context, userID int64, limit int) ([]*entities.InteractionEvent, error)
}

// UserRepository defines the user store interface
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*entities.User, error)
}

// SearchAnalyticsRepository records search requests, fire-and-forget.
type SearchAnalyticsRepository interface {
	Record(ctx context.Context, event *entities.SearchEvent) error
}

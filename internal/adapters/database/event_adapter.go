package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/sitelore/backend/internal/domain/entities"
	"github.com/sitelore/backend/internal/domain/repositories"
	"github.com/sitelore/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/sitelore/backend/pkg/errors"
)

// EventAdapter implements EventRepository over the append-only
// interaction_events table.
type EventAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// Ensure EventAdapter implements EventRepository
var _ repositories.EventRepository = (*EventAdapter)(nil)

// NewEventAdapter creates a new event adapter
func NewEventAdapter(client *postgres.Client) *EventAdapter {
	return &EventAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create appends an interaction event. Events are never updated or deleted.
func (a *EventAdapter) Create(ctx context.Context, event *entities.InteractionEvent) error {
	if err := event.Validate(); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	var dwell sql.NullFloat64
	if event.DwellSeconds != nil {
		dwell = sql.NullFloat64{Float64: *event.DwellSeconds, Valid: true}
	}
	var value sql.NullFloat64
	if event.Value != nil {
		value = sql.NullFloat64{Float64: *event.Value, Valid: true}
	}

	record := goqu.Record{
		"id":            event.ID,
		"user_id":       event.UserID,
		"site_id":       event.SiteID,
		"event_type":    string(event.EventType),
		"dwell_seconds": dwell,
		"value":         value,
		"created_at":    event.CreatedAt,
	}

	query, args, err := a.db.Insert("interaction_events").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to create interaction event", err)
	}

	return nil
}

// ListByUser returns the user's most recent events, newest first.
func (a *EventAdapter) ListByUser(ctx context.Context, userID int64, limit int) ([]*entities.InteractionEvent, error) {
	if limit <= 0 {
		limit = 500
	}

	query, args, err := a.db.Select(
		"id", "user_id", "site_id", "event_type", "dwell_seconds", "value", "created_at",
	).From("interaction_events").
		Where(goqu.Ex{"user_id": userID}).
		Order(goqu.I("created_at").Desc()).
		Limit(uint(limit)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query interaction events", err)
	}
	defer rows.Close()

	var events []*entities.InteractionEvent
	for rows.Next() {
		event := &entities.InteractionEvent{}
		var eventType string
		var dwell, value sql.NullFloat64

		err := rows.Scan(
			&event.ID,
			&event.UserID,
			&event.SiteID,
			&eventType,
			&dwell,
			&value,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan interaction event", err)
		}

		event.EventType = entities.EventType(eventType)
		if dwell.Valid {
			event.DwellSeconds = &dwell.Float64
		}
		if value.Valid {
			event.Value = &value.Float64
		}

		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate interaction events", err)
	}

	return events, nil
}

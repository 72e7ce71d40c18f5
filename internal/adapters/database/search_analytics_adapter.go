package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sitelore/backend/internal/domain/entities"
	"github.com/sitelore/backend/internal/domain/repositories"
	"github.com/sitelore/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/sitelore/backend/pkg/errors"
)

type SearchAnalyticsAdapter struct {
	client *postgres.Client
}

func NewSearchAnalyticsAdapter(client *postgres.Client) repositories.SearchAnalyticsRepository {
	return &SearchAnalyticsAdapter{client: client}
}

func (a *SearchAnalyticsAdapter) Record(ctx context.Context, event *entities.SearchEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO search_analytics
		(id, mode, query, user_id, result_count, latency_ms, latitude, longitude, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := a.client.DB().ExecContext(ctx, query,
		event.ID,
		event.Mode,
		event.Query,
		event.UserID,
		event.ResultCount,
		event.LatencyMs,
		event.Latitude,
		event.Longitude,
		event.CreatedAt,
	)

	if err != nil {
		return apperrors.NewInternalError("failed to record search event", err)
	}

	return nil
}

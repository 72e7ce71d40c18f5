package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sitelore/backend/internal/domain/entities"
	"github.com/sitelore/backend/internal/domain/repositories"
	"github.com/sitelore/backend/internal/infrastructure/observability"
)

// SearchAnalyticsService records search traffic without ever slowing a
// request down: writes happen on a detached goroutine and failures are
// logged, not returned.
type SearchAnalyticsService struct {
	repo repositories.SearchAnalyticsRepository
}

// NewSearchAnalyticsService creates a new search analytics service
func NewSearchAnalyticsService(repo repositories.SearchAnalyticsRepository) *SearchAnalyticsService {
	return &SearchAnalyticsService{repo: repo}
}

// Record persists the search event asynchronously. The request context is
// deliberately not reused; the write outlives the request.
func (s *SearchAnalyticsService) Record(event entities.SearchEvent) {
	if s == nil || s.repo == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.repo.Record(ctx, &event); err != nil {
			observability.GetLogger().Warn().
				Err(err).
				Str("mode", event.Mode).
				Msg("failed to record search event")
		}
	}()
}

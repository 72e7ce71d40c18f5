package services

import (
	"context"

	"github.com/sitelore/backend/internal/domain/providers"
	"github.com/sitelore/backend/internal/infrastructure/observability"
)

// CacheInvalidationService listens for interaction notices and drops the
// affected user's cached taste profile, so the next request rebuilds it
// from the new history.
type CacheInvalidationService struct {
	bus   providers.EventBus
	cache providers.CacheProvider
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(bus providers.EventBus, cache providers.CacheProvider) *CacheInvalidationService {
	return &CacheInvalidationService{bus: bus, cache: cache}
}

// Start subscribes to the interaction channel and invalidates until the
// context is cancelled or the bus closes the subscription.
func (s *CacheInvalidationService) Start(ctx context.Context) error {
	notices, err := s.bus.Subscribe(ctx, providers.EventChannelInteractions)
	if err != nil {
		return err
	}

	go func() {
		logger := observability.GetLogger()
		for {
			select {
			case <-ctx.Done():
				return
			case notice, ok := <-notices:
				if !ok {
					return
				}
				key := TasteProfileCacheKey(notice.UserID)
				if err := s.cache.Delete(ctx, key); err != nil {
					logger.Warn().
						Err(err).
						Int64("user_id", notice.UserID).
						Msg("failed to invalidate taste profile cache")
					continue
				}
				logger.Debug().
					Int64("user_id", notice.UserID).
					Str("event_type", string(notice.EventType)).
					Msg("invalidated taste profile cache")
			}
		}
	}()

	return nil
}

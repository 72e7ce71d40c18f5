package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sitelore/backend/internal/domain/entities"
	"github.com/sitelore/backend/internal/domain/providers"
	"github.com/sitelore/backend/internal/infrastructure/observability"
)

// CachedTasteProfileService wraps a TasteProfileProvider with a Redis
// cache. Profiles are derived data, so staleness is bounded by the TTL and
// by invalidation notices from the interaction event bus.
type CachedTasteProfileService struct {
	inner      TasteProfileProvider
	cache      providers.CacheProvider
	ttlSeconds int
	metrics    *observability.Metrics
}

var _ TasteProfileProvider = (*CachedTasteProfileService)(nil)

// NewCachedTasteProfileService creates a caching wrapper around inner.
func NewCachedTasteProfileService(inner TasteProfileProvider, cache providers.CacheProvider, ttlSeconds int, metrics *observability.Metrics) *CachedTasteProfileService {
	return &CachedTasteProfileService{
		inner:      inner,
		cache:      cache,
		ttlSeconds: ttlSeconds,
		metrics:    metrics,
	}
}

// TasteProfileCacheKey is the cache key for a user's profile.
func TasteProfileCacheKey(userID int64) string {
	return fmt.Sprintf("taste_profile:%d", userID)
}

type cachedProfile struct {
	UserID           int64             `json:"user_id"`
	SemanticVector   []float64         `json:"semantic_vector"`
	PositiveSiteIDs  []int64           `json:"positive_site_ids"`
	NegativeSiteIDs  []int64           `json:"negative_site_ids"`
	EngagementScores map[int64]float64 `json:"engagement_scores"`
}

// BuildProfile serves the profile from cache when fresh, otherwise
// delegates and caches the result.
func (s *CachedTasteProfileService) BuildProfile(ctx context.Context, userID int64) (*entities.TasteProfile, error) {
	key := TasteProfileCacheKey(userID)

	if data, err := s.cache.Get(ctx, key); err == nil {
		var cached cachedProfile
		if err := json.Unmarshal(data, &cached); err == nil {
			observability.RecordCacheHit(ctx, s.metrics, "taste_profile")
			return cached.toProfile(), nil
		}
		logger := observability.LoggerFromContext(ctx)
		logger.Warn().Int64("user_id", userID).Msg("discarding malformed cached taste profile")
	}
	observability.RecordCacheMiss(ctx, s.metrics, "taste_profile")

	profile, err := s.inner.BuildProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(fromProfile(profile)); err == nil {
		if err := s.cache.Set(ctx, key, data, s.ttlSeconds); err != nil {
			logger := observability.LoggerFromContext(ctx)
			logger.Warn().Err(err).Int64("user_id", userID).Msg("failed to cache taste profile")
		}
	}

	return profile, nil
}

func fromProfile(p *entities.TasteProfile) cachedProfile {
	cached := cachedProfile{
		UserID:           p.UserID,
		SemanticVector:   p.SemanticVector,
		EngagementScores: p.EngagementScores,
	}
	for id := range p.PositiveSiteIDs {
		cached.PositiveSiteIDs = append(cached.PositiveSiteIDs, id)
	}
	for id := range p.NegativeSiteIDs {
		cached.NegativeSiteIDs = append(cached.NegativeSiteIDs, id)
	}
	return cached
}

func (c cachedProfile) toProfile() *entities.TasteProfile {
	profile := entities.NeutralProfile(c.UserID, len(c.SemanticVector))
	profile.SemanticVector = c.SemanticVector
	if c.EngagementScores != nil {
		profile.EngagementScores = c.EngagementScores
	}
	for _, id := range c.PositiveSiteIDs {
		profile.PositiveSiteIDs[id] = struct{}{}
	}
	for _, id := range c.NegativeSiteIDs {
		profile.NegativeSiteIDs[id] = struct{}{}
	}
	return profile
}

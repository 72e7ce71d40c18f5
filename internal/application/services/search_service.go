package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/sitelore/backend/internal/application/loaders"
	"github.com/sitelore/backend/internal/domain/entities"
	"github.com/sitelore/backend/internal/domain/repositories"
	"github.com/sitelore/backend/internal/infrastructure/observability"
	"github.com/sitelore/backend/pkg/errors"
)

// Search modes as reported in results and analytics.
const (
	ModeText         = "text"
	ModeGeo          = "geo"
	ModePersonalized = "personalized"
)

// SearchService is the single entry point for search. It wires the
// pipeline: candidate retrieval, engagement reranking, diversity
// selection, site hydration.
type SearchService struct {
	retrieval *RetrievalService
	reranker  *RerankService
	diversity *DiversityService
	profiles  TasteProfileProvider
	sites     *loaders.SiteLoader
	analytics *SearchAnalyticsService
	metrics   *observability.Metrics
	topK      int
}

// NewSearchService creates a new search service. analytics and metrics
// may be nil; search then runs without recording.
func NewSearchService(
	retrieval *RetrievalService,
	reranker *RerankService,
	diversity *DiversityService,
	profiles TasteProfileProvider,
	sites *loaders.SiteLoader,
	analytics *SearchAnalyticsService,
	metrics *observability.Metrics,
	topK int,
) *SearchService {
	return &SearchService{
		retrieval: retrieval,
		reranker:  reranker,
		diversity: diversity,
		profiles:  profiles,
		sites:     sites,
		analytics: analytics,
		metrics:   metrics,
		topK:      topK,
	}
}

// SearchText answers a free-text query, optionally constrained to a
// radius. The query must be non-empty.
func (s *SearchService) SearchText(ctx context.Context, query string, geoFilter *repositories.GeoFilter, k int) (*entities.SearchResult, error) {
	if query == "" {
		return nil, errors.NewValidationError("query must not be empty")
	}
	if err := validateGeoFilter(geoFilter); err != nil {
		return nil, err
	}
	return s.run(ctx, ModeText, query, 0, RetrievalQuery{Text: query, Geo: geoFilter}, nil, k)
}

// SearchGeo returns sites within the radius, nearest first.
func (s *SearchService) SearchGeo(ctx context.Context, geoFilter repositories.GeoFilter, k int) (*entities.SearchResult, error) {
	if err := validateGeoFilter(&geoFilter); err != nil {
		return nil, err
	}
	return s.run(ctx, ModeGeo, "", 0, RetrievalQuery{Geo: &geoFilter}, nil, k)
}

// SearchPersonalized recommends sites for the user from their taste
// profile. A free-text query refines the candidate pool; without one the
// taste vector itself is the query. A user with no usable history and no
// query gets an empty result, not an error.
func (s *SearchService) SearchPersonalized(ctx context.Context, userID int64, query string, geoFilter *repositories.GeoFilter, k int) (*entities.SearchResult, error) {
	if userID <= 0 {
		return nil, errors.NewValidationError("user_id must be positive")
	}
	if err := validateGeoFilter(geoFilter); err != nil {
		return nil, err
	}

	profile, err := s.profiles.BuildProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	rq := RetrievalQuery{Geo: geoFilter}
	switch {
	case query != "":
		rq.Text = query
	case !profile.IsNeutral():
		rq.Vector = profile.SemanticVector
	case geoFilter == nil:
		// Nothing to anchor retrieval on.
		return entities.NewSearchResult(ModePersonalized, query, []entities.ScoredSite{}), nil
	}

	return s.run(ctx, ModePersonalized, query, userID, rq, profile, k)
}

func (s *SearchService) run(ctx context.Context, mode, query string, userID int64, rq RetrievalQuery, profile *entities.TasteProfile, k int) (*entities.SearchResult, error) {
	ctx, span := observability.StartSpan(ctx, "search."+mode)
	defer span.End()
	start := time.Now()

	if k <= 0 {
		k = s.topK
	}

	candidates, err := s.retrieval.Retrieve(ctx, rq, k)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	ranked := s.reranker.Rerank(candidates, profile)
	picked := s.diversity.Select(ranked, k)

	ids := make([]int64, len(picked))
	for i, c := range picked {
		ids[i] = c.SiteID
	}
	sites := s.sites.LoadMany(ctx, ids)

	scored := make([]entities.ScoredSite, 0, len(picked))
	for i, c := range picked {
		// A site can vanish from the database after indexing; drop
		// the hit rather than return a hollow entry.
		if sites[i] == nil {
			continue
		}
		scored = append(scored, entities.ScoredSite{Site: sites[i], Score: c.Score})
	}

	result := entities.NewSearchResult(mode, query, scored)

	elapsed := time.Since(start)
	observability.SetSpanAttributes(span,
		attribute.String("search.mode", mode),
		attribute.Int("search.result_count", len(scored)),
	)
	observability.RecordSearchMetric(ctx, s.metrics, mode, elapsed)
	if s.analytics != nil {
		event := entities.SearchEvent{
			Mode:        mode,
			Query:       query,
			UserID:      userID,
			ResultCount: len(scored),
			LatencyMs:   int(elapsed.Milliseconds()),
		}
		if rq.Geo != nil {
			event.Latitude = rq.Geo.Latitude
			event.Longitude = rq.Geo.Longitude
		}
		s.analytics.Record(event)
	}

	return result, nil
}

func validateGeoFilter(f *repositories.GeoFilter) error {
	if f == nil {
		return nil
	}
	if f.Latitude < -90 || f.Latitude > 90 {
		return errors.NewValidationError("latitude must be between -90 and 90")
	}
	if f.Longitude < -180 || f.Longitude > 180 {
		return errors.NewValidationError("longitude must be between -180 and 180")
	}
	if f.RadiusMeters <= 0 {
		return errors.NewValidationError("radius_meters must be positive")
	}
	return nil
}

package services

import (
	"context"

	"github.com/sitelore/backend/internal/domain/providers"
	"github.com/sitelore/backend/internal/domain/repositories"
	"github.com/sitelore/backend/internal/infrastructure/observability"
	"github.com/sitelore/backend/pkg/errors"
	"github.com/sitelore/backend/pkg/geo"
)

// Candidate is one retrieval candidate flowing through the ranking
// pipeline. Similarity is the raw retrieval similarity; Score is the fused
// relevance assigned by the reranker.
type Candidate struct {
	SiteID     int64
	Similarity float64
	Score      float64
	Embedding  []float64
	Latitude   float64
	Longitude  float64
}

// RetrievalQuery describes what to pull from the vector index: free text,
// an explicit query vector (a taste vector), a geo constraint, or any
// combination. Text and Vector are mutually exclusive; Vector wins.
type RetrievalQuery struct {
	Text   string
	Vector []float64
	Geo    *repositories.GeoFilter
}

// RetrievalService fetches an over-fetched candidate pool from the vector
// index so the reranker and the diversity selector have room to work.
type RetrievalService struct {
	searchRepo      repositories.SiteSearchRepository
	embedder        providers.EmbeddingProvider
	overFetchFactor int
}

// NewRetrievalService creates a new retrieval service
func NewRetrievalService(
	searchRepo repositories.SiteSearchRepository,
	embedder providers.EmbeddingProvider,
	overFetchFactor int,
) *RetrievalService {
	if overFetchFactor < 1 {
		overFetchFactor = 1
	}
	return &RetrievalService{
		searchRepo:      searchRepo,
		embedder:        embedder,
		overFetchFactor: overFetchFactor,
	}
}

// Retrieve returns up to overFetchFactor×limit candidates, most relevant
// first. An empty pool is a valid result: embedding failures and an empty
// index yield no candidates, not a fault. Index transport errors surface
// as retrieval-unavailable so the caller can distinguish them from empty.
func (s *RetrievalService) Retrieve(ctx context.Context, query RetrievalQuery, limit int) ([]Candidate, error) {
	ctx, span := observability.StartSpan(ctx, "retrieval.retrieve")
	defer span.End()

	if s.searchRepo == nil {
		return nil, errors.NewRetrievalUnavailableError("typesense", nil)
	}

	poolSize := limit * s.overFetchFactor

	queryVector := query.Vector
	if queryVector == nil && query.Text != "" {
		if s.embedder == nil {
			return nil, errors.NewExternalError("text search disabled: no embedding provider", nil)
		}
		embedded, err := s.embedder.Embed(ctx, query.Text)
		if err != nil {
			// A failed embedding means no semantic handle on the
			// query; downstream treats the empty pool gracefully.
			logger := observability.LoggerFromContext(ctx)
			logger.Warn().Err(err).Msg("embedding failed, returning empty candidate pool")
			observability.RecordError(span, err)
			return []Candidate{}, nil
		}
		queryVector = embedded
	}

	var hits []repositories.SearchHit
	var err error
	switch {
	case queryVector != nil:
		hits, err = s.searchRepo.VectorSearch(ctx, queryVector, query.Geo, poolSize)
	case query.Geo != nil:
		hits, err = s.searchRepo.GeoSearch(ctx, *query.Geo, poolSize)
	default:
		return []Candidate{}, nil
	}
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	candidates := make([]Candidate, 0, len(hits))
	for _, hit := range hits {
		// The index filters at km granularity; enforce the exact
		// radius with the haversine distance.
		if query.Geo != nil {
			d := geo.DistanceMeters(query.Geo.Latitude, query.Geo.Longitude, hit.Latitude, hit.Longitude)
			if d > query.Geo.RadiusMeters {
				continue
			}
		}

		c := Candidate{
			SiteID:     hit.SiteID,
			Similarity: hit.Similarity,
			Embedding:  hit.Embedding,
			Latitude:   hit.Latitude,
			Longitude:  hit.Longitude,
		}

		// Geo-only retrieval has no semantic similarity; rank by
		// proximity instead so ordering is still defined.
		if queryVector == nil && query.Geo != nil {
			d := geo.DistanceMeters(query.Geo.Latitude, query.Geo.Longitude, hit.Latitude, hit.Longitude)
			c.Similarity = geo.ProximityScore(d)
		}

		candidates = append(candidates, c)
	}

	return candidates, nil
}

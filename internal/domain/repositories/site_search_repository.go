package repositories

import (
	"context"
)

// GeoFilter restricts vector search to a great-circle radius.
type GeoFilter struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
}

// SearchHit is one nearest-neighbor match from the vector index.
type SearchHit struct {
	SiteID     int64
	Similarity float64
	Embedding  []float64
	Latitude   float64
	Longitude  float64
}

// SiteSearchRepository is the boundary of the opaque vector index. It holds
// one embedding per site and supports nearest-neighbor search by vector
// with an optional geographic radius filter.
type SiteSearchRepository interface {
	InitSchema(ctx context.Context) error
	Index(ctx context.Context, siteID int64, document map[string]interface{}) error
	Delete(ctx context.Context, siteID int64) error

	// VectorSearch returns up to limit hits nearest to queryVector,
	// most similar first. A nil geo filter searches the whole index.
	VectorSearch(ctx context.Context, queryVector []float64, geo *GeoFilter, limit int) ([]SearchHit, error)

	// GeoSearch returns up to limit hits inside the radius with no
	// semantic ordering, for geo-only queries.
	GeoSearch(ctx context.Context, geo GeoFilter, limit int) ([]SearchHit, error)

	// FetchEmbeddings returns the stored embeddings for the given site
	// ids. Missing sites are simply absent from the map.
	FetchEmbeddings(ctx context.Context, siteIDs []int64) (map[int64][]float64, error)
}

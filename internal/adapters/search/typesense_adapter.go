package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/sitelore/backend/internal/domain/repositories"
	tsclient "github.com/sitelore/backend/internal/infrastructure/clients/typesense"
	apperrors "github.com/sitelore/backend/pkg/errors"
)

const collectionName = tsclient.SitesCollection

// TypesenseAdapter implements the vector index boundary over a Typesense
// collection holding one embedding and one geopoint per site.
type TypesenseAdapter struct {
	client *tsclient.Client
	dim    int
}

// Ensure TypesenseAdapter implements SiteSearchRepository
var _ repositories.SiteSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter. dim is the fixed
// embedding dimensionality shared across the system.
func NewTypesenseAdapter(client *tsclient.Client, dim int) *TypesenseAdapter {
	return &TypesenseAdapter{client: client, dim: dim}
}

// InitSchema ensures the collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	_, err := a.client.Client().Collection(collectionName).Retrieve(ctx)
	if err == nil {
		return nil // Collection exists
	}

	schema := &api.CollectionSchema{
		Name: collectionName,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "title", Type: "string"},
			{Name: "embedding", Type: "float[]", NumDim: pointer.Int(a.dim)},
			{Name: "location", Type: "geopoint"},
			{Name: "created_at", Type: "int64"},
		},
		DefaultSortingField: pointer.String("created_at"),
	}

	_, err = a.client.Client().Collections().Create(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}

	return nil
}

// Index upserts a site document into the index
func (a *TypesenseAdapter) Index(ctx context.Context, siteID int64, document map[string]interface{}) error {
	document["id"] = strconv.FormatInt(siteID, 10)

	_, err := a.client.Client().Collection(collectionName).Documents().Upsert(ctx, document)
	if err != nil {
		return fmt.Errorf("failed to index site %d: %w", siteID, err)
	}

	return nil
}

// Delete removes a site from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, siteID int64) error {
	_, err := a.client.Client().Collection(collectionName).Document(strconv.FormatInt(siteID, 10)).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete site %d from index: %w", siteID, err)
	}
	return nil
}

// VectorSearch runs nearest-neighbor search by embedding with an optional
// geo radius filter.
func (a *TypesenseAdapter) VectorSearch(ctx context.Context, queryVector []float64, geo *repositories.GeoFilter, limit int) ([]repositories.SearchHit, error) {
	if len(queryVector) != a.dim {
		return nil, apperrors.NewInternalError(
			fmt.Sprintf("query vector has %d dimensions, index expects %d", len(queryVector), a.dim), nil)
	}

	searchParams := &api.SearchCollectionParams{
		Q:           pointer.String("*"),
		VectorQuery: pointer.String(vectorQueryString(queryVector, limit)),
		PerPage:     pointer.Int(limit),
	}
	if geo != nil {
		searchParams.FilterBy = pointer.String(geoFilterString(*geo))
	}

	result, err := a.client.Client().Collection(collectionName).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, apperrors.NewRetrievalUnavailableError("vector index", err)
	}

	return parseHits(result)
}

// GeoSearch returns sites inside the radius with no semantic ordering,
// nearest first.
func (a *TypesenseAdapter) GeoSearch(ctx context.Context, geo repositories.GeoFilter, limit int) ([]repositories.SearchHit, error) {
	searchParams := &api.SearchCollectionParams{
		Q:        pointer.String("*"),
		FilterBy: pointer.String(geoFilterString(geo)),
		SortBy:   pointer.String(fmt.Sprintf("location(%f, %f):asc", geo.Latitude, geo.Longitude)),
		PerPage:  pointer.Int(limit),
	}

	result, err := a.client.Client().Collection(collectionName).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, apperrors.NewRetrievalUnavailableError("vector index", err)
	}

	return parseHits(result)
}

// FetchEmbeddings returns stored embeddings for the given site ids.
// Missing ids are simply absent from the returned map.
func (a *TypesenseAdapter) FetchEmbeddings(ctx context.Context, siteIDs []int64) (map[int64][]float64, error) {
	embeddings := make(map[int64][]float64, len(siteIDs))
	if len(siteIDs) == 0 {
		return embeddings, nil
	}

	idStrs := make([]string, len(siteIDs))
	for i, id := range siteIDs {
		idStrs[i] = strconv.FormatInt(id, 10)
	}

	searchParams := &api.SearchCollectionParams{
		Q:        pointer.String("*"),
		FilterBy: pointer.String(fmt.Sprintf("id:=[%s]", strings.Join(idStrs, ","))),
		PerPage:  pointer.Int(len(siteIDs)),
	}

	result, err := a.client.Client().Collection(collectionName).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, apperrors.NewRetrievalUnavailableError("vector index", err)
	}

	hits, err := parseHits(result)
	if err != nil {
		return nil, err
	}
	for _, hit := range hits {
		if len(hit.Embedding) > 0 {
			embeddings[hit.SiteID] = hit.Embedding
		}
	}

	return embeddings, nil
}

func vectorQueryString(queryVector []float64, k int) string {
	var sb strings.Builder
	sb.WriteString("embedding:([")
	for i, x := range queryVector {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(strconv.FormatFloat(x, 'f', -1, 64))
	}
	fmt.Fprintf(&sb, "], k:%d)", k)
	return sb.String()
}

func geoFilterString(geo repositories.GeoFilter) string {
	// Typesense geo filters take kilometers.
	return fmt.Sprintf("location:(%f, %f, %f km)", geo.Latitude, geo.Longitude, geo.RadiusMeters/1000.0)
}

func parseHits(result *api.SearchResult) ([]repositories.SearchHit, error) {
	hits := []repositories.SearchHit{}
	if result.Hits == nil {
		return hits, nil
	}

	for _, h := range *result.Hits {
		if h.Document == nil {
			continue
		}
		doc := *h.Document

		idStr, ok := doc["id"].(string)
		if !ok {
			continue
		}
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("non-numeric site id %q in index: %w", idStr, err)
		}

		hit := repositories.SearchHit{SiteID: id}

		if h.VectorDistance != nil {
			// Typesense reports cosine distance; similarity is its
			// complement.
			hit.Similarity = 1.0 - float64(*h.VectorDistance)
		}

		if emb, ok := doc["embedding"].([]interface{}); ok {
			hit.Embedding = make([]float64, 0, len(emb))
			for _, v := range emb {
				f, ok := v.(float64)
				if !ok {
					return nil, fmt.Errorf("malformed embedding component for site %d", id)
				}
				hit.Embedding = append(hit.Embedding, f)
			}
		}

		if loc, ok := doc["location"].([]interface{}); ok && len(loc) == 2 {
			if lat, ok := loc[0].(float64); ok {
				hit.Latitude = lat
			}
			if lon, ok := loc[1].(float64); ok {
				hit.Longitude = lon
			}
		}

		hits = append(hits, hit)
	}

	return hits, nil
}

package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sitelore/backend/internal/application/services"
	"github.com/sitelore/backend/internal/domain/repositories"
)

func TestRetrieve_TextQueryOverFetches(t *testing.T) {
	searchRepo := new(mockSearchRepo)
	embedder := new(mockEmbedder)

	queryVector := []float64{0.1, 0.2, 0.3}
	embedder.On("Embed", mock.Anything, "roman ruins").Return(queryVector, nil)
	searchRepo.On("VectorSearch", mock.Anything, queryVector, (*repositories.GeoFilter)(nil), 40).
		Return([]repositories.SearchHit{
			{SiteID: 1, Similarity: 0.9},
			{SiteID: 2, Similarity: 0.7},
		}, nil)

	svc := services.NewRetrievalService(searchRepo, embedder, 4)
	candidates, err := svc.Retrieve(context.Background(), services.RetrievalQuery{Text: "roman ruins"}, 10)

	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, int64(1), candidates[0].SiteID)
	assert.InDelta(t, 0.9, candidates[0].Similarity, 1e-9)
	searchRepo.AssertExpectations(t)
}

func TestRetrieve_EmbeddingFailureYieldsEmptyPool(t *testing.T) {
	searchRepo := new(mockSearchRepo)
	embedder := new(mockEmbedder)
	embedder.On("Embed", mock.Anything, "anything").Return(nil, errors.New("upstream down"))

	svc := services.NewRetrievalService(searchRepo, embedder, 4)
	candidates, err := svc.Retrieve(context.Background(), services.RetrievalQuery{Text: "anything"}, 10)

	require.NoError(t, err)
	assert.Empty(t, candidates)
	searchRepo.AssertNotCalled(t, "VectorSearch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRetrieve_IndexErrorPropagates(t *testing.T) {
	searchRepo := new(mockSearchRepo)
	embedder := new(mockEmbedder)

	vec := []float64{1, 0, 0}
	searchRepo.On("VectorSearch", mock.Anything, vec, (*repositories.GeoFilter)(nil), 4).
		Return(nil, errors.New("index unreachable"))

	svc := services.NewRetrievalService(searchRepo, embedder, 4)
	_, err := svc.Retrieve(context.Background(), services.RetrievalQuery{Vector: vec}, 1)
	assert.Error(t, err)
}

func TestRetrieve_ExactRadiusPostFilter(t *testing.T) {
	searchRepo := new(mockSearchRepo)
	embedder := new(mockEmbedder)

	// The index filters at km granularity; the hit 111m north of the
	// query point must survive a 5000m radius and fall out of a 1m one.
	center := repositories.GeoFilter{Latitude: 52.7579, Longitude: 9.9048, RadiusMeters: 5000}
	hit := repositories.SearchHit{SiteID: 1, Similarity: 0.8, Latitude: 52.7589, Longitude: 9.9048}

	vec := []float64{1, 0, 0}
	searchRepo.On("VectorSearch", mock.Anything, vec, mock.Anything, mock.Anything).
		Return([]repositories.SearchHit{hit}, nil)

	svc := services.NewRetrievalService(searchRepo, embedder, 4)

	wide, err := svc.Retrieve(context.Background(), services.RetrievalQuery{Vector: vec, Geo: &center}, 10)
	require.NoError(t, err)
	assert.Len(t, wide, 1)

	tight := center
	tight.RadiusMeters = 1
	narrow, err := svc.Retrieve(context.Background(), services.RetrievalQuery{Vector: vec, Geo: &tight}, 10)
	require.NoError(t, err)
	assert.Empty(t, narrow)
}

func TestRetrieve_GeoOnlyRanksByProximity(t *testing.T) {
	searchRepo := new(mockSearchRepo)
	embedder := new(mockEmbedder)

	filter := repositories.GeoFilter{Latitude: 52.7579, Longitude: 9.9048, RadiusMeters: 10000}
	searchRepo.On("GeoSearch", mock.Anything, filter, 40).Return([]repositories.SearchHit{
		{SiteID: 1, Latitude: 52.7579, Longitude: 9.9048},
		{SiteID: 2, Latitude: 52.80, Longitude: 9.9048},
	}, nil)

	svc := services.NewRetrievalService(searchRepo, embedder, 4)
	candidates, err := svc.Retrieve(context.Background(), services.RetrievalQuery{Geo: &filter}, 10)

	require.NoError(t, err)
	require.Len(t, candidates, 2)
	// Zero distance scores a full 1.0; the farther hit scores less.
	assert.InDelta(t, 1.0, candidates[0].Similarity, 1e-9)
	assert.Less(t, candidates[1].Similarity, candidates[0].Similarity)
	embedder.AssertNotCalled(t, "Embed", mock.Anything, mock.Anything)
}

func TestRetrieve_NoQueryNoGeoIsEmpty(t *testing.T) {
	searchRepo := new(mockSearchRepo)
	embedder := new(mockEmbedder)

	svc := services.NewRetrievalService(searchRepo, embedder, 4)
	candidates, err := svc.Retrieve(context.Background(), services.RetrievalQuery{}, 10)

	require.NoError(t, err)
	assert.Empty(t, candidates)
}

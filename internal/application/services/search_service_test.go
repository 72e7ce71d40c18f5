package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sitelore/backend/internal/application/loaders"
	"github.com/sitelore/backend/internal/application/services"
	"github.com/sitelore/backend/internal/domain/entities"
	"github.com/sitelore/backend/internal/domain/repositories"
	apperrors "github.com/sitelore/backend/pkg/errors"
)

func newSearchService(searchRepo *mockSearchRepo, embedder *mockEmbedder, eventRepo *mockEventRepo, siteRepo *mockSiteRepo) *services.SearchService {
	cfg := testSearchConfig()
	return services.NewSearchService(
		services.NewRetrievalService(searchRepo, embedder, cfg.OverFetchFactor),
		services.NewRerankService(cfg),
		services.NewDiversityService(cfg.Lambda),
		services.NewTasteProfileService(eventRepo, searchRepo, testTasteConfig(), 5),
		loaders.NewSiteLoader(siteRepo),
		nil,
		nil,
		cfg.TopK,
	)
}

func TestSearchText_EmptyQueryRejected(t *testing.T) {
	svc := newSearchService(new(mockSearchRepo), new(mockEmbedder), new(mockEventRepo), new(mockSiteRepo))

	_, err := svc.SearchText(context.Background(), "", nil, 10)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestSearchText_ReturnsRankedHydratedResults(t *testing.T) {
	searchRepo := new(mockSearchRepo)
	embedder := new(mockEmbedder)
	siteRepo := new(mockSiteRepo)

	queryVector := []float64{1, 0, 0, 0, 0}
	embedder.On("Embed", mock.Anything, "medieval castle").Return(queryVector, nil)
	searchRepo.On("VectorSearch", mock.Anything, queryVector, (*repositories.GeoFilter)(nil), 8).
		Return([]repositories.SearchHit{
			{SiteID: 2, Similarity: 0.6, Embedding: []float64{0, 1, 0, 0, 0}},
			{SiteID: 1, Similarity: 0.9, Embedding: []float64{1, 0, 0, 0, 0}},
		}, nil)
	siteRepo.On("GetByIDs", mock.Anything, mock.Anything).Return([]*entities.Site{
		{ID: 1, Title: "Castle Keep"},
		{ID: 2, Title: "Old Mill"},
	}, nil)

	svc := newSearchService(searchRepo, embedder, new(mockEventRepo), siteRepo)
	result, err := svc.SearchText(context.Background(), "medieval castle", nil, 2)

	require.NoError(t, err)
	assert.Equal(t, services.ModeText, result.Mode)
	require.Len(t, result.Results, 2)
	assert.Equal(t, int64(1), result.Results[0].Site.ID)
	assert.Equal(t, "Castle Keep", result.Results[0].Site.Title)
	assert.Equal(t, 1, result.Results[0].Rank)
	assert.Equal(t, int64(2), result.Results[1].Site.ID)
	assert.Equal(t, 2, result.Results[1].Rank)
	assert.Greater(t, result.Results[0].Score, result.Results[1].Score)
}

func TestSearchGeo_ValidatesFilter(t *testing.T) {
	svc := newSearchService(new(mockSearchRepo), new(mockEmbedder), new(mockEventRepo), new(mockSiteRepo))

	_, err := svc.SearchGeo(context.Background(), repositories.GeoFilter{Latitude: 91, Longitude: 0, RadiusMeters: 100}, 10)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	_, err = svc.SearchGeo(context.Background(), repositories.GeoFilter{Latitude: 0, Longitude: 0, RadiusMeters: 0}, 10)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestSearchPersonalized_DislikedSiteExcluded(t *testing.T) {
	searchRepo := new(mockSearchRepo)
	embedder := new(mockEmbedder)
	eventRepo := new(mockEventRepo)
	siteRepo := new(mockSiteRepo)
	now := time.Now()

	// Likes on sites 1-3, a dislike on site 4.
	eventRepo.On("ListByUser", mock.Anything, int64(9), 500).Return([]*entities.InteractionEvent{
		likeEvent(9, 1, now),
		likeEvent(9, 2, now.Add(-time.Minute)),
		likeEvent(9, 3, now.Add(-2*time.Minute)),
		dislikeEvent(9, 4, now.Add(-3*time.Minute)),
	}, nil)
	searchRepo.On("FetchEmbeddings", mock.Anything, mock.Anything).Return(map[int64][]float64{
		1: {1, 0, 0, 0, 0},
		2: {0, 1, 0, 0, 0},
		3: {0, 0, 1, 0, 0},
		4: {0, 0, 0, 1, 0},
	}, nil)

	// The disliked site comes back as the strongest index hit; the
	// pipeline must drop it anyway.
	searchRepo.On("VectorSearch", mock.Anything, mock.Anything, (*repositories.GeoFilter)(nil), mock.Anything).
		Return([]repositories.SearchHit{
			{SiteID: 4, Similarity: 0.95, Embedding: []float64{0, 0, 0, 1, 0}},
			{SiteID: 1, Similarity: 0.9, Embedding: []float64{1, 0, 0, 0, 0}},
			{SiteID: 2, Similarity: 0.85, Embedding: []float64{0, 1, 0, 0, 0}},
			{SiteID: 3, Similarity: 0.8, Embedding: []float64{0, 0, 1, 0, 0}},
			{SiteID: 5, Similarity: 0.7, Embedding: []float64{0, 0, 0, 0, 1}},
		}, nil)
	siteRepo.On("GetByIDs", mock.Anything, mock.Anything).Return([]*entities.Site{
		{ID: 1, Title: "Abbey"},
		{ID: 2, Title: "Bridge"},
		{ID: 3, Title: "Cloister"},
		{ID: 5, Title: "Earthworks"},
	}, nil)

	svc := newSearchService(searchRepo, embedder, eventRepo, siteRepo)
	result, err := svc.SearchPersonalized(context.Background(), 9, "", nil, 3)

	require.NoError(t, err)
	assert.Equal(t, services.ModePersonalized, result.Mode)
	require.Len(t, result.Results, 3)
	for _, r := range result.Results {
		assert.NotEqual(t, int64(4), r.Site.ID)
	}
	// The taste vector was built, not text-embedded.
	embedder.AssertNotCalled(t, "Embed", mock.Anything, mock.Anything)
}

func TestSearchPersonalized_NeutralProfileNoQueryIsEmpty(t *testing.T) {
	searchRepo := new(mockSearchRepo)
	eventRepo := new(mockEventRepo)
	eventRepo.On("ListByUser", mock.Anything, int64(3), 500).Return([]*entities.InteractionEvent{}, nil)

	svc := newSearchService(searchRepo, new(mockEmbedder), eventRepo, new(mockSiteRepo))
	result, err := svc.SearchPersonalized(context.Background(), 3, "", nil, 10)

	require.NoError(t, err)
	assert.Empty(t, result.Results)
	searchRepo.AssertNotCalled(t, "VectorSearch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchPersonalized_InvalidUserRejected(t *testing.T) {
	svc := newSearchService(new(mockSearchRepo), new(mockEmbedder), new(mockEventRepo), new(mockSiteRepo))

	_, err := svc.SearchPersonalized(context.Background(), 0, "", nil, 10)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestSearch_DroppedSiteSkippedInHydration(t *testing.T) {
	searchRepo := new(mockSearchRepo)
	embedder := new(mockEmbedder)
	siteRepo := new(mockSiteRepo)

	queryVector := []float64{1, 0, 0, 0, 0}
	embedder.On("Embed", mock.Anything, "ruin").Return(queryVector, nil)
	searchRepo.On("VectorSearch", mock.Anything, queryVector, (*repositories.GeoFilter)(nil), mock.Anything).
		Return([]repositories.SearchHit{
			{SiteID: 1, Similarity: 0.9},
			{SiteID: 2, Similarity: 0.8},
		}, nil)
	// Site 2 was deleted after indexing.
	siteRepo.On("GetByIDs", mock.Anything, mock.Anything).Return([]*entities.Site{
		{ID: 1, Title: "Abbey"},
	}, nil)

	svc := newSearchService(searchRepo, embedder, new(mockEventRepo), siteRepo)
	result, err := svc.SearchText(context.Background(), "ruin", nil, 5)

	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	assert.Equal(t, int64(1), result.Results[0].Site.ID)
	assert.Equal(t, 1, result.Results[0].Rank)
}

package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitelore/backend/internal/application/services"
	"github.com/sitelore/backend/internal/domain/entities"
	"github.com/sitelore/backend/pkg/config"
)

func testSearchConfig() config.SearchConfig {
	return config.SearchConfig{
		TopK:                 10,
		OverFetchFactor:      4,
		Alpha:                0.7,
		Beta:                 0.2,
		Gamma:                0.4,
		ExcludeHardNegatives: true,
		Lambda:               0.7,
	}
}

func TestRerank_FusesSimilarityAndEngagement(t *testing.T) {
	svc := services.NewRerankService(testSearchConfig())

	profile := entities.NeutralProfile(1, 3)
	profile.EngagementScores[2] = 1.0

	candidates := []services.Candidate{
		{SiteID: 1, Similarity: 0.9},
		{SiteID: 2, Similarity: 0.8},
	}

	ranked := svc.Rerank(candidates, profile)
	require.Len(t, ranked, 2)

	// 0.7*0.8 + 0.2*1.0 = 0.76 beats 0.7*0.9 = 0.63.
	assert.Equal(t, int64(2), ranked[0].SiteID)
	assert.InDelta(t, 0.76, ranked[0].Score, 1e-9)
	assert.Equal(t, int64(1), ranked[1].SiteID)
	assert.InDelta(t, 0.63, ranked[1].Score, 1e-9)
}

func TestRerank_ExcludesHardNegatives(t *testing.T) {
	svc := services.NewRerankService(testSearchConfig())

	profile := entities.NeutralProfile(1, 3)
	profile.NegativeSiteIDs[2] = struct{}{}

	candidates := []services.Candidate{
		{SiteID: 1, Similarity: 0.5},
		{SiteID: 2, Similarity: 0.99},
	}

	ranked := svc.Rerank(candidates, profile)
	require.Len(t, ranked, 1)
	assert.Equal(t, int64(1), ranked[0].SiteID)
}

func TestRerank_PenalizesNegativesWhenNotExcluding(t *testing.T) {
	cfg := testSearchConfig()
	cfg.ExcludeHardNegatives = false
	svc := services.NewRerankService(cfg)

	profile := entities.NeutralProfile(1, 3)
	profile.NegativeSiteIDs[2] = struct{}{}

	candidates := []services.Candidate{
		{SiteID: 1, Similarity: 0.5},
		{SiteID: 2, Similarity: 0.99},
	}

	ranked := svc.Rerank(candidates, profile)
	require.Len(t, ranked, 2)
	// 0.7*0.99 - 0.4 = 0.293 drops below 0.7*0.5 = 0.35.
	assert.Equal(t, int64(1), ranked[0].SiteID)
	assert.Equal(t, int64(2), ranked[1].SiteID)
	assert.InDelta(t, 0.293, ranked[1].Score, 1e-9)
}

func TestRerank_DeterministicTieBreakBySiteID(t *testing.T) {
	svc := services.NewRerankService(testSearchConfig())

	candidates := []services.Candidate{
		{SiteID: 9, Similarity: 0.5},
		{SiteID: 3, Similarity: 0.5},
		{SiteID: 6, Similarity: 0.5},
	}

	for i := 0; i < 5; i++ {
		ranked := svc.Rerank(candidates, nil)
		require.Len(t, ranked, 3)
		assert.Equal(t, int64(3), ranked[0].SiteID)
		assert.Equal(t, int64(6), ranked[1].SiteID)
		assert.Equal(t, int64(9), ranked[2].SiteID)
	}
}

func TestRerank_NilProfileIsPureSimilarity(t *testing.T) {
	svc := services.NewRerankService(testSearchConfig())

	candidates := []services.Candidate{
		{SiteID: 1, Similarity: 0.2},
		{SiteID: 2, Similarity: 0.8},
	}

	ranked := svc.Rerank(candidates, nil)
	require.Len(t, ranked, 2)
	assert.Equal(t, int64(2), ranked[0].SiteID)
	assert.InDelta(t, 0.7*0.8, ranked[0].Score, 1e-9)
}

func TestRerank_DoesNotMutateInput(t *testing.T) {
	svc := services.NewRerankService(testSearchConfig())

	candidates := []services.Candidate{
		{SiteID: 1, Similarity: 0.2},
		{SiteID: 2, Similarity: 0.8},
	}

	_ = svc.Rerank(candidates, nil)
	assert.Equal(t, int64(1), candidates[0].SiteID)
	assert.Zero(t, candidates[0].Score)
}

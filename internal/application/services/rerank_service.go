package services

import (
	"sort"

	"github.com/sitelore/backend/internal/domain/entities"
	"github.com/sitelore/backend/pkg/config"
)

// RerankService fuses retrieval similarity with per-site engagement from
// the user's taste profile into a single relevance score.
type RerankService struct {
	alpha                float64
	beta                 float64
	gamma                float64
	excludeHardNegatives bool
}

// NewRerankService creates a new rerank service
func NewRerankService(cfg config.SearchConfig) *RerankService {
	return &RerankService{
		alpha:                cfg.Alpha,
		beta:                 cfg.Beta,
		gamma:                cfg.Gamma,
		excludeHardNegatives: cfg.ExcludeHardNegatives,
	}
}

// Rerank scores every candidate against the profile and returns a new
// slice ordered by fused score descending. Ordering is fully
// deterministic: ties break on similarity, then on site id. A neutral
// profile leaves the retrieval order intact apart from the fusion
// weights. The input slice is not modified.
func (s *RerankService) Rerank(candidates []Candidate, profile *entities.TasteProfile) []Candidate {
	ranked := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if profile != nil && s.excludeHardNegatives && profile.IsNegative(c.SiteID) {
			continue
		}

		engagement := 0.0
		penalty := 0.0
		if profile != nil {
			engagement = profile.EngagementScores[c.SiteID]
			if profile.IsNegative(c.SiteID) {
				penalty = 1.0
			}
		}

		c.Score = s.alpha*c.Similarity + s.beta*engagement - s.gamma*penalty
		ranked = append(ranked, c)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if ranked[i].Similarity != ranked[j].Similarity {
			return ranked[i].Similarity > ranked[j].Similarity
		}
		return ranked[i].SiteID < ranked[j].SiteID
	})

	return ranked
}

package services

import (
	"github.com/sitelore/backend/pkg/vector"
)

// DiversityService selects a final result set with maximal marginal
// relevance: each pick balances relevance against similarity to what was
// already picked, so near-duplicate sites do not crowd the page.
type DiversityService struct {
	lambda float64
}

// NewDiversityService creates a new diversity service
func NewDiversityService(lambda float64) *DiversityService {
	return &DiversityService{lambda: lambda}
}

// Select picks up to k candidates. Candidates must arrive ordered by
// fused score descending; the first pick is always the top candidate.
// Each subsequent pick maximizes
//
//	lambda*score - (1-lambda)*maxSimilarityToSelected
//
// with ties broken by the lower site id. lambda=1 degenerates to plain
// truncation of the ranked list. Candidates without an embedding
// contribute zero to the redundancy term.
func (s *DiversityService) Select(candidates []Candidate, k int) []Candidate {
	if k <= 0 || len(candidates) == 0 {
		return []Candidate{}
	}
	if k > len(candidates) {
		k = len(candidates)
	}

	selected := make([]Candidate, 0, k)
	remaining := make([]Candidate, len(candidates))
	copy(remaining, candidates)

	// The ranked head is the most relevant candidate by construction.
	selected = append(selected, remaining[0])
	remaining = remaining[1:]

	for len(selected) < k && len(remaining) > 0 {
		bestIdx := -1
		bestScore := 0.0
		for i, c := range remaining {
			redundancy := 0.0
			first := true
			for _, picked := range selected {
				if len(c.Embedding) == 0 || len(picked.Embedding) == 0 {
					continue
				}
				sim := vector.Cosine(c.Embedding, picked.Embedding)
				if first || sim > redundancy {
					redundancy = sim
					first = false
				}
			}
			mmr := s.lambda*c.Score - (1-s.lambda)*redundancy

			if bestIdx == -1 || mmr > bestScore ||
				(mmr == bestScore && c.SiteID < remaining[bestIdx].SiteID) {
				bestIdx = i
				bestScore = mmr
			}
		}

		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return selected
}

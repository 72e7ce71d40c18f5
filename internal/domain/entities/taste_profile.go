package entities

import "github.com/sitelore/backend/pkg/vector"

// TasteProfile is the derived taste representation of a user. It is
// recomputed from event history per request or served from a cache with a
// freshness TTL; it is never persisted as a first-class entity.
type TasteProfile struct {
	UserID int64 `json:"user_id"`

	// SemanticVector is the unit-normalized weighted centroid of
	// positively signaled site embeddings, damped by negative ones.
	// The zero vector means a neutral profile.
	SemanticVector []float64 `json:"semantic_vector"`

	// PositiveSiteIDs and NegativeSiteIDs are disjoint. Contradictory
	// signals on the same site resolve most-recent-event-wins before
	// the thresholds apply.
	PositiveSiteIDs map[int64]struct{} `json:"-"`
	NegativeSiteIDs map[int64]struct{} `json:"-"`

	// EngagementScores maps site id to a normalized dwell/interaction
	// score in [0, 1]. Only sites the user has actually seen appear
	// here; unseen candidates get a zero engagement prior.
	EngagementScores map[int64]float64 `json:"engagement_scores,omitempty"`
}

// NeutralProfile returns the identity profile for a user with no usable
// history: empty signal sets and a zero taste vector of the given
// dimensionality.
func NeutralProfile(userID int64, dim int) *TasteProfile {
	return &TasteProfile{
		UserID:           userID,
		SemanticVector:   make([]float64, dim),
		PositiveSiteIDs:  map[int64]struct{}{},
		NegativeSiteIDs:  map[int64]struct{}{},
		EngagementScores: map[int64]float64{},
	}
}

// IsNeutral reports whether the profile carries no personalization signal.
func (p *TasteProfile) IsNeutral() bool {
	if len(p.PositiveSiteIDs) > 0 || len(p.NegativeSiteIDs) > 0 {
		return false
	}
	return vector.IsZero(p.SemanticVector)
}

// IsPositive reports whether the site carries an explicit positive signal.
func (p *TasteProfile) IsPositive(siteID int64) bool {
	_, ok := p.PositiveSiteIDs[siteID]
	return ok
}

// IsNegative reports whether the site carries an explicit negative signal.
func (p *TasteProfile) IsNegative(siteID int64) bool {
	_, ok := p.NegativeSiteIDs[siteID]
	return ok
}

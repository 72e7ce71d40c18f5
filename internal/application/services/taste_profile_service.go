package services

import (
	"context"
	"math"
	"sort"

	"github.com/sitelore/backend/internal/domain/entities"
	"github.com/sitelore/backend/internal/domain/repositories"
	"github.com/sitelore/backend/internal/infrastructure/observability"
	"github.com/sitelore/backend/pkg/config"
	"github.com/sitelore/backend/pkg/vector"
)

// TasteProfileProvider builds a user's taste profile from interaction
// history. Implemented by TasteProfileService and its caching wrapper.
type TasteProfileProvider interface {
	BuildProfile(ctx context.Context, userID int64) (*entities.TasteProfile, error)
}

// TasteProfileService aggregates a user's event history into a semantic
// taste vector plus explicit positive/negative signal sets.
type TasteProfileService struct {
	eventRepo  repositories.EventRepository
	searchRepo repositories.SiteSearchRepository
	cfg        config.TasteConfig
	dim        int
}

var _ TasteProfileProvider = (*TasteProfileService)(nil)

// NewTasteProfileService creates a new taste profile service. dim is the
// fixed embedding dimensionality.
func NewTasteProfileService(
	eventRepo repositories.EventRepository,
	searchRepo repositories.SiteSearchRepository,
	cfg config.TasteConfig,
	dim int,
) *TasteProfileService {
	return &TasteProfileService{
		eventRepo:  eventRepo,
		searchRepo: searchRepo,
		cfg:        cfg,
		dim:        dim,
	}
}

// BuildProfile converts the user's most recent events into a TasteProfile.
// A user with no usable history gets the neutral profile: empty signal
// sets and a zero taste vector. That is an expected input downstream, not
// an error.
func (s *TasteProfileService) BuildProfile(ctx context.Context, userID int64) (*entities.TasteProfile, error) {
	ctx, span := observability.StartSpan(ctx, "taste.build_profile")
	defer span.End()

	events, err := s.eventRepo.ListByUser(ctx, userID, s.cfg.EventWindow)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	if len(events) == 0 {
		return entities.NeutralProfile(userID, s.dim), nil
	}

	weights, engagement := s.aggregateEvents(events)

	profile := entities.NeutralProfile(userID, s.dim)
	profile.EngagementScores = engagement

	var positiveIDs []int64
	var negativeIDs []int64
	positiveWeight := map[int64]float64{}
	negativeWeight := map[int64]float64{}
	for siteID, w := range weights {
		switch {
		case w >= s.cfg.PositiveThreshold:
			positiveIDs = append(positiveIDs, siteID)
			positiveWeight[siteID] = w
			profile.PositiveSiteIDs[siteID] = struct{}{}
		case w <= s.cfg.NegativeThreshold:
			negativeIDs = append(negativeIDs, siteID)
			negativeWeight[siteID] = -w
			profile.NegativeSiteIDs[siteID] = struct{}{}
		}
	}

	// No positive signal means no direction in embedding space; keep the
	// zero vector so retrieval falls back to non-personalized ranking.
	if len(positiveIDs) == 0 || s.searchRepo == nil {
		return profile, nil
	}

	embeddings, err := s.searchRepo.FetchEmbeddings(ctx, append(positiveIDs, negativeIDs...))
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	centroid := weightedCentroid(positiveIDs, positiveWeight, embeddings, s.dim)
	if centroid == nil {
		return profile, nil
	}

	if len(negativeIDs) > 0 && s.cfg.NegativeDamping > 0 {
		if negCentroid := weightedCentroid(negativeIDs, negativeWeight, embeddings, s.dim); negCentroid != nil {
			for i := range centroid {
				centroid[i] -= s.cfg.NegativeDamping * negCentroid[i]
			}
		}
	}

	profile.SemanticVector = vector.Normalize(centroid)
	return profile, nil
}

// aggregateEvents folds the raw history into one signed weight per site
// and a normalized engagement score per seen site. Contradictory explicit
// signals on the same site resolve most-recent-event-wins; events arrive
// newest first, so the first like/dislike seen per site is kept.
func (s *TasteProfileService) aggregateEvents(events []*entities.InteractionEvent) (map[int64]float64, map[int64]float64) {
	weights := make(map[int64]float64)
	engagement := make(map[int64]float64)
	explicitSeen := make(map[int64]struct{})

	for _, event := range events {
		var w float64
		switch event.EventType {
		case entities.EventTypeLike, entities.EventTypeDislike:
			if _, ok := explicitSeen[event.SiteID]; ok {
				continue
			}
			explicitSeen[event.SiteID] = struct{}{}
			w = 1.0
			if event.EventType == entities.EventTypeDislike {
				w = -1.0
			}
			if event.Value != nil {
				w *= math.Abs(*event.Value)
			}
		case entities.EventTypeDwell:
			w = s.dwellWeight(event)
			if w > engagement[event.SiteID] {
				engagement[event.SiteID] = w
			}
		case entities.EventTypeView:
			w = s.cfg.ViewEpsilon
			if engagement[event.SiteID] == 0 {
				engagement[event.SiteID] = s.cfg.ViewEpsilon
			}
		default:
			continue
		}
		weights[event.SiteID] += w
	}

	return weights, engagement
}

// dwellWeight ramps linearly with dwell time and saturates at the
// configured cap, so one long session cannot dominate a profile.
func (s *TasteProfileService) dwellWeight(event *entities.InteractionEvent) float64 {
	if event.DwellSeconds == nil {
		return 0
	}
	dwell := *event.DwellSeconds
	if dwell <= 0 {
		return 0
	}
	return math.Min(dwell, s.cfg.DwellSaturationSeconds) / s.cfg.DwellSaturationSeconds
}

// weightedCentroid averages the embeddings of the given sites scaled by
// their weights. Sites without a stored embedding are skipped. Returns nil
// if nothing contributed.
func weightedCentroid(siteIDs []int64, weight map[int64]float64, embeddings map[int64][]float64, dim int) []float64 {
	sort.Slice(siteIDs, func(i, j int) bool { return siteIDs[i] < siteIDs[j] })

	centroid := make([]float64, dim)
	var total float64
	for _, id := range siteIDs {
		emb, ok := embeddings[id]
		if !ok || len(emb) != dim {
			continue
		}
		w := weight[id]
		for i, x := range emb {
			centroid[i] += w * x
		}
		total += w
	}
	if total == 0 {
		return nil
	}
	for i := range centroid {
		centroid[i] /= total
	}
	return centroid
}

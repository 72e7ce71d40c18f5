package services

import (
	"context"

	"github.com/sitelore/backend/internal/application/loaders"
	"github.com/sitelore/backend/internal/domain/providers"
	"github.com/sitelore/backend/internal/infrastructure/observability"
	"github.com/sitelore/backend/pkg/errors"
)

// NarrativeService builds a guided-tour narrative for a set of sites.
type NarrativeService struct {
	provider providers.NarrativeProvider
	sites    *loaders.SiteLoader
	maxSites int
}

// NewNarrativeService creates a new narrative service
func NewNarrativeService(provider providers.NarrativeProvider, sites *loaders.SiteLoader, maxSites int) *NarrativeService {
	if maxSites <= 0 {
		maxSites = 10
	}
	return &NarrativeService{provider: provider, sites: sites, maxSites: maxSites}
}

// Generate hydrates the sites in the order given and asks the narrative
// provider for a connecting text. Unknown ids are skipped; an empty
// resolved set is a validation error.
func (s *NarrativeService) Generate(ctx context.Context, siteIDs []int64) (string, error) {
	ctx, span := observability.StartSpan(ctx, "narrative.generate")
	defer span.End()

	if len(siteIDs) == 0 {
		return "", errors.NewValidationError("site_ids must not be empty")
	}
	if len(siteIDs) > s.maxSites {
		siteIDs = siteIDs[:s.maxSites]
	}

	hydrated := s.sites.LoadMany(ctx, siteIDs)
	resolved := hydrated[:0]
	for _, site := range hydrated {
		if site != nil {
			resolved = append(resolved, site)
		}
	}
	if len(resolved) == 0 {
		return "", errors.NewValidationError("no known sites among site_ids")
	}

	narrative, err := s.provider.GenerateNarrative(ctx, resolved)
	if err != nil {
		observability.RecordError(span, err)
		return "", err
	}
	return narrative, nil
}

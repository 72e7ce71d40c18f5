package loaders

import (
	"context"
	"fmt"
	"time"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/sitelore/backend/internal/domain/entities"
	"github.com/sitelore/backend/internal/domain/repositories"
)

// SiteLoader batches concurrent site lookups into single GetByIDs queries.
// Result hydration after vector search issues one load per candidate, so
// parallel pipelines sharing a loader collapse into few store round trips.
type SiteLoader struct {
	loader *dataloader.Loader[int64, *entities.Site]
}

// NewSiteLoader creates a loader backed by the given site repository.
func NewSiteLoader(siteRepo repositories.SiteRepository) *SiteLoader {
	batchFn := func(ctx context.Context, keys []int64) []*dataloader.Result[*entities.Site] {
		results := make([]*dataloader.Result[*entities.Site], len(keys))
		sites, err := siteRepo.GetByIDs(ctx, keys)

		siteMap := make(map[int64]*entities.Site)
		if err == nil {
			for _, s := range sites {
				siteMap[s.ID] = s
			}
		}

		for i, key := range keys {
			if err != nil {
				results[i] = &dataloader.Result[*entities.Site]{Error: err}
			} else if s, ok := siteMap[key]; ok {
				results[i] = &dataloader.Result[*entities.Site]{Data: s}
			} else {
				results[i] = &dataloader.Result[*entities.Site]{Error: fmt.Errorf("site %d not found", key)}
			}
		}
		return results
	}

	return &SiteLoader{
		loader: dataloader.NewBatchedLoader(
			batchFn,
			dataloader.WithWait[int64, *entities.Site](2*time.Millisecond),
			// The loader lives for the process; an unbounded result
			// cache would grow with the catalogue, so batch only.
			dataloader.WithCache[int64, *entities.Site](&dataloader.NoCache[int64, *entities.Site]{}),
		),
	}
}

// Load fetches one site.
func (l *SiteLoader) Load(ctx context.Context, id int64) (*entities.Site, error) {
	return l.loader.Load(ctx, id)()
}

// LoadMany fetches a batch of sites preserving key order. Missing sites
// yield nil entries rather than failing the whole batch.
func (l *SiteLoader) LoadMany(ctx context.Context, ids []int64) []*entities.Site {
	thunks := make([]func() (*entities.Site, error), len(ids))
	for i, id := range ids {
		thunks[i] = l.loader.Load(ctx, id)
	}

	sites := make([]*entities.Site, len(ids))
	for i, thunk := range thunks {
		site, err := thunk()
		if err != nil {
			sites[i] = nil
			continue
		}
		sites[i] = site
	}
	return sites
}

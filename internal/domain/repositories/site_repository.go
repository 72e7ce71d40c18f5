package repositories

import (
	"context"

	"github.com/sitelore/backend/internal/domain/entities"
)

// SiteFilter holds filtering options for listing sites
type SiteFilter struct {
	Limit  int
	Offset int
}

// SiteRepository defines the site store interface
type SiteRepository interface {
	Create(ctx context.Context, site *entities.Site) error
	GetByID(ctx context.Context, id int64) (*entities.Site, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*entities.Site, error)
	List(ctx context.Context, filter SiteFilter) ([]*entities.Site, error)
}

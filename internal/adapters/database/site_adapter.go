package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
	"github.com/sitelore/backend/internal/domain/entities"
	"github.com/sitelore/backend/internal/domain/repositories"
	"github.com/sitelore/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/sitelore/backend/pkg/errors"
)

// SiteAdapter implements SiteRepository
type SiteAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// Ensure SiteAdapter implements SiteRepository
var _ repositories.SiteRepository = (*SiteAdapter)(nil)

// NewSiteAdapter creates a new site adapter
func NewSiteAdapter(client *postgres.Client) *SiteAdapter {
	return &SiteAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var siteColumns = []interface{}{
	"id", "title", "text", "latitude", "longitude", "metadata", "embedding", "created_at",
}

// Create inserts a site row. Sites are immutable after ingestion; there is
// no update path.
func (a *SiteAdapter) Create(ctx context.Context, site *entities.Site) error {
	metadata, err := json.Marshal(site.Metadata)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal site metadata", err)
	}

	record := goqu.Record{
		"id":         site.ID,
		"title":      site.Title,
		"text":       site.Text,
		"latitude":   site.Location.Latitude,
		"longitude":  site.Location.Longitude,
		"metadata":   metadata,
		"embedding":  pq.Array(site.Embedding),
		"created_at": site.CreatedAt,
	}

	query, args, err := a.db.Insert("sites").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to create site", err)
	}

	return nil
}

// GetByID retrieves a site by ID
func (a *SiteAdapter) GetByID(ctx context.Context, id int64) (*entities.Site, error) {
	query, args, err := a.db.Select(siteColumns...).
		From("sites").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	site, err := scanSite(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("site %d not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get site", err)
	}

	return site, nil
}

// GetByIDs retrieves multiple sites by their IDs
func (a *SiteAdapter) GetByIDs(ctx context.Context, ids []int64) ([]*entities.Site, error) {
	if len(ids) == 0 {
		return []*entities.Site{}, nil
	}

	query, args, err := a.db.Select(siteColumns...).
		From("sites").
		Where(goqu.Ex{"id": ids}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return a.querySites(ctx, query, args...)
}

// List retrieves sites ordered by id
func (a *SiteAdapter) List(ctx context.Context, filter repositories.SiteFilter) ([]*entities.Site, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query, args, err := a.db.Select(siteColumns...).
		From("sites").
		Order(goqu.I("id").Asc()).
		Limit(uint(limit)).
		Offset(uint(filter.Offset)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return a.querySites(ctx, query, args...)
}

func (a *SiteAdapter) querySites(ctx context.Context, query string, args ...interface{}) ([]*entities.Site, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query sites", err)
	}
	defer rows.Close()

	var sites []*entities.Site
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan site", err)
		}
		sites = append(sites, site)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate sites", err)
	}

	return sites, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSite(row rowScanner) (*entities.Site, error) {
	site := &entities.Site{}
	var metadata []byte

	err := row.Scan(
		&site.ID,
		&site.Title,
		&site.Text,
		&site.Location.Latitude,
		&site.Location.Longitude,
		&metadata,
		pq.Array(&site.Embedding),
		&site.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &site.Metadata); err != nil {
			return nil, fmt.Errorf("malformed site metadata: %w", err)
		}
	}

	return site, nil
}

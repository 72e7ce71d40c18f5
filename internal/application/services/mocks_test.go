package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sitelore/backend/internal/domain/entities"
	"github.com/sitelore/backend/internal/domain/repositories"
)

type mockEventRepo struct {
	mock.Mock
}

func (m *mockEventRepo) Create(ctx context.Context, event *entities.InteractionEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockEventRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]*entities.InteractionEvent, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.InteractionEvent), args.Error(1)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *entities.User) (int64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

type mockSearchRepo struct {
	mock.Mock
}

func (m *mockSearchRepo) InitSchema(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockSearchRepo) Index(ctx context.Context, siteID int64, document map[string]interface{}) error {
	args := m.Called(ctx, siteID, document)
	return args.Error(0)
}

func (m *mockSearchRepo) Delete(ctx context.Context, siteID int64) error {
	args := m.Called(ctx, siteID)
	return args.Error(0)
}

func (m *mockSearchRepo) VectorSearch(ctx context.Context, queryVector []float64, geo *repositories.GeoFilter, limit int) ([]repositories.SearchHit, error) {
	args := m.Called(ctx, queryVector, geo, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repositories.SearchHit), args.Error(1)
}

func (m *mockSearchRepo) GeoSearch(ctx context.Context, geo repositories.GeoFilter, limit int) ([]repositories.SearchHit, error) {
	args := m.Called(ctx, geo, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repositories.SearchHit), args.Error(1)
}

func (m *mockSearchRepo) FetchEmbeddings(ctx context.Context, siteIDs []int64) (map[int64][]float64, error) {
	args := m.Called(ctx, siteIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64][]float64), args.Error(1)
}

type mockEmbedder struct {
	mock.Mock
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float64), args.Error(1)
}

func (m *mockEmbedder) Dimensions() int {
	args := m.Called()
	return args.Int(0)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	args := m.Called(ctx, key, value, expirationSeconds)
	return args.Error(0)
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockCache) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

type mockSiteRepo struct {
	mock.Mock
}

func (m *mockSiteRepo) Create(ctx context.Context, site *entities.Site) error {
	args := m.Called(ctx, site)
	return args.Error(0)
}

func (m *mockSiteRepo) GetByID(ctx context.Context, id int64) (*entities.Site, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Site), args.Error(1)
}

func (m *mockSiteRepo) GetByIDs(ctx context.Context, ids []int64) ([]*entities.Site, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Site), args.Error(1)
}

func (m *mockSiteRepo) List(ctx context.Context, filter repositories.SiteFilter) ([]*entities.Site, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Site), args.Error(1)
}

type mockEventBus struct {
	mock.Mock
}

func (m *mockEventBus) Publish(ctx context.Context, channel string, notice *entities.InteractionNotice) error {
	args := m.Called(ctx, channel, notice)
	return args.Error(0)
}

func (m *mockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.InteractionNotice, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(chan *entities.InteractionNotice), args.Error(1)
}

func (m *mockEventBus) Close() error {
	args := m.Called()
	return args.Error(0)
}

type mockAnalyticsRepo struct {
	mock.Mock
}

func (m *mockAnalyticsRepo) Record(ctx context.Context, event *entities.SearchEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/sitelore/backend/internal/application/services"
	"github.com/sitelore/backend/internal/domain/entities"
	"github.com/sitelore/backend/internal/infrastructure/observability"
)

func TestCachedProfile_MissBuildsAndStores(t *testing.T) {
	eventRepo := new(mockEventRepo)
	searchRepo := new(mockSearchRepo)
	cache := new(mockCache)

	eventRepo.On("ListByUser", mock.Anything, int64(1), 500).
		Return([]*entities.InteractionEvent{likeEvent(1, 10, time.Now())}, nil)
	searchRepo.On("FetchEmbeddings", mock.Anything, mock.Anything).
		Return(map[int64][]float64{10: {1, 0, 0}}, nil)

	key := services.TasteProfileCacheKey(1)
	cache.On("Get", mock.Anything, key).Return(nil, errors.New("not found"))
	cache.On("Set", mock.Anything, key, mock.Anything, 300).Return(nil)

	inner := services.NewTasteProfileService(eventRepo, searchRepo, testTasteConfig(), 3)
	svc := services.NewCachedTasteProfileService(inner, cache, 300, nil)

	profile, err := svc.BuildProfile(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, profile.IsPositive(10))
	cache.AssertExpectations(t)
}

func TestCachedProfile_HitSkipsRebuild(t *testing.T) {
	eventRepo := new(mockEventRepo)
	searchRepo := new(mockSearchRepo)
	cache := &memoryCache{store: map[string][]byte{}}

	eventRepo.On("ListByUser", mock.Anything, int64(1), 500).
		Return([]*entities.InteractionEvent{likeEvent(1, 10, time.Now())}, nil).Once()
	searchRepo.On("FetchEmbeddings", mock.Anything, mock.Anything).
		Return(map[int64][]float64{10: {1, 0, 0}}, nil).Once()

	inner := services.NewTasteProfileService(eventRepo, searchRepo, testTasteConfig(), 3)
	svc := services.NewCachedTasteProfileService(inner, cache, 300, nil)

	first, err := svc.BuildProfile(context.Background(), 1)
	require.NoError(t, err)
	second, err := svc.BuildProfile(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, first.SemanticVector, second.SemanticVector)
	assert.True(t, second.IsPositive(10))
	// One build only; the second call was served from cache.
	eventRepo.AssertNumberOfCalls(t, "ListByUser", 1)
}

func TestCachedProfile_CountsHitsAndMisses(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)
	defer otel.SetMeterProvider(prev)

	metrics, err := observability.InitMetrics()
	require.NoError(t, err)

	eventRepo := new(mockEventRepo)
	searchRepo := new(mockSearchRepo)
	cache := &memoryCache{store: map[string][]byte{}}

	eventRepo.On("ListByUser", mock.Anything, int64(1), 500).
		Return([]*entities.InteractionEvent{likeEvent(1, 10, time.Now())}, nil).Once()
	searchRepo.On("FetchEmbeddings", mock.Anything, mock.Anything).
		Return(map[int64][]float64{10: {1, 0, 0}}, nil).Once()

	inner := services.NewTasteProfileService(eventRepo, searchRepo, testTasteConfig(), 3)
	svc := services.NewCachedTasteProfileService(inner, cache, 300, metrics)

	ctx := context.Background()
	_, err = svc.BuildProfile(ctx, 1)
	require.NoError(t, err)
	_, err = svc.BuildProfile(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, int64(1), counterValue(t, reader, "cache.miss.count"))
	assert.Equal(t, int64(1), counterValue(t, reader, "cache.hit.count"))
}

func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var total int64
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestTasteProfileCacheKey(t *testing.T) {
	assert.Equal(t, "taste_profile:42", services.TasteProfileCacheKey(42))
}

// memoryCache is a real in-process cache for tests that need hit/miss
// behavior across calls.
type memoryCache struct {
	mu    sync.Mutex
	store map[string][]byte
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.store[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return v, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = value
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

func (c *memoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.store[key]
	return ok, nil
}

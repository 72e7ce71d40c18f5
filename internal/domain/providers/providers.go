package providers

import (
	"context"

	"github.com/sitelore/backend/internal/domain/entities"
)

// EmbeddingProvider maps free text into the site embedding space. Fails on
// empty text or when the embedding service is unavailable.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	Dimensions() int
}

// NarrativeProvider turns an ordered set of sites into a guided narrative.
// Its internal mechanics are an external text-generation concern.
type NarrativeProvider interface {
	GenerateNarrative(ctx context.Context, sites []*entities.Site) (string, error)
}

// CacheProvider defines the cache interface
type CacheProvider interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// EventChannelInteractions is the bus channel carrying interaction notices.
const EventChannelInteractions = "interactions"

// EventBus publishes and subscribes to interaction notices.
type EventBus interface {
	Publish(ctx context.Context, channel string, notice *entities.InteractionNotice) error
	Subscribe(ctx context.Context, channel string) (<-chan *entities.InteractionNotice, error)
	Close() error
}

package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/sitelore/backend/internal/adapters/database"
	"github.com/sitelore/backend/internal/adapters/search"
	"github.com/sitelore/backend/internal/domain/entities"
	"github.com/sitelore/backend/internal/domain/providers"
	"github.com/sitelore/backend/internal/infrastructure/clients/openai"
	"github.com/sitelore/backend/internal/infrastructure/clients/postgres"
	"github.com/sitelore/backend/internal/infrastructure/clients/typesense"
	"github.com/sitelore/backend/pkg/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	metadata JSONB NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sites (
	id BIGINT PRIMARY KEY,
	title TEXT NOT NULL,
	text TEXT NOT NULL DEFAULT '',
	latitude DOUBLE PRECISION NOT NULL,
	longitude DOUBLE PRECISION NOT NULL,
	metadata JSONB NOT NULL DEFAULT '{}',
	embedding DOUBLE PRECISION[],
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS interaction_events (
	id UUID PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id),
	site_id BIGINT NOT NULL,
	event_type TEXT NOT NULL,
	dwell_seconds DOUBLE PRECISION,
	value DOUBLE PRECISION,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_interaction_events_user_created
	ON interaction_events (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS search_analytics (
	id UUID PRIMARY KEY,
	mode TEXT NOT NULL,
	query TEXT NOT NULL DEFAULT '',
	user_id BIGINT,
	result_count INT NOT NULL,
	latency_ms INT NOT NULL,
	latitude DOUBLE PRECISION,
	longitude DOUBLE PRECISION,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				interaction_events,
				search_analytics,
				sites,
				users
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Printf("Warning: failed to reset tables (may not exist yet): %v", err)
		}
	}

	if _, err := pgClient.DB().ExecContext(ctx, schema); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}

	var searchRepo *search.TypesenseAdapter
	if tsClient, err := typesense.NewClient(&cfg.Typesense); err == nil {
		searchRepo = search.NewTypesenseAdapter(tsClient, cfg.OpenAI.EmbeddingDim)
		if err := searchRepo.InitSchema(ctx); err != nil {
			log.Printf("Warning: failed to init Typesense schema: %v", err)
		}
	}

	var embedder providers.EmbeddingProvider
	if cfg.OpenAI.APIKey != "" {
		if client, err := openai.NewClient(&cfg.OpenAI); err == nil {
			embedder = client
		}
	}

	siteRepo := database.NewSiteAdapter(pgClient)
	userRepo := database.NewUserAdapter(pgClient)
	eventRepo := database.NewEventAdapter(pgClient)

	// Heritage sites around the Isenhagener Land.
	sites := []*entities.Site{
		{ID: 1, Title: "Isenhagen Abbey", Text: "A former Cistercian nunnery founded in the 13th century, with a preserved cloister and medieval altarpieces.", Location: entities.Location{Latitude: 52.7265, Longitude: 10.5419}, Metadata: map[string]string{"kind": "monastery", "era": "medieval"}},
		{ID: 2, Title: "Hankensbüttel Otter Centre", Text: "A nature education centre on the Isenhagener See devoted to otters and native mustelids.", Location: entities.Location{Latitude: 52.7579, Longitude: 10.5990}, Metadata: map[string]string{"kind": "museum", "era": "modern"}},
		{ID: 3, Title: "Celle Castle", Text: "A four-winged residential palace of the dukes of Brunswick-Lüneburg, mixing Renaissance and Baroque state rooms.", Location: entities.Location{Latitude: 52.6244, Longitude: 10.0805}, Metadata: map[string]string{"kind": "castle", "era": "renaissance"}},
		{ID: 4, Title: "Hünengrab of Betzhorn", Text: "A Neolithic megalithic tomb of the Funnelbeaker culture, set in heathland east of Gifhorn.", Location: entities.Location{Latitude: 52.5910, Longitude: 10.6770}, Metadata: map[string]string{"kind": "megalith", "era": "neolithic"}},
		{ID: 5, Title: "Gifhorn Mill Museum", Text: "An open-air museum collecting historic wind and water mills from across Europe.", Location: entities.Location{Latitude: 52.4886, Longitude: 10.5446}, Metadata: map[string]string{"kind": "museum", "era": "modern"}},
	}

	for _, s := range sites {
		s.CreatedAt = time.Now().UTC()
		if embedder != nil {
			emb, err := embedder.Embed(ctx, s.Title+"\n"+s.Text)
			if err != nil {
				log.Printf("Warning: failed to embed site %d: %v", s.ID, err)
			} else {
				s.Embedding = emb
			}
		}
		if err := siteRepo.Create(ctx, s); err != nil {
			log.Printf("Failed to create site %s: %v", s.Title, err)
			continue
		}
		if searchRepo != nil && len(s.Embedding) > 0 {
			doc := map[string]interface{}{
				"title":      s.Title,
				"embedding":  s.Embedding,
				"location":   []float64{s.Location.Latitude, s.Location.Longitude},
				"created_at": s.CreatedAt.Unix(),
			}
			if err := searchRepo.Index(ctx, s.ID, doc); err != nil {
				log.Printf("Failed to index site %s: %v", s.Title, err)
			}
		}
	}

	userID, err := userRepo.Create(ctx, &entities.User{Name: "demo", Metadata: map[string]string{"seed": "true"}})
	if err != nil {
		log.Fatalf("Failed to create demo user: %v", err)
	}

	dwell := 90.0
	events := []*entities.InteractionEvent{
		{UserID: userID, SiteID: 1, EventType: entities.EventTypeLike},
		{UserID: userID, SiteID: 3, EventType: entities.EventTypeLike},
		{UserID: userID, SiteID: 4, EventType: entities.EventTypeDwell, DwellSeconds: &dwell},
		{UserID: userID, SiteID: 5, EventType: entities.EventTypeDislike},
		{UserID: userID, SiteID: 2, EventType: entities.EventTypeView},
	}
	for _, e := range events {
		if err := eventRepo.Create(ctx, e); err != nil {
			log.Printf("Failed to create event for site %d: %v", e.SiteID, err)
		}
	}

	log.Printf("Seeded %d sites and a demo user (id=%d) with %d events", len(sites), userID, len(events))
}

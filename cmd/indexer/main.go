package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sitelore/backend/internal/adapters/database"
	"github.com/sitelore/backend/internal/adapters/search"
	"github.com/sitelore/backend/internal/domain/entities"
	"github.com/sitelore/backend/internal/domain/providers"
	"github.com/sitelore/backend/internal/domain/repositories"
	"github.com/sitelore/backend/internal/infrastructure/clients/openai"
	"github.com/sitelore/backend/internal/infrastructure/clients/postgres"
	"github.com/sitelore/backend/internal/infrastructure/clients/typesense"
	"github.com/sitelore/backend/pkg/config"
)

const pageSize = 200

func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "delete the existing Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	var err error
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatalf("Invalid interval %q: %v", intervalValue, err)
		}
		if interval <= 0 {
			log.Fatalf("Interval must be greater than zero")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, reset); err != nil {
			log.Printf("Reindex failed: %v", err)
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Printf("Reindex complete. Next run in %s.", interval)

		select {
		case <-ctx.Done():
			log.Println("Indexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, reset bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	siteRepo := database.NewSiteAdapter(pgClient)

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}

	if reset || os.Getenv("RESET_TYPESENSE") == "true" {
		log.Println("Deleting sites collection before reindex")
		if _, err := tsClient.Client().Collection(typesense.SitesCollection).Delete(ctx); err != nil {
			log.Printf("Warning: failed to delete collection: %v", err)
		}
	}

	adapter := search.NewTypesenseAdapter(tsClient, cfg.OpenAI.EmbeddingDim)
	if err := adapter.InitSchema(ctx); err != nil {
		return err
	}

	// Sites without a stored embedding get one computed on the fly when
	// an API key is configured; otherwise they are skipped.
	var embedder providers.EmbeddingProvider
	if cfg.OpenAI.APIKey != "" {
		client, err := openai.NewClient(&cfg.OpenAI)
		if err != nil {
			log.Printf("Warning: failed to initialize OpenAI client: %v", err)
		} else {
			embedder = client
		}
	}

	indexed, skipped := 0, 0
	for offset := 0; ; offset += pageSize {
		sites, err := siteRepo.List(ctx, repositories.SiteFilter{Limit: pageSize, Offset: offset})
		if err != nil {
			return err
		}
		if len(sites) == 0 {
			break
		}

		for _, site := range sites {
			embedding := site.Embedding
			if len(embedding) == 0 {
				if embedder == nil {
					skipped++
					continue
				}
				embedding, err = embedder.Embed(ctx, embeddingText(site))
				if err != nil {
					log.Printf("Warning: failed to embed site %d: %v", site.ID, err)
					skipped++
					continue
				}
			}

			doc := map[string]interface{}{
				"title":      site.Title,
				"embedding":  embedding,
				"location":   []float64{site.Location.Latitude, site.Location.Longitude},
				"created_at": site.CreatedAt.Unix(),
			}
			if err := adapter.Index(ctx, site.ID, doc); err != nil {
				log.Printf("Warning: failed to index site %d: %v", site.ID, err)
				skipped++
				continue
			}
			indexed++
		}
	}

	log.Printf("Indexed %d sites, skipped %d", indexed, skipped)
	return nil
}

// embeddingText is the canonical text a site is embedded from: title plus
// description, matching what search queries are embedded against.
func embeddingText(site *entities.Site) string {
	if site.Text == "" {
		return site.Title
	}
	return site.Title + "\n" + site.Text
}

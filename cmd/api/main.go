package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sitelore/backend/internal/adapters/cache"
	"github.com/sitelore/backend/internal/adapters/database"
	"github.com/sitelore/backend/internal/adapters/events"
	"github.com/sitelore/backend/internal/adapters/search"
	"github.com/sitelore/backend/internal/api/handlers"
	"github.com/sitelore/backend/internal/api/routes"
	"github.com/sitelore/backend/internal/application/loaders"
	"github.com/sitelore/backend/internal/application/services"
	"github.com/sitelore/backend/internal/domain/providers"
	"github.com/sitelore/backend/internal/domain/repositories"
	"github.com/sitelore/backend/internal/infrastructure/clients/openai"
	"github.com/sitelore/backend/internal/infrastructure/clients/postgres"
	"github.com/sitelore/backend/internal/infrastructure/clients/redis"
	"github.com/sitelore/backend/internal/infrastructure/clients/typesense"
	"github.com/sitelore/backend/internal/infrastructure/observability"
	"github.com/sitelore/backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	observability.InitLogger("sitelore-api", os.Getenv("ENV"))

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Postgres is required; the API cannot serve without its stores.
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()
	log.Println("PostgreSQL client initialized successfully")

	// Redis is optional; without it the API runs uncached.
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
	} else {
		defer redisClient.Close()
		log.Println("Redis client initialized successfully")
	}

	// Typesense holds the vector index; without it only ingestion and
	// debug endpoints work.
	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Printf("Warning: Failed to initialize Typesense client: %v", err)
	} else {
		log.Println("Typesense client initialized successfully")
	}

	// Adapters
	siteAdapter := database.NewSiteAdapter(pgClient)
	eventAdapter := database.NewEventAdapter(pgClient)
	userAdapter := database.NewUserAdapter(pgClient)
	analyticsAdapter := database.NewSearchAnalyticsAdapter(pgClient)

	var searchRepo repositories.SiteSearchRepository
	if typesenseClient != nil {
		adapter := search.NewTypesenseAdapter(typesenseClient, cfg.OpenAI.EmbeddingDim)
		if err := adapter.InitSchema(context.Background()); err != nil {
			log.Printf("Warning: Failed to init Typesense schema: %v", err)
		}
		searchRepo = adapter
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		log.Println("Event bus initialized successfully")
	} else {
		log.Println("Event bus disabled (Redis not available)")
	}

	// The OpenAI client serves both embeddings and narratives.
	var embedder providers.EmbeddingProvider
	var narrator providers.NarrativeProvider
	if cfg.OpenAI.APIKey == "" {
		log.Println("Warning: OPENAI_API_KEY is not set; text search and narratives disabled")
	} else {
		openaiClient, err := openai.NewClient(&cfg.OpenAI)
		if err != nil {
			log.Printf("Warning: Failed to initialize OpenAI client: %v", err)
		} else {
			embedder = openaiClient
			narrator = openaiClient
		}
	}

	// Services
	siteLoader := loaders.NewSiteLoader(siteAdapter)

	var profileProvider services.TasteProfileProvider
	profileProvider = services.NewTasteProfileService(eventAdapter, searchRepo, cfg.Taste, cfg.OpenAI.EmbeddingDim)
	if cacheProvider != nil {
		profileProvider = services.NewCachedTasteProfileService(profileProvider, cacheProvider, cfg.Taste.ProfileCacheTTLSeconds, metrics)
		log.Println("Taste profiles served through Redis cache")
	} else {
		log.Println("Taste profiles rebuilt per request (Redis unavailable)")
	}

	searchService := services.NewSearchService(
		services.NewRetrievalService(searchRepo, embedder, cfg.Search.OverFetchFactor),
		services.NewRerankService(cfg.Search),
		services.NewDiversityService(cfg.Search.Lambda),
		profileProvider,
		siteLoader,
		services.NewSearchAnalyticsService(analyticsAdapter),
		metrics,
		cfg.Search.TopK,
	)

	interactionService := services.NewInteractionService(eventAdapter, userAdapter, eventBus)

	if cacheProvider != nil && eventBus != nil {
		invalidation := services.NewCacheInvalidationService(eventBus, cacheProvider)
		if err := invalidation.Start(ctx); err != nil {
			log.Printf("Warning: Failed to start cache invalidation service: %v", err)
		} else {
			log.Println("Cache invalidation service started successfully")
		}
	}

	// Handlers
	searchHandler := handlers.NewSearchHandler(searchService)
	interactionHandler := handlers.NewInteractionHandler(interactionService)
	debugHandler := handlers.NewDebugHandler(interactionService, profileProvider, siteLoader)

	var narrativeHandler *handlers.NarrativeHandler
	if narrator != nil {
		narrativeService := services.NewNarrativeService(narrator, siteLoader, cfg.Search.TopK)
		narrativeHandler = handlers.NewNarrativeHandler(narrativeService)
	}

	router := routes.NewRouter(searchHandler, narrativeHandler, interactionHandler, debugHandler, metrics)
	handler := router.SetupRoutes()

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Printf("Error closing event bus: %v", err)
		}
	}

	log.Println("Server stopped")
}

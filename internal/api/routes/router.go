package routes

import (
	"net/http"

	"github.com/sitelore/backend/internal/api/handlers"
	"github.com/sitelore/backend/internal/api/middleware"
	"github.com/sitelore/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	searchHandler      *handlers.SearchHandler
	narrativeHandler   *handlers.NarrativeHandler
	interactionHandler *handlers.InteractionHandler
	debugHandler       *handlers.DebugHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	searchHandler *handlers.SearchHandler,
	narrativeHandler *handlers.NarrativeHandler,
	interactionHandler *handlers.InteractionHandler,
	debugHandler *handlers.DebugHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:                http.NewServeMux(),
		searchHandler:      searchHandler,
		narrativeHandler:   narrativeHandler,
		interactionHandler: interactionHandler,
		debugHandler:       debugHandler,
		metrics:            metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /", func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/" {
			http.NotFound(w, req)
			return
		}
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Search endpoints
	r.mux.HandleFunc("GET /api/search", r.searchHandler.SearchText)
	r.mux.HandleFunc("GET /api/search/geo", r.searchHandler.SearchGeo)
	r.mux.HandleFunc("GET /api/search/user", r.searchHandler.SearchPersonalized)

	// Narrative endpoint
	if r.narrativeHandler != nil {
		r.mux.HandleFunc("POST /api/narrative", r.narrativeHandler.Generate)
	}

	// Ingestion endpoints
	r.mux.HandleFunc("POST /db/users", r.interactionHandler.CreateUser)
	r.mux.HandleFunc("POST /db/events", r.interactionHandler.CreateEvent)

	// Debug endpoints
	r.mux.HandleFunc("GET /debug/user_info", r.debugHandler.UserInfo)
	r.mux.HandleFunc("GET /debug/site_info", r.debugHandler.SiteInfo)

	// Middleware applies in reverse order; CORS is outermost so every
	// response carries the headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}

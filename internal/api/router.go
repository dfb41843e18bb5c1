package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"phishguard-lab/internal/api/handlers"
	apimiddleware "phishguard-lab/internal/api/middleware"
	"phishguard-lab/internal/config"
	"phishguard-lab/internal/infrastructure/cache"
	"phishguard-lab/pkg/logger"
)

// Router holds dependencies for the API router
type Router struct {
	config   config.Config
	handlers *handlers.Handlers
	cache    *cache.RedisCache
	logger   *logger.Logger
}

// NewRouter creates a new Router instance
func NewRouter(cfg config.Config, h *handlers.Handlers, c *cache.RedisCache, log *logger.Logger) *Router {
	return &Router{
		config:   cfg,
		handlers: h,
		cache:    c,
		logger:   log.WithComponent("router"),
	}
}

// Setup sets up the Chi router with all routes and middleware
func (r *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Core middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(apimiddleware.Logger(r.logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(30 * time.Second))

	// CORS
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.config.CORS.AllowedOrigins,
		AllowedMethods:   r.config.CORS.AllowedMethods,
		AllowedHeaders:   r.config.CORS.AllowedHeaders,
		AllowCredentials: r.config.CORS.AllowCredentials,
		MaxAge:           r.config.CORS.MaxAge,
	}))

	// Rate limiting
	if r.config.RateLimit.Enabled && r.cache != nil {
		router.Use(apimiddleware.RateLimiter(r.cache, r.config.RateLimit))
	}

	// Health checks
	router.Get("/health", r.handlers.Health.Check)
	router.Get("/ready", r.handlers.Health.Ready)

	// API v1 routes
	router.Route("/api/v1", func(api chi.Router) {
		// Risk analysis endpoints
		api.Route("/analyze", func(analyze chi.Router) {
			analyze.Post("/url", r.handlers.Analysis.AnalyzeURL)
			analyze.Post("/link", r.handlers.Analysis.AnalyzeLink)
			analyze.Post("/content", r.handlers.Analysis.AnalyzeContent)
			analyze.Post("/page", r.handlers.Analysis.AnalyzePage)
		})

		// Whitelist management
		api.Route("/whitelist", func(wl chi.Router) {
			wl.Get("/", r.handlers.Whitelist.List)
			wl.Post("/", r.handlers.Whitelist.Add)
			wl.Delete("/{domain}", r.handlers.Whitelist.Remove)
		})

		// Scan history and user reports
		api.Get("/history", r.handlers.History.List)
		api.Post("/history", r.handlers.History.Add)
		api.Post("/report", r.handlers.History.Report)

		// Pattern rule management
		api.Route("/patterns", func(patterns chi.Router) {
			patterns.Get("/", r.handlers.Patterns.List)
			patterns.Post("/", r.handlers.Patterns.Add)
		})

		// Feature flags
		api.Route("/features", func(features chi.Router) {
			features.Get("/", r.handlers.Features.Get)
			features.Put("/", r.handlers.Features.Update)
		})
	})

	return router
}

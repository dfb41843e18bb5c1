package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"phishguard-lab/internal/api"
	"phishguard-lab/internal/api/handlers"
	"phishguard-lab/internal/config"
	"phishguard-lab/internal/domain/models"
	"phishguard-lab/internal/domain/services"
	"phishguard-lab/internal/infrastructure/cache"
	"phishguard-lab/internal/infrastructure/database"
	"phishguard-lab/internal/store"
	"phishguard-lab/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	var log *logger.Logger
	if cfg.App.Environment == "production" {
		log = logger.NewProduction()
	} else {
		log = logger.NewDevelopment()
	}
	logger.SetGlobal(log)

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("starting PhishGuard Lab")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize infrastructure
	db, redisCache := initInfrastructure(ctx, cfg, log)
	defer func() {
		if db != nil {
			db.Close()
		}
		if redisCache != nil {
			redisCache.Close()
		}
	}()

	// Select the store backend: PostgreSQL if connected, Redis next,
	// in-memory as the fallback for development
	st := initStore(ctx, cfg, db, redisCache, log)

	// Initialize services
	catalog := services.NewCatalog()
	loadStoredPatterns(ctx, st, catalog, log)

	age := services.NewSimulatedAgeProvider(cfg.Analysis.AgeProviderSeed)
	analyzer := services.NewAnalyzer(catalog, st, age, cfg.Analysis.LinkCacheCapacity, log)
	extractor := services.NewFeatureExtractor(catalog)
	log.Info().
		Int("link_cache_capacity", cfg.Analysis.LinkCacheCapacity).
		Msg("analysis engine initialized")

	// Initialize handlers
	deps := handlers.Dependencies{
		Analyzer:  analyzer,
		Extractor: extractor,
		Catalog:   catalog,
		Store:     st,
		Cache:     redisCache,
		Logger:    log,
	}
	h := handlers.NewHandlers(deps)

	// Create router
	router := api.NewRouter(*cfg, h, redisCache, log)
	httpHandler := router.Setup()

	// Start HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:      httpHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().
			Str("addr", httpServer.Addr).
			Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")

	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("shutdown complete")
}

// initInfrastructure initializes database and cache connections
func initInfrastructure(ctx context.Context, cfg *config.Config, log *logger.Logger) (*database.PostgresDB, *cache.RedisCache) {
	var db *database.PostgresDB
	if cfg.Database.Enabled {
		var err error
		db, err = database.NewPostgres(ctx, cfg.Database, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to PostgreSQL, continuing without database")
			db = nil
		}
	}

	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		var err error
		redisCache, err = cache.NewRedis(ctx, cfg.Redis, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without cache")
			redisCache = nil
		}
	}

	return db, redisCache
}

// initStore picks the store backend from the available infrastructure
func initStore(ctx context.Context, cfg *config.Config, db *database.PostgresDB, redisCache *cache.RedisCache, log *logger.Logger) store.Store {
	flags := models.FeatureFlags{
		URLAnalysis:     cfg.Features.URLAnalysis,
		ContentAnalysis: cfg.Features.ContentAnalysis,
		BrandProtection: cfg.Features.BrandProtection,
		RealTimeAlerts:  cfg.Features.RealTimeAlerts,
	}
	opts := store.Options{
		HistoryCapacity: cfg.Analysis.HistoryCapacity,
		DefaultFlags:    &flags,
	}

	if db != nil {
		pg := store.NewPostgresStore(db.Pool(), opts, log)
		if err := pg.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to run store migrations")
		}
		log.Info().Msg("using PostgreSQL store")
		return pg
	}

	if redisCache != nil {
		log.Info().Msg("using Redis store")
		return store.NewRedisStore(redisCache, opts, log)
	}

	log.Warn().Msg("no persistent backend available, using in-memory store")
	return store.NewMemoryStore(opts)
}

// loadStoredPatterns merges persisted pattern rules into the catalog
func loadStoredPatterns(ctx context.Context, st store.Store, catalog *services.Catalog, log *logger.Logger) {
	rules, err := st.Patterns(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load stored patterns, using defaults")
		return
	}

	loaded := 0
	for _, rule := range rules {
		if err := catalog.AddRule(rule); err != nil {
			log.Warn().Str("pattern", rule.Pattern).Err(err).Msg("skipping invalid stored pattern")
			continue
		}
		loaded++
	}

	if loaded > 0 {
		log.Info().Int("count", loaded).Msg("loaded stored pattern rules")
	}
}

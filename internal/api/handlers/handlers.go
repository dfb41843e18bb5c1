package handlers

import (
	"encoding/json"
	"net/http"

	"phishguard-lab/internal/domain/services"
	"phishguard-lab/internal/infrastructure/cache"
	"phishguard-lab/internal/store"
	"phishguard-lab/pkg/logger"
)

// Handlers holds all API handlers
type Handlers struct {
	Health    *HealthHandler
	Analysis  *AnalysisHandler
	Whitelist *WhitelistHandler
	History   *HistoryHandler
	Patterns  *PatternsHandler
	Features  *FeaturesHandler
}

// Dependencies holds dependencies for handlers
type Dependencies struct {
	Analyzer  *services.Analyzer
	Extractor *services.FeatureExtractor
	Catalog   *services.Catalog
	Store     store.Store
	Cache     *cache.RedisCache
	Logger    *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(deps.Cache, deps.Store, deps.Logger),
		Analysis:  NewAnalysisHandler(deps.Analyzer, deps.Extractor, deps.Store, deps.Logger),
		Whitelist: NewWhitelistHandler(deps.Store, deps.Logger),
		History:   NewHistoryHandler(deps.Store, deps.Logger),
		Patterns:  NewPatternsHandler(deps.Catalog, deps.Store, deps.Logger),
		Features:  NewFeaturesHandler(deps.Store, deps.Logger),
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

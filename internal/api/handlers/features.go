package handlers

import (
	"encoding/json"
	"net/http"

	"phishguard-lab/internal/domain/models"
	"phishguard-lab/internal/store"
	"phishguard-lab/pkg/logger"
)

// FeaturesHandler handles feature flag requests
type FeaturesHandler struct {
	store  store.Store
	logger *logger.Logger
}

// NewFeaturesHandler creates a new features handler
func NewFeaturesHandler(st store.Store, log *logger.Logger) *FeaturesHandler {
	return &FeaturesHandler{
		store:  st,
		logger: log.WithComponent("features-handler"),
	}
}

// Get handles GET /api/v1/features
func (h *FeaturesHandler) Get(w http.ResponseWriter, r *http.Request) {
	flags, err := h.store.Features(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to get feature flags")
		respondError(w, http.StatusInternalServerError, "failed to get feature flags")
		return
	}

	respondJSON(w, http.StatusOK, flags)
}

// Update handles PUT /api/v1/features
func (h *FeaturesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var flags models.FeatureFlags
	if err := json.NewDecoder(r.Body).Decode(&flags); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.store.SetFeatures(r.Context(), flags); err != nil {
		h.logger.Error().Err(err).Msg("failed to update feature flags")
		respondError(w, http.StatusInternalServerError, "failed to update feature flags")
		return
	}

	h.logger.Info().
		Bool("url_analysis", flags.URLAnalysis).
		Bool("content_analysis", flags.ContentAnalysis).
		Bool("brand_protection", flags.BrandProtection).
		Bool("real_time_alerts", flags.RealTimeAlerts).
		Msg("feature flags updated")

	respondJSON(w, http.StatusOK, flags)
}

package handlers

import (
	"encoding/json"
	"net/http"

	"phishguard-lab/internal/domain/models"
	"phishguard-lab/internal/domain/services"
	"phishguard-lab/internal/store"
	"phishguard-lab/pkg/logger"
)

// PatternsHandler handles pattern rule management requests
type PatternsHandler struct {
	catalog *services.Catalog
	store   store.Store
	logger  *logger.Logger
}

// NewPatternsHandler creates a new patterns handler
func NewPatternsHandler(catalog *services.Catalog, st store.Store, log *logger.Logger) *PatternsHandler {
	return &PatternsHandler{
		catalog: catalog,
		store:   st,
		logger:  log.WithComponent("patterns-handler"),
	}
}

// List handles GET /api/v1/patterns
func (h *PatternsHandler) List(w http.ResponseWriter, r *http.Request) {
	compiled := h.catalog.Rules()
	rules := make([]models.PatternRule, 0, len(compiled))
	for _, c := range compiled {
		rules = append(rules, c.Rule())
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"rules": rules,
		"count": len(rules),
	})
}

// Add handles POST /api/v1/patterns
func (h *PatternsHandler) Add(w http.ResponseWriter, r *http.Request) {
	var rule models.PatternRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if rule.Pattern == "" {
		respondError(w, http.StatusBadRequest, "pattern is required")
		return
	}
	if rule.Score <= 0 || rule.Score > 1 {
		respondError(w, http.StatusBadRequest, "score must be in (0, 1]")
		return
	}

	if err := h.catalog.AddRule(rule); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.AddPattern(r.Context(), rule); err != nil {
		h.logger.Error().Err(err).Str("pattern", rule.Pattern).Msg("failed to persist pattern")
		respondError(w, http.StatusInternalServerError, "failed to persist pattern")
		return
	}

	h.logger.Info().Str("pattern", rule.Pattern).Float64("score", rule.Score).Msg("pattern added")

	respondJSON(w, http.StatusCreated, rule)
}

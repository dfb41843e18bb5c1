package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"phishguard-lab/internal/domain/models"
	"phishguard-lab/internal/store"
	"phishguard-lab/pkg/logger"
)

// WhitelistHandler handles whitelist management requests
type WhitelistHandler struct {
	store  store.Store
	logger *logger.Logger
}

// NewWhitelistHandler creates a new whitelist handler
func NewWhitelistHandler(st store.Store, log *logger.Logger) *WhitelistHandler {
	return &WhitelistHandler{
		store:  st,
		logger: log.WithComponent("whitelist-handler"),
	}
}

// List handles GET /api/v1/whitelist
func (h *WhitelistHandler) List(w http.ResponseWriter, r *http.Request) {
	domains, err := h.store.Whitelist(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to get whitelist")
		respondError(w, http.StatusInternalServerError, "failed to get whitelist")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"domains": domains,
		"count":   len(domains),
	})
}

// Add handles POST /api/v1/whitelist
func (h *WhitelistHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req models.WhitelistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	domain := strings.ToLower(strings.TrimSpace(req.Domain))
	if domain == "" {
		respondError(w, http.StatusBadRequest, "domain is required")
		return
	}

	added, err := h.store.AddToWhitelist(r.Context(), domain)
	if err != nil {
		h.logger.Error().Err(err).Str("domain", domain).Msg("failed to add to whitelist")
		respondError(w, http.StatusInternalServerError, "failed to add to whitelist")
		return
	}

	h.logger.Info().Str("domain", domain).Bool("added", added).Msg("whitelist add")

	status := http.StatusCreated
	if !added {
		status = http.StatusOK
	}
	respondJSON(w, status, map[string]interface{}{
		"domain": domain,
		"added":  added,
	})
}

// Remove handles DELETE /api/v1/whitelist/{domain}
func (h *WhitelistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	domain := strings.ToLower(chi.URLParam(r, "domain"))
	if domain == "" {
		respondError(w, http.StatusBadRequest, "domain is required")
		return
	}

	if err := h.store.RemoveFromWhitelist(r.Context(), domain); err != nil {
		h.logger.Error().Err(err).Str("domain", domain).Msg("failed to remove from whitelist")
		respondError(w, http.StatusInternalServerError, "failed to remove from whitelist")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"phishguard-lab/internal/domain/models"
	"phishguard-lab/internal/store"
	"phishguard-lab/pkg/logger"
)

// HistoryHandler handles scan history and user report requests
type HistoryHandler struct {
	store  store.Store
	logger *logger.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(st store.Store, log *logger.Logger) *HistoryHandler {
	return &HistoryHandler{
		store:  st,
		logger: log.WithComponent("history-handler"),
	}
}

// List handles GET /api/v1/history
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.History(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to get scan history")
		respondError(w, http.StatusInternalServerError, "failed to get scan history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
		"count":   len(records),
	})
}

// Add handles POST /api/v1/history, persisting a scan record produced
// by one of the analysis surfaces
func (h *HistoryHandler) Add(w http.ResponseWriter, r *http.Request) {
	var rec models.ScanRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if rec.URL == "" || rec.Domain == "" {
		respondError(w, http.StatusBadRequest, "url and domain are required")
		return
	}

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	if err := h.store.AppendHistory(r.Context(), rec); err != nil {
		h.logger.Error().Err(err).Str("url", rec.URL).Msg("failed to record scan history")
		respondError(w, http.StatusInternalServerError, "failed to record scan history")
		return
	}

	respondJSON(w, http.StatusCreated, rec)
}

// Report handles POST /api/v1/report. Reported sites are logged as
// high-risk scan records so they surface at the top of the history.
func (h *HistoryHandler) Report(w http.ResponseWriter, r *http.Request) {
	var req models.ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.URL == "" {
		respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	parsed, err := url.Parse(req.URL)
	if err != nil || parsed.Hostname() == "" {
		respondError(w, http.StatusBadRequest, "invalid url")
		return
	}

	rec := models.ScanRecord{
		ID:          uuid.New(),
		URL:         req.URL,
		Domain:      strings.ToLower(parsed.Hostname()),
		RiskLevel:   models.RiskLevelHigh,
		RiskScore:   1.0,
		Timestamp:   time.Now().UTC(),
		RiskFactors: []string{"User reported as suspicious"},
		Reported:    true,
	}

	if err := h.store.AppendHistory(r.Context(), rec); err != nil {
		h.logger.Error().Err(err).Str("url", req.URL).Msg("failed to record site report")
		respondError(w, http.StatusInternalServerError, "failed to record site report")
		return
	}

	h.logger.Info().Str("url", req.URL).Str("domain", rec.Domain).Msg("site report received")

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "received",
		"message": "Thank you for your report. It will be reviewed.",
	})
}

package handlers

import (
	"encoding/json"
	"net/http"

	"phishguard-lab/internal/domain/models"
	"phishguard-lab/internal/domain/services"
	"phishguard-lab/internal/store"
	"phishguard-lab/pkg/logger"
)

// AnalysisHandler handles the risk analysis API requests
type AnalysisHandler struct {
	analyzer  *services.Analyzer
	extractor *services.FeatureExtractor
	store     store.Store
	logger    *logger.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analyzer *services.Analyzer, extractor *services.FeatureExtractor, st store.Store, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer:  analyzer,
		extractor: extractor,
		store:     st,
		logger:    log.WithComponent("analysis-handler"),
	}
}

func (h *AnalysisHandler) flags(r *http.Request) models.FeatureFlags {
	flags, err := h.store.Features(r.Context())
	if err != nil {
		h.logger.Warn().Err(err).Msg("feature flags unavailable, using defaults")
		return models.DefaultFeatureFlags()
	}
	return flags
}

// AnalyzeURL handles POST /api/v1/analyze/url
func (h *AnalysisHandler) AnalyzeURL(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.URL == "" {
		respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	if !h.flags(r).URLAnalysis {
		respondError(w, http.StatusForbidden, "url analysis is disabled")
		return
	}

	assessment, err := h.analyzer.AnalyzeURL(r.Context(), req.URL)
	if err != nil {
		h.logger.Error().Err(err).Str("url", req.URL).Msg("failed to analyze URL")
		respondError(w, http.StatusInternalServerError, "failed to analyze URL")
		return
	}

	// Only medium and high risk scans go into the history log
	if assessment.RiskLevel == models.RiskLevelMedium || assessment.RiskLevel == models.RiskLevelHigh {
		if err := h.store.AppendHistory(r.Context(), models.NewScanRecord(assessment)); err != nil {
			h.logger.Warn().Err(err).Str("url", req.URL).Msg("failed to record scan history")
		}
	}

	respondJSON(w, http.StatusOK, assessment)
}

// AnalyzeLink handles POST /api/v1/analyze/link
func (h *AnalysisHandler) AnalyzeLink(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.URL == "" {
		respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	if !h.flags(r).URLAnalysis {
		respondError(w, http.StatusForbidden, "url analysis is disabled")
		return
	}

	assessment, err := h.analyzer.AnalyzeLink(r.Context(), req.URL)
	if err != nil {
		h.logger.Error().Err(err).Str("url", req.URL).Msg("failed to analyze link")
		respondError(w, http.StatusInternalServerError, "failed to analyze link")
		return
	}

	respondJSON(w, http.StatusOK, assessment)
}

// AnalyzeContent handles POST /api/v1/analyze/content
func (h *AnalysisHandler) AnalyzeContent(w http.ResponseWriter, r *http.Request) {
	var features models.PageFeatures
	if err := json.NewDecoder(r.Body).Decode(&features); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if features.URL == "" || features.Domain == "" {
		respondError(w, http.StatusBadRequest, "url and domain are required")
		return
	}

	if !h.flags(r).ContentAnalysis {
		respondError(w, http.StatusForbidden, "content analysis is disabled")
		return
	}

	assessment, err := h.analyzer.AnalyzeContent(r.Context(), features)
	if err != nil {
		h.logger.Error().Err(err).Str("domain", features.Domain).Msg("failed to analyze content")
		respondError(w, http.StatusInternalServerError, "failed to analyze content")
		return
	}

	respondJSON(w, http.StatusOK, assessment)
}

// PageAnalysisResponse bundles the extracted features with their assessment
type PageAnalysisResponse struct {
	Features   models.PageFeatures    `json:"features"`
	Assessment *models.RiskAssessment `json:"assessment"`
}

// AnalyzePage handles POST /api/v1/analyze/page
func (h *AnalysisHandler) AnalyzePage(w http.ResponseWriter, r *http.Request) {
	var snapshot models.PageSnapshot
	if err := json.NewDecoder(r.Body).Decode(&snapshot); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if snapshot.URL == "" || snapshot.Domain == "" {
		respondError(w, http.StatusBadRequest, "url and domain are required")
		return
	}

	if !h.flags(r).ContentAnalysis {
		respondError(w, http.StatusForbidden, "content analysis is disabled")
		return
	}

	features := h.extractor.Extract(snapshot)

	assessment, err := h.analyzer.AnalyzeContent(r.Context(), features)
	if err != nil {
		h.logger.Error().Err(err).Str("domain", snapshot.Domain).Msg("failed to analyze page")
		respondError(w, http.StatusInternalServerError, "failed to analyze page")
		return
	}

	if err := h.store.AppendHistory(r.Context(), models.NewScanRecord(assessment)); err != nil {
		h.logger.Warn().Err(err).Str("domain", snapshot.Domain).Msg("failed to record scan history")
	}

	respondJSON(w, http.StatusOK, PageAnalysisResponse{
		Features:   features,
		Assessment: assessment,
	})
}

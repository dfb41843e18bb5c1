package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phishguard-lab/internal/api/handlers"
	"phishguard-lab/internal/config"
	"phishguard-lab/internal/domain/models"
	"phishguard-lab/internal/domain/services"
	"phishguard-lab/internal/store"
	"phishguard-lab/pkg/logger"
)

func setupRouter(t *testing.T) (http.Handler, *store.MemoryStore) {
	t.Helper()

	log := logger.NewDefault()
	st := store.NewMemoryStore(store.Options{})
	catalog := services.NewCatalog()
	analyzer := services.NewAnalyzer(catalog, st, services.NewStaticAgeProvider(), 16, log)
	extractor := services.NewFeatureExtractor(catalog)

	h := handlers.NewHandlers(handlers.Dependencies{
		Analyzer:  analyzer,
		Extractor: extractor,
		Catalog:   catalog,
		Store:     st,
		Logger:    log,
	})

	cfg := config.Config{}
	cfg.CORS.AllowedOrigins = []string{"*"}
	cfg.CORS.AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}

	return NewRouter(cfg, h, nil, log).Setup(), st
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoints(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAnalyzeURLEndpoint(t *testing.T) {
	router, st := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/analyze/url",
		models.AnalyzeURLRequest{URL: "http://secure-paypal-login.com/verify"})
	require.Equal(t, http.StatusOK, w.Code)

	var got models.RiskAssessment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, models.RiskLevelHigh, got.RiskLevel)

	// Scan recorded in history
	records, err := st.History(t.Context())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "http://secure-paypal-login.com/verify", records[0].URL)
}

func TestAnalyzeURLValidation(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/analyze/url", models.AnalyzeURLRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze/url", bytes.NewBufferString("{not json"))
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusBadRequest, w2.Code)
}

func TestAnalyzeURLDisabledByFlag(t *testing.T) {
	router, st := setupRouter(t)

	flags := models.DefaultFeatureFlags()
	flags.URLAnalysis = false
	require.NoError(t, st.SetFeatures(t.Context(), flags))

	w := doJSON(t, router, http.MethodPost, "/api/v1/analyze/url",
		models.AnalyzeURLRequest{URL: "https://example.com"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAnalyzeLinkEndpoint(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/analyze/link",
		models.AnalyzeURLRequest{URL: "http://192.168.1.1/"})
	require.Equal(t, http.StatusOK, w.Code)

	var got models.RiskAssessment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, models.RiskLevelHigh, got.RiskLevel)
	assert.Contains(t, got.RiskFactors, "Uses IP address instead of domain name")
}

func TestAnalyzePageEndpoint(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/analyze/page", models.PageSnapshot{
		URL:              "http://example.com/login",
		Domain:           "example.com",
		Title:            "Login",
		BodyText:         "urgent: enter your password immediately",
		HasPasswordField: true,
		HasFavicon:       true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Features   models.PageFeatures   `json:"features"`
		Assessment models.RiskAssessment `json:"assessment"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.True(t, got.Features.ContainsUrgencyLanguage)
	assert.Equal(t, models.RiskLevelHigh, got.Assessment.RiskLevel)
}

func TestWhitelistLifecycle(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/whitelist", models.WhitelistRequest{Domain: "Example.com"})
	assert.Equal(t, http.StatusCreated, w.Code)

	// Second add is idempotent
	w = doJSON(t, router, http.MethodPost, "/api/v1/whitelist", models.WhitelistRequest{Domain: "example.com"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/whitelist/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Domains []string `json:"domains"`
		Count   int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, []string{"example.com"}, list.Domains)
	assert.Equal(t, 1, list.Count)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/whitelist/example.com", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/whitelist/", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Empty(t, list.Domains)
}

func TestPatternsEndpoint(t *testing.T) {
	router, st := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/patterns/",
		models.PatternRule{Pattern: "free.*prize", Score: 0.3})
	assert.Equal(t, http.StatusCreated, w.Code)

	// Invalid regex is rejected before persistence
	w = doJSON(t, router, http.MethodPost, "/api/v1/patterns/",
		models.PatternRule{Pattern: "(unclosed", Score: 0.3})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Out-of-range score is rejected
	w = doJSON(t, router, http.MethodPost, "/api/v1/patterns/",
		models.PatternRule{Pattern: "valid", Score: 1.5})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	stored, err := st.Patterns(t.Context())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "free.*prize", stored[0].Pattern)

	w = doJSON(t, router, http.MethodGet, "/api/v1/patterns/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Rules []models.PatternRule `json:"rules"`
		Count int                  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, len(services.DefaultPatternRules())+1, list.Count)
}

func TestFeaturesEndpoint(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/features/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var flags models.FeatureFlags
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &flags))
	assert.Equal(t, models.DefaultFeatureFlags(), flags)

	flags.RealTimeAlerts = false
	w = doJSON(t, router, http.MethodPut, "/api/v1/features/", flags)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/features/", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &flags))
	assert.False(t, flags.RealTimeAlerts)
}

func TestLowRiskScanNotRecorded(t *testing.T) {
	router, st := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/analyze/url",
		models.AnalyzeURLRequest{URL: "https://www.google.com/search?q=test"})
	require.Equal(t, http.StatusOK, w.Code)

	var got models.RiskAssessment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, models.RiskLevelLow, got.RiskLevel)

	records, err := st.History(t.Context())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestHistoryAddEndpoint(t *testing.T) {
	router, st := setupRouter(t)

	rec := models.ScanRecord{
		URL:       "https://suspicious.example.net/login",
		Domain:    "suspicious.example.net",
		RiskLevel: models.RiskLevelMedium,
		RiskScore: 0.4,
	}
	w := doJSON(t, router, http.MethodPost, "/api/v1/history", rec)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.ScanRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.False(t, created.Timestamp.IsZero())

	records, err := st.History(t.Context())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "https://suspicious.example.net/login", records[0].URL)

	w = doJSON(t, router, http.MethodPost, "/api/v1/history", models.ScanRecord{URL: "https://no-domain.example"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Records []models.ScanRecord `json:"records"`
		Count   int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)
}

func TestReportAppendsHighRiskRecord(t *testing.T) {
	router, st := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/report",
		models.ReportRequest{URL: "https://phish.example.net/login"})
	require.Equal(t, http.StatusOK, w.Code)

	records, err := st.History(t.Context())
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "https://phish.example.net/login", rec.URL)
	assert.Equal(t, "phish.example.net", rec.Domain)
	assert.Equal(t, models.RiskLevelHigh, rec.RiskLevel)
	assert.Equal(t, 1.0, rec.RiskScore)
	assert.Equal(t, []string{"User reported as suspicious"}, rec.RiskFactors)
	assert.True(t, rec.Reported)

	w = doJSON(t, router, http.MethodPost, "/api/v1/report", models.ReportRequest{URL: "not a url"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

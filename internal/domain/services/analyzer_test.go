package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phishguard-lab/internal/domain/models"
	"phishguard-lab/internal/store"
	"phishguard-lab/pkg/logger"
)

func newTestAnalyzer(t *testing.T, age AgeProvider) (*Analyzer, *store.MemoryStore) {
	t.Helper()
	if age == nil {
		age = NewStaticAgeProvider()
	}
	st := store.NewMemoryStore(store.Options{})
	a := NewAnalyzer(NewCatalog(), st, age, 16, logger.NewDefault())
	return a, st
}

func TestAnalyzeURLHighRiskScenario(t *testing.T) {
	a, _ := newTestAnalyzer(t, nil)

	got, err := a.AnalyzeURL(context.Background(), "http://secure-paypal-login.com/verify")
	require.NoError(t, err)

	assert.Equal(t, models.RiskLevelHigh, got.RiskLevel)
	assert.Greater(t, got.RiskScore, models.HighRiskThreshold)
	assert.Contains(t, got.RiskFactors, `Brand name "paypal" in non-official domain`)
	assert.Contains(t, got.RiskFactors, "Multiple hyphens in domain")
	assert.Contains(t, got.RiskFactors, "Matches suspicious pattern: secure.*login")
	assert.Contains(t, got.RiskFactors, "Suspicious term in URL path: verify")
}

func TestAnalyzeURLBenignScenario(t *testing.T) {
	a, _ := newTestAnalyzer(t, nil)

	got, err := a.AnalyzeURL(context.Background(), "https://www.google.com/search?q=test")
	require.NoError(t, err)

	assert.Equal(t, models.RiskLevelLow, got.RiskLevel)
	assert.LessOrEqual(t, len(got.RiskFactors), 1)
}

func TestAnalyzeURLWhitelistShortCircuit(t *testing.T) {
	a, st := newTestAnalyzer(t, nil)
	_, err := st.AddToWhitelist(context.Background(), "example.com")
	require.NoError(t, err)

	got, err := a.AnalyzeURL(context.Background(), "https://example.com/login?token=abc")
	require.NoError(t, err)

	assert.True(t, got.Whitelisted)
	assert.Zero(t, got.RiskScore)
	assert.Equal(t, models.RiskLevelLow, got.RiskLevel)
	assert.Equal(t, []string{"Domain is in whitelist"}, got.RiskFactors)
}

func TestAnalyzeURLIPLiteral(t *testing.T) {
	a, _ := newTestAnalyzer(t, nil)

	got, err := a.AnalyzeURL(context.Background(), "http://192.168.1.10/login")
	require.NoError(t, err)

	assert.Contains(t, got.RiskFactors, "URL uses IP address instead of domain name")
	assert.GreaterOrEqual(t, got.RiskScore, 0.4)
}

func TestAnalyzeURLMalformed(t *testing.T) {
	a, _ := newTestAnalyzer(t, nil)

	got, err := a.AnalyzeURL(context.Background(), "not a url")
	require.NoError(t, err)

	assert.Equal(t, models.RiskLevelUnknown, got.RiskLevel)
	assert.Zero(t, got.RiskScore)
	assert.Equal(t, []string{"Could not analyze URL"}, got.RiskFactors)
}

func TestAnalyzeLinkMemoization(t *testing.T) {
	a, _ := newTestAnalyzer(t, nil)
	url := "http://secure-login-update.tk/account"

	first, err := a.AnalyzeLink(context.Background(), url)
	require.NoError(t, err)
	second, err := a.AnalyzeLink(context.Background(), url)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, a.links.len())
}

func TestAnalyzeLinkIPLiteral(t *testing.T) {
	a, _ := newTestAnalyzer(t, nil)

	got, err := a.AnalyzeLink(context.Background(), "http://192.168.1.1/")
	require.NoError(t, err)

	assert.Contains(t, got.RiskFactors, "Uses IP address instead of domain name")
	assert.Contains(t, got.RiskFactors, "Non-secure HTTP connection")
	assert.GreaterOrEqual(t, got.RiskScore, 0.4)
	assert.Equal(t, models.RiskLevelHigh, got.RiskLevel)
}

func TestAnalyzeLinkWhitelistIsDiscountNotExemption(t *testing.T) {
	a, st := newTestAnalyzer(t, nil)
	_, err := st.AddToWhitelist(context.Background(), "example.com")
	require.NoError(t, err)

	got, err := a.AnalyzeLink(context.Background(), "https://example.com/page")
	require.NoError(t, err)

	assert.True(t, got.Whitelisted)
	assert.Contains(t, got.RiskFactors, "Domain is in whitelist, but still analyzing")
	assert.InDelta(t, -0.15, got.RiskScore, 1e-9)
	assert.Equal(t, models.RiskLevelLow, got.RiskLevel)
}

func TestAnalyzeLinkShortener(t *testing.T) {
	a, _ := newTestAnalyzer(t, nil)

	got, err := a.AnalyzeLink(context.Background(), "https://bit.ly/3xYzAbC")
	require.NoError(t, err)

	assert.Contains(t, got.RiskFactors, "Uses URL shortening service")
}

func TestAnalyzeLinkNewDomainSignal(t *testing.T) {
	a, _ := newTestAnalyzer(t, NewStaticAgeProvider("brandnew-site.com"))

	got, err := a.AnalyzeLink(context.Background(), "https://brandnew-site.com/")
	require.NoError(t, err)

	assert.Contains(t, got.RiskFactors, "Domain registered recently (less than 3 months old)")
}

func TestAnalyzeLinkPhishingKeywords(t *testing.T) {
	a, _ := newTestAnalyzer(t, nil)

	got, err := a.AnalyzeLink(context.Background(), "https://secure-account-verify.com/")
	require.NoError(t, err)

	assert.Contains(t, got.RiskFactors, "Domain contains phishing keyword: secure")
	assert.Contains(t, got.RiskFactors, "Domain contains multiple phishing keywords")

	// Collapses after the second keyword: exactly one "multiple" entry
	count := 0
	for _, f := range got.RiskFactors {
		if f == "Domain contains multiple phishing keywords" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestAnalyzeContentPasswordOverHTTPForcesHigh(t *testing.T) {
	a, st := newTestAnalyzer(t, nil)
	_, err := st.AddToWhitelist(context.Background(), "example.com")
	require.NoError(t, err)

	got, err := a.AnalyzeContent(context.Background(), models.PageFeatures{
		URL:              "http://example.com/login",
		Domain:           "example.com",
		HasPasswordField: true,
	})
	require.NoError(t, err)

	assert.True(t, got.Whitelisted)
	assert.Equal(t, models.RiskLevelHigh, got.RiskLevel)

	const critical = "Password field on non-HTTPS site (critical security risk)"
	count := 0
	for _, f := range got.RiskFactors {
		if f == critical {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestAnalyzeContentLookalikeBrand(t *testing.T) {
	a, _ := newTestAnalyzer(t, nil)

	got, err := a.AnalyzeContent(context.Background(), models.PageFeatures{
		URL:             "https://paypa1-login.com/",
		Domain:          "paypa1-login.com",
		MentionedBrands: []string{"paypal"},
	})
	require.NoError(t, err)

	assert.Contains(t, got.RiskFactors, "Possible lookalike domain for paypal")
	assert.Equal(t, models.RiskLevelHigh, got.RiskLevel)
	assert.InDelta(t, 0.6, got.RiskScore, 1e-9)
}

func TestAnalyzeContentBrandMismatch(t *testing.T) {
	a, _ := newTestAnalyzer(t, nil)

	got, err := a.AnalyzeContent(context.Background(), models.PageFeatures{
		URL:             "https://example.com/",
		Domain:          "example.com",
		MentionedBrands: []string{"netflix"},
	})
	require.NoError(t, err)

	assert.Contains(t, got.RiskFactors, "Page mentions netflix but domain doesn't match")
	assert.InDelta(t, 0.3, got.RiskScore, 1e-9)
	assert.Equal(t, models.RiskLevelLow, got.RiskLevel)
}

func TestAnalyzeContentCharacteristicsAdditive(t *testing.T) {
	a, _ := newTestAnalyzer(t, nil)

	got, err := a.AnalyzeContent(context.Background(), models.PageFeatures{
		URL:    "https://example.com/",
		Domain: "example.com",
		SuspiciousCharacteristics: []string{
			"Page contains multiple hidden elements",
			"Page lacks a favicon",
			"Page loads excessive external scripts",
		},
		PoorLanguageQuality: true,
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.65, got.RiskScore, 1e-9)
	assert.Equal(t, models.RiskLevelHigh, got.RiskLevel)
	assert.Contains(t, got.RiskFactors, "Page contains poor grammar or spelling")
}

// failingStore simulates an unreachable backend
type failingStore struct{}

func (failingStore) Whitelist(context.Context) ([]string, error) {
	return nil, fmt.Errorf("%w: connection refused", store.ErrUnavailable)
}
func (failingStore) IsWhitelisted(context.Context, string) (bool, error) {
	return false, fmt.Errorf("%w: connection refused", store.ErrUnavailable)
}
func (failingStore) AddToWhitelist(context.Context, string) (bool, error) {
	return false, store.ErrUnavailable
}
func (failingStore) RemoveFromWhitelist(context.Context, string) error {
	return store.ErrUnavailable
}
func (failingStore) AppendHistory(context.Context, models.ScanRecord) error {
	return store.ErrUnavailable
}
func (failingStore) History(context.Context) ([]models.ScanRecord, error) {
	return nil, store.ErrUnavailable
}
func (failingStore) Features(context.Context) (models.FeatureFlags, error) {
	return models.FeatureFlags{}, store.ErrUnavailable
}
func (failingStore) SetFeatures(context.Context, models.FeatureFlags) error {
	return store.ErrUnavailable
}
func (failingStore) Patterns(context.Context) ([]models.PatternRule, error) {
	return nil, store.ErrUnavailable
}
func (failingStore) AddPattern(context.Context, models.PatternRule) error {
	return store.ErrUnavailable
}

func TestAnalyzeURLStoreFailurePropagates(t *testing.T) {
	a := NewAnalyzer(NewCatalog(), failingStore{}, NewStaticAgeProvider(), 16, logger.NewDefault())

	_, err := a.AnalyzeURL(context.Background(), "https://example.com/")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrUnavailable)

	_, err = a.AnalyzeLink(context.Background(), "https://example.com/")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrUnavailable)

	_, err = a.AnalyzeContent(context.Background(), models.PageFeatures{URL: "https://example.com/", Domain: "example.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrUnavailable)
}

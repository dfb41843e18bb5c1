package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phishguard-lab/internal/domain/models"
)

func TestWhitelistAddIsIdempotent(t *testing.T) {
	s := NewMemoryStore(Options{})
	ctx := context.Background()

	added, err := s.AddToWhitelist(ctx, "example.com")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.AddToWhitelist(ctx, "Example.COM")
	require.NoError(t, err)
	assert.False(t, added)

	domains, err := s.Whitelist(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com"}, domains)
}

func TestWhitelistLookupAndRemove(t *testing.T) {
	s := NewMemoryStore(Options{})
	ctx := context.Background()

	_, err := s.AddToWhitelist(ctx, "example.com")
	require.NoError(t, err)

	ok, err := s.IsWhitelisted(ctx, "EXAMPLE.com")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.RemoveFromWhitelist(ctx, "example.com"))
	ok, err = s.IsWhitelisted(ctx, "example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	// Removing an absent domain is a no-op
	require.NoError(t, s.RemoveFromWhitelist(ctx, "absent.com"))
}

func TestHistoryCapMostRecentFirst(t *testing.T) {
	s := NewMemoryStore(Options{})
	ctx := context.Background()

	for i := 0; i <= HistoryCapacity; i++ {
		rec := models.NewScanRecord(&models.RiskAssessment{
			URL:       fmt.Sprintf("https://example.com/%d", i),
			Domain:    "example.com",
			RiskLevel: models.RiskLevelLow,
		})
		require.NoError(t, s.AppendHistory(ctx, rec))
	}

	records, err := s.History(ctx)
	require.NoError(t, err)
	require.Len(t, records, HistoryCapacity)

	assert.Equal(t, fmt.Sprintf("https://example.com/%d", HistoryCapacity), records[0].URL)
	assert.Equal(t, "https://example.com/1", records[HistoryCapacity-1].URL)
}

func TestFeaturesDefaultAndUpdate(t *testing.T) {
	s := NewMemoryStore(Options{})
	ctx := context.Background()

	flags, err := s.Features(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultFeatureFlags(), flags)

	flags.ContentAnalysis = false
	require.NoError(t, s.SetFeatures(ctx, flags))

	got, err := s.Features(ctx)
	require.NoError(t, err)
	assert.False(t, got.ContentAnalysis)
	assert.True(t, got.URLAnalysis)
}

func TestPatternsRoundTrip(t *testing.T) {
	s := NewMemoryStore(Options{})
	ctx := context.Background()

	rules, err := s.Patterns(ctx)
	require.NoError(t, err)
	assert.Empty(t, rules)

	rule := models.PatternRule{Pattern: "free.*gift", Score: 0.25}
	require.NoError(t, s.AddPattern(ctx, rule))

	rules, err = s.Patterns(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.PatternRule{rule}, rules)
}

func TestOptionsOverrideCapacityAndFlags(t *testing.T) {
	flags := models.DefaultFeatureFlags()
	flags.RealTimeAlerts = false
	s := NewMemoryStore(Options{HistoryCapacity: 3, DefaultFlags: &flags})
	ctx := context.Background()

	got, err := s.Features(ctx)
	require.NoError(t, err)
	assert.False(t, got.RealTimeAlerts)
	assert.True(t, got.URLAnalysis)

	for i := 0; i < 5; i++ {
		rec := models.NewScanRecord(&models.RiskAssessment{
			URL:       fmt.Sprintf("https://example.com/%d", i),
			Domain:    "example.com",
			RiskLevel: models.RiskLevelMedium,
		})
		require.NoError(t, s.AppendHistory(ctx, rec))
	}

	records, err := s.History(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "https://example.com/4", records[0].URL)
}

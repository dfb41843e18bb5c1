package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyRisk(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  RiskLevel
	}{
		{"zero", 0, RiskLevelLow},
		{"just below medium", 0.34, RiskLevelLow},
		{"medium boundary", 0.35, RiskLevelMedium},
		{"between thresholds", 0.5, RiskLevelMedium},
		{"just below high", 0.59, RiskLevelMedium},
		{"high boundary", 0.6, RiskLevelHigh},
		{"over one", 1.4, RiskLevelHigh},
		{"negative", -0.3, RiskLevelLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyRisk(tt.score))
		})
	}
}

func TestCollectsSensitiveData(t *testing.T) {
	assert.False(t, PageFeatures{}.CollectsSensitiveData())
	assert.True(t, PageFeatures{HasPasswordField: true}.CollectsSensitiveData())
	assert.True(t, PageFeatures{HasPaymentField: true}.CollectsSensitiveData())
	assert.True(t, PageFeatures{RequestsSensitiveInfo: true}.CollectsSensitiveData())
}

func TestNewScanRecord(t *testing.T) {
	a := &RiskAssessment{
		URL:         "https://example.com/login",
		Domain:      "example.com",
		RiskScore:   0.45,
		RiskLevel:   RiskLevelMedium,
		RiskFactors: []string{"Sensitive terms in domain"},
	}

	rec := NewScanRecord(a)

	assert.NotEqual(t, rec.ID.String(), "00000000-0000-0000-0000-000000000000")
	assert.Equal(t, a.URL, rec.URL)
	assert.Equal(t, a.Domain, rec.Domain)
	assert.Equal(t, a.RiskScore, rec.RiskScore)
	assert.Equal(t, a.RiskLevel, rec.RiskLevel)
	assert.Equal(t, a.RiskFactors, rec.RiskFactors)
	assert.False(t, rec.Reported)
}

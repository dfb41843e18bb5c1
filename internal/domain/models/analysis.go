package models

import (
	"time"

	"github.com/google/uuid"
)

// RiskLevel is the coarse classification of a risk score
type RiskLevel string

const (
	RiskLevelUnknown RiskLevel = "unknown"
	RiskLevelLow     RiskLevel = "low"
	RiskLevelMedium  RiskLevel = "medium"
	RiskLevelHigh    RiskLevel = "high"
)

// Risk level thresholds shared by every analysis pass. The popup blends
// results from different passes, so they must classify identically.
const (
	HighRiskThreshold   = 0.6
	MediumRiskThreshold = 0.35
)

// ClassifyRisk maps an accumulated risk score to a risk level
func ClassifyRisk(score float64) RiskLevel {
	switch {
	case score >= HighRiskThreshold:
		return RiskLevelHigh
	case score >= MediumRiskThreshold:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

// RiskAssessment is the outcome of one analysis pass over a URL or page.
// It is constructed once per call and never mutated afterwards.
type RiskAssessment struct {
	URL         string    `json:"url"`
	Domain      string    `json:"domain"`
	RiskScore   float64   `json:"riskScore"`
	RiskLevel   RiskLevel `json:"riskLevel"`
	RiskFactors []string  `json:"riskFactors"`
	Whitelisted bool      `json:"whitelisted"`
	Timestamp   time.Time `json:"timestamp"`
}

// PageFeatures is the snapshot the page-feature extractor hands to the
// content analysis pass
type PageFeatures struct {
	URL                       string   `json:"url"`
	Domain                    string   `json:"domain"`
	Title                     string   `json:"title"`
	HasLoginForm              bool     `json:"hasLoginForm"`
	HasPasswordField          bool     `json:"hasPasswordField"`
	HasPaymentField           bool     `json:"hasPaymentField"`
	RequestsSensitiveInfo     bool     `json:"requestsSensitiveInfo"`
	ContainsUrgencyLanguage   bool     `json:"containsUrgencyLanguage"`
	MentionedBrands           []string `json:"mentionedBrands"`
	SuspiciousCharacteristics []string `json:"suspiciousCharacteristics"`
	PoorLanguageQuality       bool     `json:"poorLanguageQuality"`
}

// CollectsSensitiveData reports whether the page gathers credentials,
// payment details, or other sensitive information
func (f PageFeatures) CollectsSensitiveData() bool {
	return f.HasPasswordField || f.HasPaymentField || f.RequestsSensitiveInfo
}

// ScanRecord is one entry in the bounded scan history log
type ScanRecord struct {
	ID          uuid.UUID `json:"id"`
	URL         string    `json:"url"`
	Domain      string    `json:"domain"`
	RiskLevel   RiskLevel `json:"riskLevel"`
	RiskScore   float64   `json:"riskScore"`
	Timestamp   time.Time `json:"timestamp"`
	RiskFactors []string  `json:"riskFactors,omitempty"`
	Reported    bool      `json:"reported,omitempty"`
}

// NewScanRecord builds a history record from an assessment
func NewScanRecord(a *RiskAssessment) ScanRecord {
	return ScanRecord{
		ID:          uuid.New(),
		URL:         a.URL,
		Domain:      a.Domain,
		RiskLevel:   a.RiskLevel,
		RiskScore:   a.RiskScore,
		Timestamp:   a.Timestamp,
		RiskFactors: a.RiskFactors,
	}
}

// PatternRule is a configurable regex rule matched case-insensitively
// against the full URL
type PatternRule struct {
	Pattern string  `json:"pattern"`
	Score   float64 `json:"score"`
}

// FeatureFlags mirrors the persisted enabledFeatures map
type FeatureFlags struct {
	URLAnalysis     bool `json:"urlAnalysis"`
	ContentAnalysis bool `json:"contentAnalysis"`
	BrandProtection bool `json:"brandProtection"`
	RealTimeAlerts  bool `json:"realTimeAlerts"`
}

// DefaultFeatureFlags returns the flags applied on first run
func DefaultFeatureFlags() FeatureFlags {
	return FeatureFlags{
		URLAnalysis:     true,
		ContentAnalysis: true,
		BrandProtection: true,
		RealTimeAlerts:  true,
	}
}

// AnalyzeURLRequest is the payload for the URL and link analysis endpoints
type AnalyzeURLRequest struct {
	URL string `json:"url"`
}

// ReportRequest is the payload for user reports of suspicious sites
type ReportRequest struct {
	URL string `json:"url"`
}

// WhitelistRequest is the payload for whitelist additions
type WhitelistRequest struct {
	Domain string `json:"domain"`
}

package services

import (
	"strings"

	"phishguard-lab/internal/domain/models"
)

// Body text beyond this length carries no additional signal and only
// slows the substring scans.
const maxBodyTextLen = 10000

// FeatureExtractor turns a raw page snapshot into the feature set the
// content analysis pass scores.
type FeatureExtractor struct {
	catalog *Catalog
}

func NewFeatureExtractor(catalog *Catalog) *FeatureExtractor {
	return &FeatureExtractor{catalog: catalog}
}

// Extract derives page features from a snapshot
func (e *FeatureExtractor) Extract(snapshot models.PageSnapshot) models.PageFeatures {
	body := snapshot.BodyText
	if len(body) > maxBodyTextLen {
		body = body[:maxBodyTextLen]
	}
	bodyLower := strings.ToLower(body)
	titleLower := strings.ToLower(snapshot.Title)

	features := models.PageFeatures{
		URL:              snapshot.URL,
		Domain:           strings.ToLower(snapshot.Domain),
		Title:            snapshot.Title,
		HasLoginForm:     hasLoginForm(snapshot.Forms),
		HasPasswordField: snapshot.HasPasswordField,
		HasPaymentField:  snapshot.HasPaymentField,
	}

	for _, term := range e.catalog.SensitiveInfoTerms {
		if strings.Contains(bodyLower, term) {
			features.RequestsSensitiveInfo = true
			break
		}
	}

	for _, phrase := range e.catalog.UrgencyPhrases {
		if strings.Contains(bodyLower, phrase) {
			features.ContainsUrgencyLanguage = true
			break
		}
	}

	for _, brand := range e.catalog.BrandTerms {
		if strings.Contains(bodyLower, brand) || strings.Contains(titleLower, brand) {
			features.MentionedBrands = append(features.MentionedBrands, brand)
		}
	}

	if snapshot.HiddenElementCount > 5 {
		features.SuspiciousCharacteristics = append(features.SuspiciousCharacteristics,
			"Page contains multiple hidden elements")
	}
	if !snapshot.HasFavicon {
		features.SuspiciousCharacteristics = append(features.SuspiciousCharacteristics,
			"Page lacks a favicon")
	}
	if snapshot.ExternalScriptCount > 10 {
		features.SuspiciousCharacteristics = append(features.SuspiciousCharacteristics,
			"Page loads excessive external scripts")
	}

	features.PoorLanguageQuality = e.hasPoorLanguage(bodyLower)

	return features
}

func hasLoginForm(forms []models.FormSnapshot) bool {
	for _, form := range forms {
		if form.HasPasswordField {
			return true
		}
		text := strings.ToLower(form.Text)
		if strings.Contains(text, "login") || strings.Contains(text, "sign in") ||
			strings.Contains(text, "username") {
			return true
		}
	}
	return false
}

func (e *FeatureExtractor) hasPoorLanguage(bodyLower string) bool {
	for _, word := range e.catalog.MisspellingTokens {
		if strings.Contains(bodyLower, word) {
			return true
		}
	}
	for _, word := range e.catalog.CredentialTokens {
		if strings.Contains(bodyLower, word) {
			return true
		}
	}
	return false
}

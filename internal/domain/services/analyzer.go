package services

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"phishguard-lab/internal/domain/models"
	"phishguard-lab/internal/store"
	"phishguard-lab/pkg/logger"
)

var (
	ipDomainRegex = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)
	ipURLRegex    = regexp.MustCompile(`^https?://\d{1,3}\.`)
	hashedParamRe = regexp.MustCompile(`[?&][^=]+=([a-zA-Z0-9]{20,}|[0-9a-f]{20,})`)
	digitRegex    = regexp.MustCompile(`\d`)
)

// Analyzer runs the three risk scoring passes: the quick URL pass, the
// link hover pass, and the page content pass. All three accumulate
// weighted signal scores and classify them with the shared thresholds.
type Analyzer struct {
	catalog *Catalog
	store   store.Store
	age     AgeProvider
	links   *linkCache
	logger  *logger.Logger
}

// NewAnalyzer wires an Analyzer. cacheCapacity bounds the link hover
// memo cache; zero or negative selects the default.
func NewAnalyzer(catalog *Catalog, st store.Store, age AgeProvider, cacheCapacity int, log *logger.Logger) *Analyzer {
	return &Analyzer{
		catalog: catalog,
		store:   st,
		age:     age,
		links:   newLinkCache(cacheCapacity),
		logger:  log.WithComponent("analyzer"),
	}
}

func degradedAssessment(rawURL string) *models.RiskAssessment {
	return &models.RiskAssessment{
		URL:         rawURL,
		RiskScore:   0,
		RiskLevel:   models.RiskLevelUnknown,
		RiskFactors: []string{"Could not analyze URL"},
		Timestamp:   time.Now().UTC(),
	}
}

// isOfficialDomain reports whether the domain is the brand's own .com
// domain or a subdomain of it, e.g. www.google.com for google.
func isOfficialDomain(domain, brand string) bool {
	official := brand + ".com"
	return domain == official || strings.HasSuffix(domain, "."+official)
}

func parseURL(rawURL string) (*url.URL, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", err
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return nil, "", fmt.Errorf("url %q has no host", rawURL)
	}
	return u, host, nil
}

// AnalyzeURL is the quick pass run on every page navigation. A
// whitelisted domain short-circuits with a zero score; everything else
// is scored against the domain, path, and pattern rule signals.
func (a *Analyzer) AnalyzeURL(ctx context.Context, rawURL string) (*models.RiskAssessment, error) {
	u, domain, err := parseURL(rawURL)
	if err != nil {
		a.logger.Warn().Str("url", rawURL).Err(err).Msg("unparseable url")
		return degradedAssessment(rawURL), nil
	}

	whitelisted, err := a.store.IsWhitelisted(ctx, domain)
	if err != nil {
		return nil, fmt.Errorf("whitelist lookup for %s: %w", domain, err)
	}
	if whitelisted {
		return &models.RiskAssessment{
			URL:         rawURL,
			Domain:      domain,
			RiskScore:   0,
			RiskLevel:   models.RiskLevelLow,
			RiskFactors: []string{"Domain is in whitelist"},
			Whitelisted: true,
			Timestamp:   time.Now().UTC(),
		}, nil
	}

	fullURL := strings.ToLower(rawURL)
	path := strings.ToLower(u.Path)

	var score float64
	var factors []string

	for _, term := range a.catalog.DomainSensitiveTerms {
		if strings.Contains(domain, term) {
			score += 0.15
			factors = append(factors, "Sensitive terms in domain")
			break
		}
	}

	if len(domain) > 30 {
		score += 0.15
		factors = append(factors, "Unusually long domain name")
	}

	if len(strings.Split(domain, ".")) > 2 {
		score += 0.15
		factors = append(factors, "Multiple subdomains detected")
	}

	if tld, ok := a.catalog.HasSuspiciousTLD(domain); ok {
		score += 0.15
		factors = append(factors, fmt.Sprintf("Suspicious TLD: .%s", tld))
	}

	for _, brand := range a.catalog.BrandTerms {
		if strings.Contains(domain, brand) && !isOfficialDomain(domain, brand) {
			score += 0.4
			factors = append(factors, fmt.Sprintf("Brand name %q in non-official domain", brand))
			break
		}
	}

	if digitRegex.MatchString(domain) {
		score += 0.15
		factors = append(factors, "Domain contains numbers")
	}

	hyphens := strings.Count(domain, "-")
	if hyphens > 1 {
		score += 0.15
		factors = append(factors, "Multiple hyphens in domain")
	} else if hyphens == 1 && (strings.Contains(domain, "-secure") || strings.Contains(domain, "secure-")) {
		score += 0.2
		factors = append(factors, "Suspicious \"secure\" pattern with hyphen")
	}

	for _, rule := range a.catalog.Rules() {
		if rule.Match(fullURL) {
			score += rule.Score
			factors = append(factors, fmt.Sprintf("Matches suspicious pattern: %s", rule.Pattern))
		}
	}

	for _, term := range a.catalog.SuspiciousPathTerms {
		if strings.Contains(path, term) {
			score += 0.15
			factors = append(factors, fmt.Sprintf("Suspicious term in URL path: %s", term))
			break
		}
	}

	quickQuery := strings.ToLower(u.RawQuery)
	if strings.Contains(quickQuery, "url=") || strings.Contains(quickQuery, "redirect=") || strings.Contains(quickQuery, "goto=") {
		score += 0.2
		factors = append(factors, "URL contains redirection parameters")
	}

	if ipDomainRegex.MatchString(domain) {
		score += 0.4
		factors = append(factors, "URL uses IP address instead of domain name")
	}

	assessment := &models.RiskAssessment{
		URL:         rawURL,
		Domain:      domain,
		RiskScore:   score,
		RiskLevel:   models.ClassifyRisk(score),
		RiskFactors: factors,
		Timestamp:   time.Now().UTC(),
	}

	a.logger.Debug().
		Str("domain", domain).
		Float64("score", score).
		Str("level", string(assessment.RiskLevel)).
		Msg("url analyzed")

	return assessment, nil
}

// AnalyzeLink is the deeper pass run on hovered links. Results are
// memoized per URL, so repeated hovers over the same link return the
// cached assessment.
func (a *Analyzer) AnalyzeLink(ctx context.Context, rawURL string) (*models.RiskAssessment, error) {
	if cached, ok := a.links.get(rawURL); ok {
		return cached, nil
	}

	u, domain, err := parseURL(rawURL)
	if err != nil {
		a.logger.Warn().Str("url", rawURL).Err(err).Msg("unparseable link")
		return degradedAssessment(rawURL), nil
	}

	whitelisted, err := a.store.IsWhitelisted(ctx, domain)
	if err != nil {
		return nil, fmt.Errorf("whitelist lookup for %s: %w", domain, err)
	}

	lowerURL := strings.ToLower(rawURL)
	path := strings.ToLower(u.Path)
	query := strings.ToLower(u.RawQuery)

	var score float64
	var factors []string

	if whitelisted {
		score -= 0.15
		factors = append(factors, "Domain is in whitelist, but still analyzing")
	}

	if strings.HasPrefix(lowerURL, "http:") && !strings.HasPrefix(lowerURL, "http://localhost") {
		score += 0.35
		factors = append(factors, "Non-secure HTTP connection")
	}

	if ipURLRegex.MatchString(lowerURL) {
		score += 0.6
		factors = append(factors, "Uses IP address instead of domain name")
	}

	if tld, ok := a.catalog.HasLinkSuspiciousTLD(domain); ok {
		score += 0.4
		factors = append(factors, fmt.Sprintf("Uses suspicious TLD (.%s)", tld))
	}

	subdomains := len(strings.Split(domain, ".")) - 2
	if subdomains > 3 {
		score += 0.4
		factors = append(factors, "Excessive number of subdomains")
	} else if subdomains > 2 {
		score += 0.2
		factors = append(factors, "Multiple subdomains")
	}

	if len(domain) > 30 {
		score += 0.3
		factors = append(factors, "Unusually long domain name")
	} else if len(domain) > 20 {
		score += 0.15
		factors = append(factors, "Long domain name")
	}

	for _, brand := range a.catalog.HighValueBrands {
		if strings.Contains(lowerURL, brand) && !strings.Contains(domain, brand) {
			score += 0.5
			factors = append(factors, fmt.Sprintf("URL contains %s but domain doesn't match", brand))
		}
	}

	for _, brand := range a.catalog.HighValueBrands {
		if !strings.Contains(domain, brand) && IsLookalike(domain, brand) {
			score += 0.6
			factors = append(factors, fmt.Sprintf("Possible lookalike domain for %s", brand))
		}
	}

	if a.catalog.IsShortener(domain) {
		score += 0.4
		factors = append(factors, "Uses URL shortening service")
	}

	if query != "" && hashedParamRe.MatchString("?"+query) {
		score += 0.2
		factors = append(factors, "Contains long hashed or encoded parameters")
	}

	for _, param := range a.catalog.SuspiciousParams {
		if strings.Contains(query, param+"=") {
			score += 0.2
			factors = append(factors, fmt.Sprintf("URL contains suspicious parameter: %s", param))
			break
		}
	}

	for _, ext := range a.catalog.SuspiciousExtensions {
		if strings.HasSuffix(path, ext) {
			score += 0.3
			factors = append(factors, fmt.Sprintf("URL points to suspicious file type: %s", ext))
			break
		}
	}

	if a.age.IsNewDomain(domain) {
		score += 0.5
		factors = append(factors, "Domain registered recently (less than 3 months old)")
	}

	keywordCount := 0
	for _, kw := range a.catalog.PhishingKeywords {
		if strings.Contains(domain, kw) {
			keywordCount++
			if keywordCount == 1 {
				score += 0.3
				factors = append(factors, fmt.Sprintf("Domain contains phishing keyword: %s", kw))
			} else {
				score += 0.2
				factors = append(factors, "Domain contains multiple phishing keywords")
				break
			}
		}
	}

	if hyphens := strings.Count(domain, "-"); hyphens > 2 {
		score += 0.2
		factors = append(factors, fmt.Sprintf("Domain contains %d hyphens", hyphens))
	}

	if digits := len(digitRegex.FindAllString(domain, -1)); digits > 3 {
		score += 0.2
		factors = append(factors, fmt.Sprintf("Domain contains %d numeric characters", digits))
	}

	assessment := &models.RiskAssessment{
		URL:         rawURL,
		Domain:      domain,
		RiskScore:   score,
		RiskLevel:   models.ClassifyRisk(score),
		RiskFactors: factors,
		Whitelisted: whitelisted,
		Timestamp:   time.Now().UTC(),
	}

	a.links.put(rawURL, assessment)

	a.logger.Debug().
		Str("domain", domain).
		Float64("score", score).
		Str("level", string(assessment.RiskLevel)).
		Msg("link analyzed")

	return assessment, nil
}

// AnalyzeContent scores extracted page features. Whitelisting reduces
// the score but never exempts the page: a password field served over
// plain HTTP forces a high risk level regardless of the running total.
func (a *Analyzer) AnalyzeContent(ctx context.Context, features models.PageFeatures) (*models.RiskAssessment, error) {
	domain := strings.ToLower(features.Domain)

	whitelisted, err := a.store.IsWhitelisted(ctx, domain)
	if err != nil {
		return nil, fmt.Errorf("whitelist lookup for %s: %w", domain, err)
	}

	secure := strings.HasPrefix(strings.ToLower(features.URL), "https://")

	var score float64
	var factors []string

	if whitelisted {
		score -= 0.3
		factors = append(factors, "Domain is in whitelist, but still analyzing content")
	}

	for _, brand := range features.MentionedBrands {
		b := strings.ToLower(brand)
		if strings.Contains(domain, b) {
			continue
		}
		weight := 0.3
		if a.catalog.IsPriorityBrand(b) {
			weight = 0.4
		}
		if IsLookalike(domain, b) {
			weight += 0.2
			factors = append(factors, fmt.Sprintf("Possible lookalike domain for %s", brand))
		} else {
			factors = append(factors, fmt.Sprintf("Page mentions %s but domain doesn't match", brand))
		}
		score += weight
	}

	if !secure && features.CollectsSensitiveData() {
		score += 0.5
		factors = append(factors, "Collecting sensitive information without HTTPS encryption")
	}

	if features.ContainsUrgencyLanguage && features.CollectsSensitiveData() {
		score += 0.3
		factors = append(factors, "Uses urgency language while collecting sensitive information")
	}

	if features.HasPasswordField && features.HasPaymentField {
		score += 0.2
		factors = append(factors, "Page requests both password and payment information")
	}

	for _, characteristic := range features.SuspiciousCharacteristics {
		score += 0.15
		factors = append(factors, characteristic)
	}

	if features.PoorLanguageQuality {
		score += 0.2
		factors = append(factors, "Page contains poor grammar or spelling")
	}

	level := models.ClassifyRisk(score)

	if features.HasPasswordField && !secure {
		level = models.RiskLevelHigh
		const critical = "Password field on non-HTTPS site (critical security risk)"
		present := false
		for _, f := range factors {
			if f == critical {
				present = true
				break
			}
		}
		if !present {
			factors = append(factors, critical)
		}
	}

	assessment := &models.RiskAssessment{
		URL:         features.URL,
		Domain:      domain,
		RiskScore:   score,
		RiskLevel:   level,
		RiskFactors: factors,
		Whitelisted: whitelisted,
		Timestamp:   time.Now().UTC(),
	}

	a.logger.Debug().
		Str("domain", domain).
		Float64("score", score).
		Str("level", string(level)).
		Msg("content analyzed")

	return assessment, nil
}

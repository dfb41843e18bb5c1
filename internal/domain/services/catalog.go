package services

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"phishguard-lab/internal/domain/models"
)

// Catalog holds the static detection tables used by every analysis pass,
// plus the user-extensible set of URL pattern rules.
type Catalog struct {
	// BrandTerms are brand names checked against domains and page text
	BrandTerms []string

	// HighValueBrands is the broader set checked on hovered links
	HighValueBrands []string

	// SuspiciousTLDs is the short list used by the quick URL pass
	SuspiciousTLDs []string

	// LinkSuspiciousTLDs is the longer list used by the link hover pass
	LinkSuspiciousTLDs []string

	// ShortenerDomains are exact-match URL shortener hosts
	ShortenerDomains []string

	// SuspiciousExtensions are file extensions flagged on link paths
	SuspiciousExtensions []string

	// SuspiciousPathTerms are phishing-typical URL path segments
	SuspiciousPathTerms []string

	// SuspiciousParams are query parameter names that suggest credential flows
	SuspiciousParams []string

	// PhishingKeywords are terms counted inside hovered-link domains
	PhishingKeywords []string

	// DomainSensitiveTerms are the terms the quick pass looks for in domains
	DomainSensitiveTerms []string

	// SensitiveInfoTerms are phrases that indicate a page requests
	// sensitive personal or financial information
	SensitiveInfoTerms []string

	// UrgencyPhrases are pressure-tactic phrases found in phishing copy
	UrgencyPhrases []string

	// MisspellingTokens are misspellings common in phishing page text
	MisspellingTokens []string

	// CredentialTokens are credential-flow words that, combined with the
	// misspellings, indicate low-quality phishing copy
	CredentialTokens []string

	// priorityBrands carry extra weight in the content pass
	priorityBrands map[string]struct{}

	mu    sync.RWMutex
	rules []CompiledRule
}

// CompiledRule is a PatternRule with its regex compiled case-insensitively
type CompiledRule struct {
	Pattern string
	Score   float64
	re      *regexp.Regexp
}

// Match reports whether the rule matches the given URL
func (r CompiledRule) Match(url string) bool {
	return r.re.MatchString(url)
}

// Rule returns the serializable form of the compiled rule
func (r CompiledRule) Rule() models.PatternRule {
	return models.PatternRule{Pattern: r.Pattern, Score: r.Score}
}

// NewCatalog creates a Catalog populated with the default tables and
// the seed pattern rules
func NewCatalog() *Catalog {
	c := &Catalog{
		BrandTerms: []string{
			"paypal", "apple", "microsoft", "amazon", "google", "facebook", "instagram",
			"netflix", "bank", "chase", "wellsfargo", "citi", "amex", "visa", "mastercard",
			"coinbase", "blockchain", "binance", "gmail", "outlook", "yahoo", "icloud",
			"twitter", "linkedin", "dropbox", "steam", "github",
		},
		HighValueBrands: []string{
			"paypal", "apple", "microsoft", "amazon", "google", "facebook",
			"bank", "chase", "wellsfargo", "citi", "amex", "visa", "mastercard",
			"netflix", "instagram", "twitter", "linkedin", "gmail", "yahoo", "outlook",
			"dropbox", "icloud", "coinbase", "blockchain", "bitcoin", "steam", "discord",
			"spotify", "snapchat", "tiktok", "whatsapp", "telegram", "signal", "venmo",
			"cashapp", "zelle", "etsy", "ebay", "walmart", "target", "bestbuy", "adobe",
			"office365", "onedrive", "github", "gitlab", "stackoverflow", "salesforce",
			"docusign", "zoom", "slack", "teams", "webex", "shopify", "wordpress",
		},
		SuspiciousTLDs: []string{
			"xyz", "top", "club", "online", "site", "info", "work", "ml", "ga", "cf", "gq", "buzz",
		},
		LinkSuspiciousTLDs: []string{
			"tk", "ml", "ga", "cf", "gq", "xyz", "top", "club", "work", "date",
			"racing", "stream", "bid", "review", "trade", "download", "party",
			"science", "icu", "pw", "monster", "click", "link", "fit", "men",
			"host", "bar", "gdn", "loan", "agency", "buzz", "rest", "uno", "best",
			"surf", "win", "ooo", "tech", "online", "website", "site", "fun",
		},
		ShortenerDomains: []string{
			"bit.ly", "tinyurl.com", "goo.gl", "t.co", "ow.ly", "is.gd", "buff.ly",
			"adf.ly", "tiny.cc", "cutt.ly", "shorturl.at", "rebrand.ly", "bl.ink",
			"clck.ru", "snip.ly", "surl.li", "v.gd", "rb.gy", "tiny.one", "shrturi.com",
			"tny.im", "shorturl.com", "short.io", "shrtco.de", "href.li", "urlz.fr",
		},
		SuspiciousExtensions: []string{
			".exe", ".zip", ".msi", ".dmg", ".pkg", ".bat", ".cmd", ".scr", ".js",
		},
		SuspiciousPathTerms: []string{
			"login", "signin", "account", "secure", "update", "verify", "wallet", "confirm",
			"verification", "authenticate", "recover", "billing", "payment", "auth", "session",
			"access", "manage", "reset", "password",
		},
		SuspiciousParams: []string{
			"token", "auth", "login", "password", "email", "account", "secure", "verify",
		},
		PhishingKeywords: []string{
			"secure", "account", "login", "signin", "verify", "verification", "authenticate",
			"wallet", "update", "confirm", "banking", "password", "reset", "access",
			"support", "help", "service", "customer", "user", "validate", "recover",
			"unlock", "restore", "alert", "notification", "security", "protect",
		},
		DomainSensitiveTerms: []string{"secure", "login", "account"},
		SensitiveInfoTerms: []string{
			"social security", "ssn", "credit card number", "card number", "cvv", "cvc",
			"expiration date", "expiry date", "mother's maiden name", "passport number",
			"bank account", "routing number", "pin", "security code", "date of birth",
		},
		UrgencyPhrases: []string{
			"urgent", "immediately", "suspended", "verify now", "limited time",
			"account locked", "security alert", "unauthorized access", "suspicious activity",
			"unusual login", "confirm identity", "account compromised", "security breach",
			"important notice", "action required", "expire", "within 24 hours", "final notice",
		},
		MisspellingTokens: []string{
			"verifcation", "verfiy", "veryfication", "veryfiy", "acount", "accont",
			"securty", "securiti", "informations", "infomation", "confrim", "comfirm",
			"updateing", "updaet", "suspicius", "suspesious", "suspisios",
		},
		CredentialTokens: []string{
			"signin", "log-in", "authorize", "authorise", "authentcate", "validate",
			"verfy", "confirme", "secure", "recover", "unlock", "reactvate",
		},
		priorityBrands: make(map[string]struct{}),
	}

	for _, b := range []string{
		"paypal", "apple", "microsoft", "amazon", "google", "facebook",
		"bank", "chase", "wellsfargo", "citi", "amex", "visa", "mastercard",
	} {
		c.priorityBrands[b] = struct{}{}
	}

	for _, r := range DefaultPatternRules() {
		// Seed rules are static and known to compile
		_ = c.AddRule(r)
	}

	return c
}

// DefaultPatternRules returns the seed URL pattern rules
func DefaultPatternRules() []models.PatternRule {
	return []models.PatternRule{
		{Pattern: "secure.*login", Score: 0.2},
		{Pattern: "verify.*account", Score: 0.2},
		{Pattern: "confirm.*payment", Score: 0.2},
		{Pattern: "update.*billing", Score: 0.2},
		{Pattern: "suspicious.*activity", Score: 0.2},
	}
}

// AddRule compiles and registers a pattern rule. Invalid regexes are
// rejected so a bad user pattern can never break the scan loop.
func (c *Catalog) AddRule(rule models.PatternRule) error {
	re, err := regexp.Compile("(?i)" + rule.Pattern)
	if err != nil {
		return fmt.Errorf("invalid pattern %q: %w", rule.Pattern, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.rules = append(c.rules, CompiledRule{Pattern: rule.Pattern, Score: rule.Score, re: re})
	return nil
}

// ReplaceRules swaps the rule set, keeping only patterns that compile
func (c *Catalog) ReplaceRules(rules []models.PatternRule) {
	compiled := make([]CompiledRule, 0, len(rules))
	for _, r := range rules {
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			continue
		}
		compiled = append(compiled, CompiledRule{Pattern: r.Pattern, Score: r.Score, re: re})
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.rules = compiled
}

// Rules returns a snapshot of the compiled rule set
func (c *Catalog) Rules() []CompiledRule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]CompiledRule, len(c.rules))
	copy(out, c.rules)
	return out
}

// IsPriorityBrand reports whether a brand carries extra weight in the
// content pass
func (c *Catalog) IsPriorityBrand(brand string) bool {
	_, ok := c.priorityBrands[strings.ToLower(brand)]
	return ok
}

// IsShortener reports whether the host is a known URL shortener
func (c *Catalog) IsShortener(domain string) bool {
	domain = strings.ToLower(domain)
	for _, s := range c.ShortenerDomains {
		if domain == s {
			return true
		}
	}
	return false
}

// HasSuspiciousTLD checks the quick-pass TLD list
func (c *Catalog) HasSuspiciousTLD(domain string) (string, bool) {
	return matchTLD(domain, c.SuspiciousTLDs)
}

// HasLinkSuspiciousTLD checks the broader hover-pass TLD list
func (c *Catalog) HasLinkSuspiciousTLD(domain string) (string, bool) {
	return matchTLD(domain, c.LinkSuspiciousTLDs)
}

func matchTLD(domain string, tlds []string) (string, bool) {
	parts := strings.Split(strings.ToLower(domain), ".")
	tld := parts[len(parts)-1]
	for _, t := range tlds {
		if tld == t {
			return tld, true
		}
	}
	return "", false
}

package services

import "strings"

// homoglyphPairs maps a substitute character onto the brand character it
// imitates. Each entry is applied as "replace every target in the brand
// with the substitute, then test containment".
var homoglyphPairs = []struct{ substitute, target string }{
	{"1", "l"}, {"l", "1"},
	{"0", "o"}, {"o", "0"},
	{"5", "s"}, {"s", "5"},
	{"rn", "m"}, {"m", "rn"},
}

// insertionLetters are the characters tried for single-character
// insertion typos. Kept small to avoid false positives.
var insertionLetters = []string{"a", "e", "i", "o", "u", "s", "n"}

// IsLookalike reports whether domain is a plausible typosquat of brand:
// hyphenated insertion, homoglyph substitution, single deletion, single
// insertion, or adjacent swap. Pure and side-effect free; both inputs
// are expected lowercase.
func IsLookalike(domain, brand string) bool {
	if domain == "" || brand == "" {
		return false
	}

	// A domain carrying the brand verbatim is the brand-mismatch rule's
	// territory, not a typosquat
	if strings.Contains(domain, brand) {
		return false
	}

	// Hyphenated variants: -brand, brand-, or a hyphen splitting the
	// brand at its midpoint (pay-pal style)
	mid := len(brand) / 2
	if strings.Contains(domain, "-"+brand) ||
		strings.Contains(domain, brand+"-") ||
		strings.Contains(domain, brand[:mid]+"-"+brand[mid:]) {
		return true
	}

	// Homoglyph substitutions
	for _, p := range homoglyphPairs {
		if !strings.Contains(brand, p.target) {
			continue
		}
		if strings.Contains(domain, strings.ReplaceAll(brand, p.target, p.substitute)) {
			return true
		}
	}

	// Single-character deletion
	for i := 0; i < len(brand); i++ {
		variant := brand[:i] + brand[i+1:]
		if len(variant) > 3 && strings.Contains(domain, variant) {
			return true
		}
	}

	// Single-character insertion
	for i := 0; i <= len(brand); i++ {
		for _, letter := range insertionLetters {
			if strings.Contains(domain, brand[:i]+letter+brand[i:]) {
				return true
			}
		}
	}

	// Adjacent-character swap
	for i := 0; i < len(brand)-1; i++ {
		variant := brand[:i] + string(brand[i+1]) + string(brand[i]) + brand[i+2:]
		if strings.Contains(domain, variant) {
			return true
		}
	}

	return false
}

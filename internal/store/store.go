// Package store holds the whitelist, scan history, pattern, and feature
// flag state shared by every analysis surface. All mutation goes through
// explicit read-modify-write operations serialized per store instance,
// so concurrent writers cannot lose updates.
package store

import (
	"context"
	"errors"

	"phishguard-lab/internal/domain/models"
)

// HistoryCapacity is the default maximum number of retained scan
// records. Older entries are evicted from the tail in insertion order.
const HistoryCapacity = 100

// Options tunes a store backend. Zero values fall back to
// HistoryCapacity and DefaultFeatureFlags.
type Options struct {
	HistoryCapacity int
	DefaultFlags    *models.FeatureFlags
}

func (o Options) capacity() int {
	if o.HistoryCapacity > 0 {
		return o.HistoryCapacity
	}
	return HistoryCapacity
}

func (o Options) flags() models.FeatureFlags {
	if o.DefaultFlags != nil {
		return *o.DefaultFlags
	}
	return models.DefaultFeatureFlags()
}

// ErrUnavailable wraps backend failures so callers can distinguish an
// empty collection from an unreadable store.
var ErrUnavailable = errors.New("store unavailable")

// Store is the persistence contract consumed by the analysis engine and
// the API surface.
type Store interface {
	// Whitelist returns all whitelisted domains in insertion order
	Whitelist(ctx context.Context) ([]string, error)

	// IsWhitelisted reports whether the domain is whitelisted
	IsWhitelisted(ctx context.Context, domain string) (bool, error)

	// AddToWhitelist adds a domain, returning true if it was newly
	// added and false if it was already present
	AddToWhitelist(ctx context.Context, domain string) (bool, error)

	// RemoveFromWhitelist removes a domain; absent domains are a no-op
	RemoveFromWhitelist(ctx context.Context, domain string) error

	// AppendHistory prepends a record and truncates the log to the
	// configured capacity
	AppendHistory(ctx context.Context, rec models.ScanRecord) error

	// History returns scan records, most recent first
	History(ctx context.Context) ([]models.ScanRecord, error)

	// Features returns the persisted feature flags
	Features(ctx context.Context) (models.FeatureFlags, error)

	// SetFeatures replaces the persisted feature flags
	SetFeatures(ctx context.Context, flags models.FeatureFlags) error

	// Patterns returns the persisted URL pattern rules
	Patterns(ctx context.Context) ([]models.PatternRule, error)

	// AddPattern appends a URL pattern rule
	AddPattern(ctx context.Context, rule models.PatternRule) error
}

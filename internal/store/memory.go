package store

import (
	"context"
	"strings"
	"sync"

	"phishguard-lab/internal/domain/models"
)

// MemoryStore keeps all state in process memory. It is the default
// backend and the reference implementation of the Store contract.
type MemoryStore struct {
	mu        sync.Mutex
	capacity  int
	whitelist []string
	history   []models.ScanRecord
	features  models.FeatureFlags
	patterns  []models.PatternRule
}

// NewMemoryStore creates an empty in-memory store seeded with the
// configured feature flags
func NewMemoryStore(opts Options) *MemoryStore {
	return &MemoryStore{
		capacity: opts.capacity(),
		features: opts.flags(),
	}
}

func (m *MemoryStore) Whitelist(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.whitelist))
	copy(out, m.whitelist)
	return out, nil
}

func (m *MemoryStore) IsWhitelisted(_ context.Context, domain string) (bool, error) {
	domain = strings.ToLower(domain)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.whitelist {
		if d == domain {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) AddToWhitelist(_ context.Context, domain string) (bool, error) {
	domain = strings.ToLower(domain)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.whitelist {
		if d == domain {
			return false, nil
		}
	}
	m.whitelist = append(m.whitelist, domain)
	return true, nil
}

func (m *MemoryStore) RemoveFromWhitelist(_ context.Context, domain string) error {
	domain = strings.ToLower(domain)
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.whitelist[:0]
	for _, d := range m.whitelist {
		if d != domain {
			kept = append(kept, d)
		}
	}
	m.whitelist = kept
	return nil
}

func (m *MemoryStore) AppendHistory(_ context.Context, rec models.ScanRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append([]models.ScanRecord{rec}, m.history...)
	if len(m.history) > m.capacity {
		m.history = m.history[:m.capacity]
	}
	return nil
}

func (m *MemoryStore) History(_ context.Context) ([]models.ScanRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ScanRecord, len(m.history))
	copy(out, m.history)
	return out, nil
}

func (m *MemoryStore) Features(_ context.Context) (models.FeatureFlags, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.features, nil
}

func (m *MemoryStore) SetFeatures(_ context.Context, flags models.FeatureFlags) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.features = flags
	return nil
}

func (m *MemoryStore) Patterns(_ context.Context) ([]models.PatternRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.PatternRule, len(m.patterns))
	copy(out, m.patterns)
	return out, nil
}

func (m *MemoryStore) AddPattern(_ context.Context, rule models.PatternRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns = append(m.patterns, rule)
	return nil
}

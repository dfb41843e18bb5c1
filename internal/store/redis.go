package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"

	"phishguard-lab/internal/domain/models"
	"phishguard-lab/internal/infrastructure/cache"
	"phishguard-lab/pkg/logger"
)

// RedisStore persists state as JSON blobs under the extension storage
// schema keys. Mutations are whole-collection read-modify-write cycles;
// the store mutex serializes them so two writers in the same process
// cannot clobber each other's updates.
type RedisStore struct {
	mu       sync.Mutex
	cache    *cache.RedisCache
	capacity int
	defaults models.FeatureFlags
	logger   *logger.Logger
}

// NewRedisStore creates a Redis-backed store
func NewRedisStore(c *cache.RedisCache, opts Options, log *logger.Logger) *RedisStore {
	return &RedisStore{
		cache:    c,
		capacity: opts.capacity(),
		defaults: opts.flags(),
		logger:   log.WithComponent("redis-store"),
	}
}

func (s *RedisStore) getList(ctx context.Context, key string, dest any) error {
	err := s.cache.GetJSON(ctx, key, dest)
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: read %s: %v", ErrUnavailable, key, err)
	}
	return nil
}

func (s *RedisStore) setList(ctx context.Context, key string, value any) error {
	if err := s.cache.SetJSON(ctx, key, value, 0); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrUnavailable, key, err)
	}
	return nil
}

func (s *RedisStore) Whitelist(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var whitelist []string
	if err := s.getList(ctx, cache.KeyWhitelist, &whitelist); err != nil {
		return nil, err
	}
	return whitelist, nil
}

func (s *RedisStore) IsWhitelisted(ctx context.Context, domain string) (bool, error) {
	whitelist, err := s.Whitelist(ctx)
	if err != nil {
		return false, err
	}
	domain = strings.ToLower(domain)
	for _, d := range whitelist {
		if d == domain {
			return true, nil
		}
	}
	return false, nil
}

func (s *RedisStore) AddToWhitelist(ctx context.Context, domain string) (bool, error) {
	domain = strings.ToLower(domain)

	s.mu.Lock()
	defer s.mu.Unlock()
	var whitelist []string
	if err := s.getList(ctx, cache.KeyWhitelist, &whitelist); err != nil {
		return false, err
	}
	for _, d := range whitelist {
		if d == domain {
			return false, nil
		}
	}
	whitelist = append(whitelist, domain)
	if err := s.setList(ctx, cache.KeyWhitelist, whitelist); err != nil {
		return false, err
	}
	s.logger.Info().Str("domain", domain).Msg("added to whitelist")
	return true, nil
}

func (s *RedisStore) RemoveFromWhitelist(ctx context.Context, domain string) error {
	domain = strings.ToLower(domain)

	s.mu.Lock()
	defer s.mu.Unlock()
	var whitelist []string
	if err := s.getList(ctx, cache.KeyWhitelist, &whitelist); err != nil {
		return err
	}
	kept := whitelist[:0]
	for _, d := range whitelist {
		if d != domain {
			kept = append(kept, d)
		}
	}
	return s.setList(ctx, cache.KeyWhitelist, kept)
}

func (s *RedisStore) AppendHistory(ctx context.Context, rec models.ScanRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var history []models.ScanRecord
	if err := s.getList(ctx, cache.KeyScanHistory, &history); err != nil {
		return err
	}
	history = append([]models.ScanRecord{rec}, history...)
	if len(history) > s.capacity {
		history = history[:s.capacity]
	}
	return s.setList(ctx, cache.KeyScanHistory, history)
}

func (s *RedisStore) History(ctx context.Context) ([]models.ScanRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var history []models.ScanRecord
	if err := s.getList(ctx, cache.KeyScanHistory, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func (s *RedisStore) Features(ctx context.Context) (models.FeatureFlags, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	flags := s.defaults
	err := s.cache.GetJSON(ctx, cache.KeyFeatures, &flags)
	if err != nil && !errors.Is(err, redis.Nil) {
		return flags, fmt.Errorf("%w: read %s: %v", ErrUnavailable, cache.KeyFeatures, err)
	}
	return flags, nil
}

func (s *RedisStore) SetFeatures(ctx context.Context, flags models.FeatureFlags) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setList(ctx, cache.KeyFeatures, flags)
}

func (s *RedisStore) Patterns(ctx context.Context) ([]models.PatternRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var patterns []models.PatternRule
	if err := s.getList(ctx, cache.KeyPatterns, &patterns); err != nil {
		return nil, err
	}
	return patterns, nil
}

func (s *RedisStore) AddPattern(ctx context.Context, rule models.PatternRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var patterns []models.PatternRule
	if err := s.getList(ctx, cache.KeyPatterns, &patterns); err != nil {
		return err
	}
	patterns = append(patterns, rule)
	return s.setList(ctx, cache.KeyPatterns, patterns)
}

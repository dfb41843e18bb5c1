package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"phishguard-lab/internal/domain/models"
	"phishguard-lab/pkg/logger"
)

// PostgresStore persists state in relational tables. History entries
// past capacity are trimmed inside the insert transaction so the log
// can never exceed the configured row count.
type PostgresStore struct {
	mu       sync.Mutex
	pool     *pgxpool.Pool
	capacity int
	defaults models.FeatureFlags
	logger   *logger.Logger
}

// NewPostgresStore creates a Postgres-backed store
func NewPostgresStore(pool *pgxpool.Pool, opts Options, log *logger.Logger) *PostgresStore {
	return &PostgresStore{
		pool:     pool,
		capacity: opts.capacity(),
		defaults: opts.flags(),
		logger:   log.WithComponent("postgres-store"),
	}
}

// factorsArray returns a non-nil slice so the risk_factors TEXT[]
// column never receives an explicit NULL.
func factorsArray(factors []string) []string {
	if factors == nil {
		return []string{}
	}
	return factors
}

// Migrate creates the schema if it does not exist
func (s *PostgresStore) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS whitelist (
			domain     TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			position   BIGSERIAL
		)`,
		`CREATE TABLE IF NOT EXISTS scan_history (
			id           UUID PRIMARY KEY,
			url          TEXT NOT NULL,
			domain       TEXT NOT NULL,
			risk_level   TEXT NOT NULL,
			risk_score   DOUBLE PRECISION NOT NULL,
			risk_factors TEXT[] NOT NULL DEFAULT '{}',
			reported     BOOLEAN NOT NULL DEFAULT false,
			scanned_at   TIMESTAMPTZ NOT NULL,
			position     BIGSERIAL
		)`,
		`CREATE TABLE IF NOT EXISTS phishing_patterns (
			pattern  TEXT PRIMARY KEY,
			score    DOUBLE PRECISION NOT NULL,
			position BIGSERIAL
		)`,
		`CREATE TABLE IF NOT EXISTS feature_flags (
			id               BOOLEAN PRIMARY KEY DEFAULT true,
			url_analysis     BOOLEAN NOT NULL,
			content_analysis BOOLEAN NOT NULL,
			brand_protection BOOLEAN NOT NULL,
			real_time_alerts BOOLEAN NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%w: migrate: %v", ErrUnavailable, err)
		}
	}
	return nil
}

func (s *PostgresStore) Whitelist(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT domain FROM whitelist ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("%w: query whitelist: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var whitelist []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("%w: scan whitelist: %v", ErrUnavailable, err)
		}
		whitelist = append(whitelist, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read whitelist: %v", ErrUnavailable, err)
	}
	return whitelist, nil
}

func (s *PostgresStore) IsWhitelisted(ctx context.Context, domain string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM whitelist WHERE domain = $1)`,
		strings.ToLower(domain),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: check whitelist: %v", ErrUnavailable, err)
	}
	return exists, nil
}

func (s *PostgresStore) AddToWhitelist(ctx context.Context, domain string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tag, err := s.pool.Exec(ctx,
		`INSERT INTO whitelist (domain) VALUES ($1) ON CONFLICT (domain) DO NOTHING`,
		strings.ToLower(domain),
	)
	if err != nil {
		return false, fmt.Errorf("%w: add to whitelist: %v", ErrUnavailable, err)
	}
	added := tag.RowsAffected() > 0
	if added {
		s.logger.Info().Str("domain", domain).Msg("added to whitelist")
	}
	return added, nil
}

func (s *PostgresStore) RemoveFromWhitelist(ctx context.Context, domain string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.pool.Exec(ctx,
		`DELETE FROM whitelist WHERE domain = $1`, strings.ToLower(domain),
	); err != nil {
		return fmt.Errorf("%w: remove from whitelist: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) AppendHistory(ctx context.Context, rec models.ScanRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin history insert: %v", ErrUnavailable, err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO scan_history (id, url, domain, risk_level, risk_score, risk_factors, reported, scanned_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.URL, rec.Domain, string(rec.RiskLevel), rec.RiskScore, factorsArray(rec.RiskFactors), rec.Reported, rec.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("%w: insert history: %v", ErrUnavailable, err)
	}

	_, err = tx.Exec(ctx,
		`DELETE FROM scan_history WHERE position NOT IN (
			SELECT position FROM scan_history ORDER BY position DESC LIMIT $1
		)`, s.capacity,
	)
	if err != nil {
		return fmt.Errorf("%w: trim history: %v", ErrUnavailable, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit history insert: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) History(ctx context.Context) ([]models.ScanRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, url, domain, risk_level, risk_score, risk_factors, reported, scanned_at
		 FROM scan_history ORDER BY position DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: query history: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var history []models.ScanRecord
	for rows.Next() {
		var rec models.ScanRecord
		var level string
		if err := rows.Scan(&rec.ID, &rec.URL, &rec.Domain, &level, &rec.RiskScore, &rec.RiskFactors, &rec.Reported, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("%w: scan history: %v", ErrUnavailable, err)
		}
		rec.RiskLevel = models.RiskLevel(level)
		history = append(history, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read history: %v", ErrUnavailable, err)
	}
	return history, nil
}

func (s *PostgresStore) Features(ctx context.Context) (models.FeatureFlags, error) {
	flags := s.defaults
	err := s.pool.QueryRow(ctx,
		`SELECT url_analysis, content_analysis, brand_protection, real_time_alerts FROM feature_flags WHERE id`,
	).Scan(&flags.URLAnalysis, &flags.ContentAnalysis, &flags.BrandProtection, &flags.RealTimeAlerts)
	if errors.Is(err, pgx.ErrNoRows) {
		return flags, nil
	}
	if err != nil {
		return flags, fmt.Errorf("%w: read feature flags: %v", ErrUnavailable, err)
	}
	return flags, nil
}

func (s *PostgresStore) SetFeatures(ctx context.Context, flags models.FeatureFlags) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO feature_flags (id, url_analysis, content_analysis, brand_protection, real_time_alerts)
		 VALUES (true, $1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET
			url_analysis = EXCLUDED.url_analysis,
			content_analysis = EXCLUDED.content_analysis,
			brand_protection = EXCLUDED.brand_protection,
			real_time_alerts = EXCLUDED.real_time_alerts`,
		flags.URLAnalysis, flags.ContentAnalysis, flags.BrandProtection, flags.RealTimeAlerts,
	)
	if err != nil {
		return fmt.Errorf("%w: write feature flags: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) Patterns(ctx context.Context) ([]models.PatternRule, error) {
	rows, err := s.pool.Query(ctx, `SELECT pattern, score FROM phishing_patterns ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("%w: query patterns: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var patterns []models.PatternRule
	for rows.Next() {
		var r models.PatternRule
		if err := rows.Scan(&r.Pattern, &r.Score); err != nil {
			return nil, fmt.Errorf("%w: scan patterns: %v", ErrUnavailable, err)
		}
		patterns = append(patterns, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read patterns: %v", ErrUnavailable, err)
	}
	return patterns, nil
}

func (s *PostgresStore) AddPattern(ctx context.Context, rule models.PatternRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO phishing_patterns (pattern, score) VALUES ($1, $2)
		 ON CONFLICT (pattern) DO UPDATE SET score = EXCLUDED.score`,
		rule.Pattern, rule.Score,
	)
	if err != nil {
		return fmt.Errorf("%w: add pattern: %v", ErrUnavailable, err)
	}
	return nil
}

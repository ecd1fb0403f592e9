// Package settings manages the local sqlite-backed key-value store for view
// preferences and the cached last-known-good stats snapshot.
package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Import modernc.org/sqlite as a blank import to register the driver
	_ "modernc.org/sqlite"
)

// Setting keys persisted across view sessions.
const (
	KeyViewMode = "view-mode"
	KeyPeriod   = "usage-period"
)

// Store wraps the SQL database connection with application-specific methods.
type Store struct {
	*sql.DB
	path string
}

// Open creates a new store connection and initializes the schema.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create settings directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings store: %w", err)
	}

	if err := sqlDB.PingContext(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to settings store: %w", err)
	}

	s := &Store{DB: sqlDB, path: path}

	if err := s.configure(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to configure settings store: %w", err)
	}
	if err := s.createSchema(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to create settings schema: %w", err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// configure sets up database pragmas.
func (s *Store) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := s.ExecContext(context.Background(), pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}
	return nil
}

func (s *Store) createSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS stats_cache (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		period_days INTEGER NOT NULL,
		payload TEXT NOT NULL,
		fetched_at DATETIME NOT NULL
	);
	`
	_, err := s.ExecContext(context.Background(), query)
	return err
}

// Get returns the stored value for key, or fallback when the key is absent.
func (s *Store) Get(key, fallback string) string {
	var value string
	err := s.QueryRowContext(context.Background(),
		"SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		return fallback
	}
	return value
}

// Set writes the value for key, replacing any previous value.
func (s *Store) Set(key, value string) error {
	_, err := s.ExecContext(context.Background(), `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return fmt.Errorf("failed to persist setting %s: %w", key, err)
	}
	return nil
}

// CachedStats is a persisted stats snapshot with its fetch metadata.
type CachedStats struct {
	PeriodDays int
	Payload    []byte
	FetchedAt  time.Time
}

// SaveStatsSnapshot replaces the cached snapshot with a fresh one.
func (s *Store) SaveStatsSnapshot(periodDays int, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode stats snapshot: %w", err)
	}
	_, err = s.ExecContext(context.Background(), `
		INSERT INTO stats_cache (id, period_days, payload, fetched_at) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			period_days = excluded.period_days,
			payload = excluded.payload,
			fetched_at = excluded.fetched_at`,
		periodDays, string(raw), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to persist stats snapshot: %w", err)
	}
	return nil
}

// LoadStatsSnapshot returns the cached snapshot, or nil when none exists.
func (s *Store) LoadStatsSnapshot() (*CachedStats, error) {
	var cs CachedStats
	var payload string
	err := s.QueryRowContext(context.Background(),
		"SELECT period_days, payload, fetched_at FROM stats_cache WHERE id = 1").
		Scan(&cs.PeriodDays, &payload, &cs.FetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load stats snapshot: %w", err)
	}
	cs.Payload = []byte(payload)
	return &cs, nil
}

// Close closes the store, checkpointing the WAL first.
func (s *Store) Close() error {
	_, _ = s.ExecContext(context.Background(), "PRAGMA wal_checkpoint(TRUNCATE)")
	return s.DB.Close()
}

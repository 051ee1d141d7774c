// Package usage records per-request accounting metadata in SQLite and
// prunes it on a schedule. A record carries provider, model, mode, latency,
// and outcome, never message content or credentials, so the store holds no
// conversation history.
package usage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Record is one request's accounting entry.
type Record struct {
	// RequestID correlates the record with request logs.
	RequestID string

	// Provider is the provider type that served the request.
	Provider string

	// Model is the requested model identifier.
	Model string

	// Mode is "bulk", "stream", or "models".
	Mode string

	// Status is "ok" or "error".
	Status string

	// Duration is the wall-clock time the request took.
	Duration time.Duration

	// CreatedAt is when the record was written. Zero means now.
	CreatedAt time.Time
}

// Store persists usage records in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the usage database at dbPath.
func Open(dbPath string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open usage database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize usage schema: %w", err)
	}
	return s, nil
}

// initSchema creates the usage table if it doesn't exist.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS usage_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		request_id TEXT NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		mode TEXT NOT NULL,
		status TEXT NOT NULL,
		duration_ms INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_usage_created_at ON usage_records(created_at);
	CREATE INDEX IF NOT EXISTS idx_usage_provider ON usage_records(provider);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Insert writes one usage record.
func (s *Store) Insert(ctx context.Context, rec Record) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO usage_records (request_id, provider, model, mode, status, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.RequestID, rec.Provider, rec.Model, rec.Mode, rec.Status,
		rec.Duration.Milliseconds(), createdAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert usage record: %w", err)
	}
	return nil
}

// CountSince returns the number of records written at or after cutoff.
func (s *Store) CountSince(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM usage_records WHERE created_at >= ?`, cutoff.Unix(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count usage records: %w", err)
	}
	return count, nil
}

// DeleteBefore removes records older than cutoff and returns how many were
// deleted.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM usage_records WHERE created_at < ?`, cutoff.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete usage records: %w", err)
	}
	deleted, _ := res.RowsAffected()
	return deleted, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

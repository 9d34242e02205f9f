package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/jonesrussell/shogo/internal/logger"
)

// Connection pool settings.
const (
	// DefaultMaxOpenConns is the default maximum number of open connections
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections
	DefaultMaxIdleConns = 5
	// DefaultConnMaxLifetime is the default maximum connection lifetime
	DefaultConnMaxLifetime = 5 * time.Minute
	// DefaultPingTimeout is the default timeout for ping operations
	DefaultPingTimeout = 5 * time.Second
)

const createProfilesTable = `
CREATE TABLE IF NOT EXISTS company_profiles (
	url_hash     TEXT PRIMARY KEY,
	url          TEXT NOT NULL,
	final_url    TEXT NOT NULL DEFAULT '',
	given_name   TEXT NOT NULL DEFAULT '',
	row_id       TEXT NOT NULL DEFAULT '',
	run_id       TEXT NOT NULL DEFAULT '',
	status_code  INTEGER NOT NULL DEFAULT 0,
	outcome      TEXT NOT NULL,
	company      JSONB NOT NULL,
	site         JSONB NOT NULL,
	error        TEXT NOT NULL DEFAULT '',
	elapsed_ms   BIGINT NOT NULL DEFAULT 0,
	processed_at TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const upsertProfile = `
INSERT INTO company_profiles (
	url_hash, url, final_url, given_name, row_id, run_id, status_code,
	outcome, company, site, error, elapsed_ms, processed_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (url_hash) DO UPDATE SET
	url = EXCLUDED.url,
	final_url = EXCLUDED.final_url,
	given_name = EXCLUDED.given_name,
	row_id = EXCLUDED.row_id,
	run_id = EXCLUDED.run_id,
	status_code = EXCLUDED.status_code,
	outcome = EXCLUDED.outcome,
	company = EXCLUDED.company,
	site = EXCLUDED.site,
	error = EXCLUDED.error,
	elapsed_ms = EXCLUDED.elapsed_ms,
	processed_at = EXCLUDED.processed_at,
	updated_at = now()`

// Postgres upserts records into the company_profiles table, keyed by
// normalized URL hash.
type Postgres struct {
	db  *sqlx.DB
	log logger.Interface
}

// NewPostgres connects to dsn, configures the connection pool, and
// ensures the results table exists.
func NewPostgres(dsn string, log logger.Interface) (*Postgres, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), DefaultPingTimeout)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", pingErr)
	}

	sink := NewPostgresWithDB(db, log)
	if err := sink.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return sink, nil
}

// NewPostgresWithDB wraps an existing connection. The caller keeps
// ownership of schema management.
func NewPostgresWithDB(db *sqlx.DB, log logger.Interface) *Postgres {
	return &Postgres{db: db, log: log}
}

func (s *Postgres) ensureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createProfilesTable); err != nil {
		return fmt.Errorf("failed to create company_profiles table: %w", err)
	}
	return nil
}

// Store upserts rec. A record for an already-stored URL replaces the
// previous row.
func (s *Postgres) Store(ctx context.Context, rec *Record) error {
	company, err := json.Marshal(rec.Company)
	if err != nil {
		return fmt.Errorf("failed to marshal company result: %w", err)
	}
	site, err := json.Marshal(rec.Site)
	if err != nil {
		return fmt.Errorf("failed to marshal site info: %w", err)
	}

	_, err = s.db.ExecContext(ctx, upsertProfile,
		rec.Key(),
		rec.URL,
		rec.FinalURL,
		rec.GivenName,
		rec.RowID,
		rec.RunID,
		rec.StatusCode,
		rec.Outcome,
		company,
		site,
		rec.Error,
		rec.ElapsedMS,
		rec.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}

	s.log.Debug("Stored record",
		"url", rec.URL,
		"outcome", rec.Outcome,
	)
	return nil
}

// Close closes the database connection.
func (s *Postgres) Close() error {
	return s.db.Close()
}

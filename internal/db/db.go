// Package db provides PostgreSQL persistence for analyses and the
// historical signals the providers query.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the tables the service needs if they are absent.
func (db *DB) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id UUID PRIMARY KEY,
			title TEXT NOT NULL,
			company TEXT NOT NULL,
			company_normalized TEXT NOT NULL,
			source_url TEXT,
			platform TEXT,
			ghost_probability DOUBLE PRECISION NOT NULL,
			risk_level TEXT NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			degraded BOOLEAN NOT NULL DEFAULT FALSE,
			algorithm_version TEXT NOT NULL,
			breakdown JSONB,
			analyzed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_company
			ON analyses (company_normalized, analyzed_at DESC)`,
		`CREATE TABLE IF NOT EXISTS key_factors (
			id BIGSERIAL PRIMARY KEY,
			analysis_id UUID NOT NULL REFERENCES analyses (id) ON DELETE CASCADE,
			factor_type TEXT NOT NULL,
			description TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS postings (
			id BIGSERIAL PRIMARY KEY,
			fingerprint TEXT NOT NULL,
			company_normalized TEXT NOT NULL,
			title_normalized TEXT NOT NULL,
			source_url TEXT,
			platform TEXT,
			seen_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_postings_fingerprint
			ON postings (fingerprint, seen_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_postings_company_title
			ON postings (company_normalized, title_normalized, seen_at DESC)`,
		`CREATE TABLE IF NOT EXISTS engagement_outcomes (
			id BIGSERIAL PRIMARY KEY,
			company_normalized TEXT NOT NULL,
			responded BOOLEAN NOT NULL DEFAULT FALSE,
			interview BOOLEAN NOT NULL DEFAULT FALSE,
			hired BOOLEAN NOT NULL DEFAULT FALSE,
			recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_engagement_company
			ON engagement_outcomes (company_normalized, recorded_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

// Package db provides PostgreSQL storage for job tracking and annotation
// records.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database.
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

// Close closes the connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Migrate applies the schema. Idempotent; safe to run at startup.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS annotations (
		id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		content     TEXT NOT NULL,
		status      TEXT NOT NULL DEFAULT 'pending',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		tracking_id      UUID NOT NULL UNIQUE REFERENCES annotations(id),

		job_url          TEXT NOT NULL,
		source_site      TEXT NOT NULL DEFAULT '',
		platform_job_id  TEXT,

		company          TEXT NOT NULL,
		title            TEXT NOT NULL,
		salary           TEXT NOT NULL DEFAULT 'Not Specified',
		city             TEXT NOT NULL DEFAULT 'Not Specified',
		state            TEXT NOT NULL DEFAULT 'Not Specified',
		country          TEXT NOT NULL DEFAULT 'Not Specified',
		experience       TEXT[] NOT NULL DEFAULT '{}',
		technical_skills TEXT[] NOT NULL DEFAULT '{}',
		summary          TEXT,
		work_arrangement TEXT NOT NULL DEFAULT 'not_specified',
		work_location    TEXT NOT NULL DEFAULT 'not_specified',
		company_details  TEXT,

		is_applied       BOOLEAN NOT NULL DEFAULT FALSE,
		is_shortlisted   BOOLEAN NOT NULL DEFAULT FALSE,
		is_interviewed   BOOLEAN NOT NULL DEFAULT FALSE,
		is_offered       BOOLEAN NOT NULL DEFAULT FALSE,
		is_accepted      BOOLEAN NOT NULL DEFAULT FALSE,
		is_declined      BOOLEAN NOT NULL DEFAULT FALSE,
		is_joined        BOOLEAN NOT NULL DEFAULT FALSE,
		is_rejected      BOOLEAN NOT NULL DEFAULT FALSE,
		applied_at       TIMESTAMPTZ,
		shortlisted_at   TIMESTAMPTZ,
		interviewed_at   TIMESTAMPTZ,
		offered_at       TIMESTAMPTZ,
		accepted_at      TIMESTAMPTZ,
		declined_at      TIMESTAMPTZ,
		joined_at        TIMESTAMPTZ,
		rejected_at      TIMESTAMPTZ,
		offered_salary   TEXT,

		resume_generated BOOLEAN NOT NULL DEFAULT FALSE,
		resume_path      TEXT NOT NULL DEFAULT '',
		processed_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		statuses         JSONB NOT NULL DEFAULT '[]',
		search_queries   TEXT[],
		search_lang      TEXT,
		search_results   JSONB,
		search_titles    JSONB,

		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`ALTER TABLE jobs ADD COLUMN IF NOT EXISTS search_doc tsvector
		GENERATED ALWAYS AS (
			to_tsvector('english',
				company || ' ' || title || ' ' ||
				city || ' ' || state || ' ' || country || ' ' ||
				coalesce(summary, '') || ' ' ||
				array_to_string(technical_skills, ' ') || ' ' ||
				array_to_string(experience, ' '))
		) STORED`,
	`CREATE INDEX IF NOT EXISTS jobs_search_doc_idx ON jobs USING GIN (search_doc)`,
	`CREATE INDEX IF NOT EXISTS jobs_source_site_idx ON jobs (source_site)`,
	`CREATE INDEX IF NOT EXISTS jobs_created_at_idx ON jobs (created_at DESC)`,
}

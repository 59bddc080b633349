// Package datastore persists evaluation records and batch runs in Postgres.
// Stores are append-only: records are created once and never updated or
// deleted. The *sql.DB handle is constructed by the caller and injected into
// each store; there is no package-level connection.
package datastore

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Open connects to Postgres with the given DSN and verifies the connection.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(time.Hour)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the tables used by the stores when they do not exist.
func EnsureSchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS batch_runs (
			id UUID PRIMARY KEY,
			manifest_path TEXT NOT NULL,
			started_at TIMESTAMPTZ NOT NULL,
			completed_at TIMESTAMPTZ NOT NULL,
			summary JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS evaluation_records (
			id UUID PRIMARY KEY,
			batch_run_id UUID REFERENCES batch_runs(id),
			filename TEXT NOT NULL,
			reference_text TEXT NOT NULL,
			transcript TEXT NOT NULL,
			similarity DOUBLE PRECISION NOT NULL,
			transformed_similarity DOUBLE PRECISION,
			wpm DOUBLE PRECISION NOT NULL,
			active_seconds DOUBLE PRECISION NOT NULL,
			word_count INTEGER NOT NULL,
			pause_count INTEGER NOT NULL,
			long_pauses JSONB NOT NULL,
			signal_stats JSONB,
			word_error_rate DOUBLE PRECISION,
			rubric JSONB NOT NULL,
			artifact_key TEXT,
			created_at TIMESTAMPTZ NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

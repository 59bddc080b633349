package datastore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// BatchRunStore persists BatchRuns.
type BatchRunStore struct {
	DB *sql.DB
}

// NewBatchRunStore creates a store over the given connection.
func NewBatchRunStore(db *sql.DB) *BatchRunStore {
	return &BatchRunStore{DB: db}
}

// Create inserts a completed batch run. The caller assigns the ID up front
// so evaluation records created during the run can reference it.
func (s *BatchRunStore) Create(ctx context.Context, run *BatchRun) error {
	if s.DB == nil {
		return fmt.Errorf("batch run store: database connection not initialized")
	}
	const query = `
		INSERT INTO batch_runs (id, manifest_path, started_at, completed_at, summary)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.DB.ExecContext(ctx, query,
		run.ID, run.ManifestPath, run.StartedAt, run.CompletedAt, []byte(run.Summary))
	if err != nil {
		return fmt.Errorf("insert batch run %q: %w", run.ID, err)
	}
	return nil
}

// GetByID fetches one batch run. sql.ErrNoRows is returned when the ID is
// unknown.
func (s *BatchRunStore) GetByID(ctx context.Context, id string) (*BatchRun, error) {
	const query = `
		SELECT id, manifest_path, started_at, completed_at, summary
		FROM batch_runs
		WHERE id = $1
	`
	var run BatchRun
	var summary []byte
	err := s.DB.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &run.ManifestPath, &run.StartedAt, &run.CompletedAt, &summary)
	if err != nil {
		return nil, err
	}
	run.Summary = json.RawMessage(summary)
	return &run, nil
}

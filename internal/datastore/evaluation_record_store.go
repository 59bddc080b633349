package datastore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EvaluationRecordStore persists EvaluationRecords.
type EvaluationRecordStore struct {
	DB *sql.DB
}

// NewEvaluationRecordStore creates a store over the given connection.
func NewEvaluationRecordStore(db *sql.DB) *EvaluationRecordStore {
	return &EvaluationRecordStore{DB: db}
}

// Create inserts a new record, assigning its ID and timestamp, and returns
// the assigned ID. Records are append-only; there is no update path.
func (s *EvaluationRecordStore) Create(ctx context.Context, record *EvaluationRecord) (string, error) {
	if s.DB == nil {
		return "", fmt.Errorf("evaluation record store: database connection not initialized")
	}
	record.ID = uuid.NewString()
	record.CreatedAt = time.Now().UTC()
	if record.LongPauses == nil {
		record.LongPauses = json.RawMessage("[]")
	}

	const query = `
		INSERT INTO evaluation_records (
			id, batch_run_id, filename, reference_text, transcript,
			similarity, transformed_similarity, wpm, active_seconds,
			word_count, pause_count, long_pauses, signal_stats,
			word_error_rate, rubric, artifact_key, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := s.DB.ExecContext(ctx, query,
		record.ID,
		record.BatchRunID,
		record.Filename,
		record.ReferenceText,
		record.Transcript,
		record.Similarity,
		record.TransformedSimilarity,
		record.WPM,
		record.ActiveSeconds,
		record.WordCount,
		record.PauseCount,
		[]byte(record.LongPauses),
		nullableJSON(record.SignalStats),
		record.WordErrorRate,
		[]byte(record.Rubric),
		record.ArtifactKey,
		record.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert evaluation record for %q: %w", record.Filename, err)
	}
	return record.ID, nil
}

// GetByID fetches one record. sql.ErrNoRows is returned when the ID is
// unknown.
func (s *EvaluationRecordStore) GetByID(ctx context.Context, id string) (*EvaluationRecord, error) {
	const query = `
		SELECT id, batch_run_id, filename, reference_text, transcript,
		       similarity, transformed_similarity, wpm, active_seconds,
		       word_count, pause_count, long_pauses, signal_stats,
		       word_error_rate, rubric, artifact_key, created_at
		FROM evaluation_records
		WHERE id = $1
	`
	return scanRecord(s.DB.QueryRowContext(ctx, query, id))
}

// ListByBatchRun returns the records persisted by one batch run, oldest
// first.
func (s *EvaluationRecordStore) ListByBatchRun(ctx context.Context, batchRunID string) ([]*EvaluationRecord, error) {
	const query = `
		SELECT id, batch_run_id, filename, reference_text, transcript,
		       similarity, transformed_similarity, wpm, active_seconds,
		       word_count, pause_count, long_pauses, signal_stats,
		       word_error_rate, rubric, artifact_key, created_at
		FROM evaluation_records
		WHERE batch_run_id = $1
		ORDER BY created_at
	`
	rows, err := s.DB.QueryContext(ctx, query, batchRunID)
	if err != nil {
		return nil, fmt.Errorf("list evaluation records for run %q: %w", batchRunID, err)
	}
	defer rows.Close()

	var records []*EvaluationRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*EvaluationRecord, error) {
	var record EvaluationRecord
	var longPauses, signalStats, rubric []byte
	err := row.Scan(
		&record.ID,
		&record.BatchRunID,
		&record.Filename,
		&record.ReferenceText,
		&record.Transcript,
		&record.Similarity,
		&record.TransformedSimilarity,
		&record.WPM,
		&record.ActiveSeconds,
		&record.WordCount,
		&record.PauseCount,
		&longPauses,
		&signalStats,
		&record.WordErrorRate,
		&rubric,
		&record.ArtifactKey,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	record.LongPauses = json.RawMessage(longPauses)
	if signalStats != nil {
		record.SignalStats = json.RawMessage(signalStats)
	}
	record.Rubric = json.RawMessage(rubric)
	return &record, nil
}

// nullableJSON maps an empty RawMessage to SQL NULL.
func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

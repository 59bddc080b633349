package datastore

import (
	"database/sql"
	"encoding/json"
	"time"
)

// EvaluationRecord is the persisted outcome of one successfully matched
// reading: the verification result, the fluency report, the externally
// supplied rubric evaluation, and provenance. It is created once per
// accepted work item and never mutated afterwards.
type EvaluationRecord struct {
	ID                    string          `json:"id"`
	BatchRunID            sql.NullString  `json:"batch_run_id,omitempty"`
	Filename              string          `json:"filename"`
	ReferenceText         string          `json:"reference_text"`
	Transcript            string          `json:"transcript"`
	Similarity            float64         `json:"similarity"`
	TransformedSimilarity sql.NullFloat64 `json:"transformed_similarity,omitempty"`
	WPM                   float64         `json:"wpm"`
	ActiveSeconds         float64         `json:"active_seconds"`
	WordCount             int             `json:"word_count"`
	PauseCount            int             `json:"pause_count"`
	LongPauses            json.RawMessage `json:"long_pauses"`
	SignalStats           json.RawMessage `json:"signal_stats,omitempty"`
	WordErrorRate         sql.NullFloat64 `json:"word_error_rate,omitempty"`
	Rubric                json.RawMessage `json:"rubric"`
	ArtifactKey           sql.NullString  `json:"artifact_key,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
}

package datastore

import (
	"encoding/json"
	"time"
)

// BatchRun is the persisted trace of one batch execution: provenance plus
// the full summary the orchestrator produced. Written once after the run
// reaches its join barrier.
type BatchRun struct {
	ID           string          `json:"id"`
	ManifestPath string          `json:"manifest_path"`
	StartedAt    time.Time       `json:"started_at"`
	CompletedAt  time.Time       `json:"completed_at"`
	Summary      json.RawMessage `json:"summary"`
}

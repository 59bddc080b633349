package evaluationmanagement

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"reading-fluency-platform/backend/internal/batchengine"
	"reading-fluency-platform/backend/internal/datastore"
)

// RunFetcher is the read side of the batch run store.
// *datastore.BatchRunStore satisfies it.
type RunFetcher interface {
	GetByID(ctx context.Context, id string) (*datastore.BatchRun, error)
}

// BatchHandlers serves batch run execution and lookup. Manifest and InputDir
// are the configured defaults; a request may override either.
type BatchHandlers struct {
	Orchestrator *batchengine.Orchestrator
	Runs         RunFetcher
	Manifest     string
	InputDir     string
	Log          zerolog.Logger
}

// RunBatchRequest optionally overrides the configured manifest location.
type RunBatchRequest struct {
	ManifestPath string `json:"manifest_path"`
	InputDir     string `json:"input_dir"`
}

// RunBatchHandler executes a manifest batch synchronously and returns the
// run ID with the full per-item summary.
func (h *BatchHandlers) RunBatchHandler(c *gin.Context) {
	var req RunBatchRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload: " + err.Error()})
			return
		}
	}
	manifest := req.ManifestPath
	if manifest == "" {
		manifest = h.Manifest
	}
	inputDir := req.InputDir
	if inputDir == "" {
		inputDir = h.InputDir
	}

	run, summary, err := h.Orchestrator.Run(c.Request.Context(), manifest, inputDir)
	if err != nil {
		h.Log.Error().Err(err).Str("manifest", manifest).Msg("batch run failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "batch run failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"run_id":  run.ID,
		"summary": summary,
	})
}

// GetBatchRunHandler returns a stored batch run with its summary.
func (h *BatchHandlers) GetBatchRunHandler(c *gin.Context) {
	id := c.Param("id")
	run, err := h.Runs.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "batch run not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve batch run: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, run)
}

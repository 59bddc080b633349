// Package evaluationmanagement exposes the evaluation pipeline over HTTP:
// single-reading evaluation and manifest batch runs.
package evaluationmanagement

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"reading-fluency-platform/backend/internal/coreengine/evaluationengine"
	"reading-fluency-platform/backend/internal/datastore"
)

// RecordFetcher is the read side of the evaluation record store.
// *datastore.EvaluationRecordStore satisfies it.
type RecordFetcher interface {
	GetByID(ctx context.Context, id string) (*datastore.EvaluationRecord, error)
	ListByBatchRun(ctx context.Context, runID string) ([]*datastore.EvaluationRecord, error)
}

// EvaluationHandlers serves the single-reading evaluation endpoints.
type EvaluationHandlers struct {
	Engine  *evaluationengine.Engine
	Records RecordFetcher
	Log     zerolog.Logger
}

// CreateEvaluationHandler accepts a multipart form with a "text" field and
// an "audio" file, runs the full pipeline, and returns either the persisted
// record (201) or a structured rejection (422) when the transcript does not
// match the text.
func (h *EvaluationHandlers) CreateEvaluationHandler(c *gin.Context) {
	referenceText := c.PostForm("text")
	if referenceText == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text field is required"})
		return
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio file is required: " + err.Error()})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open audio file: " + err.Error()})
		return
	}
	defer file.Close()
	audio, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read audio file: " + err.Error()})
		return
	}

	record, rejection, err := h.Engine.Evaluate(c.Request.Context(), referenceText, audio, fileHeader.Filename)
	if err != nil {
		h.Log.Error().Err(err).Str("filename", fileHeader.Filename).Msg("evaluation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "evaluation failed: " + err.Error()})
		return
	}
	if rejection != nil {
		c.JSON(http.StatusUnprocessableEntity, rejection)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// GetEvaluationHandler returns one stored evaluation record.
func (h *EvaluationHandlers) GetEvaluationHandler(c *gin.Context) {
	record, err := h.Records.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "evaluation record not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve record: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, record)
}

// ListBatchRecordsHandler returns all evaluation records persisted by one
// batch run.
func (h *EvaluationHandlers) ListBatchRecordsHandler(c *gin.Context) {
	records, err := h.Records.ListByBatchRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list records: " + err.Error()})
		return
	}
	if records == nil {
		records = []*datastore.EvaluationRecord{}
	}
	c.JSON(http.StatusOK, records)
}

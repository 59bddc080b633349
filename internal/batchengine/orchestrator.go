package batchengine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"reading-fluency-platform/backend/internal/coreengine/evaluationengine"
	"reading-fluency-platform/backend/internal/datastore"
)

const defaultWorkerLimit = 8

// RunPersister is the slice of the datastore the orchestrator needs.
// *datastore.BatchRunStore satisfies it.
type RunPersister interface {
	Create(ctx context.Context, run *datastore.BatchRun) error
}

// Orchestrator fans out manifest work items across a bounded worker pool
// and joins all of them. Items are isolated: a rejection or failure of one
// item never aborts the others. Cancelling the context stops dispatch of
// new items; in-flight items observe the same context through the engine.
type Orchestrator struct {
	Engine      *evaluationengine.Engine
	Runs        RunPersister
	WorkerLimit int
	Log         zerolog.Logger
}

// Run executes the whole manifest and persists the batch run with its
// summary. The returned error covers run-level problems only (unreadable
// manifest, summary persistence); per-item outcomes live in the Summary.
func (o *Orchestrator) Run(ctx context.Context, manifestPath, inputDir string) (*datastore.BatchRun, *Summary, error) {
	entries, err := LoadManifest(manifestPath)
	if err != nil {
		return nil, nil, err
	}
	items, unmapped := ExpandManifest(entries, inputDir)

	runID := uuid.NewString()
	startedAt := time.Now().UTC()
	o.Log.Info().
		Str("run_id", runID).
		Str("manifest", manifestPath).
		Int("items", len(items)).
		Msg("batch run started")

	limit := o.WorkerLimit
	if limit <= 0 {
		limit = defaultWorkerLimit
	}

	results := make([]ItemResult, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, item := range items {
		if gctx.Err() != nil {
			results[i] = ItemResult{
				Filename: item.Filename,
				State:    StateSkipped,
				Reason:   "run canceled before dispatch",
			}
			continue
		}
		i, item := i, item
		g.Go(func() error {
			results[i] = o.runItem(gctx, runID, item)
			return nil
		})
	}
	// Workers never return errors; Wait is a pure join barrier.
	_ = g.Wait()

	for _, name := range unmapped {
		results = append(results, ItemResult{
			Filename: name,
			State:    StateSkipped,
			Reason:   "no reference text mapped in manifest",
		})
	}

	summary := summarize(runID, manifestPath, results)
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return nil, nil, fmt.Errorf("encode summary: %w", err)
	}
	run := &datastore.BatchRun{
		ID:           runID,
		ManifestPath: manifestPath,
		StartedAt:    startedAt,
		CompletedAt:  time.Now().UTC(),
		Summary:      summaryJSON,
	}
	if o.Runs != nil {
		// The run record is written even for a canceled run, against the
		// background context so its own insert is not cut short.
		if err := o.Runs.Create(context.WithoutCancel(ctx), run); err != nil {
			return nil, summary, err
		}
	}
	o.Log.Info().
		Str("run_id", runID).
		Int("done", summary.Done).
		Int("rejected", summary.Rejected).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Msg("batch run completed")
	return run, summary, nil
}

// runItem drives one work item through its full lifecycle and returns its
// terminal result. All errors are converted into a Failed result here.
func (o *Orchestrator) runItem(ctx context.Context, runID string, item WorkItem) ItemResult {
	log := o.Log.With().Str("run_id", runID).Str("filename", item.Filename).Logger()
	result := ItemResult{Filename: item.Filename, State: StatePending}

	audio, err := os.ReadFile(item.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn().Str("path", item.Path).Msg("audio file not found, skipping")
			return o.terminal(result, StateSkipped, "audio file not found")
		}
		return o.terminal(result, StateFailed, fmt.Sprintf("read audio: %v", err))
	}

	result.State = StateTranscribing
	original, err := o.Engine.Verify(ctx, audio, item.Filename, item.ReferenceText)
	if err != nil {
		return o.terminal(result, StateFailed, err.Error())
	}
	result.State = StateVerifyingOriginal
	result.Similarity = &original.Similarity
	result.Transcript = original.Transcript
	if !original.Match {
		log.Info().Float64("similarity", original.Similarity).Msg("reading rejected")
		return o.terminal(result, StateRejected, "transcript does not match reference text")
	}

	artifactKey, err := o.Engine.Artifacts.Put(ctx, "original", item.Filename, audio)
	if err != nil {
		return o.terminal(result, StateFailed, fmt.Sprintf("store original artifact: %v", err))
	}

	result.State = StateTransforming
	transformed, err := o.Engine.Transform.Transform(ctx, audio)
	if err != nil {
		return o.terminal(result, StateFailed, err.Error())
	}

	result.State = StateVerifyingTransformed
	verified, err := o.Engine.Verify(ctx, transformed, item.Filename, item.ReferenceText)
	if err != nil {
		return o.terminal(result, StateFailed, err.Error())
	}
	result.TransformedSimilarity = &verified.Similarity
	result.TransformedMatch = &verified.Match
	if verified.Match {
		// Only verified stages leave an artifact behind.
		if _, err := o.Engine.Artifacts.Put(ctx, "transformed", item.Filename, transformed); err != nil {
			return o.terminal(result, StateFailed, fmt.Sprintf("store transformed artifact: %v", err))
		}
	} else {
		log.Warn().Float64("similarity", verified.Similarity).Msg("transformed audio no longer matches, artifact withheld")
	}

	result.State = StatePersisting
	record, err := o.Engine.Finalize(ctx, item.ReferenceText, audio, item.Filename, original, &verified, runID, artifactKey)
	if err != nil {
		return o.terminal(result, StateFailed, err.Error())
	}
	result.RecordID = record.ID
	log.Info().Str("record_id", record.ID).Msg("item done")
	return o.terminal(result, StateDone, "")
}

func (o *Orchestrator) terminal(result ItemResult, state ItemState, reason string) ItemResult {
	result.State = state
	result.Reason = reason
	return result
}

// Package evaluationengine runs the per-reading pipeline: transcribe the
// audio, verify the transcript against the reference text, measure fluency,
// obtain the rubric evaluation, and persist the record.
package evaluationengine

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"reading-fluency-platform/backend/internal/coreengine/fluencymetrics"
	"reading-fluency-platform/backend/internal/coreengine/pausedetector"
	"reading-fluency-platform/backend/internal/coreengine/textmatch"
	"reading-fluency-platform/backend/internal/coreengine/vendoradapters"
	"reading-fluency-platform/backend/internal/datastore"
	"reading-fluency-platform/backend/internal/objectstore"
)

// SilenceSource selects the canonical silence detector for a deployment.
// Exactly one source feeds active-seconds; mixing both would double-subtract
// overlapping silence.
const (
	SilencePitchIntensity = "pitch_intensity"
	SilenceAmplitude      = "amplitude"
)

// RecordPersister is the slice of the datastore the engine needs.
// *datastore.EvaluationRecordStore satisfies it.
type RecordPersister interface {
	Create(ctx context.Context, record *datastore.EvaluationRecord) (string, error)
}

// Settings is the numeric contract of one engine instance. All values come
// from configuration; the engine has no built-in thresholds.
type Settings struct {
	MatchThreshold float64
	SilenceSource  string
	Thresholds     pausedetector.Thresholds
	Amplitude      fluencymetrics.AmplitudeOptions
}

// Engine wires the collaborators for per-reading evaluation. All fields are
// injected; the engine holds no global state and is safe for concurrent use
// as long as its collaborators are.
type Engine struct {
	Transcriber vendoradapters.Transcriber
	Transform   vendoradapters.AudioTransform
	Scorer      vendoradapters.RubricScorer
	Traces      vendoradapters.TraceExtractor
	Records     RecordPersister
	Artifacts   objectstore.ArtifactStore
	Settings    Settings
	Log         zerolog.Logger
}

// RejectionReport is the structured outcome of a reading whose transcript
// did not sufficiently match the reference text. It is a legitimate terminal
// result, not an error, and carries enough detail to diagnose the mismatch.
type RejectionReport struct {
	Reason     string  `json:"reason"`
	Similarity float64 `json:"similarity"`
	Transcript string  `json:"transcript"`
}

// Verify transcribes the audio and verifies the transcript against the
// reference text at the configured threshold.
func (e *Engine) Verify(ctx context.Context, audio []byte, filename, referenceText string) (textmatch.VerificationResult, error) {
	transcript, err := e.Transcriber.Transcribe(ctx, audio, filename)
	if err != nil {
		return textmatch.VerificationResult{}, err
	}
	result := textmatch.Verify(transcript, referenceText, e.Settings.MatchThreshold)
	e.Log.Debug().
		Str("filename", filename).
		Float64("similarity", result.Similarity).
		Bool("match", result.Match).
		Msg("transcript verified")
	return result, nil
}

// Fluency measures the reading: active speech duration, words per minute,
// and pause statistics from the configured silence source.
func (e *Engine) Fluency(ctx context.Context, audio []byte, filename, referenceText string) (*fluencymetrics.Report, error) {
	sample, err := fluencymetrics.DecodeWAV(audio)
	if err != nil {
		return nil, err
	}
	totalDuration := sample.Duration()

	report := &fluencymetrics.Report{WordCount: fluencymetrics.CountWords(referenceText)}

	switch e.Settings.SilenceSource {
	case SilenceAmplitude:
		silences := fluencymetrics.AmplitudeSilences(sample, e.Settings.Amplitude)
		report.LongPauses = silences
		report.PauseCount = len(silences)
		report.ActiveSeconds = fluencymetrics.ActiveSeconds(totalDuration, silences)
	case SilencePitchIntensity:
		pitch, intensity, err := e.Traces.Extract(ctx, audio, filename)
		if err != nil {
			return nil, fmt.Errorf("extract traces for %q: %w", filename, err)
		}
		detected, err := pausedetector.Detect(pitch, intensity, e.Settings.Thresholds)
		if err != nil {
			return nil, err
		}
		stats := pausedetector.Summarize(pitch, intensity)
		report.LongPauses = detected.LongPauses
		report.PauseCount = detected.SilentSegments
		report.ActiveSeconds = fluencymetrics.ActiveSeconds(totalDuration, detected.LongPauses)
		report.Signal = &stats
	default:
		return nil, fmt.Errorf("unknown silence source %q", e.Settings.SilenceSource)
	}

	report.WPM = fluencymetrics.WordsPerMinute(report.ActiveSeconds, report.WordCount)
	return report, nil
}

// Finalize runs the post-verification stages for an accepted reading:
// fluency measurement, rubric scoring, and record persistence. The original
// verification result is required; the transformed one is optional and only
// its similarity is recorded.
func (e *Engine) Finalize(ctx context.Context, referenceText string, audio []byte, filename string,
	original textmatch.VerificationResult, transformed *textmatch.VerificationResult,
	batchRunID, artifactKey string) (*datastore.EvaluationRecord, error) {

	report, err := e.Fluency(ctx, audio, filename, referenceText)
	if err != nil {
		return nil, err
	}

	wer := fluencymetrics.WordErrorRate(textmatch.Normalize(referenceText), textmatch.Normalize(original.Transcript))
	report.WordErrorRate = &wer

	rubric, err := e.Scorer.Score(ctx, referenceText, report.WPM, audio)
	if err != nil {
		return nil, err
	}

	record, err := buildRecord(referenceText, filename, original, transformed, report, rubric, batchRunID, artifactKey)
	if err != nil {
		return nil, err
	}
	if _, err := e.Records.Create(ctx, record); err != nil {
		return nil, err
	}
	e.Log.Info().
		Str("filename", filename).
		Str("record_id", record.ID).
		Float64("wpm", record.WPM).
		Msg("evaluation record persisted")
	return record, nil
}

// Evaluate is the single-reading boundary operation: it returns the full
// record for a matched reading or a RejectionReport when the transcript does
// not correspond to the reference text.
func (e *Engine) Evaluate(ctx context.Context, referenceText string, audio []byte, filename string) (*datastore.EvaluationRecord, *RejectionReport, error) {
	result, err := e.Verify(ctx, audio, filename, referenceText)
	if err != nil {
		return nil, nil, err
	}
	if !result.Match {
		return nil, &RejectionReport{
			Reason:     "the provided text does not match the audio",
			Similarity: result.Similarity,
			Transcript: result.Transcript,
		}, nil
	}

	artifactKey := ""
	if e.Artifacts != nil {
		key, err := e.Artifacts.Put(ctx, "original", filename, audio)
		if err != nil {
			return nil, nil, err
		}
		artifactKey = key
	}

	record, err := e.Finalize(ctx, referenceText, audio, filename, result, nil, "", artifactKey)
	if err != nil {
		return nil, nil, err
	}
	return record, nil, nil
}

func buildRecord(referenceText, filename string,
	original textmatch.VerificationResult, transformed *textmatch.VerificationResult,
	report *fluencymetrics.Report, rubric *vendoradapters.RubricEvaluation,
	batchRunID, artifactKey string) (*datastore.EvaluationRecord, error) {

	longPauses, err := json.Marshal(report.LongPauses)
	if err != nil {
		return nil, fmt.Errorf("encode pauses: %w", err)
	}
	rubricJSON, err := json.Marshal(rubric)
	if err != nil {
		return nil, fmt.Errorf("encode rubric: %w", err)
	}

	record := &datastore.EvaluationRecord{
		Filename:      filename,
		ReferenceText: referenceText,
		Transcript:    original.Transcript,
		Similarity:    original.Similarity,
		WPM:           report.WPM,
		ActiveSeconds: report.ActiveSeconds,
		WordCount:     report.WordCount,
		PauseCount:    report.PauseCount,
		LongPauses:    longPauses,
		Rubric:        rubricJSON,
	}
	if transformed != nil {
		record.TransformedSimilarity = sql.NullFloat64{Float64: transformed.Similarity, Valid: true}
	}
	if report.WordErrorRate != nil {
		record.WordErrorRate = sql.NullFloat64{Float64: *report.WordErrorRate, Valid: true}
	}
	if report.Signal != nil {
		stats, err := json.Marshal(report.Signal)
		if err != nil {
			return nil, fmt.Errorf("encode signal stats: %w", err)
		}
		record.SignalStats = stats
	}
	if batchRunID != "" {
		record.BatchRunID = sql.NullString{String: batchRunID, Valid: true}
	}
	if artifactKey != "" {
		record.ArtifactKey = sql.NullString{String: artifactKey, Valid: true}
	}
	return record, nil
}

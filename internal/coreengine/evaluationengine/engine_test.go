package evaluationengine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/rs/zerolog"

	"reading-fluency-platform/backend/internal/coreengine/fluencymetrics"
	"reading-fluency-platform/backend/internal/coreengine/pausedetector"
	"reading-fluency-platform/backend/internal/coreengine/vendoradapters"
	"reading-fluency-platform/backend/internal/datastore"
	"reading-fluency-platform/backend/internal/objectstore"
)

type memoryRecords struct {
	records []*datastore.EvaluationRecord
	err     error
}

func (m *memoryRecords) Create(_ context.Context, record *datastore.EvaluationRecord) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	record.ID = "rec-1"
	m.records = append(m.records, record)
	return record.ID, nil
}

// encodeWAV builds a mono 16-bit WAV file in memory for decoder-facing tests.
func encodeWAV(t *testing.T, samples []int, sampleRate int) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create temp wav: %v", err)
	}
	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Data:           samples,
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close temp wav: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read temp wav: %v", err)
	}
	return data
}

// loudSamples returns seconds of audible tone-level samples at the rate.
func loudSamples(seconds float64, sampleRate int) []int {
	n := int(seconds * float64(sampleRate))
	samples := make([]int, n)
	for i := range samples {
		samples[i] = 20000
	}
	return samples
}

func testEngine(records RecordPersister, transcriber vendoradapters.Transcriber) *Engine {
	return &Engine{
		Transcriber: transcriber,
		Transform:   &vendoradapters.MockTransform{},
		Scorer:      &vendoradapters.MockRubricScorer{},
		Traces:      &vendoradapters.MockTraceExtractor{},
		Records:     records,
		Settings: Settings{
			MatchThreshold: 0.45,
			SilenceSource:  SilenceAmplitude,
			Amplitude:      fluencymetrics.AmplitudeOptions{FloorDB: -70, MinSilenceSeconds: 2},
			Thresholds: pausedetector.Thresholds{
				PitchFloorHz:     140,
				IntensityFloorDB: 50,
				MinPauseSeconds:  0.4,
			},
		},
		Log: zerolog.Nop(),
	}
}

func TestEvaluateMatchedReading(t *testing.T) {
	records := &memoryRecords{}
	engine := testEngine(records, &vendoradapters.MockTranscriber{Text: "el gato come pescado"})
	store, err := objectstore.NewLocalStore(t.TempDir(), objectstore.Overwrite)
	if err != nil {
		t.Fatalf("local store: %v", err)
	}
	engine.Artifacts = store

	audio := encodeWAV(t, loudSamples(1.0, 16000), 16000)
	record, rejection, err := engine.Evaluate(context.Background(), "El gato come pescado.", audio, "gato.wav")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if rejection != nil {
		t.Fatalf("unexpected rejection: %+v", rejection)
	}
	if record == nil {
		t.Fatal("expected a record")
	}
	if record.Similarity != 1.0 {
		t.Errorf("Similarity = %v, want 1.0", record.Similarity)
	}
	if record.WordCount != 4 {
		t.Errorf("WordCount = %d, want 4", record.WordCount)
	}
	// 4 words over 1 active second.
	if record.WPM != 240 {
		t.Errorf("WPM = %v, want 240", record.WPM)
	}
	if !record.ArtifactKey.Valid {
		t.Error("expected an artifact key for the stored original audio")
	}
	if record.TransformedSimilarity.Valid {
		t.Error("single-reading evaluate should not set a transformed similarity")
	}
	if len(records.records) != 1 {
		t.Fatalf("persisted %d records, want 1", len(records.records))
	}
	if len(record.Rubric) == 0 {
		t.Error("expected a rubric payload on the record")
	}
}

func TestEvaluateRejectsMismatchedText(t *testing.T) {
	records := &memoryRecords{}
	engine := testEngine(records, &vendoradapters.MockTranscriber{Text: "uno dos tres cuatro cinco"})

	audio := encodeWAV(t, loudSamples(1.0, 16000), 16000)
	record, rejection, err := engine.Evaluate(context.Background(), "el perro ladra fuerte", audio, "perro.wav")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if record != nil {
		t.Fatalf("unexpected record: %+v", record)
	}
	if rejection == nil {
		t.Fatal("expected a rejection report")
	}
	if rejection.Transcript != "uno dos tres cuatro cinco" {
		t.Errorf("rejection transcript = %q", rejection.Transcript)
	}
	if rejection.Similarity >= 0.45 {
		t.Errorf("rejection similarity = %v, want below threshold", rejection.Similarity)
	}
	if len(records.records) != 0 {
		t.Errorf("rejected reading must not be persisted, got %d records", len(records.records))
	}
}

func TestEvaluatePropagatesTranscriptionError(t *testing.T) {
	records := &memoryRecords{}
	engine := testEngine(records, &vendoradapters.MockTranscriber{Err: errors.New("backend down")})

	audio := encodeWAV(t, loudSamples(0.5, 16000), 16000)
	_, _, err := engine.Evaluate(context.Background(), "texto", audio, "a.wav")
	var terr *vendoradapters.TranscriptionError
	if !errors.As(err, &terr) {
		t.Fatalf("err = %v, want *TranscriptionError", err)
	}
	if len(records.records) != 0 {
		t.Error("failed reading must not be persisted")
	}
}

func TestFluencyPitchIntensitySource(t *testing.T) {
	// Voiced for the first second, silent for one second, voiced again.
	var pitch, intensity pausedetector.Trace
	for i := 0; i < 300; i++ {
		tm := float64(i) * 0.01
		voiced := tm < 1.0 || tm >= 2.0
		pitch = append(pitch, pausedetector.Sample{Time: tm, Value: 200, Defined: voiced})
		intensity = append(intensity, pausedetector.Sample{Time: tm, Value: 65, Defined: true})
	}

	engine := testEngine(&memoryRecords{}, &vendoradapters.MockTranscriber{})
	engine.Settings.SilenceSource = SilencePitchIntensity
	engine.Traces = &vendoradapters.MockTraceExtractor{Pitch: pitch, Intensity: intensity}

	audio := encodeWAV(t, loudSamples(3.0, 16000), 16000)
	report, err := engine.Fluency(context.Background(), audio, "tres.wav", "uno dos tres")
	if err != nil {
		t.Fatalf("Fluency: %v", err)
	}
	if report.PauseCount != 1 {
		t.Errorf("PauseCount = %d, want 1", report.PauseCount)
	}
	if len(report.LongPauses) != 1 {
		t.Fatalf("LongPauses = %d, want 1", len(report.LongPauses))
	}
	if report.Signal == nil {
		t.Fatal("expected signal stats from the pitch/intensity source")
	}
	if report.ActiveSeconds >= 3.0 || report.ActiveSeconds <= 1.5 {
		t.Errorf("ActiveSeconds = %v, want total minus the detected pause", report.ActiveSeconds)
	}
}

func TestFluencyUnknownSource(t *testing.T) {
	engine := testEngine(&memoryRecords{}, &vendoradapters.MockTranscriber{})
	engine.Settings.SilenceSource = "loudness"
	audio := encodeWAV(t, loudSamples(0.5, 16000), 16000)
	if _, err := engine.Fluency(context.Background(), audio, "x.wav", "uno"); err == nil {
		t.Fatal("expected an error for an unknown silence source")
	}
}

func TestFinalizeRecordsTransformedSimilarity(t *testing.T) {
	records := &memoryRecords{}
	engine := testEngine(records, &vendoradapters.MockTranscriber{Text: "uno dos"})

	audio := encodeWAV(t, loudSamples(1.0, 16000), 16000)
	original, err := engine.Verify(context.Background(), audio, "dos.wav", "uno dos")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	transformed := original
	transformed.Similarity = 0.9

	record, err := engine.Finalize(context.Background(), "uno dos", audio, "dos.wav", original, &transformed, "batch-7", "original/dos.wav")
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if !record.TransformedSimilarity.Valid || record.TransformedSimilarity.Float64 != 0.9 {
		t.Errorf("TransformedSimilarity = %+v, want 0.9", record.TransformedSimilarity)
	}
	if !record.BatchRunID.Valid || record.BatchRunID.String != "batch-7" {
		t.Errorf("BatchRunID = %+v, want batch-7", record.BatchRunID)
	}
	if record.WordErrorRate.Valid && record.WordErrorRate.Float64 != 0 {
		t.Errorf("WordErrorRate = %v, want 0 for identical texts", record.WordErrorRate.Float64)
	}
}

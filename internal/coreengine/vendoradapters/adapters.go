// Package vendoradapters holds the adapters for the external collaborators
// of the evaluation pipeline: speech-to-text backends, audio transform
// sidecars, the rubric scorer, and the DSP trace extractor. The core treats
// each of them as a narrow interface; their internal models are not part of
// this system.
package vendoradapters

import (
	"context"

	"reading-fluency-platform/backend/internal/coreengine/pausedetector"
)

// Transcriber converts recorded audio to text. Implementations must be safe
// for concurrent use by independent pipeline tasks.
type Transcriber interface {
	// Transcribe returns the transcript for the audio bytes. Failures are
	// reported as *TranscriptionError.
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// AudioTransform rewrites an audio payload (noise reduction, voice
// isolation) and returns semantically equivalent audio. Failures are
// reported as *TransformError.
type AudioTransform interface {
	Transform(ctx context.Context, audio []byte) ([]byte, error)
}

// RubricScorer produces the five-criterion rubric evaluation for a reading.
// A structurally invalid response is reported as *SchemaError.
type RubricScorer interface {
	Score(ctx context.Context, referenceText string, wpm float64, audio []byte) (*RubricEvaluation, error)
}

// TraceExtractor turns an audio payload into time-aligned pitch and
// intensity traces sharing one time axis.
type TraceExtractor interface {
	Extract(ctx context.Context, audio []byte, filename string) (pitch, intensity pausedetector.Trace, err error)
}

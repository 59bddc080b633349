package vendoradapters

import (
	"context"

	"reading-fluency-platform/backend/internal/coreengine/pausedetector"
)

// MockTranscriber is a scriptable Transcriber used by tests and by the
// "mock" provider for local runs without a speech backend.
type MockTranscriber struct {
	// Text is returned for every call unless ByFilename has an entry.
	Text       string
	ByFilename map[string]string
	Err        error
}

func (m *MockTranscriber) Transcribe(_ context.Context, _ []byte, filename string) (string, error) {
	if m.Err != nil {
		return "", &TranscriptionError{Provider: "mock", Err: m.Err}
	}
	if t, ok := m.ByFilename[filename]; ok {
		return t, nil
	}
	return m.Text, nil
}

// MockTransform is a scriptable AudioTransform. With a nil Output it echoes
// the input, which satisfies the pure-function contract.
type MockTransform struct {
	Output []byte
	Err    error
}

func (m *MockTransform) Transform(_ context.Context, audio []byte) ([]byte, error) {
	if m.Err != nil {
		return nil, &TransformError{Stage: "mock", Err: m.Err}
	}
	if m.Output != nil {
		return m.Output, nil
	}
	return audio, nil
}

// MockRubricScorer returns a fixed rubric evaluation.
type MockRubricScorer struct {
	Evaluation *RubricEvaluation
	Err        error
}

func (m *MockRubricScorer) Score(_ context.Context, _ string, _ float64, _ []byte) (*RubricEvaluation, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Evaluation != nil {
		return m.Evaluation, nil
	}
	achieved := CriterionScore{Level: LevelAchieved, Comment: "mock evaluation"}
	return &RubricEvaluation{
		SyllabicStrategy: achieved,
		RhythmControl:    achieved,
		BreathControl:    achieved,
		Precision:        achieved,
		ReadingFluency:   achieved,
	}, nil
}

// MockTraceExtractor returns fixed traces.
type MockTraceExtractor struct {
	Pitch     pausedetector.Trace
	Intensity pausedetector.Trace
	Err       error
}

func (m *MockTraceExtractor) Extract(_ context.Context, _ []byte, _ string) (pausedetector.Trace, pausedetector.Trace, error) {
	if m.Err != nil {
		return nil, nil, m.Err
	}
	return m.Pitch, m.Intensity, nil
}

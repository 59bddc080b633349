package vendoradapters

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Settings selects and configures the concrete adapters for a deployment.
// The caller (cmd/server) maps application config onto this struct so the
// registry stays free of config-file concerns.
type Settings struct {
	// TranscriberProvider is one of "whisper", "openai", "mock".
	TranscriberProvider string
	Whisper             WhisperConfig
	OpenAI              OpenAIConfig

	// TransformProvider is one of "noise-reduce", "voice-isolation", "mock".
	TransformProvider string
	TransformURL      string
	TransformTimeout  time.Duration

	// ScorerProvider is one of "openai", "mock".
	ScorerProvider string
	ScorerModel    string
	WPMBands       []WPMBand

	// TraceProvider is one of "sidecar", "mock".
	TraceProvider string
	TraceURL      string
	TraceTimeout  time.Duration
}

// AdapterSet bundles the constructed collaborators for injection into the
// evaluation engine. No global registry state: each run owns its set.
type AdapterSet struct {
	Transcriber Transcriber
	Transform   AudioTransform
	Scorer      RubricScorer
	Traces      TraceExtractor
}

// BuildAdapters constructs the adapter set selected by the settings.
func BuildAdapters(s Settings, log zerolog.Logger) (*AdapterSet, error) {
	set := &AdapterSet{}

	switch s.TranscriberProvider {
	case "whisper":
		set.Transcriber = NewWhisperTranscriber(s.Whisper)
	case "openai":
		t, err := NewOpenAITranscriber(s.OpenAI)
		if err != nil {
			return nil, err
		}
		set.Transcriber = t
	case "mock":
		set.Transcriber = &MockTranscriber{}
	default:
		return nil, fmt.Errorf("unknown transcriber provider %q", s.TranscriberProvider)
	}
	log.Info().Str("provider", s.TranscriberProvider).Msg("transcriber adapter selected")

	switch s.TransformProvider {
	case "noise-reduce":
		set.Transform = NewNoiseReduceTransform(s.TransformURL, s.TransformTimeout)
	case "voice-isolation":
		set.Transform = NewVoiceIsolationTransform(s.TransformURL, s.TransformTimeout)
	case "mock":
		set.Transform = &MockTransform{}
	default:
		return nil, fmt.Errorf("unknown transform provider %q", s.TransformProvider)
	}
	log.Info().Str("provider", s.TransformProvider).Msg("audio transform adapter selected")

	switch s.ScorerProvider {
	case "openai":
		cfg := s.OpenAI
		cfg.Model = s.ScorerModel
		scorer, err := NewOpenAIRubricScorer(cfg, s.WPMBands)
		if err != nil {
			return nil, err
		}
		set.Scorer = scorer
	case "mock":
		set.Scorer = &MockRubricScorer{}
	default:
		return nil, fmt.Errorf("unknown rubric scorer provider %q", s.ScorerProvider)
	}
	log.Info().Str("provider", s.ScorerProvider).Msg("rubric scorer adapter selected")

	switch s.TraceProvider {
	case "sidecar":
		set.Traces = NewSidecarTraceExtractor(s.TraceURL, s.TraceTimeout)
	case "mock":
		set.Traces = &MockTraceExtractor{}
	default:
		return nil, fmt.Errorf("unknown trace extractor provider %q", s.TraceProvider)
	}
	log.Info().Str("provider", s.TraceProvider).Msg("trace extractor adapter selected")

	return set, nil
}

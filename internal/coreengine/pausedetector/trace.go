package pausedetector

import "fmt"

// Sample is one point of a time-aligned signal trace. Defined is false when
// the extractor produced no value at this timestamp (e.g. unvoiced frames in
// a pitch trace).
type Sample struct {
	Time    float64 `json:"time"`
	Value   float64 `json:"value"`
	Defined bool    `json:"defined"`
}

// Trace is an ordered sequence of samples with monotonically increasing
// timestamps. Pitch and intensity traces for the same audio share one time
// axis by contract.
type Trace []Sample

// InvalidTraceError reports a caller contract violation in the pitch or
// intensity input: mismatched lengths, a diverging time axis, or
// non-monotonic timestamps. It is a programmer/data error and is not retried.
type InvalidTraceError struct {
	Reason string
}

func (e *InvalidTraceError) Error() string {
	return fmt.Sprintf("invalid trace: %s", e.Reason)
}

// validateTraces checks that the pitch and intensity traces are well formed
// and share a time axis.
func validateTraces(pitch, intensity Trace) error {
	if len(pitch) != len(intensity) {
		return &InvalidTraceError{Reason: fmt.Sprintf("pitch trace has %d samples, intensity trace has %d", len(pitch), len(intensity))}
	}
	for i := range pitch {
		if i > 0 && pitch[i].Time <= pitch[i-1].Time {
			return &InvalidTraceError{Reason: fmt.Sprintf("non-monotonic timestamp at sample %d (%.4f after %.4f)", i, pitch[i].Time, pitch[i-1].Time)}
		}
		if pitch[i].Time != intensity[i].Time {
			return &InvalidTraceError{Reason: fmt.Sprintf("time axis mismatch at sample %d (pitch %.4f, intensity %.4f)", i, pitch[i].Time, intensity[i].Time)}
		}
	}
	return nil
}

// TraceStats summarizes the voiced portion of a pitch trace and the overall
// intensity level. The scorer receives these alongside the pause metrics.
type TraceStats struct {
	MeanPitchHz     float64 `json:"mean_pitch_hz"`
	MinPitchHz      float64 `json:"min_pitch_hz"`
	MaxPitchHz      float64 `json:"max_pitch_hz"`
	MeanIntensityDB float64 `json:"mean_intensity_db"`
	TotalDuration   float64 `json:"total_duration_seconds"`
}

// Summarize computes TraceStats over the defined samples of both traces.
// Undefined samples are skipped; an all-undefined pitch trace yields zero
// pitch statistics.
func Summarize(pitch, intensity Trace) TraceStats {
	var stats TraceStats
	if len(pitch) > 0 {
		stats.TotalDuration = pitch[len(pitch)-1].Time - pitch[0].Time
	}

	var pitchSum float64
	var voiced int
	for _, s := range pitch {
		if !s.Defined {
			continue
		}
		if voiced == 0 {
			stats.MinPitchHz = s.Value
			stats.MaxPitchHz = s.Value
		}
		if s.Value < stats.MinPitchHz {
			stats.MinPitchHz = s.Value
		}
		if s.Value > stats.MaxPitchHz {
			stats.MaxPitchHz = s.Value
		}
		pitchSum += s.Value
		voiced++
	}
	if voiced > 0 {
		stats.MeanPitchHz = pitchSum / float64(voiced)
	}

	var intensitySum float64
	var measured int
	for _, s := range intensity {
		if !s.Defined {
			continue
		}
		intensitySum += s.Value
		measured++
	}
	if measured > 0 {
		stats.MeanIntensityDB = intensitySum / float64(measured)
	}
	return stats
}

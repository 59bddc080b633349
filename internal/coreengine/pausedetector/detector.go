// Package pausedetector locates silence intervals in time-aligned pitch and
// intensity traces. A sample counts as silent when its pitch is missing or at
// or below the pitch floor, or when its intensity is at or below the
// intensity floor: either weak signal is sufficient evidence of silence, a
// deliberate high-recall choice so breath pauses are caught even when pitch
// tracking drops out.
package pausedetector

import "fmt"

// PauseInterval is one detected silence range. End is always strictly
// greater than Start and Duration equals End - Start.
type PauseInterval struct {
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
}

// Thresholds configures silence detection. All comparisons are inclusive:
// pitch == PitchFloorHz counts as silent, and a closed interval of exactly
// MinPauseSeconds qualifies as a long pause.
type Thresholds struct {
	PitchFloorHz     float64
	IntensityFloorDB float64
	MinPauseSeconds  float64
}

// tieEpsilon absorbs floating-point error in timestamp subtraction when a
// pause duration ties with MinPauseSeconds.
const tieEpsilon = 1e-9

// Result holds the outcome of a detection pass. LongPauses contains only the
// closed intervals whose duration reached MinPauseSeconds, in start order;
// SilentSegments counts every closed silent run regardless of duration.
type Result struct {
	LongPauses     []PauseInterval
	SilentSegments int
}

// Detect scans the traces in time order with an open-interval cursor. An
// interval opens on the first silent sample and closes on the next
// non-silent one; an interval still open when the trace ends is dropped, not
// flushed, since most recorded speech ends non-silent and a trailing
// half-open range has no measured end.
//
// An empty trace pair yields an empty Result. Malformed traces return an
// *InvalidTraceError; no repair is attempted.
func Detect(pitch, intensity Trace, th Thresholds) (Result, error) {
	if err := th.Validate(); err != nil {
		return Result{}, err
	}
	if err := validateTraces(pitch, intensity); err != nil {
		return Result{}, err
	}

	var res Result
	openStart := -1.0
	open := false

	for i := range pitch {
		silent := isSilent(pitch[i], intensity[i], th)
		if silent {
			if !open {
				openStart = pitch[i].Time
				open = true
			}
			continue
		}
		if open {
			end := pitch[i].Time
			dur := end - openStart
			// Inclusive comparison under floating-point subtraction: an
			// interval of exactly MinPauseSeconds must qualify even when
			// end-start lands a few ulps short.
			if dur >= th.MinPauseSeconds-tieEpsilon {
				res.LongPauses = append(res.LongPauses, PauseInterval{Start: openStart, End: end, Duration: dur})
			}
			res.SilentSegments++
			open = false
		}
	}

	return res, nil
}

func isSilent(pitch, intensity Sample, th Thresholds) bool {
	if !pitch.Defined || pitch.Value <= th.PitchFloorHz {
		return true
	}
	return intensity.Defined && intensity.Value <= th.IntensityFloorDB
}

// Validate checks the thresholds for obviously unusable values.
func (th Thresholds) Validate() error {
	if th.MinPauseSeconds < 0 {
		return fmt.Errorf("minimum pause duration must be non-negative, got %f", th.MinPauseSeconds)
	}
	return nil
}

package pausedetector

import (
	"errors"
	"testing"
)

const step = 0.01

// makeTraces builds aligned pitch/intensity traces from parallel value
// slices. A negative pitch value marks the sample as undefined.
func makeTraces(pitchVals, intensityVals []float64) (Trace, Trace) {
	pitch := make(Trace, len(pitchVals))
	intensity := make(Trace, len(intensityVals))
	for i := range pitchVals {
		t := float64(i) * step
		if pitchVals[i] < 0 {
			pitch[i] = Sample{Time: t}
		} else {
			pitch[i] = Sample{Time: t, Value: pitchVals[i], Defined: true}
		}
		intensity[i] = Sample{Time: t, Value: intensityVals[i], Defined: true}
	}
	return pitch, intensity
}

func TestDetectEmptyTrace(t *testing.T) {
	res, err := Detect(nil, nil, Thresholds{PitchFloorHz: 140, IntensityFloorDB: 50, MinPauseSeconds: 0.05})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.LongPauses) != 0 || res.SilentSegments != 0 {
		t.Errorf("expected zero intervals and zero count, got %+v", res)
	}
}

func TestDetectTrailingOpenIntervalNotFlushed(t *testing.T) {
	// Silence throughout: the interval opens at the first sample and never
	// closes, so nothing is reported.
	pitchVals := make([]float64, 500)
	intensityVals := make([]float64, 500)
	for i := range pitchVals {
		pitchVals[i] = -1 // undefined pitch
		intensityVals[i] = 30
	}
	pitch, intensity := makeTraces(pitchVals, intensityVals)

	res, err := Detect(pitch, intensity, Thresholds{PitchFloorHz: 140, IntensityFloorDB: 50, MinPauseSeconds: 0.05})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.LongPauses) != 0 {
		t.Errorf("trailing open interval must not be flushed, got %d pauses", len(res.LongPauses))
	}
	if res.SilentSegments != 0 {
		t.Errorf("unclosed run must not be counted, got %d", res.SilentSegments)
	}
}

func TestDetectSilenceClosedByFinalVoicedSample(t *testing.T) {
	// Same all-silent trace, but with one voiced sample at the end to close
	// the interval: exactly one long pause spanning the silent run.
	pitchVals := make([]float64, 500)
	intensityVals := make([]float64, 500)
	for i := range pitchVals {
		pitchVals[i] = -1
		intensityVals[i] = 30
	}
	pitchVals[499] = 200
	intensityVals[499] = 70
	pitch, intensity := makeTraces(pitchVals, intensityVals)

	res, err := Detect(pitch, intensity, Thresholds{PitchFloorHz: 140, IntensityFloorDB: 50, MinPauseSeconds: 0.05})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.LongPauses) != 1 {
		t.Fatalf("expected exactly one long pause, got %d", len(res.LongPauses))
	}
	if res.SilentSegments < 1 {
		t.Errorf("expected silent segment count >= 1, got %d", res.SilentSegments)
	}
	p := res.LongPauses[0]
	if p.End <= p.Start {
		t.Errorf("interval end must exceed start: %+v", p)
	}
	total := pitch[len(pitch)-1].Time - pitch[0].Time
	if p.Duration > total {
		t.Errorf("pause duration %.3f exceeds trace length %.3f", p.Duration, total)
	}
}

func TestDetectInclusiveThresholds(t *testing.T) {
	th := Thresholds{PitchFloorHz: 140, IntensityFloorDB: 50, MinPauseSeconds: 0.02}

	t.Run("pitch at floor is silent", func(t *testing.T) {
		pitch, intensity := makeTraces(
			[]float64{200, 140, 140, 140, 200},
			[]float64{70, 70, 70, 70, 70},
		)
		res, err := Detect(pitch, intensity, th)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.LongPauses) != 1 {
			t.Fatalf("expected one pause for pitch == floor, got %d", len(res.LongPauses))
		}
	})

	t.Run("intensity at floor is silent", func(t *testing.T) {
		pitch, intensity := makeTraces(
			[]float64{200, 200, 200, 200, 200},
			[]float64{70, 50, 50, 50, 70},
		)
		res, err := Detect(pitch, intensity, th)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.LongPauses) != 1 {
			t.Fatalf("expected one pause for intensity == floor, got %d", len(res.LongPauses))
		}
	})

	t.Run("duration exactly at minimum qualifies", func(t *testing.T) {
		// Two silent samples, closed by the third: duration 2*step.
		pitch, intensity := makeTraces(
			[]float64{200, -1, -1, 200},
			[]float64{70, 70, 70, 70},
		)
		res, err := Detect(pitch, intensity, Thresholds{PitchFloorHz: 140, IntensityFloorDB: 50, MinPauseSeconds: 2 * step})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.LongPauses) != 1 {
			t.Fatalf("expected pause of exactly the minimum duration to qualify, got %d", len(res.LongPauses))
		}
	})
}

func TestDetectShortSilenceCountedButNotLong(t *testing.T) {
	pitch, intensity := makeTraces(
		[]float64{200, -1, 200, 200, -1, -1, -1, -1, -1, -1, 200},
		[]float64{70, 70, 70, 70, 70, 70, 70, 70, 70, 70, 70},
	)
	res, err := Detect(pitch, intensity, Thresholds{PitchFloorHz: 140, IntensityFloorDB: 50, MinPauseSeconds: 0.05})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.SilentSegments != 2 {
		t.Errorf("expected both silent runs counted, got %d", res.SilentSegments)
	}
	if len(res.LongPauses) != 1 {
		t.Errorf("expected only the long run to qualify, got %d", len(res.LongPauses))
	}
}

func TestDetectIntervalsOrderedAndDisjoint(t *testing.T) {
	pitchVals := make([]float64, 200)
	intensityVals := make([]float64, 200)
	for i := range pitchVals {
		// Alternate voiced/silent blocks of ten samples.
		if (i/10)%2 == 0 {
			pitchVals[i] = 200
		} else {
			pitchVals[i] = -1
		}
		intensityVals[i] = 70
	}
	pitch, intensity := makeTraces(pitchVals, intensityVals)

	res, err := Detect(pitch, intensity, Thresholds{PitchFloorHz: 140, IntensityFloorDB: 50, MinPauseSeconds: 0.01})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.LongPauses) == 0 {
		t.Fatal("expected pauses from alternating blocks")
	}
	for i, p := range res.LongPauses {
		if p.End <= p.Start {
			t.Errorf("interval %d end must exceed start: %+v", i, p)
		}
		if i > 0 && p.Start < res.LongPauses[i-1].End {
			t.Errorf("interval %d overlaps previous: %+v then %+v", i, res.LongPauses[i-1], p)
		}
	}
}

func TestDetectMalformedTraces(t *testing.T) {
	th := Thresholds{PitchFloorHz: 140, IntensityFloorDB: 50, MinPauseSeconds: 0.05}

	t.Run("length mismatch", func(t *testing.T) {
		pitch, intensity := makeTraces([]float64{200, 200}, []float64{70, 70})
		_, err := Detect(pitch, intensity[:1], th)
		var traceErr *InvalidTraceError
		if !errors.As(err, &traceErr) {
			t.Fatalf("expected InvalidTraceError, got %v", err)
		}
	})

	t.Run("non-monotonic time", func(t *testing.T) {
		pitch, intensity := makeTraces([]float64{200, 200, 200}, []float64{70, 70, 70})
		pitch[2].Time = pitch[1].Time
		intensity[2].Time = intensity[1].Time
		_, err := Detect(pitch, intensity, th)
		var traceErr *InvalidTraceError
		if !errors.As(err, &traceErr) {
			t.Fatalf("expected InvalidTraceError, got %v", err)
		}
	})

	t.Run("diverging time axis", func(t *testing.T) {
		pitch, intensity := makeTraces([]float64{200, 200, 200}, []float64{70, 70, 70})
		intensity[1].Time += 0.001
		_, err := Detect(pitch, intensity, th)
		var traceErr *InvalidTraceError
		if !errors.As(err, &traceErr) {
			t.Fatalf("expected InvalidTraceError, got %v", err)
		}
	})
}

func TestSummarize(t *testing.T) {
	pitch, intensity := makeTraces(
		[]float64{100, -1, 200, 300},
		[]float64{40, 50, 60, 70},
	)
	stats := Summarize(pitch, intensity)
	if stats.MeanPitchHz != 200 {
		t.Errorf("mean pitch: expected 200, got %f", stats.MeanPitchHz)
	}
	if stats.MinPitchHz != 100 || stats.MaxPitchHz != 300 {
		t.Errorf("pitch range: expected [100,300], got [%f,%f]", stats.MinPitchHz, stats.MaxPitchHz)
	}
	if stats.MeanIntensityDB != 55 {
		t.Errorf("mean intensity: expected 55, got %f", stats.MeanIntensityDB)
	}
	if stats.TotalDuration != 3*step {
		t.Errorf("duration: expected %f, got %f", 3*step, stats.TotalDuration)
	}
}

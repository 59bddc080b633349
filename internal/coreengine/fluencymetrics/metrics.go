// Package fluencymetrics computes reading-fluency measurements: active
// speech duration, words per minute, pause statistics, and transcript error
// rates used as diagnostics on accepted readings.
package fluencymetrics

import (
	"strings"

	"reading-fluency-platform/backend/internal/coreengine/pausedetector"
)

// Report is the fluency measurement for one reading. WPM is 0 whenever
// ActiveSeconds is 0; it is never negative, NaN, or infinite. Values are
// kept at full precision here and rounded only at presentation boundaries.
type Report struct {
	ActiveSeconds float64                       `json:"active_seconds"`
	WordCount     int                           `json:"word_count"`
	WPM           float64                       `json:"wpm"`
	PauseCount    int                           `json:"pause_count"`
	LongPauses    []pausedetector.PauseInterval `json:"long_pauses"`

	// Diagnostics, populated when the corresponding inputs were available.
	Signal        *pausedetector.TraceStats `json:"signal,omitempty"`
	WordErrorRate *float64                  `json:"word_error_rate,omitempty"`
}

// ActiveSeconds returns the active speech duration: the total duration minus
// the summed duration of the detected silence ranges, clamped at zero.
//
// The silence ranges must all come from one canonical detection source
// (pitch/intensity intervals or the amplitude detector) — mixing sources
// double-subtracts overlapping silence.
func ActiveSeconds(totalDuration float64, silences []pausedetector.PauseInterval) float64 {
	active := totalDuration
	for _, s := range silences {
		active -= s.Duration
	}
	if active < 0 {
		return 0
	}
	return active
}

// WordsPerMinute computes word_count / (active_seconds / 60), or 0 when no
// active speech was measured.
func WordsPerMinute(activeSeconds float64, wordCount int) float64 {
	if activeSeconds <= 0 {
		return 0
	}
	return float64(wordCount) / (activeSeconds / 60.0)
}

// CountWords counts words in the reference text by splitting on whitespace
// runs. The count is text-based on purpose: the reference is what the
// student was asked to read, independent of what the recognizer heard.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

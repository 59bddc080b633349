package fluencymetrics

import (
	"bytes"
	"fmt"
	"math"

	"github.com/go-audio/wav"

	"reading-fluency-platform/backend/internal/coreengine/pausedetector"
)

// AudioSample is a decoded waveform. It is immutable once loaded and scoped
// to a single pipeline invocation.
type AudioSample struct {
	Samples     []int
	SampleRate  int
	NumChannels int
	BitDepth    int
}

// Duration returns the sample length in seconds.
func (a *AudioSample) Duration() float64 {
	if a.SampleRate <= 0 || a.NumChannels <= 0 {
		return 0
	}
	frames := len(a.Samples) / a.NumChannels
	return float64(frames) / float64(a.SampleRate)
}

// DecodeWAV decodes WAV bytes into an AudioSample.
func DecodeWAV(data []byte) (*AudioSample, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("decode wav: not a valid WAV file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	return &AudioSample{
		Samples:     buf.Data,
		SampleRate:  buf.Format.SampleRate,
		NumChannels: buf.Format.NumChannels,
		BitDepth:    int(dec.BitDepth),
	}, nil
}

// AmplitudeOptions configures the amplitude-threshold silence detector.
type AmplitudeOptions struct {
	// FloorDB is the silence threshold in dBFS; frames at or below it are
	// silent.
	FloorDB float64
	// MinSilenceSeconds is the minimum silent-run duration to report.
	MinSilenceSeconds float64
	// FrameSeconds is the analysis frame size. Zero means 10ms.
	FrameSeconds float64
}

const defaultFrameSeconds = 0.01

// AmplitudeSilences detects silence ranges in a raw waveform from per-frame
// RMS level, the second canonical silence source next to the pitch/intensity
// detector. Unlike that detector, a trailing silent run is reported: the
// amplitude scan has a measured end at the last sample.
func AmplitudeSilences(sample *AudioSample, opts AmplitudeOptions) []pausedetector.PauseInterval {
	if sample == nil || len(sample.Samples) == 0 || sample.SampleRate <= 0 {
		return nil
	}
	frameSec := opts.FrameSeconds
	if frameSec <= 0 {
		frameSec = defaultFrameSeconds
	}
	channels := sample.NumChannels
	if channels <= 0 {
		channels = 1
	}
	frameLen := int(frameSec * float64(sample.SampleRate) * float64(channels))
	if frameLen <= 0 {
		frameLen = 1
	}
	fullScale := math.Pow(2, float64(sample.BitDepth-1))
	if sample.BitDepth <= 0 {
		fullScale = math.Pow(2, 15)
	}

	var silences []pausedetector.PauseInterval
	openStart := -1.0
	frames := (len(sample.Samples) + frameLen - 1) / frameLen
	for f := 0; f < frames; f++ {
		lo := f * frameLen
		hi := lo + frameLen
		if hi > len(sample.Samples) {
			hi = len(sample.Samples)
		}
		t := float64(lo) / float64(channels) / float64(sample.SampleRate)

		if frameDBFS(sample.Samples[lo:hi], fullScale) <= opts.FloorDB {
			if openStart < 0 {
				openStart = t
			}
			continue
		}
		if openStart >= 0 {
			silences = appendSilence(silences, openStart, t, opts.MinSilenceSeconds)
			openStart = -1
		}
	}
	if openStart >= 0 {
		silences = appendSilence(silences, openStart, sample.Duration(), opts.MinSilenceSeconds)
	}
	return silences
}

func appendSilence(silences []pausedetector.PauseInterval, start, end, minDur float64) []pausedetector.PauseInterval {
	dur := end - start
	if dur < minDur || dur <= 0 {
		return silences
	}
	return append(silences, pausedetector.PauseInterval{Start: start, End: end, Duration: dur})
}

// frameDBFS returns the RMS level of a frame in dBFS. An all-zero frame is
// floored at -120 dBFS rather than -Inf.
func frameDBFS(frame []int, fullScale float64) float64 {
	var sum float64
	for _, s := range frame {
		v := float64(s)
		sum += v * v
	}
	rms := math.Sqrt(sum / float64(len(frame)))
	if rms <= 0 {
		return -120
	}
	db := 20 * math.Log10(rms/fullScale)
	if db < -120 {
		return -120
	}
	return db
}

package vendoradapters

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestWhisperTranscriber(t *testing.T) {
	t.Run("returns transcript text", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/transcribe" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Fatalf("not a multipart request: %v", err)
			}
			if r.FormValue("model") != "base" {
				t.Errorf("expected model field, got %q", r.FormValue("model"))
			}
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"text": "el gato come", "language": "es"}`)
		}))
		defer srv.Close()

		tr := NewWhisperTranscriber(WhisperConfig{URL: srv.URL})
		text, err := tr.Transcribe(context.Background(), []byte("RIFF...."), "20736.wav")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if text != "el gato come" {
			t.Errorf("expected transcript, got %q", text)
		}
	})

	t.Run("non-200 becomes TranscriptionError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not loaded", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		tr := NewWhisperTranscriber(WhisperConfig{URL: srv.URL})
		_, err := tr.Transcribe(context.Background(), []byte("x"), "a.wav")
		var tErr *TranscriptionError
		if !errors.As(err, &tErr) {
			t.Fatalf("expected TranscriptionError, got %v", err)
		}
		if tErr.Provider != "whisper" {
			t.Errorf("expected whisper provider, got %q", tErr.Provider)
		}
	})
}

func TestSidecarTransform(t *testing.T) {
	t.Run("returns processed bytes", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/reduce-noise" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			in, _ := io.ReadAll(r.Body)
			w.Write(append([]byte("clean:"), in...))
		}))
		defer srv.Close()

		tf := NewNoiseReduceTransform(srv.URL, 0)
		out, err := tf.Transform(context.Background(), []byte("raw"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(out) != "clean:raw" {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("voice isolation hits its own endpoint", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/isolate-voice" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			w.Write([]byte("voice"))
		}))
		defer srv.Close()

		tf := NewVoiceIsolationTransform(srv.URL, 0)
		if _, err := tf.Transform(context.Background(), []byte("raw")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("failure becomes TransformError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model crashed", http.StatusInternalServerError)
		}))
		defer srv.Close()

		tf := NewNoiseReduceTransform(srv.URL, 0)
		_, err := tf.Transform(context.Background(), []byte("raw"))
		var tErr *TransformError
		if !errors.As(err, &tErr) {
			t.Fatalf("expected TransformError, got %v", err)
		}
		if tErr.Stage != "noise-reduce" {
			t.Errorf("expected noise-reduce stage, got %q", tErr.Stage)
		}
	})

	t.Run("empty response body is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		tf := NewNoiseReduceTransform(srv.URL, 0)
		if _, err := tf.Transform(context.Background(), []byte("raw")); err == nil {
			t.Fatal("expected error for empty payload")
		}
	})
}

func TestSidecarTraceExtractor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analyze" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"pitch": [{"time": 0.0, "value": 180.5, "defined": true}, {"time": 0.01, "defined": false}],
			"intensity": [{"time": 0.0, "value": 62.1, "defined": true}, {"time": 0.01, "value": 30.0, "defined": true}]
		}`)
	}))
	defer srv.Close()

	ex := NewSidecarTraceExtractor(srv.URL, 0)
	pitch, intensity, err := ex.Extract(context.Background(), []byte("wav"), "a.wav")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pitch) != 2 || len(intensity) != 2 {
		t.Fatalf("expected two samples per trace, got %d/%d", len(pitch), len(intensity))
	}
	if !pitch[0].Defined || pitch[1].Defined {
		t.Errorf("defined flags not decoded: %+v", pitch)
	}
	if pitch[0].Value != 180.5 {
		t.Errorf("pitch value not decoded: %+v", pitch[0])
	}
}

func TestBuildAdapters(t *testing.T) {
	log := zerolog.Nop()

	t.Run("mock set", func(t *testing.T) {
		set, err := BuildAdapters(Settings{
			TranscriberProvider: "mock",
			TransformProvider:   "mock",
			ScorerProvider:      "mock",
			TraceProvider:       "mock",
		}, log)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if set.Transcriber == nil || set.Transform == nil || set.Scorer == nil || set.Traces == nil {
			t.Errorf("incomplete adapter set: %+v", set)
		}
	})

	t.Run("unknown provider rejected", func(t *testing.T) {
		_, err := BuildAdapters(Settings{
			TranscriberProvider: "carrier-pigeon",
			TransformProvider:   "mock",
			ScorerProvider:      "mock",
			TraceProvider:       "mock",
		}, log)
		if err == nil {
			t.Fatal("expected error for unknown provider")
		}
	})

	t.Run("openai adapters require api key", func(t *testing.T) {
		_, err := BuildAdapters(Settings{
			TranscriberProvider: "openai",
			TransformProvider:   "mock",
			ScorerProvider:      "mock",
			TraceProvider:       "mock",
		}, log)
		if err == nil {
			t.Fatal("expected error for missing API key")
		}
	})
}

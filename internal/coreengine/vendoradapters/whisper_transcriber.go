package vendoradapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const (
	defaultWhisperURL     = "http://localhost:8387"
	defaultWhisperModel   = "base"
	defaultWhisperTimeout = 120 * time.Second
)

// WhisperConfig configures the faster-whisper HTTP sidecar transcriber.
type WhisperConfig struct {
	URL      string
	Model    string
	Language string
	Timeout  time.Duration
}

// WhisperTranscriber implements Transcriber against a faster-whisper
// sidecar exposing POST /transcribe.
type WhisperTranscriber struct {
	cfg    WhisperConfig
	client *http.Client
}

// NewWhisperTranscriber creates a whisper sidecar transcriber, filling in
// defaults for unset config fields.
func NewWhisperTranscriber(cfg WhisperConfig) *WhisperTranscriber {
	if cfg.URL == "" {
		cfg.URL = defaultWhisperURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultWhisperModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultWhisperTimeout
	}
	return &WhisperTranscriber{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type whisperResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

// Transcribe posts the audio as a multipart upload and returns the
// transcript text.
func (w *WhisperTranscriber) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", &TranscriptionError{Provider: "whisper", Err: err}
	}
	if _, err := fw.Write(audio); err != nil {
		return "", &TranscriptionError{Provider: "whisper", Err: err}
	}
	_ = mw.WriteField("model", w.cfg.Model)
	if w.cfg.Language != "" {
		_ = mw.WriteField("language", w.cfg.Language)
	}
	if err := mw.Close(); err != nil {
		return "", &TranscriptionError{Provider: "whisper", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.URL+"/transcribe", &body)
	if err != nil {
		return "", &TranscriptionError{Provider: "whisper", Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := w.client.Do(req)
	if err != nil {
		return "", &TranscriptionError{Provider: "whisper", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return "", &TranscriptionError{Provider: "whisper", Err: fmt.Errorf("%s: %s", resp.Status, string(detail))}
	}

	var out whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &TranscriptionError{Provider: "whisper", Err: fmt.Errorf("decode response: %w", err)}
	}
	return out.Text, nil
}

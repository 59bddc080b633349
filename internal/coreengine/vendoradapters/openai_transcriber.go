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
	defaultOpenAIBaseURL      = "https://api.openai.com/v1"
	defaultOpenAIWhisperModel = "whisper-1"
	defaultOpenAICallTimeout  = 120 * time.Second
)

// OpenAIConfig configures the OpenAI-backed adapters.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

func (c *OpenAIConfig) applyDefaults(defaultModel string) {
	if c.BaseURL == "" {
		c.BaseURL = defaultOpenAIBaseURL
	}
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.Timeout == 0 {
		c.Timeout = defaultOpenAICallTimeout
	}
}

// OpenAITranscriber implements Transcriber against the OpenAI audio
// transcription endpoint.
type OpenAITranscriber struct {
	cfg    OpenAIConfig
	client *http.Client
}

// NewOpenAITranscriber creates an OpenAI transcriber. The API key is
// required; model defaults to whisper-1.
func NewOpenAITranscriber(cfg OpenAIConfig) (*OpenAITranscriber, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai transcriber: API key is required")
	}
	cfg.applyDefaults(defaultOpenAIWhisperModel)
	return &OpenAITranscriber{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Transcribe uploads the audio to POST /audio/transcriptions and returns
// the transcript text.
func (o *OpenAITranscriber) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", &TranscriptionError{Provider: "openai", Err: err}
	}
	if _, err := fw.Write(audio); err != nil {
		return "", &TranscriptionError{Provider: "openai", Err: err}
	}
	_ = mw.WriteField("model", o.cfg.Model)
	_ = mw.WriteField("response_format", "json")
	if err := mw.Close(); err != nil {
		return "", &TranscriptionError{Provider: "openai", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.BaseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", &TranscriptionError{Provider: "openai", Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+o.cfg.APIKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", &TranscriptionError{Provider: "openai", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return "", &TranscriptionError{Provider: "openai", Err: fmt.Errorf("%s: %s", resp.Status, string(detail))}
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &TranscriptionError{Provider: "openai", Err: fmt.Errorf("decode response: %w", err)}
	}
	return out.Text, nil
}

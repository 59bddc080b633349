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

	"reading-fluency-platform/backend/internal/coreengine/pausedetector"
)

const defaultTraceTimeout = 120 * time.Second

// SidecarTraceExtractor implements TraceExtractor against a DSP sidecar
// exposing POST /analyze, which runs pitch tracking and intensity analysis
// over the uploaded audio and returns both traces on a shared time axis.
type SidecarTraceExtractor struct {
	url    string
	client *http.Client
}

// NewSidecarTraceExtractor creates the trace extractor adapter.
func NewSidecarTraceExtractor(baseURL string, timeout time.Duration) *SidecarTraceExtractor {
	if timeout == 0 {
		timeout = defaultTraceTimeout
	}
	return &SidecarTraceExtractor{
		url:    baseURL + "/analyze",
		client: &http.Client{Timeout: timeout},
	}
}

type traceResponse struct {
	Pitch     pausedetector.Trace `json:"pitch"`
	Intensity pausedetector.Trace `json:"intensity"`
}

// Extract uploads the audio and returns the pitch and intensity traces.
func (e *SidecarTraceExtractor) Extract(ctx context.Context, audio []byte, filename string) (pausedetector.Trace, pausedetector.Trace, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, nil, fmt.Errorf("trace extractor: %w", err)
	}
	if _, err := fw.Write(audio); err != nil {
		return nil, nil, fmt.Errorf("trace extractor: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, nil, fmt.Errorf("trace extractor: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, &body)
	if err != nil {
		return nil, nil, fmt.Errorf("trace extractor: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("trace extractor: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return nil, nil, fmt.Errorf("trace extractor: %s: %s", resp.Status, string(detail))
	}

	var out traceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, nil, fmt.Errorf("trace extractor: decode response: %w", err)
	}
	return out.Pitch, out.Intensity, nil
}

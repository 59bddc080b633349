package vendoradapters

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTransformTimeout = 180 * time.Second

// SidecarTransform implements AudioTransform against a pretrained-model
// sidecar that accepts WAV bytes and returns processed WAV bytes. The same
// adapter serves both the noise-reduction and the voice-isolation models;
// only the endpoint differs.
type SidecarTransform struct {
	stage  string
	url    string
	client *http.Client
}

// NewNoiseReduceTransform creates the noise-reduction transform adapter.
func NewNoiseReduceTransform(baseURL string, timeout time.Duration) *SidecarTransform {
	return newSidecarTransform("noise-reduce", baseURL+"/reduce-noise", timeout)
}

// NewVoiceIsolationTransform creates the voice-isolation transform adapter.
func NewVoiceIsolationTransform(baseURL string, timeout time.Duration) *SidecarTransform {
	return newSidecarTransform("voice-isolation", baseURL+"/isolate-voice", timeout)
}

func newSidecarTransform(stage, url string, timeout time.Duration) *SidecarTransform {
	if timeout == 0 {
		timeout = defaultTransformTimeout
	}
	return &SidecarTransform{
		stage:  stage,
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Transform posts the audio and returns the processed bytes.
func (t *SidecarTransform) Transform(ctx context.Context, audio []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(audio))
	if err != nil {
		return nil, &TransformError{Stage: t.stage, Err: err}
	}
	req.Header.Set("Content-Type", "audio/wav")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &TransformError{Stage: t.stage, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return nil, &TransformError{Stage: t.stage, Err: fmt.Errorf("%s: %s", resp.Status, string(detail))}
	}

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransformError{Stage: t.stage, Err: err}
	}
	if len(out) == 0 {
		return nil, &TransformError{Stage: t.stage, Err: fmt.Errorf("empty audio payload in response")}
	}
	return out, nil
}

package vendoradapters

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultScorerModel = "gpt-4o-audio-preview"

const scorerFunctionName = "evaluate_reading"

// scorerInstructions is the system prompt for the rubric scorer. The WPM
// bands are appended from configuration so the fluency criterion follows the
// deployment's band boundaries rather than a hardcoded table.
const scorerInstructions = `You are an expert in assessing children's oral reading. You receive the
text the student was asked to read, the measured words-per-minute, and the
recording itself. Evaluate the reading on five criteria, each at one of four
levels (Initial, InProgress, Achieved, Advanced):

1. syllabic_strategy - whether the student still needs syllable-by-syllable
   decoding or reads whole words.
2. rhythm_control - monotone or syllabified reading versus intonation that
   follows punctuation.
3. breath_control - pauses at periods and commas versus pauses between every
   word or none at all.
4. precision - letter/word substitutions, omissions and additions versus
   error-free reading.
5. reading_fluency - judged from the measured words per minute using these
   bands:
%s
Return only the function call with one object per criterion, each carrying a
"level" and a "comment". No extra keys, no free text.`

// OpenAIRubricScorer implements RubricScorer via the OpenAI chat-completions
// endpoint with a forced function call, which pins the response to the
// rubric schema.
type OpenAIRubricScorer struct {
	cfg    OpenAIConfig
	bands  []WPMBand
	client *http.Client
}

// NewOpenAIRubricScorer creates the scorer. Bands are required so fluency
// levels are never judged against an implicit default table.
func NewOpenAIRubricScorer(cfg OpenAIConfig, bands []WPMBand) (*OpenAIRubricScorer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai rubric scorer: API key is required")
	}
	if len(bands) == 0 {
		return nil, fmt.Errorf("openai rubric scorer: WPM bands are required")
	}
	cfg.applyDefaults(defaultScorerModel)
	return &OpenAIRubricScorer{
		cfg:    cfg,
		bands:  bands,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatContentPart struct {
	Type       string          `json:"type"`
	Text       string          `json:"text,omitempty"`
	InputAudio *chatInputAudio `json:"input_audio,omitempty"`
}

type chatInputAudio struct {
	Data   string `json:"data"`
	Format string `json:"format"`
}

type chatRequest struct {
	Model        string         `json:"model"`
	Modalities   []string       `json:"modalities"`
	Messages     []chatMessage  `json:"messages"`
	Functions    []chatFunction `json:"functions"`
	FunctionCall map[string]any `json:"function_call"`
	Temperature  float64        `json:"temperature"`
}

type chatFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			FunctionCall *struct {
				Name      string `json:"name"`
				Arguments string `json:"arguments"`
			} `json:"function_call"`
		} `json:"message"`
	} `json:"choices"`
}

// Score sends the reference text, WPM and audio to the model and decodes the
// forced function-call arguments through the strict rubric parser.
func (s *OpenAIRubricScorer) Score(ctx context.Context, referenceText string, wpm float64, audio []byte) (*RubricEvaluation, error) {
	payload := chatRequest{
		Model:      s.cfg.Model,
		Modalities: []string{"text"},
		Messages: []chatMessage{
			{Role: "system", Content: fmt.Sprintf(scorerInstructions, s.bandTable())},
			{Role: "user", Content: []chatContentPart{
				{Type: "text", Text: fmt.Sprintf("Text to read: %s\nWPM: %.1f", referenceText, wpm)},
				{Type: "input_audio", InputAudio: &chatInputAudio{
					Data:   base64.StdEncoding.EncodeToString(audio),
					Format: "wav",
				}},
			}},
		},
		Functions:    []chatFunction{rubricFunctionSchema()},
		FunctionCall: map[string]any{"name": scorerFunctionName},
		Temperature:  0,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("rubric scorer: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("rubric scorer: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rubric scorer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("rubric scorer: %s: %s", resp.Status, string(detail))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("rubric scorer: decode response: %w", err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.FunctionCall == nil {
		return nil, &SchemaError{Reason: "response carries no function call"}
	}
	return DecodeRubric([]byte(out.Choices[0].Message.FunctionCall.Arguments))
}

func (s *OpenAIRubricScorer) bandTable() string {
	var b strings.Builder
	for _, band := range s.bands {
		fmt.Fprintf(&b, "   %s: %.0f-%.0f words per minute\n", band.Level, band.MinWPM, band.MaxWPM)
	}
	return b.String()
}

func rubricFunctionSchema() chatFunction {
	criterion := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"level":   map[string]any{"type": "string", "enum": []string{string(LevelInitial), string(LevelInProgress), string(LevelAchieved), string(LevelAdvanced)}},
			"comment": map[string]any{"type": "string"},
		},
		"required": []string{"level", "comment"},
	}
	properties := make(map[string]any, len(criterionKeys))
	for _, key := range criterionKeys {
		properties[key] = criterion
	}
	return chatFunction{
		Name:        scorerFunctionName,
		Description: "Returns the five-criterion oral reading evaluation",
		Parameters: map[string]any{
			"type":       "object",
			"properties": properties,
			"required":   criterionKeys,
		},
	}
}

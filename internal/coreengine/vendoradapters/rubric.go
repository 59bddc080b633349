package vendoradapters

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Level is one of the four ordinal performance levels of the reading rubric.
type Level string

const (
	LevelInitial    Level = "Initial"
	LevelInProgress Level = "InProgress"
	LevelAchieved   Level = "Achieved"
	LevelAdvanced   Level = "Advanced"
)

// Valid reports whether the level is a member of the enum.
func (l Level) Valid() bool {
	switch l {
	case LevelInitial, LevelInProgress, LevelAchieved, LevelAdvanced:
		return true
	}
	return false
}

// CriterionScore is the evaluation of one rubric criterion: an ordinal level
// plus the scorer's free-text rationale.
type CriterionScore struct {
	Level   Level  `json:"level"`
	Comment string `json:"comment"`
}

// RubricEvaluation is the fixed five-criterion scoring structure for oral
// reading.
type RubricEvaluation struct {
	SyllabicStrategy CriterionScore `json:"syllabic_strategy"`
	RhythmControl    CriterionScore `json:"rhythm_control"`
	BreathControl    CriterionScore `json:"breath_control"`
	Precision        CriterionScore `json:"precision"`
	ReadingFluency   CriterionScore `json:"reading_fluency"`
}

// WPMBand maps a words-per-minute range to a rubric level for the
// reading-fluency criterion. Band boundaries are deployment configuration,
// not constants.
type WPMBand struct {
	Level  Level
	MinWPM float64
	MaxWPM float64
}

var criterionKeys = []string{
	"syllabic_strategy",
	"rhythm_control",
	"breath_control",
	"precision",
	"reading_fluency",
}

// DecodeRubric parses a rubric JSON object strictly: exactly the five
// criterion keys, none missing, none duplicated, every level inside the
// enum. Any violation returns a *SchemaError rather than a best-effort
// default.
func DecodeRubric(raw []byte) (*RubricEvaluation, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, &SchemaError{Reason: fmt.Sprintf("unreadable rubric payload: %v", err)}
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, &SchemaError{Reason: "rubric payload is not a JSON object"}
	}

	seen := make(map[string]int, len(criterionKeys))
	var out RubricEvaluation
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, &SchemaError{Reason: fmt.Sprintf("unreadable rubric key: %v", err)}
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, &SchemaError{Reason: "non-string rubric key"}
		}
		seen[key]++
		if seen[key] > 1 {
			return nil, &SchemaError{Reason: fmt.Sprintf("criterion %q duplicated", key)}
		}

		var score CriterionScore
		if err := dec.Decode(&score); err != nil {
			return nil, &SchemaError{Reason: fmt.Sprintf("criterion %q is not a level/comment object: %v", key, err)}
		}
		if !score.Level.Valid() {
			return nil, &SchemaError{Reason: fmt.Sprintf("criterion %q has unknown level %q", key, score.Level)}
		}

		switch key {
		case "syllabic_strategy":
			out.SyllabicStrategy = score
		case "rhythm_control":
			out.RhythmControl = score
		case "breath_control":
			out.BreathControl = score
		case "precision":
			out.Precision = score
		case "reading_fluency":
			out.ReadingFluency = score
		default:
			return nil, &SchemaError{Reason: fmt.Sprintf("unexpected key %q", key)}
		}
	}

	for _, key := range criterionKeys {
		if seen[key] == 0 {
			return nil, &SchemaError{Reason: fmt.Sprintf("criterion %q missing", key)}
		}
	}
	return &out, nil
}

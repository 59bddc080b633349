package vendoradapters

import (
	"errors"
	"testing"
)

const validRubricJSON = `{
	"syllabic_strategy": {"level": "Achieved", "comment": "reads whole words"},
	"rhythm_control": {"level": "InProgress", "comment": "monotone but no syllabification"},
	"breath_control": {"level": "Initial", "comment": "no pauses at punctuation"},
	"precision": {"level": "Advanced", "comment": "no reading errors"},
	"reading_fluency": {"level": "InProgress", "comment": "62 words per minute"}
}`

func TestDecodeRubricValid(t *testing.T) {
	eval, err := DecodeRubric([]byte(validRubricJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eval.SyllabicStrategy.Level != LevelAchieved {
		t.Errorf("syllabic_strategy: expected Achieved, got %s", eval.SyllabicStrategy.Level)
	}
	if eval.Precision.Level != LevelAdvanced {
		t.Errorf("precision: expected Advanced, got %s", eval.Precision.Level)
	}
	if eval.ReadingFluency.Comment != "62 words per minute" {
		t.Errorf("comment not preserved: %q", eval.ReadingFluency.Comment)
	}
}

func TestDecodeRubricViolations(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			"missing criterion",
			`{
				"syllabic_strategy": {"level": "Achieved", "comment": "a"},
				"rhythm_control": {"level": "Achieved", "comment": "b"},
				"breath_control": {"level": "Achieved", "comment": "c"},
				"precision": {"level": "Achieved", "comment": "d"}
			}`,
		},
		{
			"duplicated criterion",
			`{
				"syllabic_strategy": {"level": "Achieved", "comment": "a"},
				"syllabic_strategy": {"level": "Initial", "comment": "a2"},
				"rhythm_control": {"level": "Achieved", "comment": "b"},
				"breath_control": {"level": "Achieved", "comment": "c"},
				"precision": {"level": "Achieved", "comment": "d"},
				"reading_fluency": {"level": "Achieved", "comment": "e"}
			}`,
		},
		{
			"unknown key",
			`{
				"syllabic_strategy": {"level": "Achieved", "comment": "a"},
				"rhythm_control": {"level": "Achieved", "comment": "b"},
				"breath_control": {"level": "Achieved", "comment": "c"},
				"precision": {"level": "Achieved", "comment": "d"},
				"reading_fluency": {"level": "Achieved", "comment": "e"},
				"extra_criterion": {"level": "Achieved", "comment": "f"}
			}`,
		},
		{
			"level outside enum",
			`{
				"syllabic_strategy": {"level": "Excellent", "comment": "a"},
				"rhythm_control": {"level": "Achieved", "comment": "b"},
				"breath_control": {"level": "Achieved", "comment": "c"},
				"precision": {"level": "Achieved", "comment": "d"},
				"reading_fluency": {"level": "Achieved", "comment": "e"}
			}`,
		},
		{"not an object", `["syllabic_strategy"]`},
		{"truncated payload", `{"syllabic_strategy": {"level": "Achie`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRubric([]byte(tt.raw))
			var schemaErr *SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected SchemaError, got %v", err)
			}
		})
	}
}

func TestLevelValid(t *testing.T) {
	for _, l := range []Level{LevelInitial, LevelInProgress, LevelAchieved, LevelAdvanced} {
		if !l.Valid() {
			t.Errorf("level %s should be valid", l)
		}
	}
	for _, l := range []Level{"", "initial", "Logrado", "Excellent"} {
		if l.Valid() {
			t.Errorf("level %q should be invalid", l)
		}
	}
}

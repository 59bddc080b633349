package batchengine

// ItemState is the lifecycle position of one work item. Done, Rejected,
// Failed and Skipped are terminal; every item in a finished Summary carries
// one of those four.
type ItemState string

const (
	StatePending              ItemState = "pending"
	StateTranscribing         ItemState = "transcribing"
	StateVerifyingOriginal    ItemState = "verifying_original"
	StateTransforming         ItemState = "transforming"
	StateVerifyingTransformed ItemState = "verifying_transformed"
	StatePersisting           ItemState = "persisting"
	StateDone                 ItemState = "done"
	StateRejected             ItemState = "rejected"
	StateFailed               ItemState = "failed"
	StateSkipped              ItemState = "skipped"
)

// Terminal reports whether the state is one of the four end states.
func (s ItemState) Terminal() bool {
	switch s {
	case StateDone, StateRejected, StateFailed, StateSkipped:
		return true
	}
	return false
}

// ItemResult is the terminal outcome of one work item. Similarity fields are
// pointers so a stage that never ran is distinguishable from a zero score.
type ItemResult struct {
	Filename              string    `json:"filename"`
	State                 ItemState `json:"state"`
	Similarity            *float64  `json:"similarity,omitempty"`
	TransformedSimilarity *float64  `json:"transformed_similarity,omitempty"`
	TransformedMatch      *bool     `json:"transformed_match,omitempty"`
	Transcript            string    `json:"transcript,omitempty"`
	RecordID              string    `json:"record_id,omitempty"`
	Reason                string    `json:"reason,omitempty"`
}

// Summary is the join-all result of a batch run.
type Summary struct {
	RunID    string       `json:"run_id"`
	Manifest string       `json:"manifest"`
	Total    int          `json:"total"`
	Done     int          `json:"done"`
	Rejected int          `json:"rejected"`
	Failed   int          `json:"failed"`
	Skipped  int          `json:"skipped"`
	Items    []ItemResult `json:"items"`
}

func summarize(runID, manifest string, items []ItemResult) *Summary {
	s := &Summary{RunID: runID, Manifest: manifest, Total: len(items), Items: items}
	for _, item := range items {
		switch item.State {
		case StateDone:
			s.Done++
		case StateRejected:
			s.Rejected++
		case StateFailed:
			s.Failed++
		case StateSkipped:
			s.Skipped++
		}
	}
	return s
}

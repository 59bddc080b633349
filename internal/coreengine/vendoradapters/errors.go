package vendoradapters

import "fmt"

// TranscriptionError reports a speech-to-text failure. It is a per-item
// external-service error: the owning work item fails, the batch continues.
type TranscriptionError struct {
	Provider string
	Err      error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription failed (%s): %v", e.Provider, e.Err)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// TransformError reports an audio transform failure (noise reduction or
// voice isolation), isolated to the owning work item.
type TransformError struct {
	Stage string
	Err   error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("audio transform failed (%s): %v", e.Stage, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

// SchemaError reports a structurally invalid rubric response: a missing or
// duplicated criterion, an unknown key, or a level outside the enum. It is
// surfaced to the caller as a failed evaluation, never silently defaulted.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("rubric schema violation: %s", e.Reason)
}

package pipeline

import (
	"errors"
	"fmt"
)

// Category names the stage family an error belongs to. The set is fixed;
// callers map categories to user-facing responses without inspecting
// internals.
type Category string

const (
	CategoryAcquisition    Category = "acquisition"
	CategoryExtraction     Category = "extraction"
	CategoryTranscription  Category = "transcription"
	CategoryClassification Category = "classification"
	CategoryAggregation    Category = "aggregation"
)

// Messages shown to callers per category. Deliberately generic: no internal
// paths, no stack traces.
var categoryMessages = map[Category]string{
	CategoryAcquisition:    "Failed to acquire the video. Please check the source and try again.",
	CategoryExtraction:     "Audio extraction failed",
	CategoryTranscription:  "Transcription failed",
	CategoryClassification: "Truth classification failed",
	CategoryAggregation:    "Result aggregation failed",
}

// StageError is the terminal failure of one pipeline stage. Stages fail
// fast; the orchestrator performs no retry for any category, so a
// StageError always ends its request.
type StageError struct {
	Category Category
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Category, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Message returns the client-safe message for this error's category.
func (e *StageError) Message() string {
	if msg, ok := categoryMessages[e.Category]; ok {
		return msg
	}
	return "Pipeline failed"
}

func stageErr(category Category, err error) *StageError {
	return &StageError{Category: category, Err: err}
}

// AsStageError extracts a StageError from an error chain.
func AsStageError(err error) (*StageError, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

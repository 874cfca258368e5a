package analyzer

import "fmt"

// Inference stages reported in InferenceError
const (
	StageClassify   = "classify"
	StageExtract    = "extract"
	StageSummary    = "summary"
	StageConclusion = "conclusion"
)

// InferenceError is a failed or unusable backend call.
// It is fatal for the run: a partial vulnerability report is never produced.
type InferenceError struct {
	Stage string
	// Row is the 1-based record position, 0 for corpus-level stages
	Row int
	Err error
}

func (e *InferenceError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("inference failed during %s of record %d: %v", e.Stage, e.Row, e.Err)
	}
	return fmt.Sprintf("inference failed during %s: %v", e.Stage, e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

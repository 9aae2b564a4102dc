package agents

import "fmt"

// ClassificationError reports a failed intent classification. It is
// non-fatal: callers fall back to the default intent.
type ClassificationError struct {
	Err error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("intent classification: %v", e.Err)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// AnalysisError reports a failed analysis stage. Callers surface a
// degraded placeholder payload instead of aborting.
type AnalysisError struct {
	Err error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis: %v", e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// VisualizationError reports a failed visualization stage. Callers fall
// back to empty artifact lists.
type VisualizationError struct {
	Err error
}

func (e *VisualizationError) Error() string {
	return fmt.Sprintf("visualization: %v", e.Err)
}

func (e *VisualizationError) Unwrap() error { return e.Err }

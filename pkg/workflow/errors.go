package workflow

import "fmt"

// WorkflowFatalError marks an unexpected internal fault. It is the only
// error class that terminates a workflow with the Errored state; every
// collaborator-local failure degrades at its stage boundary instead.
type WorkflowFatalError struct {
	Stage State
	Err   error
}

func (e *WorkflowFatalError) Error() string {
	return fmt.Sprintf("workflow fatal at %s: %v", e.Stage, e.Err)
}

func (e *WorkflowFatalError) Unwrap() error { return e.Err }

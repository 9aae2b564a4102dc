package retrieval

import "fmt"

// RetrievalError wraps a backend failure (unreachable store, timeout).
// Callers degrade to an empty batch with StrategyFailed instead of aborting.
type RetrievalError struct {
	Backend string
	Err     error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval backend %s: %v", e.Backend, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

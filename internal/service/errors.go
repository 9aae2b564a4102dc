package service

import "fmt"

// PersistenceError reports a durable-store failure for one entity type.
// Conversation and message writes degrade to the in-memory fallback on
// this error; document operations surface it to the caller because they
// have no fallback.
type PersistenceError struct {
	Entity string
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Entity, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

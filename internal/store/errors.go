package store

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrDuplicateID = errors.New("duplicate identifier")
)

// PersistenceError wraps a failed write-through to the durable record store.
// When a store returns one, the in-memory state has already been rolled back
// to what it was before the mutating call.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistenceError(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

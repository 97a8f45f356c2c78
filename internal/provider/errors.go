package provider

import (
	"errors"
	"fmt"
)

// ErrUnknownLocator marks an operation addressed to a locator the routing
// table does not serve. This is a caller bug, not a user-facing condition.
var ErrUnknownLocator = errors.New("unknown locator")

// ValidationError rejects a write before it reaches storage.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PersistenceError wraps a write the store itself rejected. Never retried.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

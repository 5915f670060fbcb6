package component

import (
	"errors"
	"fmt"
)

// Common error variables for component-related operations
var (
	// ErrAlreadyLoaded indicates that Load was invoked a second time on the
	// same descriptor instance. Re-running load side effects is unsafe, so a
	// descriptor loads at most once.
	ErrAlreadyLoaded = errors.New("component already loaded")
)

// Error represents a detailed error that occurred during a component operation
type Error struct {
	// Label identifies the component where the error occurred
	Label string

	// Operation describes the action that was being performed
	Operation string

	// Err is the underlying error
	Err error
}

// Error implements the error interface.
// Returns a formatted message including component label and operation.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("component %s: %s failed: %v", e.Label, e.Operation, e.Err)
	}
	return fmt.Sprintf("component %s: %s failed", e.Label, e.Operation)
}

// Unwrap returns the underlying error for error chain handling
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new component Error with the given details
func NewError(label, operation string, err error) *Error {
	return &Error{
		Label:     label,
		Operation: operation,
		Err:       err,
	}
}

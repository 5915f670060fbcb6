package keel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-keel/keel/component"
)

// Common error variables for registry operations. All of them surface
// configuration or programming mistakes; the registry never retries and never
// substitutes defaults on their behalf.
var (
	// ErrNotReady indicates a query was issued before population completed.
	// Callers must populate the registry (or wait for Setup) first.
	ErrNotReady = errors.New("registry isn't populated yet")

	// ErrReentrantPopulate indicates Populate was invoked while a population
	// of the same registry was already in progress. Always a programming
	// error; population is not recursive.
	ErrReentrantPopulate = errors.New("populate isn't reentrant")

	// ErrDuplicateComponent indicates two installed components share a label.
	// Labels must be unique across the installed set.
	ErrDuplicateComponent = errors.New("duplicate component label")

	// ErrRecordConflict indicates two records share a name (case-insensitive)
	// within one component. Surfaced immediately; there is no silent overwrite.
	ErrRecordConflict = errors.New("conflicting records")

	// ErrComponentNotFound indicates a lookup for a label that is not
	// installed. Recoverable by the caller as "absent".
	ErrComponentNotFound = errors.New("component not found")

	// ErrRecordNotFound indicates a lookup for a record name that is not
	// registered. Recoverable by the caller as "absent".
	ErrRecordNotFound = errors.New("record not found")

	// ErrInvalidSubset indicates an override requested a qualified name that
	// is not currently installed.
	ErrInvalidSubset = errors.New("available components aren't a subset of installed components")

	// ErrUnbalancedStack indicates an override restore without a matching
	// override. Programming error.
	ErrUnbalancedStack = errors.New("override stack is empty")
)

// ConflictError reports a record registration that collided with an existing
// record under the same component label. Both records are carried for
// diagnostics.
type ConflictError struct {
	// Label is the component label the registration targeted
	Label string

	// Name is the lowercased record name both records share
	Name string

	// Existing is the record already registered under (Label, Name);
	// Incoming is the record whose registration was rejected
	Existing, Incoming component.Record
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting %q records in component %q: %s (%T) and %s (%T)",
		e.Name, e.Label,
		e.Existing.RecordName(), e.Existing,
		e.Incoming.RecordName(), e.Incoming)
}

// Unwrap returns ErrRecordConflict so callers can match with errors.Is.
func (e *ConflictError) Unwrap() error {
	return ErrRecordConflict
}

// SubsetError reports an override request naming components that are not
// currently installed.
type SubsetError struct {
	// Unknown lists the requested qualified names with no installed match
	Unknown []string
}

// Error implements the error interface.
func (e *SubsetError) Error() string {
	return fmt.Sprintf("available components aren't a subset of installed components, extra components: %s",
		strings.Join(e.Unknown, ", "))
}

// Unwrap returns ErrInvalidSubset so callers can match with errors.Is.
func (e *SubsetError) Unwrap() error {
	return ErrInvalidSubset
}

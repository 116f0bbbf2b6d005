package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by repositories when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports input rejected at the boundary (negative weight, empty id, ...).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ResolutionError reports a stop whose location could not be turned into a distance.
type ResolutionError struct {
	StopID string
	Reason string
	Err    error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("resolve stop %q: %s: %v", e.StopID, e.Reason, e.Err)
	}
	return fmt.Sprintf("resolve stop %q: %s", e.StopID, e.Reason)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// CapacityExceededError is returned when a route cannot hold every requested stop
// without breaking a capacity constraint.
type CapacityExceededError struct {
	Reason   string
	Excluded []string
}

func (e *CapacityExceededError) Error() string {
	if len(e.Excluded) == 0 {
		return "capacity exceeded: " + e.Reason
	}
	return fmt.Sprintf("capacity exceeded: %s (excluded: %s)", e.Reason, strings.Join(e.Excluded, ", "))
}

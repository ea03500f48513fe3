package core

import (
	"errors"
	"fmt"
)

var (
	ErrAcquisition = errors.New("asset acquisition failed")
	ErrLookup      = errors.New("owned object not found")
	ErrOwnership   = errors.New("object not owned by state")
	ErrUnknown     = errors.New("unknown")
)

// AcquisitionError reports a single reference that failed to load or
// instantiate. The pipeline counts it as a completed step.
type AcquisitionError struct {
	Address string
	Err     error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("acquire '%s': %v", e.Address, e.Err)
}

func (e *AcquisitionError) Unwrap() []error {
	return []error{ErrAcquisition, e.Err}
}

// LookupError is returned when a typed search over a state's owned objects
// finds nothing.
type LookupError struct {
	State  string
	Target string
	Scope  string
}

func (e *LookupError) Error() string {
	if e.Scope == "" {
		return fmt.Sprintf("%s: no owned object of type %s", e.State, e.Target)
	}
	return fmt.Sprintf("%s: no owned object with component %s (scope %s)", e.State, e.Target, e.Scope)
}

func (e *LookupError) Unwrap() error {
	return ErrLookup
}

// OwnershipError is returned when a release targets an object the state
// does not currently own.
type OwnershipError struct {
	State  string
	Object string
}

func (e *OwnershipError) Error() string {
	return fmt.Sprintf("object '%s' does not belong to %s", e.Object, e.State)
}

func (e *OwnershipError) Unwrap() error {
	return ErrOwnership
}

package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the scheduling operations matches
// exactly one of them via errors.Is.
var (
	// ErrValidation malformed or inconsistent input; not retried
	ErrValidation = errors.New("validation error")

	// ErrConflict the requested interval collides with an active booking; not retried
	ErrConflict = errors.New("scheduling conflict")

	// ErrState illegal lifecycle transition; not retried
	ErrState = errors.New("illegal booking state transition")

	// ErrTransient lock timeout or serialization failure after internal retries;
	// the real scheduling state is unknown and the caller may try again
	ErrTransient = errors.New("transient storage error")
)

// ConflictError carries the interval of the booking that blocks the request
type ConflictError struct {
	BookingID int64
	Scope     Scope
	Interval  Interval
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: slot %s is already taken", ErrConflict, e.Interval)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// StateError describes a rejected status transition
type StateError struct {
	From BookingStatus
	To   BookingStatus
}

func (e *StateError) Error() string {
	if e.From.IsTerminal() {
		return fmt.Sprintf("%s: booking is %s and cannot change to %s", ErrState, e.From, e.To)
	}
	return fmt.Sprintf("%s: %s -> %s", ErrState, e.From, e.To)
}

func (e *StateError) Is(target error) bool {
	return target == ErrState
}

// NewValidationError wraps a message into the validation kind
func NewValidationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

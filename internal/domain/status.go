package domain

import "fmt"

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	StatusScheduled  BookingStatus = "scheduled"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
)

// InitialStatus is assigned to every newly created booking
const InitialStatus = StatusScheduled

// validTransitions lists the allowed next states. Terminal states have none.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusScheduled:  {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// ActiveStatuses are the states that occupy an interval in overlap checks
var ActiveStatuses = []BookingStatus{
	StatusScheduled,
	StatusConfirmed,
	StatusInProgress,
}

// AllStatuses in lifecycle order
var AllStatuses = []BookingStatus{
	StatusScheduled,
	StatusConfirmed,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
}

// ParseBookingStatus validates a raw status string
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if _, ok := validTransitions[status]; !ok {
		return "", fmt.Errorf("%w: unknown booking status %q", ErrValidation, s)
	}
	return status, nil
}

func (s BookingStatus) String() string {
	return string(s)
}

// IsValid reports whether s is a known status
func (s BookingStatus) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

// IsActive reports whether a booking in this state blocks its interval
func (s BookingStatus) IsActive() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusInProgress:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are possible
func (s BookingStatus) IsTerminal() bool {
	next, ok := validTransitions[s]
	return ok && len(next) == 0
}

// CanTransitionTo reports whether s -> next is an allowed transition
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AllowedTransitions returns a copy of the allowed next states
func (s BookingStatus) AllowedTransitions() []BookingStatus {
	next := validTransitions[s]
	out := make([]BookingStatus, len(next))
	copy(out, next)
	return out
}

// CheckTransition returns a *StateError when s -> next is not allowed
func (s BookingStatus) CheckTransition(next BookingStatus) error {
	if !next.IsValid() {
		return fmt.Errorf("%w: unknown booking status %q", ErrValidation, next)
	}
	if !s.CanTransitionTo(next) {
		return &StateError{From: s, To: next}
	}
	return nil
}

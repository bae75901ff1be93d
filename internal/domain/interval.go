package domain

import (
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Interval is a half-open [Start, End) span in minutes from local midnight
type Interval struct {
	Start int
	End   int
}

// NewInterval builds an interval from a start time and a duration
func NewInterval(start types.TimeString, durationMinutes int) Interval {
	s := start.Minutes()
	return Interval{Start: s, End: s + durationMinutes}
}

// Overlaps implements half-open intersection: touching intervals do not overlap
func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && i.End > other.Start
}

// Contains reports whether other lies fully inside i
func (i Interval) Contains(other Interval) bool {
	return other.Start >= i.Start && other.End <= i.End
}

// Duration in minutes
func (i Interval) Duration() int {
	return i.End - i.Start
}

// IsEmpty reports a zero or negative length
func (i Interval) IsEmpty() bool {
	return i.End <= i.Start
}

// StartTime formats Start as HH:MM
func (i Interval) StartTime() types.TimeString {
	return minutesToTimeString(i.Start)
}

// EndTime formats End as HH:MM; an end at midnight is rendered as "24:00"
func (i Interval) EndTime() types.TimeString {
	return minutesToTimeString(i.End)
}

func (i Interval) String() string {
	return fmt.Sprintf("%s-%s", i.StartTime(), i.EndTime())
}

func minutesToTimeString(m int) types.TimeString {
	if m == types.MinutesPerDay {
		return "24:00"
	}
	ts, err := types.NewTimeStringFromMinutes(m)
	if err != nil {
		return types.TimeString(fmt.Sprintf("+%dm", m))
	}
	return ts
}

// FirstOverlap returns the first active booking whose interval overlaps candidate
func FirstOverlap(candidate Interval, bookings []*Booking) (*Booking, bool) {
	for _, b := range bookings {
		if !b.IsActive() {
			continue
		}
		if b.Interval().Overlaps(candidate) {
			return b, true
		}
	}
	return nil, false
}

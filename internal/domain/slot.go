package domain

import "github.com/m04kA/SMC-SchedulingService/pkg/types"

// AvailableSlot is a candidate start time. It is advisory until a booking is created.
type AvailableSlot struct {
	StartTime       types.TimeString
	EndTime         types.TimeString
	DurationMinutes int
}

// NewAvailableSlot builds a slot from a minute offset and the service duration
func NewAvailableSlot(startMinutes, durationMinutes int) AvailableSlot {
	iv := Interval{Start: startMinutes, End: startMinutes + durationMinutes}
	return AvailableSlot{
		StartTime:       iv.StartTime(),
		EndTime:         iv.EndTime(),
		DurationMinutes: durationMinutes,
	}
}

package get_available_slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

func openDay(open, closeAt string) *domain.OperatingHours {
	return &domain.OperatingHours{
		CompanyID: 1,
		Weekday:   time.Wednesday,
		IsOpen:    true,
		OpenTime:  types.TimeString(open),
		CloseTime: types.TimeString(closeAt),
	}
}

func withBreak(h *domain.OperatingHours, start, end string) *domain.OperatingHours {
	h.BreakStart = ptr.Ptr(types.TimeString(start))
	h.BreakEnd = ptr.Ptr(types.TimeString(end))
	return h
}

func active(start string, duration int) *domain.Booking {
	return &domain.Booking{StartTime: types.TimeString(start), DurationMinutes: duration, Status: domain.StatusConfirmed}
}

func toTimes(slots []int) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = domain.Interval{Start: s, End: s}.StartTime().String()
	}
	return out
}

func TestGenerateSlots_BreakExclusion(t *testing.T) {
	hours := withBreak(openDay("08:00", "18:00"), "12:00", "13:00")

	slots := toTimes(generateSlots(hours, nil, 60, 30))

	assert.Contains(t, slots, "11:00", "ends exactly at break start")
	assert.Contains(t, slots, "13:00", "starts exactly at break end")
	assert.NotContains(t, slots, "11:30")
	assert.NotContains(t, slots, "12:00")
	assert.NotContains(t, slots, "12:30")
	assert.Equal(t, "08:00", slots[0])
	assert.Equal(t, "17:00", slots[len(slots)-1], "last start is close - duration")
}

func TestGenerateSlots_TouchingBookingsAllowed(t *testing.T) {
	hours := openDay("10:00", "12:00")
	bookings := []*domain.Booking{active("10:30", 30)}

	slots := toTimes(generateSlots(hours, bookings, 30, 30))

	assert.Equal(t, []string{"10:00", "11:00", "11:30"}, slots)
}

func TestGenerateSlots_PartialOverlapRejected(t *testing.T) {
	hours := openDay("10:00", "12:00")
	bookings := []*domain.Booking{active("10:15", 30)}

	slots := toTimes(generateSlots(hours, bookings, 30, 30))

	assert.Equal(t, []string{"11:00", "11:30"}, slots)
}

func TestGenerateSlots_IgnoresInactiveBookings(t *testing.T) {
	hours := openDay("10:00", "11:00")
	cancelled := active("10:00", 60)
	cancelled.Status = domain.StatusCancelled

	slots := toTimes(generateSlots(hours, []*domain.Booking{cancelled}, 30, 30))

	assert.Equal(t, []string{"10:00", "10:30"}, slots)
}

func TestGenerateSlots_ClosedDay(t *testing.T) {
	for _, duration := range []int{15, 30, 60, 240} {
		hours := openDay("08:00", "18:00")
		hours.IsOpen = false

		assert.Empty(t, generateSlots(hours, nil, duration, 30))
	}
}

func TestGenerateSlots_ServiceLongerThanDay(t *testing.T) {
	assert.Empty(t, generateSlots(openDay("10:00", "11:00"), nil, 90, 30))
}

func TestGenerateSlots_OffGridClose(t *testing.T) {
	slots := toTimes(generateSlots(openDay("09:15", "10:45"), nil, 30, 30))

	assert.Equal(t, []string{"09:15", "09:45", "10:15"}, slots)
}

func TestDropBefore(t *testing.T) {
	assert.Equal(t, []int{600, 630}, dropBefore([]int{540, 570, 600, 630}, 600))
	assert.Empty(t, dropBefore([]int{540}, 541))
}

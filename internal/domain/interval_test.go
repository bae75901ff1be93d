package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

func TestInterval_Overlaps(t *testing.T) {
	base := Interval{Start: 600, End: 630} // 10:00-10:30

	tests := []struct {
		name  string
		other Interval
		want  bool
	}{
		{name: "identical", other: Interval{Start: 600, End: 630}, want: true},
		{name: "touching before", other: Interval{Start: 570, End: 600}, want: false},
		{name: "touching after", other: Interval{Start: 630, End: 660}, want: false},
		{name: "partial start", other: Interval{Start: 590, End: 610}, want: true},
		{name: "partial end", other: Interval{Start: 620, End: 640}, want: true},
		{name: "contains", other: Interval{Start: 540, End: 720}, want: true},
		{name: "inside", other: Interval{Start: 610, End: 620}, want: true},
		{name: "disjoint", other: Interval{Start: 700, End: 730}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(base), "overlap must be symmetric")
		})
	}
}

func TestInterval_String(t *testing.T) {
	assert.Equal(t, "14:00-14:30", NewInterval("14:00", 30).String())
	assert.Equal(t, "23:30-24:00", Interval{Start: 1410, End: 1440}.String())
}

func TestFirstOverlap_SkipsInactive(t *testing.T) {
	bookings := []*Booking{
		{ID: 1, StartTime: "10:00", DurationMinutes: 30, Status: StatusCancelled},
		{ID: 2, StartTime: "10:00", DurationMinutes: 30, Status: StatusCompleted},
		{ID: 3, StartTime: "10:30", DurationMinutes: 30, Status: StatusConfirmed},
	}

	_, found := FirstOverlap(NewInterval("10:00", 30), bookings)
	assert.False(t, found)

	b, found := FirstOverlap(NewInterval("10:15", 30), bookings)
	assert.True(t, found)
	assert.Equal(t, int64(3), b.ID)
}

func TestConflictError(t *testing.T) {
	var err error = &ConflictError{BookingID: 9, Interval: NewInterval("14:00", 30)}

	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrTransient))
	assert.Contains(t, err.Error(), "14:00-14:30")

	var conflict *ConflictError
	assert.True(t, errors.As(err, &conflict))
	assert.Equal(t, int64(9), conflict.BookingID)
}

func TestScope(t *testing.T) {
	company := NewScope(5, nil)
	staff := NewScope(5, ptr.Ptr(int64(3)))

	assert.False(t, company.HasStaff())
	assert.Nil(t, company.StaffPtr())
	assert.True(t, staff.HasStaff())
	assert.Equal(t, int64(3), *staff.StaffPtr())
	assert.NotEqual(t, company.Key(), staff.Key())
	assert.Equal(t, staff.Key(), NewScope(5, ptr.Ptr(int64(3))).Key())
}

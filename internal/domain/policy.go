package domain

import "time"

// BookingPolicy holds the company-independent booking horizon rules applied
// both when listing slots and when creating a booking.
type BookingPolicy struct {
	StepMinutes             int
	MinBookingNoticeMinutes int
	AdvanceBookingDays      int // 0 = unlimited
	DefaultHours            DefaultHoursPolicy
}

// CheckDate rejects past dates and dates beyond the advance horizon
func (p BookingPolicy) CheckDate(date, now time.Time) error {
	day, today := truncateDay(date), truncateDay(now)

	if day.Before(today) {
		return NewValidationError("date %s is in the past", date.Format(DateFormat))
	}

	if p.AdvanceBookingDays > 0 && day.After(today.AddDate(0, 0, p.AdvanceBookingDays)) {
		return NewValidationError("can only book %d days in advance", p.AdvanceBookingDays)
	}

	return nil
}

// EarliestStart returns the first admissible start minute on date.
// Only the current day is restricted; other days return 0.
func (p BookingPolicy) EarliestStart(date, now time.Time) int {
	if !truncateDay(date).Equal(truncateDay(now)) {
		return 0
	}
	return now.Hour()*60 + now.Minute() + p.MinBookingNoticeMinutes
}

// Step returns the slot granularity, falling back to the default
func (p BookingPolicy) Step() int {
	if p.StepMinutes <= 0 {
		return DefaultSlotStepMinutes
	}
	return p.StepMinutes
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

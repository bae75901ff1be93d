package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// OperatingHours is the open window of a company on one weekday.
// Weekday follows time.Weekday: 0 = Sunday ... 6 = Saturday.
type OperatingHours struct {
	ID         int64
	CompanyID  int64
	Weekday    time.Weekday
	IsOpen     bool
	OpenTime   types.TimeString
	CloseTime  types.TimeString
	BreakStart *types.TimeString
	BreakEnd   *types.TimeString

	// IsDefault marks hours substituted by DefaultHoursPolicy, not stored for the company
	IsDefault bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the invariants of a weekday entry:
// open < close, and open <= breakStart < breakEnd <= close when a break is set.
func (h *OperatingHours) Validate() error {
	if h.Weekday < time.Sunday || h.Weekday > time.Saturday {
		return NewValidationError("weekday must be in [0..6], got %d", h.Weekday)
	}

	if (h.BreakStart == nil) != (h.BreakEnd == nil) {
		return NewValidationError("breakStart and breakEnd must be set together")
	}

	if !h.IsOpen {
		return nil
	}

	if err := h.OpenTime.Validate(); err != nil {
		return NewValidationError("openTime: %v", err)
	}
	if err := h.CloseTime.Validate(); err != nil {
		return NewValidationError("closeTime: %v", err)
	}
	if !h.OpenTime.IsBefore(h.CloseTime) {
		return NewValidationError("openTime %s must be before closeTime %s", h.OpenTime, h.CloseTime)
	}

	if !h.HasBreak() {
		return nil
	}

	if err := h.BreakStart.Validate(); err != nil {
		return NewValidationError("breakStart: %v", err)
	}
	if err := h.BreakEnd.Validate(); err != nil {
		return NewValidationError("breakEnd: %v", err)
	}

	open, closeAt := h.OpenTime.Minutes(), h.CloseTime.Minutes()
	bs, be := h.BreakStart.Minutes(), h.BreakEnd.Minutes()
	if !(open <= bs && bs < be && be <= closeAt) {
		return NewValidationError("break %s-%s must lie within %s-%s", *h.BreakStart, *h.BreakEnd, h.OpenTime, h.CloseTime)
	}

	return nil
}

// HasBreak reports whether a break window is configured
func (h *OperatingHours) HasBreak() bool {
	return h.BreakStart != nil && h.BreakEnd != nil
}

// Window returns the working interval [open, close)
func (h *OperatingHours) Window() Interval {
	return Interval{Start: h.OpenTime.Minutes(), End: h.CloseTime.Minutes()}
}

// Break returns the break interval; ok is false when there is no break
func (h *OperatingHours) Break() (Interval, bool) {
	if !h.HasBreak() {
		return Interval{}, false
	}
	return Interval{Start: h.BreakStart.Minutes(), End: h.BreakEnd.Minutes()}, true
}

// Admits reports whether a booking interval fits the working window and avoids the break
func (h *OperatingHours) Admits(candidate Interval) bool {
	if !h.IsOpen || candidate.IsEmpty() {
		return false
	}
	if !h.Window().Contains(candidate) {
		return false
	}
	if br, ok := h.Break(); ok && br.Overlaps(candidate) {
		return false
	}
	return true
}

// DefaultHoursPolicy supplies hours for weekdays a company has not configured.
// A disabled policy treats such days as closed.
type DefaultHoursPolicy struct {
	Enabled bool
	Open    types.TimeString
	Close   types.TimeString
}

// NewDefaultHoursPolicy validates and builds the policy
func NewDefaultHoursPolicy(enabled bool, open, closeAt string) (DefaultHoursPolicy, error) {
	if !enabled {
		return DefaultHoursPolicy{}, nil
	}
	o, err := types.NewTimeStringFromString(open)
	if err != nil {
		return DefaultHoursPolicy{}, fmt.Errorf("default hours open: %w", err)
	}
	c, err := types.NewTimeStringFromString(closeAt)
	if err != nil {
		return DefaultHoursPolicy{}, fmt.Errorf("default hours close: %w", err)
	}
	if !o.IsBefore(c) {
		return DefaultHoursPolicy{}, fmt.Errorf("default hours: open %s must be before close %s", o, c)
	}
	return DefaultHoursPolicy{Enabled: true, Open: o, Close: c}, nil
}

// For returns the substitute hours for the weekday
func (p DefaultHoursPolicy) For(companyID int64, weekday time.Weekday) *OperatingHours {
	if !p.Enabled {
		return &OperatingHours{CompanyID: companyID, Weekday: weekday, IsOpen: false, IsDefault: true}
	}
	return &OperatingHours{
		CompanyID: companyID,
		Weekday:   weekday,
		IsOpen:    true,
		OpenTime:  p.Open,
		CloseTime: p.Close,
		IsDefault: true,
	}
}

func (p DefaultHoursPolicy) String() string {
	if !p.Enabled {
		return "disabled (closed)"
	}
	return fmt.Sprintf("%s-%s, no break", p.Open, p.Close)
}

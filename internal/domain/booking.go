package domain

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Booking represents a client's reservation of a company service.
// Bookings are never deleted; cancellation is a status change.
type Booking struct {
	ID        int64
	CompanyID int64
	ServiceID int64
	ClientID  int64
	StaffID   *int64 // nil = company-wide scope

	BookingDate time.Time
	StartTime   types.TimeString
	// DurationMinutes is copied from the service at creation and never recomputed
	DurationMinutes int
	Status          BookingStatus

	Notes              *string
	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking still occupies its interval
func (b *Booking) IsActive() bool {
	return b.Status.IsActive()
}

// Interval returns the half-open [start, end) span in minutes from local midnight
func (b *Booking) Interval() Interval {
	start := b.StartTime.Minutes()
	return Interval{Start: start, End: start + b.DurationMinutes}
}

// Scope returns the locking/overlap scope of the booking
func (b *Booking) Scope() Scope {
	return NewScope(b.CompanyID, b.StaffID)
}

// StartsAt returns the booking start as an instant on the booking date
func (b *Booking) StartsAt() time.Time {
	return b.StartTime.On(b.BookingDate)
}

// EndsAt returns the exclusive end instant
func (b *Booking) EndsAt() time.Time {
	return b.StartsAt().Add(time.Duration(b.DurationMinutes) * time.Minute)
}

// BookingsFilter фильтр для выборки бронирований компании
type BookingsFilter struct {
	CompanyID       int64          // Обязательный параметр
	StaffID         *int64         // Фильтр по сотруднику (опционально)
	StartDate       *time.Time     // Начало периода (опционально)
	EndDate         *time.Time     // Конец периода (опционально)
	Status          *BookingStatus // Фильтр по статусу (опционально)
	IncludeInactive bool           // Включать ли завершённые и отменённые
}

package notifier

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
)

// BookingEvent полезная нагрузка события о бронировании
type BookingEvent struct {
	EventID         string    `json:"event_id"`
	EventType       string    `json:"event_type"`
	OccurredAt      time.Time `json:"occurred_at"`
	BookingID       int64     `json:"booking_id"`
	CompanyID       int64     `json:"company_id"`
	ServiceID       int64     `json:"service_id"`
	ClientID        int64     `json:"client_id"`
	StaffID         *int64    `json:"staff_id,omitempty"`
	BookingDate     string    `json:"booking_date"`
	StartTime       string    `json:"start_time"`
	EndTime         string    `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Status          string    `json:"status"`
	PreviousStatus  string    `json:"previous_status,omitempty"`
	Reason          *string   `json:"reason,omitempty"`
}

func newBookingEvent(id, eventType string, b *domain.Booking, now time.Time) BookingEvent {
	interval := b.Interval()
	return BookingEvent{
		EventID:         id,
		EventType:       eventType,
		OccurredAt:      now,
		BookingID:       b.ID,
		CompanyID:       b.CompanyID,
		ServiceID:       b.ServiceID,
		ClientID:        b.ClientID,
		StaffID:         b.StaffID,
		BookingDate:     b.BookingDate.Format(domain.DateFormat),
		StartTime:       interval.StartTime().String(),
		EndTime:         interval.EndTime().String(),
		DurationMinutes: b.DurationMinutes,
		Status:          string(b.Status),
	}
}

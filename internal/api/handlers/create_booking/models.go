package create_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	createBooking "github.com/m04kA/SMC-SchedulingService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// CreateBookingRequest HTTP request model.
// Клиент берётся из X-User-ID, а не из тела.
type CreateBookingRequest struct {
	CompanyID       int64   `json:"companyId"`
	ServiceID       int64   `json:"serviceId"`
	StaffID         *int64  `json:"staffId,omitempty"`
	BookingDate     string  `json:"bookingDate"`               // "2025-10-15"
	StartTime       string  `json:"startTime"`                 // "10:00"
	DurationMinutes *int    `json:"durationMinutes,omitempty"` // длительность, которую видел клиент
	Notes           *string `json:"notes,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID              int64   `json:"id"`
	ClientID        int64   `json:"clientId"`
	CompanyID       int64   `json:"companyId"`
	ServiceID       int64   `json:"serviceId"`
	StaffID         *int64  `json:"staffId,omitempty"`
	ServiceName     string  `json:"serviceName"`
	BookingDate     string  `json:"bookingDate"`
	StartTime       string  `json:"startTime"`
	EndTime         string  `json:"endTime"`
	DurationMinutes int     `json:"durationMinutes"`
	Status          string  `json:"status"`
	Notes           *string `json:"notes,omitempty"`
	CreatedAt       string  `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(clientID int64) (*createBooking.Request, error) {
	bookingDate, err := time.Parse(domain.DateFormat, r.BookingDate)
	if err != nil {
		return nil, fmt.Errorf("bookingDate: %w", err)
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, fmt.Errorf("startTime: %w", err)
	}

	return &createBooking.Request{
		ClientID:        clientID,
		CompanyID:       r.CompanyID,
		ServiceID:       r.ServiceID,
		StaffID:         r.StaffID,
		Date:            bookingDate,
		StartTime:       startTime,
		DurationMinutes: r.DurationMinutes,
		Notes:           r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	b := resp.Booking
	return &BookingResponse{
		ID:              b.ID,
		ClientID:        b.ClientID,
		CompanyID:       b.CompanyID,
		ServiceID:       b.ServiceID,
		StaffID:         b.StaffID,
		ServiceName:     resp.ServiceName,
		BookingDate:     b.BookingDate.Format(domain.DateFormat),
		StartTime:       b.StartTime.String(),
		EndTime:         resp.EndTime.String(),
		DurationMinutes: b.DurationMinutes,
		Status:          b.Status.String(),
		Notes:           b.Notes,
		CreatedAt:       b.CreatedAt.Format(time.RFC3339),
	}
}

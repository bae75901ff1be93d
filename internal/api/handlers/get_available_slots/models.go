package get_available_slots

import (
	"fmt"
	"strconv"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-SchedulingService/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date            string          `json:"date"`
	CompanyID       int64           `json:"companyId"`
	ServiceID       int64           `json:"serviceId"`
	StaffID         *int64          `json:"staffId,omitempty"`
	DurationMinutes int             `json:"durationMinutes"`
	IsOpen          bool            `json:"isOpen"`
	IsDefaultHours  bool            `json:"isDefaultHours"`
	Slots           []AvailableSlot `json:"slots"`
}

// AvailableSlot модель временного слота
type AvailableSlot struct {
	StartTime       string `json:"startTime"` // "10:00"
	EndTime         string `json:"endTime"`   // "10:30"
	DurationMinutes int    `json:"durationMinutes"`
}

// ToUseCaseRequest собирает запрос use case из параметров пути и query
func ToUseCaseRequest(companyID, serviceID int64, dateStr, staffIDStr string) (*getAvailableSlots.Request, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, fmt.Errorf("parse date: %w", err)
	}

	req := &getAvailableSlots.Request{
		CompanyID: companyID,
		ServiceID: serviceID,
		Date:      date,
	}

	if staffIDStr != "" {
		staffID, err := strconv.ParseInt(staffIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse staffId: %w", err)
		}
		req.StaffID = &staffID
	}

	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	out := &AvailableSlotsResponse{
		Date:            resp.Date.Format(domain.DateFormat),
		CompanyID:       resp.CompanyID,
		ServiceID:       resp.ServiceID,
		StaffID:         resp.StaffID,
		DurationMinutes: resp.DurationMinutes,
		IsOpen:          resp.IsOpen,
		IsDefaultHours:  resp.IsDefaultHours,
		Slots:           make([]AvailableSlot, 0, len(resp.Slots)),
	}

	for _, s := range resp.Slots {
		out.Slots = append(out.Slots, AvailableSlot{
			StartTime:       s.StartTime.String(),
			EndTime:         s.EndTime.String(),
			DurationMinutes: s.DurationMinutes,
		})
	}

	return out
}

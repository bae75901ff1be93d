package models

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// UpsertDayRequest запрос на изменение расписания одного дня недели
type UpsertDayRequest struct {
	UserID     int64             `json:"userId"`
	CompanyID  int64             `json:"companyId"`
	Weekday    time.Weekday      `json:"weekday"`
	IsOpen     bool              `json:"isOpen"`
	OpenTime   types.TimeString  `json:"openTime,omitempty"`
	CloseTime  types.TimeString  `json:"closeTime,omitempty"`
	BreakStart *types.TimeString `json:"breakStart,omitempty"`
	BreakEnd   *types.TimeString `json:"breakEnd,omitempty"`
}

// ToDomain конвертирует запрос в domain модель.
// Для закрытого дня время не сохраняется.
func (r *UpsertDayRequest) ToDomain() *domain.OperatingHours {
	h := &domain.OperatingHours{
		CompanyID: r.CompanyID,
		Weekday:   r.Weekday,
		IsOpen:    r.IsOpen,
	}
	if r.IsOpen {
		h.OpenTime = r.OpenTime
		h.CloseTime = r.CloseTime
		h.BreakStart = r.BreakStart
		h.BreakEnd = r.BreakEnd
	}
	return h
}

// DayResponse расписание одного дня
type DayResponse struct {
	Weekday    time.Weekday      `json:"weekday"`
	DayName    string            `json:"dayName"`
	IsOpen     bool              `json:"isOpen"`
	OpenTime   *types.TimeString `json:"openTime,omitempty"`
	CloseTime  *types.TimeString `json:"closeTime,omitempty"`
	BreakStart *types.TimeString `json:"breakStart,omitempty"`
	BreakEnd   *types.TimeString `json:"breakEnd,omitempty"`
	IsDefault  bool              `json:"isDefault"`
}

// WeekResponse расписание компании на неделю, с воскресенья
type WeekResponse struct {
	CompanyID int64         `json:"companyId"`
	Days      []DayResponse `json:"days"`
}

// FromDomainHours конвертирует domain модель в DTO
func FromDomainHours(h *domain.OperatingHours) DayResponse {
	resp := DayResponse{
		Weekday:   h.Weekday,
		DayName:   h.Weekday.String(),
		IsOpen:    h.IsOpen,
		IsDefault: h.IsDefault,
	}
	if h.IsOpen {
		open, closeAt := h.OpenTime, h.CloseTime
		resp.OpenTime = &open
		resp.CloseTime = &closeAt
		resp.BreakStart = h.BreakStart
		resp.BreakEnd = h.BreakEnd
	}
	return resp
}

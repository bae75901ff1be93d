package update_operating_hours

import (
	"fmt"
	"strconv"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/service/operatinghours/models"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// UpdateDayRequest HTTP request model
type UpdateDayRequest struct {
	IsOpen     bool              `json:"isOpen"`
	OpenTime   types.TimeString  `json:"openTime,omitempty"`
	CloseTime  types.TimeString  `json:"closeTime,omitempty"`
	BreakStart *types.TimeString `json:"breakStart,omitempty"`
	BreakEnd   *types.TimeString `json:"breakEnd,omitempty"`
}

// ParseWeekday принимает номер дня (0 = воскресенье) из пути
func ParseWeekday(raw string) (time.Weekday, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse weekday=%q: %w", raw, err)
	}
	if v < 0 || v > 6 {
		return 0, fmt.Errorf("weekday must be in 0..6, got %d", v)
	}
	return time.Weekday(v), nil
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *UpdateDayRequest) ToServiceRequest(userID, companyID int64, weekday time.Weekday) *models.UpsertDayRequest {
	return &models.UpsertDayRequest{
		UserID:     userID,
		CompanyID:  companyID,
		Weekday:    weekday,
		IsOpen:     r.IsOpen,
		OpenTime:   r.OpenTime,
		CloseTime:  r.CloseTime,
		BreakStart: r.BreakStart,
		BreakEnd:   r.BreakEnd,
	}
}

package update_operating_hours

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/service/operatinghours/models"
)

type HoursService interface {
	UpsertDay(ctx context.Context, req *models.UpsertDayRequest) (*models.DayResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

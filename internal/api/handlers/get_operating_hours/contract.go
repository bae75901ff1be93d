package get_operating_hours

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/service/operatinghours/models"
)

type HoursService interface {
	GetWeek(ctx context.Context, companyID int64) (*models.WeekResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

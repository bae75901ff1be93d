package cache

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// HoursRepository источник расписания работы
type HoursRepository interface {
	GetByWeekday(ctx context.Context, companyID int64, weekday time.Weekday) (*domain.OperatingHours, error)
}

// ServiceRepository источник каталога услуг
type ServiceRepository interface {
	GetByID(ctx context.Context, companyID, serviceID int64) (*domain.Service, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}

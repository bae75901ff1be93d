package operatinghours

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// HoursRepository интерфейс репозитория расписания
type HoursRepository interface {
	GetAllByCompany(ctx context.Context, companyID int64) ([]*domain.OperatingHours, error)
	Upsert(ctx context.Context, hours *domain.OperatingHours) (*domain.OperatingHours, error)
}

// HoursCache сбрасывает закэшированное расписание дня
type HoursCache interface {
	InvalidateHours(ctx context.Context, companyID int64, weekday time.Weekday)
}

// TenantServiceClient интерфейс клиента TenantService
type TenantServiceClient interface {
	GetCompany(ctx context.Context, companyID int64) (*domain.Company, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// GetActiveInScope получает активные бронирования scope на дату
	GetActiveInScope(ctx context.Context, scope domain.Scope, date time.Time) ([]*domain.Booking, error)
}

// HoursRepository интерфейс источника расписания (кэш поверх репозитория)
type HoursRepository interface {
	GetByWeekday(ctx context.Context, companyID int64, weekday time.Weekday) (*domain.OperatingHours, error)
}

// ServiceRepository интерфейс источника каталога услуг (кэш поверх репозитория)
type ServiceRepository interface {
	GetByID(ctx context.Context, companyID, serviceID int64) (*domain.Service, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

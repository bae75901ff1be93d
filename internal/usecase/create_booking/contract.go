package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// LockScope берёт транзакционную блокировку scope
	LockScope(ctx context.Context, scope domain.Scope) error
	// GetActiveInScope получает активные бронирования scope на дату (в транзакции - с блокировкой строк)
	GetActiveInScope(ctx context.Context, scope domain.Scope, date time.Time) ([]*domain.Booking, error)
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
}

// HoursRepository интерфейс репозитория расписания.
// Решение о бронировании принимается по данным БД, а не кэша.
type HoursRepository interface {
	GetByWeekday(ctx context.Context, companyID int64, weekday time.Weekday) (*domain.OperatingHours, error)
}

// ServiceRepository интерфейс репозитория услуг
type ServiceRepository interface {
	GetByID(ctx context.Context, companyID, serviceID int64) (*domain.Service, error)
}

// TenantServiceClient интерфейс клиента TenantService
type TenantServiceClient interface {
	GetCompany(ctx context.Context, companyID int64) (*domain.Company, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier публикует событие о созданном бронировании (fire-and-forget)
type Notifier interface {
	BookingCreated(ctx context.Context, booking *domain.Booking)
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

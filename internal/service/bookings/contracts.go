package bookings

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByClientID(ctx context.Context, clientID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
	GetByCompanyWithFilter(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
	// UpdateStatus меняет статус только если текущий равен from (compare-and-set)
	UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus, reason *string) (*domain.Booking, error)
}

// TenantServiceClient интерфейс клиента TenantService
type TenantServiceClient interface {
	GetCompany(ctx context.Context, companyID int64) (*domain.Company, error)
}

// Notifier публикует событие о смене статуса
type Notifier interface {
	StatusChanged(ctx context.Context, booking *domain.Booking, from domain.BookingStatus)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

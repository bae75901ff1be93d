package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	hoursRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/operatinghours"
	serviceRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/service"
)

// UseCase use case для получения доступных слотов для бронирования.
// Результат носит рекомендательный характер: окончательную проверку делает create_booking.
type UseCase struct {
	bookingRepo  BookingRepository
	hoursRepo    HoursRepository
	serviceRepo  ServiceRepository
	policy       domain.BookingPolicy
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	hoursRepo HoursRepository,
	serviceRepo ServiceRepository,
	policy domain.BookingPolicy,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		hoursRepo:    hoursRepo,
		serviceRepo:  serviceRepo,
		policy:       policy,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	date := req.Date.Format(domain.DateFormat)
	now := uc.timeProvider.Now()

	if err := uc.policy.CheckDate(req.Date, now); err != nil {
		uc.logger.Warn("GetAvailableSlots: company=%d, date=%s rejected: %v", req.CompanyID, date, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}

	// 1. Длительность услуги
	service, err := uc.serviceRepo.GetByID(ctx, req.CompanyID, req.ServiceID)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%d not found in company=%d", req.ServiceID, req.CompanyID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if !service.IsActive {
		return nil, ErrServiceInactive
	}

	// 2. Расписание на день недели, с подстановкой значений по умолчанию
	hours, err := uc.resolveHours(ctx, req.CompanyID, req.Date.Weekday())
	if err != nil {
		return nil, err
	}

	response := &Response{
		Date:            req.Date,
		CompanyID:       req.CompanyID,
		ServiceID:       req.ServiceID,
		StaffID:         req.StaffID,
		DurationMinutes: service.DurationMinutes,
		IsOpen:          hours.IsOpen,
		IsDefaultHours:  hours.IsDefault,
		Slots:           []domain.AvailableSlot{},
	}

	if !hours.IsOpen {
		uc.logger.Info("GetAvailableSlots: company=%d is closed on %s", req.CompanyID, date)
		return response, nil
	}

	// 3. Активные бронирования scope на дату (без блокировок)
	scope := domain.NewScope(req.CompanyID, req.StaffID)
	bookings, err := uc.bookingRepo.GetActiveInScope(ctx, scope, req.Date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get bookings for scope=%s: %v", scope.Key(), err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	// 4. Перебор кандидатов и отсечение по минимальному времени до записи
	starts := generateSlots(hours, bookings, service.DurationMinutes, uc.policy.Step())
	starts = dropBefore(starts, uc.policy.EarliestStart(req.Date, now))

	for _, s := range starts {
		response.Slots = append(response.Slots, domain.NewAvailableSlot(s, service.DurationMinutes))
	}

	uc.logger.Info("GetAvailableSlots: %d slots for company=%d, service=%d, scope=%s, date=%s",
		len(response.Slots), req.CompanyID, req.ServiceID, scope.Key(), date)

	return response, nil
}

func (uc *UseCase) resolveHours(ctx context.Context, companyID int64, weekday time.Weekday) (*domain.OperatingHours, error) {
	hours, err := uc.hoursRepo.GetByWeekday(ctx, companyID, weekday)
	if err == nil {
		return hours, nil
	}
	if !errors.Is(err, hoursRepo.ErrHoursNotFound) {
		uc.logger.Error("GetAvailableSlots: failed to get hours for company=%d, weekday=%d: %v", companyID, weekday, err)
		return nil, fmt.Errorf("%w: failed to get operating hours: %v", ErrInternal, err)
	}

	uc.logger.Info("GetAvailableSlots: no hours for company=%d, weekday=%s, applying default hours %s",
		companyID, weekday, uc.policy.DefaultHours)
	return uc.policy.DefaultHours.For(companyID, weekday), nil
}

package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/booking"
	hoursRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/operatinghours"
	serviceRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/service"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/tenantservice"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/txmanager"
)

// UseCase use case для создания бронирования.
// Проверка пересечений и вставка выполняются атомарно: в SERIALIZABLE транзакции
// под advisory-блокировкой scope (компания, сотрудник).
type UseCase struct {
	bookingRepo  BookingRepository
	hoursRepo    HoursRepository
	serviceRepo  ServiceRepository
	tenantClient TenantServiceClient
	txManager    TransactionManager
	notifier     Notifier
	policy       domain.BookingPolicy
	timeout      time.Duration
	timeProvider TimeProvider
	metrics      *metrics.Metrics
	logger       Logger
}

// NewUseCase создает новый экземпляр use case.
// timeout ограничивает всю операцию, включая ожидание блокировки и повторы; 0 - без ограничения.
func NewUseCase(
	bookingRepo BookingRepository,
	hoursRepo HoursRepository,
	serviceRepo ServiceRepository,
	tenantClient TenantServiceClient,
	txManager TransactionManager,
	notifier Notifier,
	policy domain.BookingPolicy,
	timeout time.Duration,
	m *metrics.Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		hoursRepo:    hoursRepo,
		serviceRepo:  serviceRepo,
		tenantClient: tenantClient,
		txManager:    txManager,
		notifier:     notifier,
		policy:       policy,
		timeout:      timeout,
		timeProvider: &RealTimeProvider{},
		metrics:      m,
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case создания бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	resp, err := uc.execute(ctx, req)
	uc.metrics.IncBookingOutcome(outcome(err))
	return resp, err
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: client=%d, company=%d, service=%d, date=%s, time=%s",
		req.ClientID, req.CompanyID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	if uc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.timeout)
		defer cancel()
	}

	now := uc.timeProvider.Now()

	// 2. Проверки до транзакции: без побочных эффектов
	service, err := uc.checkCompanyAndService(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := uc.policy.CheckDate(req.Date, now); err != nil {
		uc.logger.Warn("CreateBooking: date rejected: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}

	hours, err := uc.resolveHours(ctx, req.CompanyID, req.Date.Weekday())
	if err != nil {
		return nil, err
	}

	candidate := domain.NewInterval(req.StartTime, service.DurationMinutes)
	if err := validateInterval(hours, candidate); err != nil {
		uc.logger.Warn("CreateBooking: company=%d, date=%s: %v", req.CompanyID, req.Date.Format(domain.DateFormat), err)
		return nil, err
	}

	if earliest := uc.policy.EarliestStart(req.Date, now); candidate.Start < earliest {
		return nil, fmt.Errorf("%w: at least %d minutes in advance", ErrTooLate, uc.policy.MinBookingNoticeMinutes)
	}

	// 3. Атомарная проверка и вставка
	scope := domain.NewScope(req.CompanyID, req.StaffID)
	var result *domain.Booking

	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// Снимок SERIALIZABLE берётся на первом запросе, то есть до ожидания блокировки.
		// Ожидавший запрос не видит бронирование победителя в GetActiveInScope:
		// его отсекает ошибка сериализации (повтор видит новый снимок) или
		// exclusion constraint (ErrOverlap -> ConflictError в classify).
		if err := uc.bookingRepo.LockScope(txCtx, scope); err != nil {
			return err
		}

		existing, err := uc.bookingRepo.GetActiveInScope(txCtx, scope, req.Date)
		if err != nil {
			return err
		}

		if blocking, taken := domain.FirstOverlap(candidate, existing); taken {
			return &domain.ConflictError{BookingID: blocking.ID, Scope: scope, Interval: blocking.Interval()}
		}

		// Новый экземпляр на каждую попытку: Create заполняет ID
		created, err := uc.bookingRepo.Create(txCtx, &domain.Booking{
			CompanyID:       req.CompanyID,
			ServiceID:       req.ServiceID,
			ClientID:        req.ClientID,
			StaffID:         req.StaffID,
			BookingDate:     req.Date,
			StartTime:       candidate.StartTime(),
			DurationMinutes: service.DurationMinutes,
			Status:          domain.InitialStatus,
			Notes:           req.Notes,
		})
		if err != nil {
			return err
		}

		result = created
		return nil
	})
	if err != nil {
		return nil, uc.classify(ctx, err, scope, req.Date, candidate)
	}

	uc.logger.Info("CreateBooking: booking id=%d created, scope=%s, interval=%s",
		result.ID, scope.Key(), result.Interval())

	uc.notifier.BookingCreated(ctx, result)

	return &Response{
		Booking:     result,
		ServiceName: service.Name,
		EndTime:     result.Interval().EndTime(),
	}, nil
}

func (uc *UseCase) checkCompanyAndService(ctx context.Context, req *Request) (*domain.Service, error) {
	company, err := uc.tenantClient.GetCompany(ctx, req.CompanyID)
	if err != nil {
		switch {
		case errors.Is(err, tenantservice.ErrCompanyNotFound):
			uc.logger.Warn("CreateBooking: company id=%d not found", req.CompanyID)
			return nil, ErrCompanyNotFound
		case tenantservice.IsUnavailable(err):
			uc.logger.Error("CreateBooking: tenant service unavailable for company id=%d: %v", req.CompanyID, err)
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		default:
			uc.logger.Error("CreateBooking: failed to get company id=%d: %v", req.CompanyID, err)
			return nil, fmt.Errorf("%w: failed to get company: %v", ErrInternal, err)
		}
	}
	if !company.IsActive {
		return nil, ErrCompanyInactive
	}

	service, err := uc.serviceRepo.GetByID(ctx, req.CompanyID, req.ServiceID)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%d not found in company=%d", req.ServiceID, req.CompanyID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, uc.storageError(ctx, "failed to get service", err)
	}
	if !service.IsActive {
		return nil, ErrServiceInactive
	}

	if req.DurationMinutes != nil && *req.DurationMinutes != service.DurationMinutes {
		uc.logger.Warn("CreateBooking: duration mismatch for service id=%d: requested=%d, current=%d",
			service.ID, *req.DurationMinutes, service.DurationMinutes)
		return nil, fmt.Errorf("%w: requested %d, service takes %d minutes",
			ErrDurationMismatch, *req.DurationMinutes, service.DurationMinutes)
	}

	return service, nil
}

func (uc *UseCase) resolveHours(ctx context.Context, companyID int64, weekday time.Weekday) (*domain.OperatingHours, error) {
	hours, err := uc.hoursRepo.GetByWeekday(ctx, companyID, weekday)
	if err == nil {
		return hours, nil
	}
	if !errors.Is(err, hoursRepo.ErrHoursNotFound) {
		uc.logger.Error("CreateBooking: failed to get hours for company=%d, weekday=%d: %v", companyID, weekday, err)
		return nil, uc.storageError(ctx, "failed to get operating hours", err)
	}

	uc.logger.Info("CreateBooking: no hours for company=%d, weekday=%s, applying default hours %s",
		companyID, weekday, uc.policy.DefaultHours)
	return uc.policy.DefaultHours.For(companyID, weekday), nil
}

// classify приводит ошибку транзакции к таксономии: конфликт, временная ошибка или внутренняя
func (uc *UseCase) classify(
	ctx context.Context,
	err error,
	scope domain.Scope,
	date time.Time,
	candidate domain.Interval,
) error {
	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		uc.logger.Info("CreateBooking: conflict in scope=%s: requested %s, taken %s (booking id=%d)",
			scope.Key(), candidate, conflict.Interval, conflict.BookingID)
		return conflict
	}

	// Сработал exclusion constraint: ищем бронирование, которое заняло интервал
	if errors.Is(err, bookingRepo.ErrOverlap) {
		conflict = &domain.ConflictError{Scope: scope, Interval: candidate}
		if existing, getErr := uc.bookingRepo.GetActiveInScope(ctx, scope, date); getErr == nil {
			if blocking, ok := domain.FirstOverlap(candidate, existing); ok {
				conflict.BookingID = blocking.ID
				conflict.Interval = blocking.Interval()
			}
		}
		uc.logger.Info("CreateBooking: overlap rejected by constraint in scope=%s: %s", scope.Key(), conflict.Interval)
		return conflict
	}

	uc.logger.Error("CreateBooking: transaction failed for scope=%s: %v", scope.Key(), err)
	return uc.storageError(ctx, "transaction failed", err)
}

func (uc *UseCase) storageError(ctx context.Context, msg string, err error) error {
	if txmanager.IsTransient(err) || ctx.Err() != nil {
		return fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, msg, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrInternal, msg, err)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeCreated
	case errors.Is(err, domain.ErrConflict):
		return metrics.OutcomeConflict
	case errors.Is(err, domain.ErrValidation):
		return metrics.OutcomeValidation
	case errors.Is(err, domain.ErrTransient):
		return metrics.OutcomeTransient
	default:
		return metrics.OutcomeError
	}
}

package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/tenantservice"
	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
)

// casAttempts сколько раз перечитываем бронирование, если статус сменился параллельно
const casAttempts = 3

// Service сервис жизненного цикла бронирований: чтение, смена статуса, отмена
type Service struct {
	bookingRepo  BookingRepository
	tenantClient TenantServiceClient
	notifier     Notifier
	metrics      *metrics.Metrics
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	tenantClient TenantServiceClient,
	notifier Notifier,
	m *metrics.Metrics,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		tenantClient: tenantClient,
		notifier:     notifier,
		metrics:      m,
		logger:       logger,
	}
}

// GetByID получает бронирование по ID.
// Видеть бронирование может клиент-владелец или менеджер компании.
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, userID)

	booking, err := s.getBooking(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if err := s.checkOwnerOrManager(ctx, booking, userID); err != nil {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", userID, id)
		return nil, err
	}

	return models.FromDomainBooking(booking), nil
}

// GetClientBookings получает бронирования клиента; клиент видит только свои
func (s *Service) GetClientBookings(ctx context.Context, req *models.GetClientBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetClientBookings: fetching bookings for client=%d, status=%v", req.ClientID, req.Status)

	if req.UserID != req.ClientID {
		s.logger.Warn("GetClientBookings: user=%d requested bookings of client=%d", req.UserID, req.ClientID)
		return nil, ErrAccessDenied
	}

	var status *domain.BookingStatus
	if req.Status != nil {
		parsed, err := domain.ParseBookingStatus(*req.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		status = &parsed
	}

	bookings, err := s.bookingRepo.GetByClientID(ctx, req.ClientID, status)
	if err != nil {
		s.logger.Error("GetClientBookings: repository error for client=%d: %v", req.ClientID, err)
		return nil, fmt.Errorf("%w: GetClientBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetClientBookings: fetched %d bookings for client=%d", len(bookings), req.ClientID)
	return models.FromDomainBookingList(bookings), nil
}

// GetCompanyBookings получает бронирования компании с фильтрацией.
// Доступно только менеджерам компании.
func (s *Service) GetCompanyBookings(ctx context.Context, req *models.GetCompanyBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetCompanyBookings: fetching bookings for company=%d, user=%d, includeInactive=%t",
		req.CompanyID, req.UserID, req.IncludeInactive)

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetCompanyBookings: invalid filter for company=%d: %v", req.CompanyID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.checkManagerAccess(ctx, req.CompanyID, req.UserID); err != nil {
		return nil, err
	}

	bookings, err := s.bookingRepo.GetByCompanyWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetCompanyBookings: repository error for company=%d: %v", req.CompanyID, err)
		return nil, fmt.Errorf("%w: GetCompanyBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetCompanyBookings: fetched %d bookings for company=%d", len(bookings), req.CompanyID)
	return models.FromDomainBookingList(bookings), nil
}

// TransitionStatus переводит бронирование в новый статус по машине состояний.
// Доступно только менеджерам компании. Отмена идёт через Cancel.
func (s *Service) TransitionStatus(ctx context.Context, bookingID int64, req *models.TransitionStatusRequest) (*models.BookingResponse, error) {
	s.logger.Info("TransitionStatus: booking id=%d to status=%s by user=%d", bookingID, req.Status, req.UserID)

	target, err := domain.ParseBookingStatus(req.Status)
	if err != nil {
		s.logger.Warn("TransitionStatus: invalid status=%s for booking id=%d", req.Status, bookingID)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	booking, err := s.getBooking(ctx, "TransitionStatus", bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.checkManagerAccess(ctx, booking.CompanyID, req.UserID); err != nil {
		return nil, err
	}

	updated, err := s.transition(ctx, "TransitionStatus", booking, target, nil)
	if err != nil {
		return nil, err
	}

	return models.FromDomainBooking(updated), nil
}

// Cancel отменяет бронирование; интервал освобождается той же записью статуса.
// Отменить может клиент-владелец или менеджер компании.
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d", bookingID, req.UserID)

	if req.CancellationReason != nil && len(*req.CancellationReason) > domain.MaxNotesLength {
		return nil, fmt.Errorf("%w: cancellationReason must be at most %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	booking, err := s.getBooking(ctx, "Cancel", bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.checkOwnerOrManager(ctx, booking, req.UserID); err != nil {
		s.logger.Warn("Cancel: access denied for user=%d to cancel booking id=%d", req.UserID, bookingID)
		return nil, err
	}

	updated, err := s.transition(ctx, "Cancel", booking, domain.StatusCancelled, req.CancellationReason)
	if err != nil {
		return nil, err
	}

	return models.FromDomainBooking(updated), nil
}

// transition проверяет переход и пишет статус через compare-and-set.
// Если статус сменился параллельно, бронирование перечитывается и переход проверяется заново.
func (s *Service) transition(
	ctx context.Context,
	op string,
	booking *domain.Booking,
	to domain.BookingStatus,
	reason *string,
) (*domain.Booking, error) {
	current := booking
	for attempt := 1; attempt <= casAttempts; attempt++ {
		if err := current.Status.CheckTransition(to); err != nil {
			s.logger.Warn("%s: booking id=%d: %v", op, current.ID, err)
			return nil, err
		}

		updated, err := s.bookingRepo.UpdateStatus(ctx, current.ID, current.Status, to, reason)
		if err == nil {
			s.logger.Info("%s: booking id=%d moved %s -> %s", op, updated.ID, current.Status, updated.Status)
			s.metrics.IncStatusTransition(current.Status.String(), updated.Status.String())
			s.notifier.StatusChanged(ctx, updated, current.Status)
			return updated, nil
		}

		switch {
		case errors.Is(err, bookingRepo.ErrStatusChanged):
			s.logger.Info("%s: booking id=%d status changed concurrently, re-reading (attempt %d)", op, current.ID, attempt)
			current, err = s.getBooking(ctx, op, current.ID)
			if err != nil {
				return nil, err
			}
		case errors.Is(err, bookingRepo.ErrBookingNotFound):
			return nil, ErrBookingNotFound
		default:
			s.logger.Error("%s: failed to update booking id=%d: %v", op, current.ID, err)
			return nil, s.storageError(ctx, op, err)
		}
	}

	s.logger.Error("%s: booking id=%d kept changing, giving up after %d attempts", op, booking.ID, casAttempts)
	return nil, fmt.Errorf("%w: %s - status kept changing", ErrStorageUnavailable, op)
}

func (s *Service) getBooking(ctx context.Context, op string, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", op, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", op, id, err)
		return nil, s.storageError(ctx, op, err)
	}
	return booking, nil
}

func (s *Service) storageError(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, op, err)
	}
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}

// checkOwnerOrManager пропускает клиента-владельца и менеджера компании
func (s *Service) checkOwnerOrManager(ctx context.Context, booking *domain.Booking, userID int64) error {
	if booking.ClientID == userID {
		return nil
	}
	return s.checkManagerAccess(ctx, booking.CompanyID, userID)
}

// checkManagerAccess проверяет, что пользователь является менеджером компании
func (s *Service) checkManagerAccess(ctx context.Context, companyID int64, userID int64) error {
	company, err := s.tenantClient.GetCompany(ctx, companyID)
	if err != nil {
		switch {
		case errors.Is(err, tenantservice.ErrCompanyNotFound):
			s.logger.Warn("checkManagerAccess: company id=%d not found", companyID)
			return ErrCompanyNotFound
		case tenantservice.IsUnavailable(err):
			s.logger.Error("checkManagerAccess: tenant service unavailable for company id=%d: %v", companyID, err)
			return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		default:
			s.logger.Error("checkManagerAccess: failed to get company id=%d: %v", companyID, err)
			return fmt.Errorf("%w: checkManagerAccess - failed to get company: %v", ErrInternal, err)
		}
	}

	if !company.IsManager(userID) {
		s.logger.Warn("checkManagerAccess: user=%d is not a manager of company=%d", userID, companyID)
		return ErrAccessDenied
	}

	return nil
}

package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	createBooking "github.com/m04kA/SMC-SchedulingService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidDateOrTime   = "некорректная дата (YYYY-MM-DD) или время начала (HH:MM)"
	msgMissingUserID       = "отсутствует ID пользователя"
	msgSlotNotAvailable    = "выбранный временной слот уже занят"
	msgCompanyNotFound     = "компания не найдена"
	msgCompanyInactive     = "компания не принимает записи"
	msgServiceNotFound     = "услуга не найдена"
	msgServiceInactive     = "услуга недоступна для записи"
	msgDurationMismatch    = "длительность услуги изменилась, обновите список слотов"
	msgCompanyClosed       = "компания закрыта в выбранную дату"
	msgOutsideHours        = "время выходит за часы работы"
	msgInsideBreak         = "время попадает на перерыв"
	msgInvalidBookingDate  = "дата недоступна для записи"
	msgTooLateToBook       = "слишком поздно для записи на это время"
	msgInvalidBookingInput = "некорректные данные бронирования"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	clientID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(clientID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateOrTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		h.respondError(w, &req, clientID, err)
		return
	}

	h.logger.Info("POST /bookings - Booking created: booking_id=%d, client_id=%d, company_id=%d, interval=%s",
		result.Booking.ID, clientID, req.CompanyID, result.Booking.Interval())
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}

func (h *Handler) respondError(w http.ResponseWriter, req *CreateBookingRequest, clientID int64, err error) {
	var conflict *domain.ConflictError

	switch {
	case errors.As(err, &conflict):
		h.logger.Warn("POST /bookings - Slot taken: client_id=%d, company_id=%d, requested=%s %s, taken=%s",
			clientID, req.CompanyID, req.BookingDate, req.StartTime, conflict.Interval)
		handlers.RespondConflict(w, msgSlotNotAvailable, conflict)

	case errors.Is(err, createBooking.ErrCompanyNotFound):
		handlers.RespondNotFound(w, msgCompanyNotFound)
	case errors.Is(err, createBooking.ErrServiceNotFound):
		handlers.RespondNotFound(w, msgServiceNotFound)
	case errors.Is(err, createBooking.ErrCompanyInactive):
		handlers.RespondBadRequest(w, msgCompanyInactive)
	case errors.Is(err, createBooking.ErrServiceInactive):
		handlers.RespondBadRequest(w, msgServiceInactive)
	case errors.Is(err, createBooking.ErrDurationMismatch):
		handlers.RespondBadRequest(w, msgDurationMismatch)
	case errors.Is(err, createBooking.ErrCompanyClosed):
		handlers.RespondBadRequest(w, msgCompanyClosed)
	case errors.Is(err, createBooking.ErrOutsideOperatingHours):
		handlers.RespondBadRequest(w, msgOutsideHours)
	case errors.Is(err, createBooking.ErrInsideBreak):
		handlers.RespondBadRequest(w, msgInsideBreak)
	case errors.Is(err, createBooking.ErrInvalidDate):
		handlers.RespondBadRequest(w, msgInvalidBookingDate)
	case errors.Is(err, createBooking.ErrTooLate):
		handlers.RespondBadRequest(w, msgTooLateToBook)
	case errors.Is(err, domain.ErrValidation):
		h.logger.Warn("POST /bookings - Validation failed: client_id=%d, %v", clientID, err)
		handlers.RespondBadRequest(w, msgInvalidBookingInput)

	case errors.Is(err, domain.ErrTransient):
		h.logger.Warn("POST /bookings - Outcome unknown, retryable: client_id=%d, company_id=%d, error=%v",
			clientID, req.CompanyID, err)
		handlers.RespondUnavailable(w)

	default:
		h.logger.Error("POST /bookings - Failed to create booking: client_id=%d, company_id=%d, error=%v",
			clientID, req.CompanyID, err)
		handlers.RespondInternalError(w)
	}
}

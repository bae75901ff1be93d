package get_company_bookings

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings"
)

const (
	msgInvalidCompanyID = "некорректный ID компании"
	msgMissingUserID    = "отсутствует ID пользователя"
	msgInvalidParams    = "некорректные параметры запроса"
	msgCompanyNotFound  = "компания не найдена"
	msgForbidden        = "доступ запрещен"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/companies/{companyId}/bookings
// Query params: date | from,to (YYYY-MM-DD), staffId, status, includeInactive
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	companyID, err := handlers.PathInt64(r, "companyId")
	if err != nil {
		h.logger.Warn("GET /companies/{id}/bookings - Invalid company ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidCompanyID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /companies/{id}/bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	serviceReq, err := ToServiceRequest(companyID, userID, r.URL.Query())
	if err != nil {
		h.logger.Warn("GET /companies/{id}/bookings - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	// Сервис сам проверит права менеджера
	result, err := h.service.GetCompanyBookings(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /companies/{id}/bookings - Access denied: company_id=%d, user_id=%d", companyID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrCompanyNotFound):
			handlers.RespondNotFound(w, msgCompanyNotFound)

		case errors.Is(err, domain.ErrValidation):
			handlers.RespondBadRequest(w, msgInvalidParams)

		case errors.Is(err, domain.ErrTransient):
			handlers.RespondUnavailable(w)

		default:
			h.logger.Error("GET /companies/{id}/bookings - Failed to get bookings: company_id=%d, error=%v", companyID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /companies/{id}/bookings - Bookings retrieved: company_id=%d, count=%d", companyID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result)
}

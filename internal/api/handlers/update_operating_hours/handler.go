package update_operating_hours

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/operatinghours"
)

const (
	msgInvalidCompanyID   = "некорректный ID компании"
	msgInvalidWeekday     = "некорректный день недели"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgForbidden          = "доступ запрещен"
	msgInvalidData        = "некорректное расписание"
)

type Handler struct {
	service HoursService
	logger  Logger
}

func NewHandler(service HoursService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/companies/{companyId}/operating-hours/{weekday}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	companyID, err := handlers.PathInt64(r, "companyId")
	if err != nil {
		h.logger.Warn("PUT /companies/{id}/operating-hours/{weekday} - Invalid company ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidCompanyID)
		return
	}

	weekday, err := ParseWeekday(mux.Vars(r)["weekday"])
	if err != nil {
		h.logger.Warn("PUT /companies/{id}/operating-hours/{weekday} - Invalid weekday: %v", err)
		handlers.RespondBadRequest(w, msgInvalidWeekday)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PUT /companies/{id}/operating-hours/{weekday} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req UpdateDayRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /companies/{id}/operating-hours/{weekday} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	day, err := h.service.UpsertDay(r.Context(), req.ToServiceRequest(userID, companyID, weekday))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			h.logger.Warn("PUT /companies/{id}/operating-hours/{weekday} - Invalid hours: company_id=%d, error=%v", companyID, err)
			handlers.RespondBadRequest(w, msgInvalidData)

		case errors.Is(err, operatinghours.ErrAccessDenied), errors.Is(err, operatinghours.ErrCompanyNotFound):
			h.logger.Warn("PUT /companies/{id}/operating-hours/{weekday} - Access denied: company_id=%d, user_id=%d", companyID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, domain.ErrTransient):
			handlers.RespondUnavailable(w)

		default:
			h.logger.Error("PUT /companies/{id}/operating-hours/{weekday} - Failed to update hours: company_id=%d, error=%v", companyID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /companies/{id}/operating-hours/{weekday} - Hours updated: company_id=%d, weekday=%d, user_id=%d",
		companyID, weekday, userID)
	handlers.RespondJSON(w, http.StatusOK, day)
}

package get_available_slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-SchedulingService/internal/usecase/get_available_slots"
)

const (
	msgInvalidCompanyID = "некорректный ID компании"
	msgInvalidServiceID = "некорректный ID услуги"
	msgMissingDate      = "дата обязательна"
	msgInvalidQuery     = "некорректный формат даты (ожидается YYYY-MM-DD) или ID сотрудника"
	msgServiceNotFound  = "услуга не найдена"
	msgServiceInactive  = "услуга недоступна для записи"
	msgInvalidDate      = "дата недоступна для записи"
	msgInvalidRequest   = "некорректный запрос"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/companies/{companyId}/services/{serviceId}/available-slots
// Query params: date (required, YYYY-MM-DD), staffId (optional)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	companyID, err := handlers.PathInt64(r, "companyId")
	if err != nil {
		h.logger.Warn("GET /available-slots - Invalid company ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidCompanyID)
		return
	}

	serviceID, err := handlers.PathInt64(r, "serviceId")
	if err != nil {
		h.logger.Warn("GET /available-slots - Invalid service ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	query := r.URL.Query()
	if query.Get("date") == "" {
		h.logger.Warn("GET /available-slots - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	useCaseReq, err := ToUseCaseRequest(companyID, serviceID, query.Get("date"), query.Get("staffId"))
	if err != nil {
		h.logger.Warn("GET /available-slots - Invalid query: %v", err)
		handlers.RespondBadRequest(w, msgInvalidQuery)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrServiceNotFound):
			h.logger.Warn("GET /available-slots - Service not found: company_id=%d, service_id=%d", companyID, serviceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, getAvailableSlots.ErrServiceInactive):
			handlers.RespondBadRequest(w, msgServiceInactive)

		case errors.Is(err, getAvailableSlots.ErrInvalidDate):
			h.logger.Warn("GET /available-slots - Date rejected: company_id=%d, %v", companyID, err)
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, domain.ErrValidation):
			handlers.RespondBadRequest(w, msgInvalidRequest)

		case errors.Is(err, domain.ErrTransient):
			h.logger.Warn("GET /available-slots - Temporarily unavailable: company_id=%d, %v", companyID, err)
			handlers.RespondUnavailable(w)

		default:
			h.logger.Error("GET /available-slots - Failed to get slots: company_id=%d, service_id=%d, error=%v",
				companyID, serviceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /available-slots - Slots retrieved: company_id=%d, service_id=%d, date=%s, slots_count=%d",
		companyID, serviceID, result.Date.Format(domain.DateFormat), len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}

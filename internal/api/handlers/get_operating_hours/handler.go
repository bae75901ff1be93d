package get_operating_hours

import (
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
)

const msgInvalidCompanyID = "некорректный ID компании"

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

// Handle GET /api/v1/companies/{companyId}/operating-hours
// Публичный endpoint: дни без расписания отдаются с isDefault=true
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	companyID, err := handlers.PathInt64(r, "companyId")
	if err != nil {
		h.logger.Warn("GET /companies/{id}/operating-hours - Invalid company ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidCompanyID)
		return
	}

	week, err := h.service.GetWeek(r.Context(), companyID)
	if err != nil {
		h.logger.Error("GET /companies/{id}/operating-hours - Failed to get hours: company_id=%d, error=%v", companyID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /companies/{id}/operating-hours - Hours retrieved: company_id=%d", companyID)
	handlers.RespondJSON(w, http.StatusOK, week)
}

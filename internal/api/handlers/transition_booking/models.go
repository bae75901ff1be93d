package transition_booking

import (
	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings/models"
)

// TransitionRequest HTTP request model
type TransitionRequest struct {
	Status string `json:"status"` // confirmed | in_progress | completed | cancelled
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *TransitionRequest) ToServiceRequest(userID int64) *models.TransitionStatusRequest {
	return &models.TransitionStatusRequest{
		UserID: userID,
		Status: r.Status,
	}
}

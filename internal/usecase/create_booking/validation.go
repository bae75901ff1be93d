package create_booking

import (
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ClientID <= 0 {
		return fmt.Errorf("%w: clientID must be positive", ErrInvalidInput)
	}

	if req.CompanyID <= 0 {
		return fmt.Errorf("%w: companyID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.StaffID != nil && *req.StaffID <= 0 {
		return fmt.Errorf("%w: staffID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime format: %v", ErrInvalidInput, err)
	}

	if req.DurationMinutes != nil && *req.DurationMinutes <= 0 {
		return fmt.Errorf("%w: durationMinutes must be positive", ErrInvalidInput)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must be at most %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// validateInterval проверяет интервал относительно расписания дня.
// Касание границ перерыва и закрытия допустимо.
func validateInterval(hours *domain.OperatingHours, candidate domain.Interval) error {
	if !hours.IsOpen {
		return ErrCompanyClosed
	}

	if !hours.Window().Contains(candidate) {
		return fmt.Errorf("%w: %s is outside %s", ErrOutsideOperatingHours, candidate, hours.Window())
	}

	if br, ok := hours.Break(); ok && br.Overlaps(candidate) {
		return fmt.Errorf("%w: %s overlaps break %s", ErrInsideBreak, candidate, br)
	}

	return nil
}

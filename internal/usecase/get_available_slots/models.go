package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	CompanyID int64     // ID компании
	ServiceID int64     // ID услуги
	StaffID   *int64    // ID сотрудника (опционально)
	Date      time.Time // Дата для получения слотов (без времени)
}

// Response модель ответа со списком доступных слотов
type Response struct {
	Date            time.Time
	CompanyID       int64
	ServiceID       int64
	StaffID         *int64
	DurationMinutes int
	IsOpen          bool
	IsDefaultHours  bool                   // Расписание взято из настроек по умолчанию
	Slots           []domain.AvailableSlot // Отсортированы по времени начала
}

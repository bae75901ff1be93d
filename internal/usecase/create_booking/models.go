package create_booking

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	ClientID  int64            // ID клиента (из заголовка авторизации)
	CompanyID int64            // ID компании
	ServiceID int64            // ID услуги
	StaffID   *int64           // ID сотрудника (опционально)
	Date      time.Time        // Дата бронирования (без времени)
	StartTime types.TimeString // Время начала (например, "10:00")
	// DurationMinutes длительность, которую видел клиент; если задана, должна совпадать с текущей
	DurationMinutes *int
	Notes           *string
}

// Response модель ответа с созданным бронированием
type Response struct {
	Booking     *domain.Booking
	ServiceName string
	EndTime     types.TimeString
}

package create_booking

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: invalid input data", domain.ErrValidation)

	// ErrCompanyNotFound возвращается, когда компания не найдена
	ErrCompanyNotFound = fmt.Errorf("%w: company not found", domain.ErrValidation)

	// ErrCompanyInactive возвращается, когда компания отключена
	ErrCompanyInactive = fmt.Errorf("%w: company is not active", domain.ErrValidation)

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = fmt.Errorf("%w: service not found", domain.ErrValidation)

	// ErrServiceInactive возвращается, когда услуга отключена
	ErrServiceInactive = fmt.Errorf("%w: service is not active", domain.ErrValidation)

	// ErrDurationMismatch возвращается, когда клиент прислал устаревшую длительность услуги
	ErrDurationMismatch = fmt.Errorf("%w: duration does not match the service", domain.ErrValidation)

	// ErrInvalidDate возвращается при дате в прошлом или за горизонтом бронирования
	ErrInvalidDate = fmt.Errorf("%w: invalid booking date", domain.ErrValidation)

	// ErrTooLate возвращается, когда до начала меньше минимального времени записи
	ErrTooLate = fmt.Errorf("%w: booking starts too soon", domain.ErrValidation)

	// ErrCompanyClosed возвращается, когда компания закрыта в указанную дату
	ErrCompanyClosed = fmt.Errorf("%w: company is closed on this date", domain.ErrValidation)

	// ErrOutsideOperatingHours возвращается, когда интервал выходит за часы работы
	ErrOutsideOperatingHours = fmt.Errorf("%w: interval is outside operating hours", domain.ErrValidation)

	// ErrInsideBreak возвращается, когда интервал пересекает перерыв
	ErrInsideBreak = fmt.Errorf("%w: interval overlaps the break", domain.ErrValidation)

	// ErrStorageUnavailable возвращается, когда итог неизвестен: исчерпаны повторы,
	// истёк таймаут ожидания блокировки или недоступна зависимость. Запрос можно повторить.
	ErrStorageUnavailable = fmt.Errorf("%w: booking could not be completed, try again", domain.ErrTransient)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)

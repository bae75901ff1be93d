package get_available_slots

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: invalid input data", domain.ErrValidation)

	// ErrServiceNotFound возвращается, когда услуга не найдена у компании
	ErrServiceNotFound = fmt.Errorf("%w: service not found", domain.ErrValidation)

	// ErrServiceInactive возвращается, когда услуга отключена
	ErrServiceInactive = fmt.Errorf("%w: service is not active", domain.ErrValidation)

	// ErrInvalidDate возвращается, когда дата в прошлом или за горизонтом бронирования
	ErrInvalidDate = fmt.Errorf("%w: invalid booking date", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_available_slots: internal error")
)

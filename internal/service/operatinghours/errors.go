package operatinghours

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

var (
	// ErrCompanyNotFound возвращается, когда компания не найдена
	ErrCompanyNotFound = errors.New("company not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: invalid operating hours", domain.ErrValidation)

	// ErrTenantUnavailable возвращается, когда TenantService временно недоступен
	ErrTenantUnavailable = fmt.Errorf("%w: tenant service unavailable, try again", domain.ErrTransient)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)

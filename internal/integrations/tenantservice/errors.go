package tenantservice

import "errors"

var (
	// ErrCompanyNotFound возвращается, когда компания не зарегистрирована
	ErrCompanyNotFound = errors.New("company not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("tenantservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("tenantservice client: invalid response")

	// ErrUnavailable возвращается, когда TenantService не ответил.
	// Ошибка временная: запрос можно повторить.
	ErrUnavailable = errors.New("tenantservice unavailable")
)

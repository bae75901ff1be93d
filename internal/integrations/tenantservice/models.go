package tenantservice

import "github.com/m04kA/SMC-SchedulingService/internal/domain"

// Company модель компании из TenantService
type Company struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	IsActive   bool    `json:"is_active"`
	ManagerIDs []int64 `json:"manager_ids"`
}

// ToDomain конвертирует ответ сервиса в доменную модель
func (c *Company) ToDomain() *domain.Company {
	return &domain.Company{
		ID:         c.ID,
		Name:       c.Name,
		IsActive:   c.IsActive,
		ManagerIDs: c.ManagerIDs,
	}
}

// ErrorResponse модель ошибки от TenantService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

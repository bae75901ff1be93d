package memtest

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	hoursRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/operatinghours"
	serviceRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/service"
)

type hoursKey struct {
	companyID int64
	weekday   time.Weekday
}

type serviceKey struct {
	companyID int64
	serviceID int64
}

// Catalog in-memory расписание и услуги
type Catalog struct {
	mu       sync.RWMutex
	hours    map[hoursKey]*domain.OperatingHours
	services map[serviceKey]*domain.Service
}

func NewCatalog() *Catalog {
	return &Catalog{
		hours:    make(map[hoursKey]*domain.OperatingHours),
		services: make(map[serviceKey]*domain.Service),
	}
}

func (c *Catalog) GetByWeekday(_ context.Context, companyID int64, weekday time.Weekday) (*domain.OperatingHours, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	h, ok := c.hours[hoursKey{companyID, weekday}]
	if !ok {
		return nil, hoursRepo.ErrHoursNotFound
	}
	out := *h
	return &out, nil
}

func (c *Catalog) GetAllByCompany(_ context.Context, companyID int64) ([]*domain.OperatingHours, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*domain.OperatingHours, 0, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if h, ok := c.hours[hoursKey{companyID, wd}]; ok {
			cp := *h
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (c *Catalog) Upsert(_ context.Context, hours *domain.OperatingHours) (*domain.OperatingHours, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := *hours
	stored.IsDefault = false
	c.hours[hoursKey{hours.CompanyID, hours.Weekday}] = &stored
	out := stored
	return &out, nil
}

func (c *Catalog) GetByID(_ context.Context, companyID, serviceID int64) (*domain.Service, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.services[serviceKey{companyID, serviceID}]
	if !ok {
		return nil, serviceRepo.ErrServiceNotFound
	}
	out := *s
	return &out, nil
}

// AddService регистрирует услугу
func (c *Catalog) AddService(service domain.Service) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services[serviceKey{service.CompanyID, service.ID}] = &service
}

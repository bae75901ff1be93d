package operatinghours

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/tenantservice"
	"github.com/m04kA/SMC-SchedulingService/internal/service/operatinghours/models"
)

// Service сервис управления расписанием компании
type Service struct {
	hoursRepo    HoursRepository
	cache        HoursCache
	tenantClient TenantServiceClient
	defaults     domain.DefaultHoursPolicy
	logger       Logger
}

// NewService создает новый экземпляр сервиса расписания
func NewService(
	hoursRepo HoursRepository,
	cache HoursCache,
	tenantClient TenantServiceClient,
	defaults domain.DefaultHoursPolicy,
	logger Logger,
) *Service {
	return &Service{
		hoursRepo:    hoursRepo,
		cache:        cache,
		tenantClient: tenantClient,
		defaults:     defaults,
		logger:       logger,
	}
}

// GetWeek возвращает расписание на все 7 дней.
// Ненастроенные дни заполняются расписанием по умолчанию с пометкой isDefault.
// Публичный метод.
func (s *Service) GetWeek(ctx context.Context, companyID int64) (*models.WeekResponse, error) {
	s.logger.Info("GetWeek: fetching operating hours for company=%d", companyID)

	if companyID <= 0 {
		return nil, fmt.Errorf("%w: companyID must be positive", ErrInvalidInput)
	}

	stored, err := s.hoursRepo.GetAllByCompany(ctx, companyID)
	if err != nil {
		s.logger.Error("GetWeek: repository error for company=%d: %v", companyID, err)
		return nil, fmt.Errorf("%w: GetWeek - repository error: %v", ErrInternal, err)
	}

	byDay := make(map[time.Weekday]*domain.OperatingHours, len(stored))
	for _, h := range stored {
		byDay[h.Weekday] = h
	}

	resp := &models.WeekResponse{CompanyID: companyID, Days: make([]models.DayResponse, 0, 7)}
	defaulted := 0
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		h, ok := byDay[wd]
		if !ok {
			h = s.defaults.For(companyID, wd)
			defaulted++
		}
		resp.Days = append(resp.Days, models.FromDomainHours(h))
	}

	if defaulted > 0 {
		s.logger.Info("GetWeek: company=%d has %d unconfigured days, default hours %s applied",
			companyID, defaulted, s.defaults)
	}

	return resp, nil
}

// UpsertDay создает или заменяет расписание дня недели.
// Доступно только менеджерам компании.
func (s *Service) UpsertDay(ctx context.Context, req *models.UpsertDayRequest) (*models.DayResponse, error) {
	s.logger.Info("UpsertDay: company=%d, weekday=%s by user=%d", req.CompanyID, req.Weekday, req.UserID)

	hours := req.ToDomain()
	if err := hours.Validate(); err != nil {
		s.logger.Warn("UpsertDay: validation failed for company=%d: %v", req.CompanyID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.checkManagerAccess(ctx, req.CompanyID, req.UserID); err != nil {
		return nil, err
	}

	saved, err := s.hoursRepo.Upsert(ctx, hours)
	if err != nil {
		s.logger.Error("UpsertDay: repository error for company=%d: %v", req.CompanyID, err)
		return nil, fmt.Errorf("%w: UpsertDay - repository error: %v", ErrInternal, err)
	}

	s.cache.InvalidateHours(ctx, saved.CompanyID, saved.Weekday)

	s.logger.Info("UpsertDay: saved hours id=%d for company=%d, weekday=%s", saved.ID, saved.CompanyID, saved.Weekday)
	resp := models.FromDomainHours(saved)
	return &resp, nil
}

// checkManagerAccess проверяет, что пользователь является менеджером компании
func (s *Service) checkManagerAccess(ctx context.Context, companyID int64, userID int64) error {
	company, err := s.tenantClient.GetCompany(ctx, companyID)
	if err != nil {
		switch {
		case errors.Is(err, tenantservice.ErrCompanyNotFound):
			s.logger.Warn("checkManagerAccess: company id=%d not found", companyID)
			return ErrCompanyNotFound
		case tenantservice.IsUnavailable(err):
			s.logger.Error("checkManagerAccess: tenant service unavailable for company id=%d: %v", companyID, err)
			return fmt.Errorf("%w: %v", ErrTenantUnavailable, err)
		default:
			s.logger.Error("checkManagerAccess: failed to get company id=%d: %v", companyID, err)
			return fmt.Errorf("%w: checkManagerAccess - failed to get company: %v", ErrInternal, err)
		}
	}

	if !company.IsManager(userID) {
		s.logger.Warn("checkManagerAccess: user=%d is not a manager of company=%d", userID, companyID)
		return ErrAccessDenied
	}

	return nil
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/operatinghours"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
)

const (
	cacheHours    = "hours"
	cacheServices = "services"

	resultHit   = "hit"
	resultMiss  = "miss"
	resultError = "error"
)

// hoursEntry отсутствие расписания тоже кэшируется, чтобы дни
// по умолчанию не ходили в БД на каждый запрос слотов
type hoursEntry struct {
	Found bool                   `json:"found"`
	Hours *domain.OperatingHours `json:"hours,omitempty"`
}

// Catalog read-through кэш расписания и услуг в Redis для чтения слотов.
// Ошибки Redis не ломают запрос: чтение уходит в репозиторий.
type Catalog struct {
	hours    HoursRepository
	services ServiceRepository
	redis    *redis.Client
	ttl      time.Duration
	log      Logger
	metrics  *metrics.Metrics
}

// NewCatalog создает кэш. При redisClient == nil или ttl <= 0 кэш прозрачен.
func NewCatalog(
	hours HoursRepository,
	services ServiceRepository,
	redisClient *redis.Client,
	ttl time.Duration,
	log Logger,
	m *metrics.Metrics,
) *Catalog {
	return &Catalog{
		hours:    hours,
		services: services,
		redis:    redisClient,
		ttl:      ttl,
		log:      log,
		metrics:  m,
	}
}

// GetByWeekday возвращает расписание дня, как и репозиторий: ErrHoursNotFound
// для ненастроенного дня
func (c *Catalog) GetByWeekday(ctx context.Context, companyID int64, weekday time.Weekday) (*domain.OperatingHours, error) {
	key := hoursKey(companyID, weekday)

	var entry hoursEntry
	if c.readCache(ctx, cacheHours, key, &entry) {
		if !entry.Found {
			return nil, operatinghours.ErrHoursNotFound
		}
		return entry.Hours, nil
	}

	hours, err := c.hours.GetByWeekday(ctx, companyID, weekday)
	switch {
	case err == nil:
		c.writeCache(ctx, key, hoursEntry{Found: true, Hours: hours})
	case errors.Is(err, operatinghours.ErrHoursNotFound):
		c.writeCache(ctx, key, hoursEntry{Found: false})
	}
	return hours, err
}

// GetByID возвращает услугу компании
func (c *Catalog) GetByID(ctx context.Context, companyID, serviceID int64) (*domain.Service, error) {
	key := serviceKey(companyID, serviceID)

	var service domain.Service
	if c.readCache(ctx, cacheServices, key, &service) {
		return &service, nil
	}

	fresh, err := c.services.GetByID(ctx, companyID, serviceID)
	if err != nil {
		return nil, err
	}
	c.writeCache(ctx, key, fresh)
	return fresh, nil
}

// InvalidateHours удаляет закэшированное расписание дня после его изменения
func (c *Catalog) InvalidateHours(ctx context.Context, companyID int64, weekday time.Weekday) {
	if !c.enabled() {
		return
	}
	if err := c.redis.Del(ctx, hoursKey(companyID, weekday)).Err(); err != nil {
		c.log.Warn("Failed to invalidate hours cache: company_id=%d, weekday=%d, error=%v", companyID, weekday, err)
	}
}

func (c *Catalog) enabled() bool {
	return c.redis != nil && c.ttl > 0
}

func (c *Catalog) readCache(ctx context.Context, cacheName, key string, out any) bool {
	if !c.enabled() {
		return false
	}
	val, err := c.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.metrics.IncCacheRequest(cacheName, resultMiss)
		return false
	}
	if err != nil {
		c.log.Warn("Redis read failed: key=%s, error=%v", key, err)
		c.metrics.IncCacheRequest(cacheName, resultError)
		return false
	}
	if err := json.Unmarshal(val, out); err != nil {
		c.metrics.IncCacheRequest(cacheName, resultError)
		return false
	}
	c.metrics.IncCacheRequest(cacheName, resultHit)
	return true
}

func (c *Catalog) writeCache(ctx context.Context, key string, val any) {
	if !c.enabled() {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn("Redis write failed: key=%s, error=%v", key, err)
	}
}

func hoursKey(companyID int64, weekday time.Weekday) string {
	return fmt.Sprintf("scheduling:hours:%d:%d", companyID, int(weekday))
}

func serviceKey(companyID, serviceID int64) string {
	return fmt.Sprintf("scheduling:service:%d:%d", companyID, serviceID)
}

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/operatinghours"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

type countingHours struct {
	calls int
	hours map[time.Weekday]*domain.OperatingHours
}

func (r *countingHours) GetByWeekday(_ context.Context, _ int64, weekday time.Weekday) (*domain.OperatingHours, error) {
	r.calls++
	h, ok := r.hours[weekday]
	if !ok {
		return nil, operatinghours.ErrHoursNotFound
	}
	return h, nil
}

type countingServices struct {
	calls int
	err   error
}

func (r *countingServices) GetByID(_ context.Context, companyID, serviceID int64) (*domain.Service, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return &domain.Service{ID: serviceID, CompanyID: companyID, Name: "Мойка", DurationMinutes: 60, IsActive: true}, nil
}

type nopLogger struct{}

func (nopLogger) Warn(string, ...interface{}) {}

func newCatalog(t *testing.T, hours *countingHours, services *countingServices) (*Catalog, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCatalog(hours, services, client, time.Minute, nopLogger{}, nil), mr
}

func TestCatalog_HoursReadThrough(t *testing.T) {
	repo := &countingHours{hours: map[time.Weekday]*domain.OperatingHours{
		time.Monday: {
			CompanyID:  1,
			Weekday:    time.Monday,
			IsOpen:     true,
			OpenTime:   "08:00",
			CloseTime:  "18:00",
			BreakStart: ptr.Ptr(types.TimeString("12:00")),
			BreakEnd:   ptr.Ptr(types.TimeString("13:00")),
		},
	}}
	c, _ := newCatalog(t, repo, &countingServices{})
	ctx := context.Background()

	first, err := c.GetByWeekday(ctx, 1, time.Monday)
	require.NoError(t, err)
	second, err := c.GetByWeekday(ctx, 1, time.Monday)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, first.OpenTime, second.OpenTime)
	require.True(t, second.HasBreak())
	assert.Equal(t, types.TimeString("13:00"), *second.BreakEnd)
}

func TestCatalog_CachesMissingDay(t *testing.T) {
	repo := &countingHours{}
	c, _ := newCatalog(t, repo, &countingServices{})
	ctx := context.Background()

	_, err := c.GetByWeekday(ctx, 1, time.Sunday)
	assert.ErrorIs(t, err, operatinghours.ErrHoursNotFound)
	_, err = c.GetByWeekday(ctx, 1, time.Sunday)
	assert.ErrorIs(t, err, operatinghours.ErrHoursNotFound)

	assert.Equal(t, 1, repo.calls)
}

func TestCatalog_InvalidateHours(t *testing.T) {
	repo := &countingHours{}
	c, mr := newCatalog(t, repo, &countingServices{})
	ctx := context.Background()

	_, _ = c.GetByWeekday(ctx, 1, time.Friday)
	assert.True(t, mr.Exists(hoursKey(1, time.Friday)))

	c.InvalidateHours(ctx, 1, time.Friday)
	assert.False(t, mr.Exists(hoursKey(1, time.Friday)))

	_, _ = c.GetByWeekday(ctx, 1, time.Friday)
	assert.Equal(t, 2, repo.calls)
}

func TestCatalog_ExpiresAfterTTL(t *testing.T) {
	services := &countingServices{}
	c, mr := newCatalog(t, &countingHours{}, services)
	ctx := context.Background()

	_, err := c.GetByID(ctx, 1, 10)
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	service, err := c.GetByID(ctx, 1, 10)
	require.NoError(t, err)

	assert.Equal(t, 2, services.calls)
	assert.Equal(t, 60, service.DurationMinutes)
}

func TestCatalog_ErrorsAreNotCached(t *testing.T) {
	services := &countingServices{err: errors.New("db down")}
	c, mr := newCatalog(t, &countingHours{}, services)

	_, err := c.GetByID(context.Background(), 1, 10)

	assert.Error(t, err)
	assert.False(t, mr.Exists(serviceKey(1, 10)))
}

func TestCatalog_RedisDownFallsBackToRepository(t *testing.T) {
	services := &countingServices{}
	c, mr := newCatalog(t, &countingHours{}, services)
	mr.Close()

	service, err := c.GetByID(context.Background(), 1, 10)

	require.NoError(t, err)
	assert.Equal(t, int64(10), service.ID)
}

func TestCatalog_DisabledWithoutRedis(t *testing.T) {
	services := &countingServices{}
	c := NewCatalog(&countingHours{}, services, nil, time.Minute, nopLogger{}, nil)

	_, _ = c.GetByID(context.Background(), 1, 10)
	_, _ = c.GetByID(context.Background(), 1, 10)

	assert.Equal(t, 2, services.calls)
}

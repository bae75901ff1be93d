package get_available_slots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/memtest"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// 2025-10-15 - среда
var wednesday = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)

type fixedTime time.Time

func (f fixedTime) Now() time.Time { return time.Time(f) }

type recordingLogger struct {
	infos []string
}

func (l *recordingLogger) Info(format string, v ...interface{}) { l.infos = append(l.infos, format) }
func (l *recordingLogger) Warn(string, ...interface{})          {}
func (l *recordingLogger) Error(string, ...interface{})         {}

type fixture struct {
	store   *memtest.Store
	catalog *memtest.Catalog
	log     *recordingLogger
	uc      *UseCase
}

func newFixture(t *testing.T, now time.Time, defaults domain.DefaultHoursPolicy) *fixture {
	t.Helper()

	f := &fixture{store: memtest.NewStore(), catalog: memtest.NewCatalog(), log: &recordingLogger{}}
	f.catalog.AddService(domain.Service{ID: 10, CompanyID: 1, Name: "Стрижка", DurationMinutes: 60, IsActive: true})
	f.catalog.AddService(domain.Service{ID: 11, CompanyID: 1, Name: "Укладка", DurationMinutes: 30, IsActive: true})
	f.catalog.AddService(domain.Service{ID: 12, CompanyID: 1, Name: "Архив", DurationMinutes: 30, IsActive: false})

	policy := domain.BookingPolicy{StepMinutes: 30, MinBookingNoticeMinutes: 60, DefaultHours: defaults}
	f.uc = NewUseCase(f.store, f.catalog, f.catalog, policy, f.log).WithTimeProvider(fixedTime(now))
	return f
}

func (f *fixture) setHours(t *testing.T, h *domain.OperatingHours) {
	t.Helper()
	_, err := f.catalog.Upsert(context.Background(), h)
	require.NoError(t, err)
}

func starts(resp *Response) []string {
	out := make([]string, len(resp.Slots))
	for i, s := range resp.Slots {
		out[i] = s.StartTime.String()
	}
	return out
}

func TestExecute_BreakExclusion(t *testing.T) {
	f := newFixture(t, wednesday.AddDate(0, 0, -1), domain.DefaultHoursPolicy{})
	f.setHours(t, withBreak(openDay("08:00", "18:00"), "12:00", "13:00"))

	resp, err := f.uc.Execute(context.Background(), &Request{CompanyID: 1, ServiceID: 10, Date: wednesday})

	require.NoError(t, err)
	assert.Contains(t, starts(resp), "11:00")
	assert.Contains(t, starts(resp), "13:00")
	assert.NotContains(t, starts(resp), "11:30")
	assert.Equal(t, 60, resp.DurationMinutes)
	assert.False(t, resp.IsDefaultHours)

	last := resp.Slots[len(resp.Slots)-1]
	assert.Equal(t, types.TimeString("17:00"), last.StartTime)
	assert.Equal(t, types.TimeString("18:00"), last.EndTime)
}

func TestExecute_ClosedDay(t *testing.T) {
	f := newFixture(t, wednesday.AddDate(0, 0, -1), domain.DefaultHoursPolicy{})
	f.setHours(t, &domain.OperatingHours{CompanyID: 1, Weekday: time.Wednesday, IsOpen: false})

	for _, serviceID := range []int64{10, 11} {
		resp, err := f.uc.Execute(context.Background(), &Request{CompanyID: 1, ServiceID: serviceID, Date: wednesday})

		require.NoError(t, err)
		assert.False(t, resp.IsOpen)
		assert.Empty(t, resp.Slots)
	}
}

func TestExecute_DefaultHoursFallbackIsLogged(t *testing.T) {
	defaults, err := domain.NewDefaultHoursPolicy(true, "08:00", "20:00")
	require.NoError(t, err)
	f := newFixture(t, wednesday.AddDate(0, 0, -1), defaults)

	resp, err := f.uc.Execute(context.Background(), &Request{CompanyID: 1, ServiceID: 11, Date: wednesday})

	require.NoError(t, err)
	assert.True(t, resp.IsDefaultHours)
	assert.Equal(t, "08:00", starts(resp)[0])
	assert.Equal(t, "19:30", starts(resp)[len(resp.Slots)-1])
	assert.Contains(t, f.log.infos, "GetAvailableSlots: no hours for company=%d, weekday=%s, applying default hours %s")
}

func TestExecute_DefaultHoursDisabledMeansClosed(t *testing.T) {
	f := newFixture(t, wednesday.AddDate(0, 0, -1), domain.DefaultHoursPolicy{})

	resp, err := f.uc.Execute(context.Background(), &Request{CompanyID: 1, ServiceID: 11, Date: wednesday})

	require.NoError(t, err)
	assert.True(t, resp.IsDefaultHours)
	assert.Empty(t, resp.Slots)
}

func TestExecute_CancelledBookingFreesSlot(t *testing.T) {
	f := newFixture(t, wednesday.AddDate(0, 0, -1), domain.DefaultHoursPolicy{})
	f.setHours(t, openDay("10:00", "12:00"))
	ctx := context.Background()

	created, err := f.store.Create(ctx, &domain.Booking{
		CompanyID:       1,
		ServiceID:       11,
		ClientID:        5,
		BookingDate:     wednesday,
		StartTime:       "10:00",
		DurationMinutes: 30,
		Status:          domain.StatusScheduled,
	})
	require.NoError(t, err)

	resp, err := f.uc.Execute(ctx, &Request{CompanyID: 1, ServiceID: 11, Date: wednesday})
	require.NoError(t, err)
	assert.NotContains(t, starts(resp), "10:00")

	_, err = f.store.UpdateStatus(ctx, created.ID, domain.StatusScheduled, domain.StatusCancelled, nil)
	require.NoError(t, err)

	resp, err = f.uc.Execute(ctx, &Request{CompanyID: 1, ServiceID: 11, Date: wednesday})
	require.NoError(t, err)
	assert.Equal(t, []string{"10:00", "10:30", "11:00", "11:30"}, starts(resp))
}

func TestExecute_StaffScopesAreIndependent(t *testing.T) {
	f := newFixture(t, wednesday.AddDate(0, 0, -1), domain.DefaultHoursPolicy{})
	f.setHours(t, openDay("10:00", "11:00"))
	ctx := context.Background()

	_, err := f.store.Create(ctx, &domain.Booking{
		CompanyID: 1, ServiceID: 11, ClientID: 5, StaffID: ptr.Ptr(int64(7)),
		BookingDate: wednesday, StartTime: "10:00", DurationMinutes: 30, Status: domain.StatusConfirmed,
	})
	require.NoError(t, err)

	staff7, err := f.uc.Execute(ctx, &Request{CompanyID: 1, ServiceID: 11, StaffID: ptr.Ptr(int64(7)), Date: wednesday})
	require.NoError(t, err)
	staff8, err := f.uc.Execute(ctx, &Request{CompanyID: 1, ServiceID: 11, StaffID: ptr.Ptr(int64(8)), Date: wednesday})
	require.NoError(t, err)

	assert.Equal(t, []string{"10:30"}, starts(staff7))
	assert.Equal(t, []string{"10:00", "10:30"}, starts(staff8))
}

func TestExecute_MinNoticeOnCurrentDay(t *testing.T) {
	now := wednesday.Add(9*time.Hour + 40*time.Minute)
	f := newFixture(t, now, domain.DefaultHoursPolicy{})
	f.setHours(t, openDay("09:00", "12:00"))

	resp, err := f.uc.Execute(context.Background(), &Request{CompanyID: 1, ServiceID: 11, Date: wednesday})

	require.NoError(t, err)
	assert.Equal(t, []string{"11:00", "11:30"}, starts(resp))
}

func TestExecute_Validation(t *testing.T) {
	f := newFixture(t, wednesday, domain.DefaultHoursPolicy{})
	ctx := context.Background()

	tests := []struct {
		name string
		req  *Request
		want error
	}{
		{name: "no company", req: &Request{ServiceID: 10, Date: wednesday}, want: ErrInvalidInput},
		{name: "no date", req: &Request{CompanyID: 1, ServiceID: 10}, want: ErrInvalidInput},
		{name: "bad staff", req: &Request{CompanyID: 1, ServiceID: 10, StaffID: ptr.Ptr(int64(0)), Date: wednesday}, want: ErrInvalidInput},
		{name: "past date", req: &Request{CompanyID: 1, ServiceID: 10, Date: wednesday.AddDate(0, 0, -1)}, want: ErrInvalidDate},
		{name: "unknown service", req: &Request{CompanyID: 1, ServiceID: 99, Date: wednesday}, want: ErrServiceNotFound},
		{name: "inactive service", req: &Request{CompanyID: 1, ServiceID: 12, Date: wednesday}, want: ErrServiceInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Execute(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, errors.Is(err, domain.ErrValidation))
		})
	}
}

package bookings

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/memtest"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/tenantservice"
	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

const (
	companyID  = int64(1)
	clientID   = int64(100)
	managerID  = int64(900)
	strangerID = int64(555)
)

var day = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type mockTenant struct {
	mock.Mock
}

func (m *mockTenant) GetCompany(ctx context.Context, id int64) (*domain.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

type statusEvent struct {
	id       int64
	from, to domain.BookingStatus
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []statusEvent
}

func (n *recordingNotifier) StatusChanged(_ context.Context, b *domain.Booking, from domain.BookingStatus) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, statusEvent{id: b.ID, from: from, to: b.Status})
}

func newService(t *testing.T) (*Service, *memtest.Store, *mockTenant, *recordingNotifier) {
	t.Helper()

	store := memtest.NewStore()
	tenant := &mockTenant{}
	tenant.On("GetCompany", mock.Anything, companyID).
		Return(&domain.Company{ID: companyID, IsActive: true, ManagerIDs: []int64{managerID}}, nil).Maybe()
	n := &recordingNotifier{}

	return NewService(store, tenant, n, nil, nopLogger{}), store, tenant, n
}

func seed(t *testing.T, store *memtest.Store, start string) *domain.Booking {
	t.Helper()

	b, err := store.Create(context.Background(), &domain.Booking{
		CompanyID:       companyID,
		ServiceID:       10,
		ClientID:        clientID,
		BookingDate:     day,
		StartTime:       types.TimeString(start),
		DurationMinutes: 30,
		Status:          domain.InitialStatus,
	})
	require.NoError(t, err)
	return b
}

func TestTransitionStatus_FullLifecycle(t *testing.T) {
	svc, store, _, n := newService(t)
	ctx := context.Background()
	b := seed(t, store, "10:00")

	for _, next := range []domain.BookingStatus{domain.StatusConfirmed, domain.StatusInProgress, domain.StatusCompleted} {
		resp, err := svc.TransitionStatus(ctx, b.ID, &models.TransitionStatusRequest{UserID: managerID, Status: next.String()})
		require.NoError(t, err)
		assert.Equal(t, next.String(), resp.Status)
	}

	require.Len(t, n.events, 3)
	assert.Equal(t, statusEvent{id: b.ID, from: domain.StatusInProgress, to: domain.StatusCompleted}, n.events[2])
}

func TestTransitionStatus_TerminalStatesAreImmutable(t *testing.T) {
	for _, terminal := range []domain.BookingStatus{domain.StatusCompleted, domain.StatusCancelled} {
		t.Run(terminal.String(), func(t *testing.T) {
			svc, store, _, n := newService(t)
			ctx := context.Background()
			b := seed(t, store, "10:00")

			// доводим до терминального статуса напрямую
			from := b.Status
			for _, s := range []domain.BookingStatus{domain.StatusConfirmed, domain.StatusInProgress, terminal} {
				_, err := store.UpdateStatus(ctx, b.ID, from, s, nil)
				require.NoError(t, err)
				from = s
			}

			for _, to := range domain.AllStatuses {
				_, err := svc.TransitionStatus(ctx, b.ID, &models.TransitionStatusRequest{UserID: managerID, Status: to.String()})
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrState), "%s -> %s: %v", terminal, to, err)
			}

			_, err := svc.Cancel(ctx, b.ID, &models.CancelBookingRequest{UserID: clientID})
			var stateErr *domain.StateError
			require.ErrorAs(t, err, &stateErr)
			assert.Equal(t, terminal, stateErr.From)

			stored, err := store.GetByID(ctx, b.ID)
			require.NoError(t, err)
			assert.Equal(t, terminal, stored.Status)
			assert.Empty(t, n.events)
		})
	}
}

func TestTransitionStatus_RejectsSkippingStates(t *testing.T) {
	svc, store, _, _ := newService(t)
	b := seed(t, store, "10:00")

	_, err := svc.TransitionStatus(context.Background(), b.ID,
		&models.TransitionStatusRequest{UserID: managerID, Status: "completed"})

	var stateErr *domain.StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, domain.StatusScheduled, stateErr.From)
	assert.Equal(t, domain.StatusCompleted, stateErr.To)
}

func TestTransitionStatus_Validation(t *testing.T) {
	svc, store, _, _ := newService(t)
	b := seed(t, store, "10:00")
	ctx := context.Background()

	_, err := svc.TransitionStatus(ctx, b.ID, &models.TransitionStatusRequest{UserID: managerID, Status: "archived"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.TransitionStatus(ctx, 999, &models.TransitionStatusRequest{UserID: managerID, Status: "confirmed"})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestTransitionStatus_ManagerOnly(t *testing.T) {
	svc, store, _, _ := newService(t)
	b := seed(t, store, "10:00")

	_, err := svc.TransitionStatus(context.Background(), b.ID,
		&models.TransitionStatusRequest{UserID: clientID, Status: "confirmed"})

	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestCancel_OwnerOrManager(t *testing.T) {
	svc, store, _, n := newService(t)
	ctx := context.Background()

	owned := seed(t, store, "10:00")
	_, err := svc.Cancel(ctx, owned.ID, &models.CancelBookingRequest{UserID: strangerID})
	assert.ErrorIs(t, err, ErrAccessDenied)

	resp, err := svc.Cancel(ctx, owned.ID, &models.CancelBookingRequest{UserID: clientID, CancellationReason: ptr.Ptr("plans changed")})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)
	assert.Equal(t, "plans changed", *resp.CancellationReason)
	assert.NotNil(t, resp.CancelledAt)

	// интервал свободен сразу после отмены
	active, err := store.GetActiveInScope(ctx, domain.NewScope(companyID, nil), day)
	require.NoError(t, err)
	assert.Empty(t, active)

	again := seed(t, store, "10:00")
	_, err = svc.Cancel(ctx, again.ID, &models.CancelBookingRequest{UserID: managerID})
	require.NoError(t, err)

	assert.Len(t, n.events, 2)
}

// racingRepo перед первой записью статуса отменяет бронирование,
// как будто параллельный запрос успел раньше
type racingRepo struct {
	*memtest.Store
	once sync.Once
}

func (r *racingRepo) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus, reason *string) (*domain.Booking, error) {
	r.once.Do(func() {
		_, _ = r.Store.UpdateStatus(ctx, id, from, domain.StatusCancelled, nil)
	})
	return r.Store.UpdateStatus(ctx, id, from, to, reason)
}

func TestTransitionStatus_LostRaceRereadsAndReportsState(t *testing.T) {
	store := memtest.NewStore()
	tenant := &mockTenant{}
	tenant.On("GetCompany", mock.Anything, companyID).
		Return(&domain.Company{ID: companyID, IsActive: true, ManagerIDs: []int64{managerID}}, nil)
	n := &recordingNotifier{}
	svc := NewService(&racingRepo{Store: store}, tenant, n, nil, nopLogger{})
	b := seed(t, store, "10:00")

	_, err := svc.TransitionStatus(context.Background(), b.ID,
		&models.TransitionStatusRequest{UserID: managerID, Status: "confirmed"})

	var stateErr *domain.StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, domain.StatusCancelled, stateErr.From)
	assert.Empty(t, n.events)
}

func TestConcurrentCancelAndConfirm_OneOutcome(t *testing.T) {
	for round := 0; round < 20; round++ {
		svc, store, _, _ := newService(t)
		b := seed(t, store, "10:00")

		var wg sync.WaitGroup
		var cancelErr, confirmErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, cancelErr = svc.Cancel(context.Background(), b.ID, &models.CancelBookingRequest{UserID: clientID})
		}()
		go func() {
			defer wg.Done()
			_, confirmErr = svc.TransitionStatus(context.Background(), b.ID,
				&models.TransitionStatusRequest{UserID: managerID, Status: "confirmed"})
		}()
		wg.Wait()

		// отмена возможна и из confirmed, поэтому она проходит всегда
		require.NoError(t, cancelErr)
		stored, err := store.GetByID(context.Background(), b.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, stored.Status)
		if confirmErr != nil {
			assert.ErrorIs(t, confirmErr, domain.ErrState)
		}
	}
}

func TestGetByID_Access(t *testing.T) {
	svc, store, _, _ := newService(t)
	ctx := context.Background()
	b := seed(t, store, "10:00")

	resp, err := svc.GetByID(ctx, b.ID, clientID)
	require.NoError(t, err)
	assert.Equal(t, "10:30", resp.EndTime)

	_, err = svc.GetByID(ctx, b.ID, managerID)
	assert.NoError(t, err)

	_, err = svc.GetByID(ctx, b.ID, strangerID)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestGetClientBookings_SelfOnly(t *testing.T) {
	svc, store, _, _ := newService(t)
	ctx := context.Background()
	seed(t, store, "10:00")

	resp, err := svc.GetClientBookings(ctx, &models.GetClientBookingsRequest{UserID: clientID, ClientID: clientID})
	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 1)

	_, err = svc.GetClientBookings(ctx, &models.GetClientBookingsRequest{UserID: strangerID, ClientID: clientID})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.GetClientBookings(ctx, &models.GetClientBookingsRequest{UserID: clientID, ClientID: clientID, Status: ptr.Ptr("lost")})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGetCompanyBookings_Filter(t *testing.T) {
	svc, store, _, _ := newService(t)
	ctx := context.Background()
	b := seed(t, store, "10:00")
	_, err := store.UpdateStatus(ctx, b.ID, domain.StatusScheduled, domain.StatusCancelled, nil)
	require.NoError(t, err)
	seed(t, store, "10:00")

	resp, err := svc.GetCompanyBookings(ctx, &models.GetCompanyBookingsRequest{UserID: managerID, CompanyID: companyID})
	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 1)

	resp, err = svc.GetCompanyBookings(ctx, &models.GetCompanyBookingsRequest{UserID: managerID, CompanyID: companyID, IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 2)

	_, err = svc.GetCompanyBookings(ctx, &models.GetCompanyBookingsRequest{UserID: clientID, CompanyID: companyID})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.GetCompanyBookings(ctx, &models.GetCompanyBookingsRequest{
		UserID: managerID, CompanyID: companyID, StartDate: ptr.Ptr(day), EndDate: ptr.Ptr(day.AddDate(0, 0, -1)),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestManagerCheck_TenantUnavailableIsTransient(t *testing.T) {
	store := memtest.NewStore()
	tenant := &mockTenant{}
	tenant.On("GetCompany", mock.Anything, companyID).
		Return(nil, fmt.Errorf("%w: connection refused", tenantservice.ErrUnavailable))
	svc := NewService(store, tenant, &recordingNotifier{}, nil, nopLogger{})
	b := seed(t, store, "10:00")

	_, err := svc.TransitionStatus(context.Background(), b.ID,
		&models.TransitionStatusRequest{UserID: managerID, Status: "confirmed"})

	assert.ErrorIs(t, err, domain.ErrTransient)
	tenant.AssertExpectations(t)
}

package transition_booking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings"
	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings/models"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) TransitionStatus(ctx context.Context, bookingID int64, req *models.TransitionStatusRequest) (*models.BookingResponse, error) {
	args := m.Called(ctx, bookingID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookingResponse), args.Error(1)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func serve(svc *mockService, bookingID string, payload string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/"+bookingID+"/status", strings.NewReader(payload))
	req = mux.SetURLVars(req, map[string]string{"bookingId": bookingID})
	req = req.WithContext(middleware.WithUserID(req.Context(), 500))
	rec := httptest.NewRecorder()
	NewHandler(svc, nopLogger{}).Handle(rec, req)
	return rec
}

func TestHandle_StatusChanged(t *testing.T) {
	svc := &mockService{}
	svc.On("TransitionStatus", mock.Anything, int64(3), &models.TransitionStatusRequest{UserID: 500, Status: "confirmed"}).
		Return(&models.BookingResponse{ID: 3, Status: "confirmed"}, nil)

	rec := serve(svc, "3", `{"status":"confirmed"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "confirmed", resp.Status)
	svc.AssertExpectations(t)
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		check      func(t *testing.T, resp handlers.ErrorResponse)
	}{
		{
			name:       "terminal state",
			err:        fmt.Errorf("transition: %w", &domain.StateError{From: domain.StatusCompleted, To: domain.StatusCancelled}),
			wantStatus: http.StatusUnprocessableEntity,
			check: func(t *testing.T, resp handlers.ErrorResponse) {
				assert.Equal(t, "completed", resp.From)
			},
		},
		{name: "not found", err: bookings.ErrBookingNotFound, wantStatus: http.StatusNotFound},
		{name: "not a manager", err: bookings.ErrAccessDenied, wantStatus: http.StatusForbidden},
		{name: "bad status", err: bookings.ErrInvalidInput, wantStatus: http.StatusBadRequest},
		{
			name:       "storage unavailable",
			err:        bookings.ErrStorageUnavailable,
			wantStatus: http.StatusServiceUnavailable,
			check: func(t *testing.T, resp handlers.ErrorResponse) {
				assert.True(t, resp.Retryable)
			},
		},
		{name: "unexpected", err: bookings.ErrInternal, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			svc.On("TransitionStatus", mock.Anything, int64(3), mock.Anything).Return(nil, tt.err)

			rec := serve(svc, "3", `{"status":"cancelled"}`)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.check != nil {
				var resp handlers.ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				tt.check(t, resp)
			}
		})
	}
}

func TestHandle_BadInput(t *testing.T) {
	svc := &mockService{}

	assert.Equal(t, http.StatusBadRequest, serve(svc, "abc", `{"status":"confirmed"}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(svc, "3", `{"state":"confirmed"}`).Code)

	svc.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything)
}

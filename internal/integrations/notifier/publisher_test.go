package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func testBooking() *domain.Booking {
	return &domain.Booking{
		ID:              42,
		CompanyID:       1,
		ServiceID:       10,
		ClientID:        100,
		StaffID:         ptr.Ptr(int64(3)),
		BookingDate:     time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC),
		StartTime:       "14:00",
		DurationMinutes: 60,
		Status:          domain.StatusCancelled,
	}
}

func TestPublisher_StatusChanged(t *testing.T) {
	w := &fakeWriter{}
	p := NewPublisher(w, "bookings", nopLogger{}, nil)

	b := testBooking()
	b.CancellationReason = ptr.Ptr("заболел")
	p.StatusChanged(context.Background(), b, domain.StatusConfirmed)
	require.NoError(t, p.Close())

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "42", string(msg.Key))
	assert.Equal(t, "event_type", msg.Headers[1].Key)
	assert.Equal(t, EventBookingStatusChanged, string(msg.Headers[1].Value))

	var event BookingEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, "2025-10-15", event.BookingDate)
	assert.Equal(t, "14:00", event.StartTime)
	assert.Equal(t, "15:00", event.EndTime)
	assert.Equal(t, "confirmed", event.PreviousStatus)
	assert.Equal(t, "cancelled", event.Status)
	assert.Equal(t, "заболел", *event.Reason)
	assert.Equal(t, string(msg.Headers[0].Value), event.EventID)
	assert.True(t, w.closed)
}

func TestPublisher_WriteFailureIsSwallowed(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := NewPublisher(w, "bookings", nopLogger{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	p.BookingCreated(ctx, testBooking())
	cancel()

	assert.NoError(t, p.Close())
	assert.Empty(t, w.msgs)
}

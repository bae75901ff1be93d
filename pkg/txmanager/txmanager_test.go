package txmanager

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
)

func newManager(t *testing.T, opts ...Option) (*Manager, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m := NewTransactionManager(dbmetrics.Wrap(db, nil), opts...)
	m.sleep = func(context.Context, time.Duration) error { return nil }
	return m, mock
}

func TestDoSerializable_Commits(t *testing.T) {
	m, mock := newManager(t)

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		assert.True(t, dbmetrics.IsInTransaction(ctx))
		_, err := dbmetrics.GetExecutor(ctx, nil).ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", "1:0")
		return err
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDoSerializable_RetriesSerializationFailure(t *testing.T) {
	m, mock := newManager(t)

	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()

	calls := 0
	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return &pq.Error{Code: "40001"}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDoSerializable_RetriesExhausted(t *testing.T) {
	m, mock := newManager(t, WithMaxAttempts(3))

	for i := 0; i < 3; i++ {
		mock.ExpectBegin()
		mock.ExpectRollback()
	}

	calls := 0
	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		calls++
		return fmt.Errorf("insert: %w", &pq.Error{Code: "40P01"})
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.True(t, IsTransient(err))
	assert.Equal(t, 3, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDoSerializable_DoesNotRetryBusinessErrors(t *testing.T) {
	m, mock := newManager(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	errSlotTaken := errors.New("slot taken")
	calls := 0
	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		calls++
		return errSlotTaken
	})

	assert.ErrorIs(t, err, errSlotTaken)
	assert.False(t, IsTransient(err))
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDoSerializable_CommitFailureIsTransient(t *testing.T) {
	m, mock := newManager(t, WithMaxAttempts(1))

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("connection reset"))

	err := m.DoSerializable(context.Background(), func(ctx context.Context) error { return nil })

	assert.ErrorIs(t, err, ErrCommit)
	assert.True(t, IsTransient(err))
}

func TestDo_NestedCallJoinsOuterTransaction(t *testing.T) {
	m, mock := newManager(t)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := m.Do(context.Background(), func(ctx context.Context) error {
		return m.DoSerializable(ctx, func(inner context.Context) error {
			outer, _ := dbmetrics.TxFromContext(ctx)
			nested, _ := dbmetrics.TxFromContext(inner)
			assert.Same(t, outer, nested)
			return nil
		})
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDoSerializable_StopsOnContextCancel(t *testing.T) {
	m, mock := newManager(t)
	m.sleep = sleepContext

	mock.ExpectBegin()
	mock.ExpectRollback()

	ctx, cancel := context.WithCancel(context.Background())
	err := m.DoSerializable(ctx, func(context.Context) error {
		cancel()
		return &pq.Error{Code: "40001"}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, IsTransient(err))
}

func TestBackoff_Bounds(t *testing.T) {
	m := NewTransactionManager(nil, WithBackoff(10*time.Millisecond, 40*time.Millisecond))

	for attempt := 1; attempt <= 5; attempt++ {
		d := m.backoff(attempt)
		assert.GreaterOrEqual(t, d, 5*time.Millisecond)
		assert.Less(t, d, 40*time.Millisecond)
	}
}

package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/lib/pq"

	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseBackoff = 20 * time.Millisecond
	DefaultMaxBackoff  = 500 * time.Millisecond
)

// PostgreSQL SQLSTATE коды, которые считаются временными
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeQueryCanceled        = "57014"
)

var (
	// ErrBeginTx не удалось открыть транзакцию
	ErrBeginTx = errors.New("txmanager: failed to begin transaction")

	// ErrCommit не удалось зафиксировать транзакцию
	ErrCommit = errors.New("txmanager: failed to commit transaction")

	// ErrRetriesExhausted транзакция не прошла после всех попыток
	ErrRetriesExhausted = errors.New("txmanager: retries exhausted")
)

// Manager выполняет функции в транзакции, передавая её через контекст.
// DoSerializable повторяет попытку при serialization failure и deadlock.
type Manager struct {
	db          dbmetrics.TxBeginner
	maxAttempts int
	baseBackoff time.Duration
	maxBackoff  time.Duration
	metrics     *metrics.Metrics
	sleep       func(ctx context.Context, d time.Duration) error
}

type Option func(*Manager)

// WithMaxAttempts общее число попыток (включая первую)
func WithMaxAttempts(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxAttempts = n
		}
	}
}

// WithBackoff базовая и максимальная задержка между попытками
func WithBackoff(base, max time.Duration) Option {
	return func(m *Manager) {
		if base > 0 {
			m.baseBackoff = base
		}
		if max >= base {
			m.maxBackoff = max
		}
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) {
		m.metrics = mt
	}
}

// NewTransactionManager создает менеджер транзакций
func NewTransactionManager(db dbmetrics.TxBeginner, opts ...Option) *Manager {
	m := &Manager{
		db:          db,
		maxAttempts: DefaultMaxAttempts,
		baseBackoff: DefaultBaseBackoff,
		maxBackoff:  DefaultMaxBackoff,
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Do выполняет fn в транзакции READ COMMITTED без повторов
func (m *Manager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, fn)
}

// DoReadOnly выполняет fn в read-only транзакции
func (m *Manager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}, fn)
}

// DoSerializable выполняет fn в SERIALIZABLE транзакции.
// fn должна быть идемпотентной: при конфликте сериализации она вызывается заново
// (не более maxAttempts раз) с экспоненциальной задержкой и jitter.
func (m *Manager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}

	var lastErr error
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		lastErr = m.run(ctx, opts, fn)
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == m.maxAttempts {
			break
		}

		m.metrics.IncTxRetry("serializable")
		if err := m.sleep(ctx, m.backoff(attempt)); err != nil {
			return fmt.Errorf("%w: interrupted after %d attempts: %w", ErrRetriesExhausted, attempt, err)
		}
	}

	m.metrics.IncTxExhausted("serializable")
	return fmt.Errorf("%w: after %d attempts: %w", ErrRetriesExhausted, m.maxAttempts, lastErr)
}

func (m *Manager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) (err error) {
	// Вложенный вызов присоединяется к внешней транзакции
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBeginTx, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(dbmetrics.WithTx(ctx, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommit, err)
	}

	return nil
}

// backoff base*2^(attempt-1), ограниченный maxBackoff, с jitter в диапазоне [d/2, d)
func (m *Manager) backoff(attempt int) time.Duration {
	d := m.baseBackoff << (attempt - 1)
	if d <= 0 || d > m.maxBackoff {
		d = m.maxBackoff
	}
	half := d / 2
	if half <= 0 {
		return d
	}
	return half + time.Duration(rand.Int64N(int64(half)))
}

// IsRetryable сообщает, стоит ли повторить транзакцию целиком
func IsRetryable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == codeSerializationFailure || pqErr.Code == codeDeadlockDetected
	}
	return false
}

// IsTransient сообщает, что итог операции неизвестен из-за состояния хранилища:
// исчерпаны повторы, истёк таймаут ожидания блокировки или потеряно соединение.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRetriesExhausted) || errors.Is(err, ErrBeginTx) || errors.Is(err, ErrCommit) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable, codeQueryCanceled:
			return true
		}
	}
	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Package memtest тестовое хранилище бронирований в памяти с семантикой Postgres-репозиториев:
// транзакционные блокировки scope, exclusion по активным бронированиям и
// compare-and-set статуса. Используется в тестах конкурентного поведения.
package memtest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/booking"
)

type ctxKey struct{}

type statusUndo struct {
	id       int64
	previous domain.Booking
}

type txState struct {
	held    map[string]chan struct{}
	created []int64
	updated []statusUndo
}

// Store in-memory реализация репозитория бронирований
type Store struct {
	mu       sync.Mutex
	nextID   int64
	bookings map[int64]*domain.Booking
	locks    map[string]chan struct{}
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		bookings: make(map[int64]*domain.Booking),
		locks:    make(map[string]chan struct{}),
		now:      time.Now,
	}
}

// TxManager выполняет функции в "транзакции" Store: при ошибке изменения
// откатываются, блокировки scope снимаются после отката или фиксации
type TxManager struct {
	store *Store
}

func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.Do(ctx, fn)
}

func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(ctxKey{}).(*txState); ok {
		return fn(ctx)
	}

	st := &txState{held: make(map[string]chan struct{})}
	err := fn(context.WithValue(ctx, ctxKey{}, st))
	if err != nil {
		m.store.rollback(st)
	}
	for _, ch := range st.held {
		<-ch
	}
	return err
}

func txFrom(ctx context.Context) (*txState, bool) {
	st, ok := ctx.Value(ctxKey{}).(*txState)
	return st, ok
}

// LockScope аналог pg_advisory_xact_lock: ждёт освобождения scope или отмены контекста
func (s *Store) LockScope(ctx context.Context, scope domain.Scope) error {
	st, ok := txFrom(ctx)
	if !ok {
		return bookingRepo.ErrNoTransaction
	}

	key := scope.Key()
	if _, already := st.held[key]; already {
		return nil
	}

	s.mu.Lock()
	ch, ok := s.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[key] = ch
	}
	s.mu.Unlock()

	select {
	case ch <- struct{}{}:
		st.held[key] = ch
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: LockScope - scope=%s: %w", bookingRepo.ErrExecQuery, key, ctx.Err())
	}
}

func (s *Store) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if booking.IsActive() {
		candidate := booking.Interval()
		for _, existing := range s.bookings {
			if sameScopeAndDay(existing, booking) && existing.IsActive() && existing.Interval().Overlaps(candidate) {
				return nil, bookingRepo.ErrOverlap
			}
		}
	}

	s.nextID++
	now := s.now()
	booking.ID = s.nextID
	booking.CreatedAt = now
	booking.UpdatedAt = now

	stored := *booking
	s.bookings[stored.ID] = &stored

	if st, ok := txFrom(ctx); ok {
		st.created = append(st.created, stored.ID)
	}

	return booking, nil
}

func (s *Store) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	out := *b
	return &out, nil
}

func (s *Store) GetActiveInScope(_ context.Context, scope domain.Scope, date time.Time) ([]*domain.Booking, error) {
	return s.filter(func(b *domain.Booking) bool {
		return b.IsActive() && b.Scope() == scope && sameDay(b.BookingDate, date)
	}), nil
}

func (s *Store) GetByClientID(_ context.Context, clientID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	return s.filter(func(b *domain.Booking) bool {
		return b.ClientID == clientID && (status == nil || b.Status == *status)
	}), nil
}

func (s *Store) GetByCompanyWithFilter(_ context.Context, f domain.BookingsFilter) ([]*domain.Booking, error) {
	return s.filter(func(b *domain.Booking) bool {
		switch {
		case b.CompanyID != f.CompanyID:
			return false
		case f.StaffID != nil && (b.StaffID == nil || *b.StaffID != *f.StaffID):
			return false
		case f.StartDate != nil && b.BookingDate.Before(dayOf(*f.StartDate)):
			return false
		case f.EndDate != nil && b.BookingDate.After(dayOf(*f.EndDate)):
			return false
		case f.Status != nil:
			return b.Status == *f.Status
		default:
			return f.IncludeInactive || b.IsActive()
		}
	}), nil
}

func (s *Store) UpdateStatus(
	ctx context.Context,
	id int64,
	from, to domain.BookingStatus,
	reason *string,
) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	if b.Status != from {
		return nil, bookingRepo.ErrStatusChanged
	}

	if st, ok := txFrom(ctx); ok {
		st.updated = append(st.updated, statusUndo{id: id, previous: *b})
	}

	now := s.now()
	b.Status = to
	b.UpdatedAt = now
	if to == domain.StatusCancelled {
		b.CancellationReason = reason
		b.CancelledAt = &now
	}

	out := *b
	return &out, nil
}

// All возвращает все бронирования, упорядоченные по ID
func (s *Store) All() []*domain.Booking {
	return s.filter(func(*domain.Booking) bool { return true })
}

func (s *Store) filter(keep func(b *domain.Booking) bool) []*domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Booking, 0)
	for _, b := range s.bookings {
		if keep(b) {
			c := *b
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) rollback(st *txState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(st.updated) - 1; i >= 0; i-- {
		u := st.updated[i]
		prev := u.previous
		s.bookings[u.id] = &prev
	}
	for _, id := range st.created {
		delete(s.bookings, id)
	}
}

func sameScopeAndDay(a, b *domain.Booking) bool {
	return a.Scope() == b.Scope() && sameDay(a.BookingDate, b.BookingDate)
}

func sameDay(a, b time.Time) bool {
	return dayOf(a).Equal(dayOf(b))
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/psqlbuilder"
)

const (
	tableBookings = "bookings"

	// exclusion constraint bookings_no_overlap (migrations/001_init.sql)
	codeExclusionViolation = "23P01"
)

var bookingColumns = []string{
	"id",
	"company_id",
	"service_id",
	"client_id",
	"staff_id",
	"booking_date",
	"start_time",
	"duration_minutes",
	"status",
	"notes",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// LockScope берёт транзакционную advisory-блокировку на scope (компания, сотрудник).
// Блокировка снимается автоматически при COMMIT/ROLLBACK, поэтому вызывать
// можно только внутри транзакции. Разные scope не блокируют друг друга.
// В SERIALIZABLE этот запрос фиксирует снимок транзакции до получения блокировки.
func (r *Repository) LockScope(ctx context.Context, scope domain.Scope) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return ErrNoTransaction
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select().
		Column(squirrel.Expr("pg_advisory_xact_lock(hashtext(?))", scope.Key())).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: LockScope - build query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: LockScope - scope=%s: %w", ErrExecQuery, scope.Key(), err)
	}

	return nil
}

// Create создает новое бронирование.
// starts_at/ends_at денормализуются для exclusion constraint; если он сработал,
// возвращается ErrOverlap.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableBookings).
		Columns(
			"company_id",
			"service_id",
			"client_id",
			"staff_id",
			"booking_date",
			"start_time",
			"duration_minutes",
			"starts_at",
			"ends_at",
			"status",
			"notes",
		).
		Values(
			booking.CompanyID,
			booking.ServiceID,
			booking.ClientID,
			booking.StaffID,
			booking.BookingDate,
			booking.StartTime,
			booking.DurationMinutes,
			booking.StartsAt(),
			booking.EndsAt(),
			booking.Status,
			booking.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&booking.ID, &createdAt, &updatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == codeExclusionViolation {
			return nil, ErrOverlap
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From(tableBookings).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %w", ErrScanRow, err)
	}

	return booking, nil
}

// GetActiveInScope получает активные бронирования scope на дату, отсортированные по времени.
// Внутри транзакции строки блокируются (FOR UPDATE) до её завершения.
func (r *Repository) GetActiveInScope(ctx context.Context, scope domain.Scope, date time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From(tableBookings).
		Where(squirrel.Eq{
			"company_id":   scope.CompanyID,
			"booking_date": dateOnly(date),
			"status":       statusStrings(domain.ActiveStatuses),
		}).
		Where(scopeStaffCondition(scope)).
		OrderBy("start_time ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveInScope - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveInScope - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetByClientID получает историю бронирований клиента.
// Опционально фильтрует по статусу.
func (r *Repository) GetByClientID(ctx context.Context, clientID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From(tableBookings).
		Where(squirrel.Eq{"client_id": clientID}).
		OrderBy("booking_date DESC", "start_time DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": string(*status)})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByClientID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByClientID - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetByCompanyWithFilter получает бронирования компании с фильтрацией по
// сотруднику, периоду и статусу. Без явного статуса и IncludeInactive
// возвращаются только активные.
func (r *Repository) GetByCompanyWithFilter(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From(tableBookings).
		Where(squirrel.Eq{"company_id": filter.CompanyID})

	if filter.StaffID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"staff_id": *filter.StaffID})
	}
	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"booking_date": dateOnly(*filter.StartDate)})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"booking_date": dateOnly(*filter.EndDate)})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": string(*filter.Status)})
	} else if !filter.IncludeInactive {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": statusStrings(domain.ActiveStatuses)})
	}

	// Для одной даты удобнее хронологический порядок, для периода - сначала новые
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.Equal(*filter.EndDate) {
		selectBuilder = selectBuilder.OrderBy("start_time ASC")
	} else {
		selectBuilder = selectBuilder.OrderBy("booking_date DESC", "start_time DESC")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCompanyWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCompanyWithFilter - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// UpdateStatus атомарно переводит бронирование из статуса from в статус to
// (compare-and-set одним UPDATE). Если текущий статус уже не from, возвращает
// ErrStatusChanged; если бронирования нет - ErrBookingNotFound.
// При переходе в cancelled сохраняются причина и время отмены.
func (r *Repository) UpdateStatus(
	ctx context.Context,
	id int64,
	from, to domain.BookingStatus,
	reason *string,
) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update(tableBookings).
		Set("status", string(to)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": string(from)})

	if to == domain.StatusCancelled {
		updateBuilder = updateBuilder.
			Set("cancellation_reason", reason).
			Set("cancelled_at", squirrel.Expr("NOW()"))
	}

	query, args, err := updateBuilder.
		Suffix("RETURNING " + strings.Join(bookingColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		// Различаем "нет такого бронирования" и "статус уже другой"
		if _, getErr := r.GetByID(ctx, id); errors.Is(getErr, ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, ErrStatusChanged
	}
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateStatus - execute update: %w", ErrExecQuery, err)
	}

	return booking, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		booking              domain.Booking
		staffID              sql.NullInt64
		status               string
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&booking.ID,
		&booking.CompanyID,
		&booking.ServiceID,
		&booking.ClientID,
		&staffID,
		&booking.BookingDate,
		&booking.StartTime,
		&booking.DurationMinutes,
		&status,
		&booking.Notes,
		&booking.CancellationReason,
		&booking.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if staffID.Valid {
		id := staffID.Int64
		booking.StaffID = &id
	}
	booking.Status = domain.BookingStatus(status)
	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %w", ErrScanRow, err)
	}

	return bookings, nil
}

// scopeStaffCondition бронирования без сотрудника образуют отдельный scope компании
func scopeStaffCondition(scope domain.Scope) squirrel.Sqlizer {
	if scope.HasStaff() {
		return squirrel.Eq{"staff_id": scope.StaffID}
	}
	return squirrel.Eq{"staff_id": nil}
}

func statusStrings(statuses []domain.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

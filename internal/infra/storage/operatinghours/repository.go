package operatinghours

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

const tableOperatingHours = "operating_hours"

var hoursColumns = []string{
	"id",
	"company_id",
	"weekday",
	"is_open",
	"open_time",
	"close_time",
	"break_start",
	"break_end",
	"created_at",
	"updated_at",
}

// Repository репозиторий расписания работы компаний
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписания
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByWeekday получает расписание компании на день недели.
// Если день не настроен, возвращает ErrHoursNotFound: решение о значениях
// по умолчанию принимает вызывающий код.
func (r *Repository) GetByWeekday(ctx context.Context, companyID int64, weekday time.Weekday) (*domain.OperatingHours, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(hoursColumns...).
		From(tableOperatingHours).
		Where(squirrel.Eq{"company_id": companyID, "weekday": int(weekday)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByWeekday - build select query: %v", ErrBuildQuery, err)
	}

	hours, err := scanHours(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrHoursNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByWeekday - scan hours: %w", ErrScanRow, err)
	}

	return hours, nil
}

// GetAllByCompany получает все настроенные дни компании, упорядоченные по дню недели
func (r *Repository) GetAllByCompany(ctx context.Context, companyID int64) ([]*domain.OperatingHours, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(hoursColumns...).
		From(tableOperatingHours).
		Where(squirrel.Eq{"company_id": companyID}).
		OrderBy("weekday ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetAllByCompany - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetAllByCompany - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.OperatingHours, 0, 7)
	for rows.Next() {
		hours, err := scanHours(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetAllByCompany - scan row: %v", ErrScanRow, err)
		}
		result = append(result, hours)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetAllByCompany - rows error: %w", ErrScanRow, err)
	}

	return result, nil
}

// Upsert создает или заменяет расписание на день недели (уникальность company_id + weekday)
func (r *Repository) Upsert(ctx context.Context, hours *domain.OperatingHours) (*domain.OperatingHours, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableOperatingHours).
		Columns(
			"company_id",
			"weekday",
			"is_open",
			"open_time",
			"close_time",
			"break_start",
			"break_end",
		).
		Values(
			hours.CompanyID,
			int(hours.Weekday),
			hours.IsOpen,
			nullableTime(hours.IsOpen, &hours.OpenTime),
			nullableTime(hours.IsOpen, &hours.CloseTime),
			nullableTime(hours.IsOpen, hours.BreakStart),
			nullableTime(hours.IsOpen, hours.BreakEnd),
		).
		Suffix(`ON CONFLICT (company_id, weekday) DO UPDATE SET
			is_open = EXCLUDED.is_open,
			open_time = EXCLUDED.open_time,
			close_time = EXCLUDED.close_time,
			break_start = EXCLUDED.break_start,
			break_end = EXCLUDED.break_end,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&hours.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %w", ErrExecQuery, err)
	}

	hours.IsDefault = false
	hours.CreatedAt = createdAt.Time
	hours.UpdatedAt = updatedAt.Time

	return hours, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanHours(row rowScanner) (*domain.OperatingHours, error) {
	var (
		hours                domain.OperatingHours
		weekday              int
		openTime, closeTime  types.TimeString
		breakStart, breakEnd types.TimeString
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&hours.ID,
		&hours.CompanyID,
		&weekday,
		&hours.IsOpen,
		&openTime,
		&closeTime,
		&breakStart,
		&breakEnd,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	hours.Weekday = time.Weekday(weekday)
	hours.OpenTime = openTime
	hours.CloseTime = closeTime
	if !breakStart.IsZero() && !breakEnd.IsZero() {
		hours.BreakStart = &breakStart
		hours.BreakEnd = &breakEnd
	}
	hours.CreatedAt = createdAt.Time
	hours.UpdatedAt = updatedAt.Time

	return &hours, nil
}

// nullableTime закрытый день хранится без времени
func nullableTime(isOpen bool, t *types.TimeString) interface{} {
	if !isOpen || t == nil || t.IsZero() {
		return nil
	}
	return *t
}

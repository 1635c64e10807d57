package schedule

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-RecurringService/internal/domain"
	"github.com/m04kA/SMC-RecurringService/pkg/dbmetrics"
	"github.com/m04kA/SMC-RecurringService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-RecurringService/pkg/types"
)

const table = "recurring_schedules"

var columns = []string{
	"id",
	"customer_id",
	"cleaner_id",
	"frequency",
	"day_of_week",
	"day_of_month",
	"days_of_week",
	"service_type",
	"bedrooms",
	"bathrooms",
	"extras",
	"extras_quantities",
	"notes",
	"address_line1",
	"address_suburb",
	"address_city",
	"booking_time",
	"start_date",
	"end_date",
	"total_amount",
	"cleaner_earnings",
	"last_generated_month",
	"is_active",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с регулярными расписаниями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает расписание по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.RecurringSchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	schedule, err := scanSchedule(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan schedule: %v", ErrScanRow, err)
	}

	return schedule, nil
}

// ListForGeneration получает активные расписания, которым может понадобиться генерация за месяц.
// Отбирает по окну действия и watermark, окончательную проверку выполняет usecase.
func (r *Repository) ListForGeneration(ctx context.Context, month types.MonthYear) ([]*domain.RecurringSchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"is_active": true}).
		Where(squirrel.LtOrEq{"start_date": month.LastDay().String()}).
		Where(squirrel.Or{
			squirrel.Eq{"end_date": nil},
			squirrel.GtOrEq{"end_date": month.FirstDay().String()},
		}).
		Where(squirrel.Or{
			squirrel.Eq{"last_generated_month": nil},
			squirrel.NotEq{"last_generated_month": month.String()},
		}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListForGeneration - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListForGeneration - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	schedules := make([]*domain.RecurringSchedule, 0)
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListForGeneration - scan row: %v", ErrScanRow, err)
		}
		schedules = append(schedules, schedule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListForGeneration - rows error: %v", ErrScanRow, err)
	}

	return schedules, nil
}

// UpdateLastGeneratedMonth сдвигает watermark генерации.
// Других полей расписания генерация не меняет.
func (r *Repository) UpdateLastGeneratedMonth(ctx context.Context, id int64, month types.MonthYear) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("last_generated_month", month.String()).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateLastGeneratedMonth - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateLastGeneratedMonth - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateLastGeneratedMonth - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrScheduleNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanSchedule сканирует строку в расписание (порядок полей совпадает с columns)
func scanSchedule(row rowScanner) (*domain.RecurringSchedule, error) {
	var (
		s                domain.RecurringSchedule
		frequency        string
		daysOfWeek       []int64
		extras           []string
		extrasQuantities []byte
		totalAmount      decimal.NullDecimal
		createdAt        sql.NullTime
		updatedAt        sql.NullTime
	)

	err := row.Scan(
		&s.ID,
		&s.CustomerID,
		&s.CleanerID,
		&frequency,
		&s.DayOfWeek,
		&s.DayOfMonth,
		pq.Array(&daysOfWeek),
		&s.ServiceType,
		&s.Bedrooms,
		&s.Bathrooms,
		pq.Array(&extras),
		&extrasQuantities,
		&s.Notes,
		&s.AddressLine1,
		&s.AddressSuburb,
		&s.AddressCity,
		&s.BookingTime,
		&s.StartDate,
		&s.EndDate,
		&totalAmount,
		&s.CleanerEarnings,
		&s.LastGeneratedMonth,
		&s.IsActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Frequency = domain.Frequency(frequency)
	s.Extras = extras

	s.DaysOfWeek = make([]int, 0, len(daysOfWeek))
	for _, d := range daysOfWeek {
		s.DaysOfWeek = append(s.DaysOfWeek, int(d))
	}

	if len(extrasQuantities) > 0 {
		if err := json.Unmarshal(extrasQuantities, &s.ExtrasQuantities); err != nil {
			return nil, fmt.Errorf("decode extras_quantities: %w", err)
		}
	}

	if totalAmount.Valid {
		amount := totalAmount.Decimal
		s.TotalAmount = &amount
	}

	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return &s, nil
}

package booking

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-RecurringService/internal/domain"
	"github.com/m04kA/SMC-RecurringService/pkg/dbmetrics"
	"github.com/m04kA/SMC-RecurringService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-RecurringService/pkg/types"
)

const table = "bookings"

// pgUniqueViolation код ошибки Postgres при нарушении уникального индекса
const pgUniqueViolation = "23505"

var insertColumns = []string{
	"id",
	"customer_id",
	"customer_name",
	"customer_email",
	"customer_phone",
	"cleaner_id",
	"requires_team",
	"service_type",
	"bedrooms",
	"bathrooms",
	"extras",
	"extras_quantities",
	"notes",
	"address_line1",
	"address_suburb",
	"address_city",
	"booking_date",
	"booking_time",
	"frequency",
	"status",
	"total_amount",
	"service_fee",
	"cleaner_earnings",
	"price_snapshot",
	"recurring_schedule_id",
}

var selectColumns = append(append([]string(nil), insertColumns...), "created_at", "updated_at")

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// CreateBatch вставляет пакет бронирований одним INSERT.
// Один оператор выполняется атомарно: либо все строки пакета записаны, либо ни одной.
// Если в контексте есть транзакция, запрос выполняется в ней.
func (r *Repository) CreateBatch(ctx context.Context, bookings []*domain.Booking) error {
	if len(bookings) == 0 {
		return ErrEmptyBatch
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertBuilder := psqlbuilder.Insert(table).Columns(insertColumns...)

	for _, b := range bookings {
		extrasQuantities, err := json.Marshal(b.ExtrasQuantities)
		if err != nil {
			return fmt.Errorf("%w: CreateBatch - encode extras_quantities: %v", ErrBuildQuery, err)
		}

		insertBuilder = insertBuilder.Values(
			b.ID,
			b.CustomerID,
			b.CustomerName,
			b.CustomerEmail,
			b.CustomerPhone,
			b.CleanerID,
			b.RequiresTeam,
			b.ServiceType,
			b.Bedrooms,
			b.Bathrooms,
			pq.Array(b.Extras),
			string(extrasQuantities),
			b.Notes,
			b.AddressLine1,
			b.AddressSuburb,
			b.AddressCity,
			b.BookingDate,
			b.BookingTime,
			string(b.Frequency),
			string(b.Status),
			b.TotalAmount,
			b.ServiceFee,
			b.CleanerEarnings,
			b.PriceSnapshot,
			b.RecurringScheduleID,
		)
	}

	query, args, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: CreateBatch - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return fmt.Errorf("%w: %s", ErrDuplicateBooking, pqErr.Detail)
		}
		return fmt.Errorf("%w: CreateBatch - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// GetBookedDates возвращает даты из candidates, на которые у расписания уже есть бронирование.
// Выполняет один запрос на весь набор дат.
func (r *Repository) GetBookedDates(ctx context.Context, scheduleID int64, candidates []types.Date) ([]types.Date, error) {
	if len(candidates) == 0 {
		return []types.Date{}, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	dateStrings := make([]string, len(candidates))
	for i, d := range candidates {
		dateStrings[i] = d.String()
	}

	query, args, err := psqlbuilder.Select("DISTINCT booking_date").
		From(table).
		Where(squirrel.Eq{"recurring_schedule_id": scheduleID}).
		Where(squirrel.Eq{"booking_date": dateStrings}).
		OrderBy("booking_date ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetBookedDates - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetBookedDates - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	dates := make([]types.Date, 0)
	for rows.Next() {
		var d types.Date
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("%w: GetBookedDates - scan booking_date: %v", ErrScanRow, err)
		}
		dates = append(dates, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetBookedDates - rows error: %v", ErrScanRow, err)
	}

	return dates, nil
}

// GetBySchedule получает бронирования, созданные из расписания.
// Опционально ограничивает период (обе границы включительно).
func (r *Repository) GetBySchedule(ctx context.Context, filter domain.ScheduleBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(selectColumns...).
		From(table).
		Where(squirrel.Eq{"recurring_schedule_id": filter.ScheduleID})

	if filter.From != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"booking_date": filter.From.String()})
	}
	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"booking_date": filter.To.String()})
	}
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": string(*filter.Status)})
	}

	query, args, err := selectBuilder.OrderBy("booking_date ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetBySchedule - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetBySchedule - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// scanBookings сканирует результаты запроса в слайс бронирований
func (r *Repository) scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		var (
			b                domain.Booking
			extras           []string
			extrasQuantities []byte
			frequency        string
			status           string
			createdAt        sql.NullTime
			updatedAt        sql.NullTime
		)

		err := rows.Scan(
			&b.ID,
			&b.CustomerID,
			&b.CustomerName,
			&b.CustomerEmail,
			&b.CustomerPhone,
			&b.CleanerID,
			&b.RequiresTeam,
			&b.ServiceType,
			&b.Bedrooms,
			&b.Bathrooms,
			pq.Array(&extras),
			&extrasQuantities,
			&b.Notes,
			&b.AddressLine1,
			&b.AddressSuburb,
			&b.AddressCity,
			&b.BookingDate,
			&b.BookingTime,
			&frequency,
			&status,
			&b.TotalAmount,
			&b.ServiceFee,
			&b.CleanerEarnings,
			&b.PriceSnapshot,
			&b.RecurringScheduleID,
			&createdAt,
			&updatedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}

		if len(extrasQuantities) > 0 {
			if err := json.Unmarshal(extrasQuantities, &b.ExtrasQuantities); err != nil {
				return nil, fmt.Errorf("%w: scanBookings - decode extras_quantities: %v", ErrScanRow, err)
			}
		}

		b.Extras = extras
		b.Frequency = domain.Frequency(frequency)
		b.Status = domain.BookingStatus(status)
		b.CreatedAt = createdAt.Time
		b.UpdatedAt = updatedAt.Time

		bookings = append(bookings, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

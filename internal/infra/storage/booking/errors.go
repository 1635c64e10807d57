package booking

import "errors"

var (
	// ErrDuplicateBooking возвращается при нарушении уникальности (recurring_schedule_id, booking_date)
	ErrDuplicateBooking = errors.New("booking.repository: booking already exists for schedule and date")

	// ErrEmptyBatch возвращается при попытке вставить пустой пакет
	ErrEmptyBatch = errors.New("booking.repository: empty batch")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")
)

package generate_bookings

import "errors"

var (
	// ErrScheduleNotFound возвращается, когда расписание не найдено
	ErrScheduleNotFound = errors.New("generate_bookings: schedule not found")

	// ErrScheduleInactive возвращается при ручном запуске для выключенного расписания
	ErrScheduleInactive = errors.New("generate_bookings: schedule is inactive")

	// ErrInvalidMonth возвращается при некорректных year/month
	ErrInvalidMonth = errors.New("generate_bookings: invalid target month")

	// ErrCustomerNotFound возвращается, когда клиента расписания нет в базе
	ErrCustomerNotFound = errors.New("generate_bookings: customer not found")

	// ErrPricing возвращается, когда не удалось посчитать цену
	ErrPricing = errors.New("generate_bookings: pricing failed")

	// ErrPersistence возвращается при ошибке чтения или записи бронирований и watermark
	ErrPersistence = errors.New("generate_bookings: persistence failure")

	// ErrDeadlineExceeded возвращается, когда прогон не успел обработать расписание
	ErrDeadlineExceeded = errors.New("generate_bookings: run deadline exceeded")

	// ErrRunInProgress возвращается, когда месяц уже генерируется другим прогоном
	ErrRunInProgress = errors.New("generate_bookings: run for this month is already in progress")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("generate_bookings: internal error")
)

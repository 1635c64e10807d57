package recurrence

import "errors"

var (
	// ErrReconcile возвращается, когда не удалось прочитать существующие бронирования
	ErrReconcile = errors.New("recurrence: failed to load existing bookings")

	// ErrPricing возвращается, когда сервис цен не смог посчитать стоимость
	ErrPricing = errors.New("recurrence: pricing failed")

	// ErrInvalidMonth возвращается при некорректных year/month
	ErrInvalidMonth = errors.New("recurrence: invalid target month")
)

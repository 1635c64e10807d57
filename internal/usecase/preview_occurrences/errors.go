package preview_occurrences

import "errors"

var (
	// ErrScheduleNotFound возвращается, когда расписание не найдено
	ErrScheduleNotFound = errors.New("preview_occurrences: schedule not found")

	// ErrInvalidMonth возвращается при некорректных year/month
	ErrInvalidMonth = errors.New("preview_occurrences: invalid target month")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("preview_occurrences: internal error")
)

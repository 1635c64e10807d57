package schedules

import (
	"context"

	"github.com/m04kA/SMC-RecurringService/internal/domain"
)

// ScheduleRepository интерфейс репозитория расписаний
type ScheduleRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.RecurringSchedule, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetBySchedule(ctx context.Context, filter domain.ScheduleBookingsFilter) ([]*domain.Booking, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

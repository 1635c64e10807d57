package get_schedule_bookings

import (
	"context"

	"github.com/m04kA/SMC-RecurringService/internal/service/schedules/models"
)

type ScheduleService interface {
	GetScheduleBookings(ctx context.Context, req *models.GetScheduleBookingsRequest) (*models.ScheduleBookingsResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

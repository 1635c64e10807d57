package generate_schedule_bookings

import (
	"context"

	generateBookings "github.com/m04kA/SMC-RecurringService/internal/usecase/generate_bookings"
)

type GenerateBookingsUseCase interface {
	Generate(ctx context.Context, req *generateBookings.GenerateRequest) (*generateBookings.GenerateResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

package run_recurring_generation

import (
	"context"

	generateBookings "github.com/m04kA/SMC-RecurringService/internal/usecase/generate_bookings"
)

type RunMonthlyUseCase interface {
	RunMonthly(ctx context.Context, req *generateBookings.RunRequest) (*generateBookings.RunReport, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

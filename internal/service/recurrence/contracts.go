package recurrence

import (
	"context"
	"time"

	"github.com/m04kA/SMC-RecurringService/internal/integrations/pricing"
	"github.com/m04kA/SMC-RecurringService/pkg/types"
)

// BookedDatesReader читает даты, на которые по расписанию уже есть бронирования
type BookedDatesReader interface {
	GetBookedDates(ctx context.Context, scheduleID int64, candidates []types.Date) ([]types.Date, error)
}

// PricingClient интерфейс клиента сервиса цен
type PricingClient interface {
	Calculate(ctx context.Context, params pricing.Request) (*pricing.Breakdown, error)
}

// Clock источник текущего времени для отметки снимка цены
type Clock func() time.Time

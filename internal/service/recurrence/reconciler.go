package recurrence

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-RecurringService/pkg/types"
)

// Reconciler отсекает даты, по которым бронирование уже создано
type Reconciler struct {
	bookings BookedDatesReader
}

// NewReconciler создает новый экземпляр Reconciler
func NewReconciler(bookings BookedDatesReader) *Reconciler {
	return &Reconciler{bookings: bookings}
}

// FilterUngenerated возвращает кандидатов без существующего бронирования, порядок сохраняется.
// Даты сравниваются по каноническому виду YYYY-MM-DD.
func (r *Reconciler) FilterUngenerated(ctx context.Context, scheduleID int64, candidates []types.Date) ([]types.Date, error) {
	if len(candidates) == 0 {
		return []types.Date{}, nil
	}

	existing, err := r.bookings.GetBookedDates(ctx, scheduleID, candidates)
	if err != nil {
		return nil, fmt.Errorf("%w: schedule_id=%d: %v", ErrReconcile, scheduleID, err)
	}

	return subtractDates(candidates, existing), nil
}

func subtractDates(candidates, existing []types.Date) []types.Date {
	booked := make(map[string]struct{}, len(existing))
	for _, d := range existing {
		booked[d.String()] = struct{}{}
	}

	result := make([]types.Date, 0, len(candidates))
	for _, d := range candidates {
		if _, ok := booked[d.String()]; ok {
			continue
		}
		result = append(result, d)
	}
	return result
}

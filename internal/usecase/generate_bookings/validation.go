package generate_bookings

import (
	"fmt"
	"strconv"
	"time"

	"github.com/m04kA/SMC-RecurringService/internal/service/recurrence"
	"github.com/m04kA/SMC-RecurringService/pkg/types"
)

// resolveTargetMonth возвращает месяц генерации. Без year/month это следующий месяц относительно now.
func resolveTargetMonth(year, month *int, now time.Time) (types.MonthYear, error) {
	target, err := recurrence.ResolveTargetMonth(year, month, now, now.Location())
	if err != nil {
		return types.MonthYear{}, fmt.Errorf("%w: %v", ErrInvalidMonth, err)
	}
	return target, nil
}

// isLastDayOfMonth проверяет, что now приходится на последний день своего месяца
func isLastDayOfMonth(now time.Time) bool {
	today := types.DateOf(now)
	return today.Day == today.MonthYear().DaysIn()
}

func lockKey(month types.MonthYear) string {
	return "recurring-bookings:" + month.String()
}

func optionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

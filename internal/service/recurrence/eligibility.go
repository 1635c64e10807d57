package recurrence

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-RecurringService/internal/domain"
	"github.com/m04kA/SMC-RecurringService/pkg/types"
)

// SkipReason причина, по которой расписание не участвует в генерации месяца
type SkipReason string

const (
	SkipInactive         SkipReason = "inactive"
	SkipAlreadyGenerated SkipReason = "already_generated"
	SkipNotStarted       SkipReason = "not_started"
	SkipEnded            SkipReason = "ended"
)

// ResolveTargetMonth возвращает целевой месяц. Без year/month это следующий месяц
// относительно now в часовом поясе loc (nil означает UTC).
func ResolveTargetMonth(year, month *int, now time.Time, loc *time.Location) (types.MonthYear, error) {
	if year == nil && month == nil {
		if loc == nil {
			loc = time.UTC
		}
		return types.DateOf(now.In(loc)).MonthYear().Next(), nil
	}

	if year == nil || month == nil {
		return types.MonthYear{}, fmt.Errorf("%w: year and month must be given together", ErrInvalidMonth)
	}

	if *year < domain.MinGenerationYear || *year > domain.MaxGenerationYear {
		return types.MonthYear{}, fmt.Errorf("%w: year must be between %d and %d",
			ErrInvalidMonth, domain.MinGenerationYear, domain.MaxGenerationYear)
	}

	target, err := types.NewMonthYear(*year, *month)
	if err != nil {
		return types.MonthYear{}, fmt.Errorf("%w: %v", ErrInvalidMonth, err)
	}

	return target, nil
}

// CheckEligibility проверка допуска расписания к генерации на месяц
func CheckEligibility(schedule *domain.RecurringSchedule, month types.MonthYear) (SkipReason, bool) {
	switch {
	case !schedule.IsActive:
		return SkipInactive, false
	case schedule.IsGeneratedFor(month):
		return SkipAlreadyGenerated, false
	case schedule.StartsAfter(month):
		return SkipNotStarted, false
	case schedule.EndsBefore(month):
		return SkipEnded, false
	default:
		return "", true
	}
}

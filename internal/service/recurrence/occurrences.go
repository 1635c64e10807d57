package recurrence

import (
	"sort"
	"time"

	"github.com/m04kA/SMC-RecurringService/internal/domain"
	"github.com/m04kA/SMC-RecurringService/pkg/types"
)

const biWeeklyStepDays = 14

// CalculateOccurrences возвращает отсортированные даты месяца, на которые расписание предполагает визит.
// Функция чистая. Если для частоты не хватает обязательного поля, результат пустой, ошибки нет.
// Окно start_date/end_date здесь не применяется, см. ApplyWindow.
func CalculateOccurrences(schedule *domain.RecurringSchedule, month types.MonthYear) []types.Date {
	if schedule == nil || !schedule.HasPattern() {
		return []types.Date{}
	}

	var dates []types.Date

	switch schedule.Frequency {
	case domain.FrequencyWeekly:
		dates = weeklyDates(time.Weekday(*schedule.DayOfWeek), month)

	case domain.FrequencyBiWeekly:
		if schedule.StartDate.IsZero() {
			return []types.Date{}
		}
		dates = biWeeklyDates(time.Weekday(*schedule.DayOfWeek), schedule.StartDate, month)

	case domain.FrequencyMonthly:
		dates = []types.Date{monthlyDate(*schedule.DayOfMonth, month)}

	case domain.FrequencyCustomWeekly:
		for _, wd := range uniqueWeekdays(schedule.DaysOfWeek) {
			dates = append(dates, weeklyDates(wd, month)...)
		}

	case domain.FrequencyCustomBiWeekly:
		if schedule.StartDate.IsZero() {
			return []types.Date{}
		}
		for _, wd := range uniqueWeekdays(schedule.DaysOfWeek) {
			dates = append(dates, biWeeklyDates(wd, schedule.StartDate, month)...)
		}
	}

	return sortUnique(dates)
}

// ApplyWindow отбрасывает даты раньше start_date и позже end_date (если задан)
func ApplyWindow(schedule *domain.RecurringSchedule, dates []types.Date) []types.Date {
	result := make([]types.Date, 0, len(dates))
	for _, d := range dates {
		if schedule.InWindow(d) {
			result = append(result, d)
		}
	}
	return result
}

// weeklyDates все даты месяца с указанным днём недели
func weeklyDates(weekday time.Weekday, month types.MonthYear) []types.Date {
	first := month.FirstDay()
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7

	dates := make([]types.Date, 0, 5)
	for d := first.AddDays(offset); month.Contains(d); d = d.AddDays(7) {
		dates = append(dates, d)
	}
	return dates
}

// biWeeklyDates даты с шагом 14 дней от первого совпадения дня недели не раньше start.
// Даты до начала месяца пропускаются, якорь при этом не сдвигается.
func biWeeklyDates(weekday time.Weekday, start types.Date, month types.MonthYear) []types.Date {
	anchor := start.AddDays((int(weekday) - int(start.Weekday()) + 7) % 7)
	first := month.FirstDay()
	last := month.LastDay()

	if anchor.After(last) {
		return []types.Date{}
	}

	current := anchor
	if current.Before(first) {
		// Перепрыгиваем целое число периодов, чтобы не шагать от якоря годами
		gap := daysBetween(current, first)
		periods := (gap + biWeeklyStepDays - 1) / biWeeklyStepDays
		current = current.AddDays(periods * biWeeklyStepDays)
	}

	dates := make([]types.Date, 0, 3)
	for ; !current.After(last); current = current.AddDays(biWeeklyStepDays) {
		if !current.Before(first) {
			dates = append(dates, current)
		}
	}
	return dates
}

// monthlyDate день месяца, ограниченный последним днём (31 -> 28/29/30, без перехода в следующий месяц)
func monthlyDate(dayOfMonth int, month types.MonthYear) types.Date {
	day := dayOfMonth
	if last := month.DaysIn(); day > last {
		day = last
	}
	return types.Date{Year: month.Year, Month: month.Month, Day: day}
}

func daysBetween(from, to types.Date) int {
	return int(to.Time().Sub(from.Time()).Hours() / 24)
}

func uniqueWeekdays(days []int) []time.Weekday {
	seen := make(map[int]struct{}, len(days))
	result := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		result = append(result, time.Weekday(d))
	}
	return result
}

func sortUnique(dates []types.Date) []types.Date {
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})

	result := make([]types.Date, 0, len(dates))
	for i, d := range dates {
		if i > 0 && d.Equal(dates[i-1]) {
			continue
		}
		result = append(result, d)
	}
	return result
}

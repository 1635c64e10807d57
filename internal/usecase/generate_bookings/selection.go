package generate_bookings

import (
	"context"

	"github.com/m04kA/SMC-RecurringService/internal/domain"
	"github.com/m04kA/SMC-RecurringService/pkg/types"
)

// ScheduleSelector стратегия выбора расписаний для прогона
type ScheduleSelector interface {
	Select(ctx context.Context, month types.MonthYear) ([]*domain.RecurringSchedule, error)
}

type singleSchedule struct {
	schedule *domain.RecurringSchedule
}

// SingleSchedule прогон по одному уже загруженному расписанию (ручной запуск)
func SingleSchedule(schedule *domain.RecurringSchedule) ScheduleSelector {
	return singleSchedule{schedule: schedule}
}

func (s singleSchedule) Select(context.Context, types.MonthYear) ([]*domain.RecurringSchedule, error) {
	return []*domain.RecurringSchedule{s.schedule}, nil
}

type allActiveForMonth struct {
	repo ScheduleRepository
}

// AllActiveForMonth прогон по всем активным расписаниям, которые ещё не сгенерированы на месяц
func AllActiveForMonth(repo ScheduleRepository) ScheduleSelector {
	return allActiveForMonth{repo: repo}
}

func (s allActiveForMonth) Select(ctx context.Context, month types.MonthYear) ([]*domain.RecurringSchedule, error) {
	return s.repo.ListForGeneration(ctx, month)
}

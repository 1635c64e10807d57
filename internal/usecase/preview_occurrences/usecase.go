package preview_occurrences

import (
	"context"
	"errors"
	"fmt"
	"time"

	scheduleRepo "github.com/m04kA/SMC-RecurringService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-RecurringService/internal/service/recurrence"
)

// UseCase use case предпросмотра дат генерации без записи в базу
type UseCase struct {
	scheduleRepo ScheduleRepository
	reconciler   Reconciler
	timeProvider TimeProvider
	location     *time.Location
	logger       Logger
}

// NewUseCase создает новый экземпляр use case.
// location задает календарь для месяца по умолчанию, nil означает UTC.
func NewUseCase(scheduleRepo ScheduleRepository, reconciler Reconciler, location *time.Location, logger Logger) *UseCase {
	if location == nil {
		location = time.UTC
	}
	return &UseCase{
		scheduleRepo: scheduleRepo,
		reconciler:   reconciler,
		timeProvider: &RealTimeProvider{},
		location:     location,
		logger:       logger,
	}
}

// Execute считает даты месяца по расписанию и отмечает уже созданные
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("PreviewOccurrences: schedule=%d, user=%d", req.ScheduleID, req.UserID)

	// 1. Целевой месяц
	month, err := recurrence.ResolveTargetMonth(req.Year, req.Month, uc.timeProvider.Now(), uc.location)
	if err != nil {
		uc.logger.Warn("PreviewOccurrences: invalid month for schedule=%d: %v", req.ScheduleID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidMonth, err)
	}

	// 2. Расписание
	schedule, err := uc.scheduleRepo.GetByID(ctx, req.ScheduleID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
			uc.logger.Warn("PreviewOccurrences: schedule id=%d not found", req.ScheduleID)
			return nil, ErrScheduleNotFound
		}
		uc.logger.Error("PreviewOccurrences: failed to get schedule id=%d: %v", req.ScheduleID, err)
		return nil, fmt.Errorf("%w: failed to get schedule: %v", ErrInternal, err)
	}

	// 3. Даты по шаблону и окно
	candidates := recurrence.CalculateOccurrences(schedule, month)
	inWindow := recurrence.ApplyWindow(schedule, candidates)

	// 4. Сверка с существующими бронированиями
	pending, err := uc.reconciler.FilterUngenerated(ctx, schedule.ID, inWindow)
	if err != nil {
		uc.logger.Error("PreviewOccurrences: failed to reconcile schedule id=%d: %v", schedule.ID, err)
		return nil, fmt.Errorf("%w: failed to reconcile: %v", ErrInternal, err)
	}

	windowSet := make(map[string]struct{}, len(inWindow))
	for _, d := range inWindow {
		windowSet[d.String()] = struct{}{}
	}
	pendingSet := make(map[string]struct{}, len(pending))
	for _, d := range pending {
		pendingSet[d.String()] = struct{}{}
	}

	occurrences := make([]Occurrence, 0, len(candidates))
	for _, d := range candidates {
		_, within := windowSet[d.String()]
		_, notBooked := pendingSet[d.String()]
		occurrences = append(occurrences, Occurrence{
			Date:             d,
			InWindow:         within,
			AlreadyGenerated: within && !notBooked,
		})
	}

	reason, eligible := recurrence.CheckEligibility(schedule, month)
	toGenerate := 0
	if eligible {
		toGenerate = len(pending)
	}

	uc.logger.Info("PreviewOccurrences: schedule=%d, month=%s: dates=%d, to_generate=%d",
		schedule.ID, month, len(candidates), toGenerate)

	return &Response{
		ScheduleID:  schedule.ID,
		MonthYear:   month,
		Frequency:   string(schedule.Frequency),
		Eligible:    eligible,
		SkipReason:  string(reason),
		Watermark:   schedule.LastGeneratedMonth,
		ValidShape:  schedule.HasPattern(),
		Occurrences: occurrences,
		ToGenerate:  toGenerate,
	}, nil
}

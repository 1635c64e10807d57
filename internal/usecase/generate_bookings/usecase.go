package generate_bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-RecurringService/internal/domain"
	"github.com/m04kA/SMC-RecurringService/internal/infra/lock"
	bookingRepo "github.com/m04kA/SMC-RecurringService/internal/infra/storage/booking"
	customerRepo "github.com/m04kA/SMC-RecurringService/internal/infra/storage/customer"
	scheduleRepo "github.com/m04kA/SMC-RecurringService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-RecurringService/internal/service/recurrence"
	"github.com/m04kA/SMC-RecurringService/pkg/types"
)

// Options параметры генерации из конфигурации
type Options struct {
	Rules      domain.GenerationRules
	RunTimeout time.Duration  // общий дедлайн прогона, 0 = без дедлайна
	Location   *time.Location // часовой пояс для "последнего дня месяца" и "следующего месяца"
	LockTTL    time.Duration
}

// UseCase use case для генерации бронирований по регулярным расписаниям
type UseCase struct {
	scheduleRepo ScheduleRepository
	bookingRepo  BookingRepository
	customerRepo CustomerRepository
	reconciler   Reconciler
	snapshotter  Snapshotter
	txManager    TransactionManager
	locker       Locker
	metrics      MetricsRecorder
	idGenerator  IDGenerator
	timeProvider TimeProvider
	logger       Logger
	opts         Options
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	scheduleRepo ScheduleRepository,
	bookingRepo BookingRepository,
	customerRepo CustomerRepository,
	reconciler Reconciler,
	snapshotter Snapshotter,
	txManager TransactionManager,
	locker Locker,
	metrics MetricsRecorder,
	logger Logger,
	opts Options,
) *UseCase {
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	return &UseCase{
		scheduleRepo: scheduleRepo,
		bookingRepo:  bookingRepo,
		customerRepo: customerRepo,
		reconciler:   reconciler,
		snapshotter:  snapshotter,
		txManager:    txManager,
		locker:       locker,
		metrics:      metrics,
		idGenerator:  UUIDGenerator{},
		timeProvider: &RealTimeProvider{},
		logger:       logger,
		opts:         opts,
	}
}

// Generate ручной запуск генерации по одному расписанию.
// По умолчанию генерирует следующий календарный месяц.
func (uc *UseCase) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	uc.logger.Info("GenerateBookings: schedule=%d, user=%d, year=%s, month=%s",
		req.ScheduleID, req.UserID, optionalInt(req.Year), optionalInt(req.Month))

	// 1. Определяем целевой месяц
	month, err := resolveTargetMonth(req.Year, req.Month, uc.now())
	if err != nil {
		uc.logger.Warn("GenerateBookings: invalid month for schedule=%d: %v", req.ScheduleID, err)
		return nil, err
	}

	// 2. Получаем расписание
	schedule, err := uc.scheduleRepo.GetByID(ctx, req.ScheduleID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
			uc.logger.Warn("GenerateBookings: schedule id=%d not found", req.ScheduleID)
			return nil, ErrScheduleNotFound
		}
		uc.logger.Error("GenerateBookings: failed to get schedule id=%d: %v", req.ScheduleID, err)
		return nil, fmt.Errorf("%w: failed to get schedule: %v", ErrPersistence, err)
	}

	// 3. Выключенное расписание при ручном запуске - ошибка запроса, а не пропуск
	if !schedule.IsActive {
		uc.logger.Warn("GenerateBookings: schedule id=%d is inactive", req.ScheduleID)
		return nil, ErrScheduleInactive
	}

	// 4. Общий прогон с одним расписанием
	report, err := uc.Run(ctx, SingleSchedule(schedule), month, TriggerManual)
	if err != nil {
		return nil, err
	}

	if len(report.Results) == 0 {
		if len(report.NotProcessed) > 0 {
			return nil, ErrDeadlineExceeded
		}
		return nil, fmt.Errorf("%w: empty run report for schedule id=%d", ErrInternal, req.ScheduleID)
	}

	result := report.Results[0]
	if result.Outcome == OutcomeFailed {
		return nil, result.Err
	}

	return &GenerateResponse{
		ScheduleID: result.ScheduleID,
		MonthYear:  result.MonthYear,
		Generated:  result.Generated,
		Skipped:    result.Skipped,
		Dates:      result.Dates,
		SkipReason: result.SkipReason,
		Warning:    result.Warning,
	}, nil
}

// RunMonthly плановый запуск. Работает только в последний день текущего месяца
// (если не указан Force) и генерирует следующий месяц для всех подходящих расписаний.
func (uc *UseCase) RunMonthly(ctx context.Context, req *RunRequest) (*RunReport, error) {
	now := uc.now()

	uc.logger.Info("RunRecurringGeneration: now=%s, force=%t, year=%s, month=%s",
		now.Format(time.RFC3339), req.Force, optionalInt(req.Year), optionalInt(req.Month))

	// 1. Определяем целевой месяц
	month, err := resolveTargetMonth(req.Year, req.Month, now)
	if err != nil {
		uc.logger.Warn("RunRecurringGeneration: invalid month: %v", err)
		return nil, err
	}

	// 2. Проверка последнего дня месяца
	if !req.Force && !isLastDayOfMonth(now) {
		uc.logger.Info("RunRecurringGeneration: %s is not the last day of the month, nothing to do",
			types.DateOf(now))
		return &RunReport{
			MonthYear:    month,
			Trigger:      TriggerScheduled,
			Ran:          false,
			SkipNote:     "not the last day of the month",
			Errors:       []ScheduleError{},
			Warnings:     []string{},
			NotProcessed: []int64{},
			Results:      []ScheduleResult{},
			StartedAt:    now,
			FinishedAt:   now,
		}, nil
	}

	// 3. Блокировка месяца
	release, err := uc.locker.Acquire(ctx, lockKey(month), uc.opts.LockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrLockHeld) {
			uc.logger.Warn("RunRecurringGeneration: month=%s is already being generated", month)
			return nil, ErrRunInProgress
		}
		uc.logger.Error("RunRecurringGeneration: failed to acquire lock for month=%s: %v", month, err)
		return nil, fmt.Errorf("%w: failed to acquire lock: %v", ErrInternal, err)
	}
	defer release()

	// 4. Прогон по всем подходящим расписаниям
	return uc.Run(ctx, AllActiveForMonth(uc.scheduleRepo), month, TriggerScheduled)
}

// Run общий прогон генерации на месяц по расписаниям, выбранным стратегией.
// Ошибка одного расписания не прерывает прогон. Ошибкой всего прогона считается только сбой выборки.
// Расписания, до которых не дошли до дедлайна, попадают в NotProcessed.
func (uc *UseCase) Run(ctx context.Context, selector ScheduleSelector, month types.MonthYear, trigger Trigger) (*RunReport, error) {
	started := uc.timeProvider.Now()

	runCtx := ctx
	if uc.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, uc.opts.RunTimeout)
		defer cancel()
	}

	report := &RunReport{
		MonthYear:    month,
		Trigger:      trigger,
		Ran:          true,
		Errors:       []ScheduleError{},
		Warnings:     []string{},
		NotProcessed: []int64{},
		Results:      []ScheduleResult{},
		StartedAt:    started,
	}

	// 1. Выбираем расписания
	schedules, err := selector.Select(runCtx, month)
	if err != nil {
		uc.logger.Error("GenerationRun: failed to select schedules for month=%s: %v", month, err)
		return nil, fmt.Errorf("%w: failed to select schedules: %v", ErrPersistence, err)
	}

	uc.logger.Info("GenerationRun: trigger=%s, month=%s, schedules=%d", trigger, month, len(schedules))

	// 2. Последовательно обрабатываем каждое расписание
	for i, schedule := range schedules {
		if runCtx.Err() != nil {
			for _, rest := range schedules[i:] {
				report.NotProcessed = append(report.NotProcessed, rest.ID)
			}
			uc.logger.Warn("GenerationRun: deadline reached, %d schedules not processed for month=%s",
				len(schedules)-i, month)
			break
		}

		result := uc.generateForSchedule(runCtx, schedule, month)
		report.Results = append(report.Results, result)

		switch result.Outcome {
		case OutcomeSkipped:
			report.Skipped++
		case OutcomeGenerated:
			report.Processed++
			report.Generated += result.Generated
		case OutcomeFailed:
			report.Processed++
			report.Errors = append(report.Errors, ScheduleError{
				ScheduleID: schedule.ID,
				MonthYear:  month,
				Reason:     result.Err.Error(),
			})
		}

		if result.Warning != "" {
			report.Warnings = append(report.Warnings, fmt.Sprintf("schedule %d: %s", schedule.ID, result.Warning))
		}
	}

	report.FinishedAt = uc.timeProvider.Now()
	uc.metrics.ObserveRun(string(trigger), report.FinishedAt.Sub(started))

	uc.logger.Info("GenerationRun: month=%s finished: processed=%d, generated=%d, skipped=%d, errors=%d, not_processed=%d",
		month, report.Processed, report.Generated, report.Skipped, len(report.Errors), len(report.NotProcessed))

	return report, nil
}

// generateForSchedule обрабатывает одно расписание: допуск, даты, сверка, цена, пакетная вставка, watermark
func (uc *UseCase) generateForSchedule(ctx context.Context, schedule *domain.RecurringSchedule, month types.MonthYear) ScheduleResult {
	result := ScheduleResult{
		ScheduleID: schedule.ID,
		MonthYear:  month,
		Dates:      []types.Date{},
	}

	// 1. Проверка допуска
	if reason, ok := recurrence.CheckEligibility(schedule, month); !ok {
		uc.logger.Info("GenerateForSchedule: schedule=%d, month=%s skipped: %s", schedule.ID, month, reason)
		uc.metrics.ObserveScheduleSkipped(string(reason))
		result.Outcome = OutcomeSkipped
		result.SkipReason = reason
		return result
	}

	// 2. Получаем клиента
	customer, err := uc.customerRepo.GetByID(ctx, schedule.CustomerID)
	if err != nil {
		if errors.Is(err, customerRepo.ErrCustomerNotFound) {
			return uc.fail(ctx, result, "customer_not_found",
				fmt.Errorf("%w: customer_id=%d", ErrCustomerNotFound, schedule.CustomerID))
		}
		return uc.fail(ctx, result, "customer_lookup",
			fmt.Errorf("%w: failed to get customer id=%d: %v", ErrPersistence, schedule.CustomerID, err))
	}

	// 3. Даты месяца, окно расписания, сверка с существующими бронированиями
	if !schedule.HasPattern() {
		result.Warning = fmt.Sprintf("frequency %q is missing required pattern fields", schedule.Frequency)
		if !schedule.Frequency.IsValid() {
			result.Warning = fmt.Sprintf("unknown frequency %q", schedule.Frequency)
		}
		uc.logger.Warn("GenerateForSchedule: schedule=%d has invalid pattern, frequency=%s", schedule.ID, schedule.Frequency)
		uc.metrics.ObserveInvalidSchedule()
	}

	candidates := recurrence.CalculateOccurrences(schedule, month)
	inWindow := recurrence.ApplyWindow(schedule, candidates)

	pending, err := uc.reconciler.FilterUngenerated(ctx, schedule.ID, inWindow)
	if err != nil {
		return uc.fail(ctx, result, "reconcile", fmt.Errorf("%w: %v", ErrPersistence, err))
	}
	result.Skipped = len(candidates) - len(pending)

	// 4. Нечего создавать - только сдвигаем watermark
	if len(pending) == 0 {
		if err := uc.scheduleRepo.UpdateLastGeneratedMonth(ctx, schedule.ID, month); err != nil {
			return uc.fail(ctx, result, "persistence",
				fmt.Errorf("%w: failed to update watermark: %v", ErrPersistence, err))
		}
		uc.logger.Info("GenerateForSchedule: schedule=%d, month=%s: nothing to generate, skipped=%d",
			schedule.ID, month, result.Skipped)
		result.Outcome = OutcomeGenerated
		return result
	}

	// 5. Один снимок цены на всё расписание
	snapshot, err := uc.snapshotter.ComputeSnapshot(ctx, schedule)
	if err != nil {
		return uc.fail(ctx, result, "pricing", fmt.Errorf("%w: %v", ErrPricing, err))
	}

	bookings := uc.buildBookings(schedule, customer, snapshot, pending)

	// 6. Пакетная вставка и watermark в одной транзакции
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := uc.bookingRepo.CreateBatch(txCtx, bookings); err != nil {
			return err
		}
		return uc.scheduleRepo.UpdateLastGeneratedMonth(txCtx, schedule.ID, month)
	})
	if err != nil {
		reason := "persistence"
		if errors.Is(err, bookingRepo.ErrDuplicateBooking) {
			reason = "duplicate"
		}
		return uc.fail(ctx, result, reason, fmt.Errorf("%w: failed to store %d bookings: %v", ErrPersistence, len(bookings), err))
	}

	uc.metrics.ObserveBookingsGenerated(len(bookings))
	uc.logger.Info("GenerateForSchedule: schedule=%d, month=%s: generated=%d, skipped=%d, total=%s",
		schedule.ID, month, len(bookings), result.Skipped, snapshot.Total)

	result.Outcome = OutcomeGenerated
	result.Generated = len(bookings)
	result.Dates = pending
	return result
}

// buildBookings собирает бронирования с общим снимком цены и копией данных клиента, адреса и услуги
func (uc *UseCase) buildBookings(
	schedule *domain.RecurringSchedule,
	customer *domain.Customer,
	snapshot *domain.PriceSnapshot,
	dates []types.Date,
) []*domain.Booking {
	requiresTeam := uc.opts.Rules.RequiresTeam(schedule.ServiceType)

	bookingTime := schedule.BookingTime
	if bookingTime.IsZero() {
		bookingTime = uc.opts.Rules.DefaultBookingTime
	}

	bookings := make([]*domain.Booking, 0, len(dates))
	for _, date := range dates {
		scheduleID := schedule.ID

		// Для командных услуг уборщик назначается позже, прямое назначение не переносим
		var cleanerID *int64
		if !requiresTeam && schedule.CleanerID != nil {
			id := *schedule.CleanerID
			cleanerID = &id
		}

		var earnings *int64
		if snapshot.CleanerEarnings != nil {
			e := *snapshot.CleanerEarnings
			earnings = &e
		}

		bookings = append(bookings, &domain.Booking{
			ID:                  uc.idGenerator.NewID(),
			CustomerID:          customer.ID,
			CustomerName:        customer.FullName(),
			CustomerEmail:       customer.Email,
			CustomerPhone:       customer.Phone,
			CleanerID:           cleanerID,
			RequiresTeam:        requiresTeam,
			ServiceType:         schedule.ServiceType,
			Bedrooms:            schedule.Bedrooms,
			Bathrooms:           schedule.Bathrooms,
			Extras:              schedule.Extras,
			ExtrasQuantities:    schedule.ExtrasQuantities,
			Notes:               schedule.Notes,
			AddressLine1:        schedule.AddressLine1,
			AddressSuburb:       schedule.AddressSuburb,
			AddressCity:         schedule.AddressCity,
			BookingDate:         date,
			BookingTime:         bookingTime,
			Frequency:           schedule.Frequency,
			Status:              domain.StatusPending,
			TotalAmount:         snapshot.Total,
			ServiceFee:          snapshot.ServiceFee,
			CleanerEarnings:     earnings,
			PriceSnapshot:       *snapshot,
			RecurringScheduleID: &scheduleID,
		})
	}

	return bookings
}

// fail фиксирует ошибку расписания: watermark не трогаем, прогон продолжается
func (uc *UseCase) fail(ctx context.Context, result ScheduleResult, reason string, err error) ScheduleResult {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		reason = "deadline"
	}

	uc.logger.Error("GenerateForSchedule: schedule=%d, month=%s failed (%s): %v",
		result.ScheduleID, result.MonthYear, reason, err)
	uc.metrics.ObserveScheduleFailed(reason)

	result.Outcome = OutcomeFailed
	result.Err = err
	result.Dates = []types.Date{}
	result.Generated = 0
	return result
}

func (uc *UseCase) now() time.Time {
	return uc.timeProvider.Now().In(uc.opts.Location)
}

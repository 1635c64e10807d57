package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	generateBookings "github.com/m04kA/SMC-RecurringService/internal/usecase/generate_bookings"
)

// ErrInvalidSpec возвращается при некорректном cron выражении
var ErrInvalidSpec = errors.New("scheduler: invalid cron spec")

type MonthlyRunner interface {
	RunMonthly(ctx context.Context, req *generateBookings.RunRequest) (*generateBookings.RunReport, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Scheduler встроенный ежедневный запуск генерации.
// Проверку "последний день месяца" выполняет сам use case, здесь только расписание тиков.
type Scheduler struct {
	cron   *cron.Cron
	runner MonthlyRunner
	logger Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New создает планировщик. spec в стандартном 5-польном формате, loc задаёт часовой пояс тиков.
func New(spec string, loc *time.Location, runner MonthlyRunner, logger Logger) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		runner: runner,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}

	cronLogger := cronLogAdapter{logger: logger}
	s.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidSpec, spec, err)
	}

	return s, nil
}

// Start запускает планировщик в фоне
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler: started, next run at %s", s.nextRun())
}

// Stop останавливает новые тики и ждёт текущий запуск до истечения ctx.
// Если ctx истёк раньше, текущий запуск отменяется.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()

	select {
	case <-done.Done():
		s.cancel()
		s.logger.Info("Scheduler: stopped")
		return nil
	case <-ctx.Done():
		s.cancel()
		s.logger.Warn("Scheduler: running job cancelled on shutdown")
		return ctx.Err()
	}
}

// tick один запуск по расписанию
func (s *Scheduler) tick() {
	report, err := s.runner.RunMonthly(s.ctx, &generateBookings.RunRequest{})
	if err != nil {
		if errors.Is(err, generateBookings.ErrRunInProgress) {
			s.logger.Warn("Scheduler: run skipped, another run holds the lock")
			return
		}
		s.logger.Error("Scheduler: run failed: %v", err)
		return
	}

	if !report.Ran {
		s.logger.Info("Scheduler: nothing to do for %s: %s", report.MonthYear, report.SkipNote)
		return
	}

	s.logger.Info("Scheduler: run finished for %s: processed=%d, generated=%d, skipped=%d, errors=%d, not_processed=%d",
		report.MonthYear, report.Processed, report.Generated, report.Skipped, len(report.Errors), len(report.NotProcessed))
}

func (s *Scheduler) nextRun() string {
	entries := s.cron.Entries()
	if len(entries) == 0 || entries[0].Next.IsZero() {
		return "-"
	}
	return entries[0].Next.Format(time.RFC3339)
}

// cronLogAdapter пишет служебные сообщения cron в логгер сервиса
type cronLogAdapter struct {
	logger Logger
}

func (a cronLogAdapter) Info(msg string, keysAndValues ...interface{}) {
	// cron пишет в Info каждый тик и пробуждение, оставляем только пропуски
	if msg == "skip" {
		a.logger.Warn("Scheduler: previous run still in progress, tick skipped")
	}
}

func (a cronLogAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	a.logger.Error("Scheduler: %s: %v %v", msg, err, keysAndValues)
}

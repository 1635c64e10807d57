package generate_bookings

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-RecurringService/internal/domain"
	"github.com/m04kA/SMC-RecurringService/internal/infra/lock"
	"github.com/m04kA/SMC-RecurringService/pkg/types"
)

// ScheduleRepository интерфейс репозитория расписаний
type ScheduleRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.RecurringSchedule, error)
	ListForGeneration(ctx context.Context, month types.MonthYear) ([]*domain.RecurringSchedule, error)
	UpdateLastGeneratedMonth(ctx context.Context, id int64, month types.MonthYear) error
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	CreateBatch(ctx context.Context, bookings []*domain.Booking) error
}

// CustomerRepository интерфейс репозитория клиентов
type CustomerRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
}

// Reconciler отсекает уже созданные даты
type Reconciler interface {
	FilterUngenerated(ctx context.Context, scheduleID int64, candidates []types.Date) ([]types.Date, error)
}

// Snapshotter считает снимок цены для расписания
type Snapshotter interface {
	ComputeSnapshot(ctx context.Context, schedule *domain.RecurringSchedule) (*domain.PriceSnapshot, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Locker блокировка прогона на месяц
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (lock.ReleaseFunc, error)
}

// MetricsRecorder метрики генерации
type MetricsRecorder interface {
	ObserveBookingsGenerated(n int)
	ObserveScheduleFailed(reason string)
	ObserveScheduleSkipped(reason string)
	ObserveInvalidSchedule()
	ObserveRun(trigger string, d time.Duration)
}

// IDGenerator генератор идентификаторов бронирований
type IDGenerator interface {
	NewID() string
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// UUIDGenerator выдаёт случайные UUID v4
type UUIDGenerator struct{}

// NewID возвращает новый идентификатор
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

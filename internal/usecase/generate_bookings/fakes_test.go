package generate_bookings

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-RecurringService/internal/domain"
	"github.com/m04kA/SMC-RecurringService/internal/integrations/pricing"
	bookingRepo "github.com/m04kA/SMC-RecurringService/internal/infra/storage/booking"
	customerRepo "github.com/m04kA/SMC-RecurringService/internal/infra/storage/customer"
	scheduleRepo "github.com/m04kA/SMC-RecurringService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-RecurringService/pkg/types"
)

// memoryStore хранилище в памяти с теми же гарантиями, что и postgres:
// уникальность (schedule, date) и атомарность пакетной вставки
type memoryStore struct {
	mu sync.Mutex

	schedules map[int64]*domain.RecurringSchedule
	customers map[int64]*domain.Customer
	bookings  []*domain.Booking

	insertErrors map[int64]error // schedule_id -> ошибка вставки
	listErr      error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		schedules:    make(map[int64]*domain.RecurringSchedule),
		customers:    make(map[int64]*domain.Customer),
		insertErrors: make(map[int64]error),
	}
}

func (s *memoryStore) addSchedule(schedule *domain.RecurringSchedule) {
	s.schedules[schedule.ID] = schedule
}

func (s *memoryStore) addCustomer(customer *domain.Customer) {
	s.customers[customer.ID] = customer
}

func (s *memoryStore) bookingsOf(scheduleID int64) []*domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*domain.Booking
	for _, b := range s.bookings {
		if b.RecurringScheduleID != nil && *b.RecurringScheduleID == scheduleID {
			result = append(result, b)
		}
	}
	return result
}

type scheduleStore struct{ *memoryStore }

func (s scheduleStore) GetByID(_ context.Context, id int64) (*domain.RecurringSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	schedule, ok := s.schedules[id]
	if !ok {
		return nil, scheduleRepo.ErrScheduleNotFound
	}
	return schedule, nil
}

func (s scheduleStore) ListForGeneration(_ context.Context, month types.MonthYear) ([]*domain.RecurringSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listErr != nil {
		return nil, s.listErr
	}

	var result []*domain.RecurringSchedule
	for _, schedule := range s.schedules {
		if !schedule.IsActive || schedule.IsGeneratedFor(month) || schedule.StartsAfter(month) || schedule.EndsBefore(month) {
			continue
		}
		result = append(result, schedule)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s scheduleStore) UpdateLastGeneratedMonth(_ context.Context, id int64, month types.MonthYear) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	schedule, ok := s.schedules[id]
	if !ok {
		return scheduleRepo.ErrScheduleNotFound
	}
	watermark := month.String()
	schedule.LastGeneratedMonth = &watermark
	return nil
}

type bookingStore struct{ *memoryStore }

func (s bookingStore) CreateBatch(_ context.Context, bookings []*domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(bookings) == 0 {
		return bookingRepo.ErrEmptyBatch
	}

	scheduleID := *bookings[0].RecurringScheduleID
	if err, ok := s.insertErrors[scheduleID]; ok {
		return err
	}

	for _, b := range bookings {
		for _, existing := range s.bookings {
			if existing.RecurringScheduleID != nil && *existing.RecurringScheduleID == *b.RecurringScheduleID &&
				existing.BookingDate.Equal(b.BookingDate) {
				return fmt.Errorf("%w: schedule_id=%d date=%s", bookingRepo.ErrDuplicateBooking, scheduleID, b.BookingDate)
			}
		}
	}

	s.bookings = append(s.bookings, bookings...)
	return nil
}

func (s bookingStore) GetBookedDates(_ context.Context, scheduleID int64, candidates []types.Date) ([]types.Date, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[string]struct{}, len(candidates))
	for _, d := range candidates {
		wanted[d.String()] = struct{}{}
	}

	var result []types.Date
	for _, b := range s.bookings {
		if b.RecurringScheduleID == nil || *b.RecurringScheduleID != scheduleID {
			continue
		}
		if _, ok := wanted[b.BookingDate.String()]; ok {
			result = append(result, b.BookingDate)
		}
	}
	return result, nil
}

type customerStore struct{ *memoryStore }

func (s customerStore) GetByID(_ context.Context, id int64) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	customer, ok := s.customers[id]
	if !ok {
		return nil, customerRepo.ErrCustomerNotFound
	}
	return customer, nil
}

// passThroughTx выполняет функцию без транзакции
type passThroughTx struct{}

func (passThroughTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockPricing struct {
	mock.Mock
}

func (m *mockPricing) Calculate(ctx context.Context, params pricing.Request) (*pricing.Breakdown, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.Breakdown), args.Error(1)
}

func defaultBreakdown() *pricing.Breakdown {
	return &pricing.Breakdown{
		Subtotal:          decimal.RequireFromString("480"),
		ServiceFee:        decimal.RequireFromString("50"),
		FrequencyDiscount: decimal.RequireFromString("30"),
		Total:             decimal.RequireFromString("500"),
	}
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

type sequentialIDs struct {
	mu sync.Mutex
	n  int
}

func (g *sequentialIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("booking-%d", g.n)
}

var errDiskFull = errors.New("disk full")

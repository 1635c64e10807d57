package generate_bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RecurringService/internal/domain"
	"github.com/m04kA/SMC-RecurringService/internal/infra/lock"
	"github.com/m04kA/SMC-RecurringService/internal/service/recurrence"
	"github.com/m04kA/SMC-RecurringService/pkg/logger"
	"github.com/m04kA/SMC-RecurringService/pkg/metrics"
	"github.com/m04kA/SMC-RecurringService/pkg/ptr"
	"github.com/m04kA/SMC-RecurringService/pkg/types"
)

var (
	midJanuary  = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	lastJanuary = time.Date(2024, 1, 31, 22, 0, 0, 0, time.UTC)
)

type testEnv struct {
	store   *memoryStore
	pricing *mockPricing
	locker  *lock.LocalLocker
	uc      *UseCase
}

func newTestEnv(now time.Time) *testEnv {
	store := newMemoryStore()
	pricingClient := new(mockPricing)
	locker := lock.NewLocalLocker()
	rules := domain.DefaultGenerationRules()

	uc := NewUseCase(
		scheduleStore{store},
		bookingStore{store},
		customerStore{store},
		recurrence.NewReconciler(bookingStore{store}),
		recurrence.NewSnapshotter(pricingClient, rules),
		passThroughTx{},
		locker,
		metrics.Nop{},
		logger.NewNop(),
		Options{
			Rules:      rules,
			RunTimeout: time.Minute,
			Location:   time.UTC,
			LockTTL:    time.Minute,
		},
	)
	uc.timeProvider = fixedClock{now: now}
	uc.idGenerator = &sequentialIDs{}

	store.addCustomer(&domain.Customer{
		ID:        1,
		FirstName: "Anna",
		LastName:  "Smith",
		Email:     ptr.Ptr("anna@example.com"),
		Phone:     ptr.Ptr("+27820000000"),
	})

	return &testEnv{store: store, pricing: pricingClient, locker: locker, uc: uc}
}

func (e *testEnv) stubPricing() {
	e.pricing.On("Calculate", mock.Anything, mock.Anything).Return(defaultBreakdown(), nil)
}

func weeklySchedule(id int64, weekday int) *domain.RecurringSchedule {
	return &domain.RecurringSchedule{
		ID:            id,
		CustomerID:    1,
		CleanerID:     ptr.Ptr(int64(42)),
		Frequency:     domain.FrequencyWeekly,
		DayOfWeek:     ptr.Ptr(weekday),
		ServiceType:   "standard",
		Bedrooms:      2,
		Bathrooms:     1,
		Extras:        []string{"fridge"},
		AddressLine1:  "12 Long Street",
		AddressSuburb: "Gardens",
		AddressCity:   "Cape Town",
		BookingTime:   "10:00",
		StartDate:     types.MustParseDate("2023-06-01"),
		IsActive:      true,
	}
}

func monthlySchedule(id int64, day int) *domain.RecurringSchedule {
	s := weeklySchedule(id, 0)
	s.Frequency = domain.FrequencyMonthly
	s.DayOfWeek = nil
	s.DayOfMonth = ptr.Ptr(day)
	return s
}

func bookingDates(bookings []*domain.Booking) []string {
	result := make([]string, 0, len(bookings))
	for _, b := range bookings {
		result = append(result, b.BookingDate.String())
	}
	return result
}

func TestGenerate_DefaultsToNextMonth(t *testing.T) {
	env := newTestEnv(midJanuary)
	env.stubPricing()
	env.store.addSchedule(weeklySchedule(1, 1))

	resp, err := env.uc.Generate(context.Background(), &GenerateRequest{ScheduleID: 1, UserID: 100})
	require.NoError(t, err)

	assert.Equal(t, "2024-02", resp.MonthYear.String())
	assert.Equal(t, 4, resp.Generated)
	assert.Equal(t, 0, resp.Skipped)

	bookings := env.store.bookingsOf(1)
	assert.Equal(t, []string{"2024-02-05", "2024-02-12", "2024-02-19", "2024-02-26"}, bookingDates(bookings))

	for _, b := range bookings {
		assert.Equal(t, domain.StatusPending, b.Status)
		assert.Equal(t, "Anna Smith", b.CustomerName)
		assert.Equal(t, ptr.Ptr("anna@example.com"), b.CustomerEmail)
		assert.Equal(t, "12 Long Street", b.AddressLine1)
		assert.Equal(t, types.TimeString("10:00"), b.BookingTime)
		require.NotNil(t, b.CleanerID)
		assert.Equal(t, int64(42), *b.CleanerID)
		assert.False(t, b.RequiresTeam)
		require.NotNil(t, b.RecurringScheduleID)
		assert.Equal(t, int64(1), *b.RecurringScheduleID)
	}

	schedule := env.store.schedules[1]
	require.NotNil(t, schedule.LastGeneratedMonth)
	assert.Equal(t, "2024-02", *schedule.LastGeneratedMonth)
}

func TestGenerate_SharesOneSnapshotPerSchedule(t *testing.T) {
	env := newTestEnv(midJanuary)
	env.stubPricing()
	env.store.addSchedule(weeklySchedule(1, 1))

	_, err := env.uc.Generate(context.Background(), &GenerateRequest{ScheduleID: 1})
	require.NoError(t, err)

	bookings := env.store.bookingsOf(1)
	require.Len(t, bookings, 4)

	ids := make(map[string]struct{})
	first := bookings[0].PriceSnapshot
	for _, b := range bookings {
		ids[b.ID] = struct{}{}
		assert.Equal(t, first, b.PriceSnapshot)
		assert.True(t, decimal.RequireFromString("500").Equal(b.TotalAmount))
		require.NotNil(t, b.CleanerEarnings)
		assert.Equal(t, int64(27000), *b.CleanerEarnings)
	}
	assert.Len(t, ids, 4)

	env.pricing.AssertNumberOfCalls(t, "Calculate", 1)
}

func TestGenerate_IsIdempotent(t *testing.T) {
	env := newTestEnv(midJanuary)
	env.stubPricing()
	env.store.addSchedule(weeklySchedule(1, 1))

	req := &GenerateRequest{ScheduleID: 1, Year: ptr.Ptr(2024), Month: ptr.Ptr(2)}

	first, err := env.uc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 4, first.Generated)

	// Повтор при выставленном watermark - пропуск
	second, err := env.uc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Generated)
	assert.Equal(t, SkipAlreadyGenerated, second.SkipReason)

	// Watermark сброшен вручную - дубликаты отсекает сверка
	env.store.schedules[1].LastGeneratedMonth = nil
	third, err := env.uc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0, third.Generated)
	assert.Equal(t, 4, third.Skipped)
	assert.Equal(t, "2024-02", *env.store.schedules[1].LastGeneratedMonth)

	assert.Len(t, env.store.bookingsOf(1), 4)
}

func TestGenerate_FillsGapsAfterPartialRun(t *testing.T) {
	env := newTestEnv(midJanuary)
	env.stubPricing()
	env.store.addSchedule(weeklySchedule(1, 1))

	scheduleID := int64(1)
	for _, d := range []string{"2024-02-05", "2024-02-12"} {
		env.store.bookings = append(env.store.bookings, &domain.Booking{
			ID:                  "existing-" + d,
			BookingDate:         types.MustParseDate(d),
			RecurringScheduleID: &scheduleID,
		})
	}

	resp, err := env.uc.Generate(context.Background(), &GenerateRequest{ScheduleID: 1})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Generated)
	assert.Equal(t, 2, resp.Skipped)
	assert.Equal(t, []types.Date{types.MustParseDate("2024-02-19"), types.MustParseDate("2024-02-26")}, resp.Dates)
	assert.Len(t, env.store.bookingsOf(1), 4)
}

func TestGenerate_RespectsScheduleWindow(t *testing.T) {
	env := newTestEnv(midJanuary)
	env.stubPricing()

	schedule := weeklySchedule(1, 1)
	schedule.StartDate = types.MustParseDate("2024-02-10")
	schedule.EndDate = ptr.Ptr(types.MustParseDate("2024-02-20"))
	env.store.addSchedule(schedule)

	resp, err := env.uc.Generate(context.Background(), &GenerateRequest{ScheduleID: 1})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Generated)
	assert.Equal(t, 2, resp.Skipped)
	assert.Equal(t, []string{"2024-02-12", "2024-02-19"}, bookingDates(env.store.bookingsOf(1)))
}

func TestGenerate_TeamServiceDropsCleaner(t *testing.T) {
	env := newTestEnv(midJanuary)
	env.stubPricing()

	schedule := monthlySchedule(1, 15)
	schedule.ServiceType = "Deep-Cleaning"
	env.store.addSchedule(schedule)

	_, err := env.uc.Generate(context.Background(), &GenerateRequest{ScheduleID: 1})
	require.NoError(t, err)

	bookings := env.store.bookingsOf(1)
	require.Len(t, bookings, 1)
	assert.True(t, bookings[0].RequiresTeam)
	assert.Nil(t, bookings[0].CleanerID)
}

func TestGenerate_DefaultBookingTime(t *testing.T) {
	env := newTestEnv(midJanuary)
	env.stubPricing()

	schedule := monthlySchedule(1, 15)
	schedule.BookingTime = ""
	env.store.addSchedule(schedule)

	_, err := env.uc.Generate(context.Background(), &GenerateRequest{ScheduleID: 1})
	require.NoError(t, err)

	bookings := env.store.bookingsOf(1)
	require.Len(t, bookings, 1)
	assert.Equal(t, types.TimeString(domain.DefaultBookingTime), bookings[0].BookingTime)
}

func TestGenerate_ManualPriceSkipsPricing(t *testing.T) {
	env := newTestEnv(midJanuary)

	schedule := monthlySchedule(1, 31)
	schedule.TotalAmount = ptr.Ptr(decimal.RequireFromString("750"))
	schedule.CleanerEarnings = ptr.Ptr(int64(40000))
	env.store.addSchedule(schedule)

	resp, err := env.uc.Generate(context.Background(), &GenerateRequest{ScheduleID: 1})
	require.NoError(t, err)
	assert.Equal(t, []types.Date{types.MustParseDate("2024-02-29")}, resp.Dates)

	bookings := env.store.bookingsOf(1)
	require.Len(t, bookings, 1)
	assert.True(t, bookings[0].PriceSnapshot.ManualPrice)
	assert.True(t, decimal.RequireFromString("750").Equal(bookings[0].TotalAmount))
	assert.Equal(t, int64(40000), *bookings[0].CleanerEarnings)
	env.pricing.AssertNotCalled(t, "Calculate", mock.Anything, mock.Anything)
}

func TestGenerate_MalformedScheduleAdvancesWatermark(t *testing.T) {
	env := newTestEnv(midJanuary)

	schedule := weeklySchedule(1, 1)
	schedule.DayOfWeek = nil
	env.store.addSchedule(schedule)

	resp, err := env.uc.Generate(context.Background(), &GenerateRequest{ScheduleID: 1})
	require.NoError(t, err)

	assert.Equal(t, 0, resp.Generated)
	assert.NotEmpty(t, resp.Warning)
	assert.Equal(t, "2024-02", *env.store.schedules[1].LastGeneratedMonth)
	env.pricing.AssertNotCalled(t, "Calculate", mock.Anything, mock.Anything)
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(env *testEnv)
		req     *GenerateRequest
		wantErr error
	}{
		{
			name:    "schedule not found",
			setup:   func(env *testEnv) {},
			req:     &GenerateRequest{ScheduleID: 404},
			wantErr: ErrScheduleNotFound,
		},
		{
			name: "schedule inactive",
			setup: func(env *testEnv) {
				s := weeklySchedule(1, 1)
				s.IsActive = false
				env.store.addSchedule(s)
			},
			req:     &GenerateRequest{ScheduleID: 1},
			wantErr: ErrScheduleInactive,
		},
		{
			name:    "month out of range",
			setup:   func(env *testEnv) { env.store.addSchedule(weeklySchedule(1, 1)) },
			req:     &GenerateRequest{ScheduleID: 1, Year: ptr.Ptr(2024), Month: ptr.Ptr(13)},
			wantErr: ErrInvalidMonth,
		},
		{
			name:    "year without month",
			setup:   func(env *testEnv) { env.store.addSchedule(weeklySchedule(1, 1)) },
			req:     &GenerateRequest{ScheduleID: 1, Year: ptr.Ptr(2024)},
			wantErr: ErrInvalidMonth,
		},
		{
			name: "customer missing",
			setup: func(env *testEnv) {
				s := weeklySchedule(1, 1)
				s.CustomerID = 99
				env.store.addSchedule(s)
			},
			req:     &GenerateRequest{ScheduleID: 1},
			wantErr: ErrCustomerNotFound,
		},
		{
			name: "pricing failure",
			setup: func(env *testEnv) {
				env.store.addSchedule(weeklySchedule(1, 1))
				env.pricing.On("Calculate", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))
			},
			req:     &GenerateRequest{ScheduleID: 1},
			wantErr: ErrPricing,
		},
		{
			name: "insert failure",
			setup: func(env *testEnv) {
				env.stubPricing()
				env.store.addSchedule(weeklySchedule(1, 1))
				env.store.insertErrors[1] = errDiskFull
			},
			req:     &GenerateRequest{ScheduleID: 1},
			wantErr: ErrPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(midJanuary)
			tt.setup(env)

			_, err := env.uc.Generate(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)

			if s, ok := env.store.schedules[1]; ok {
				assert.Nil(t, s.LastGeneratedMonth)
			}
		})
	}
}

func TestRunMonthly_IsolatesScheduleErrors(t *testing.T) {
	env := newTestEnv(lastJanuary)
	env.stubPricing()

	env.store.addSchedule(weeklySchedule(1, 1))
	broken := weeklySchedule(2, 3)
	broken.CustomerID = 99
	env.store.addSchedule(broken)
	env.store.addSchedule(monthlySchedule(3, 15))

	report, err := env.uc.RunMonthly(context.Background(), &RunRequest{})
	require.NoError(t, err)

	assert.True(t, report.Ran)
	assert.Equal(t, "2024-02", report.MonthYear.String())
	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 5, report.Generated)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, int64(2), report.Errors[0].ScheduleID)
	assert.Empty(t, report.NotProcessed)

	assert.Len(t, env.store.bookingsOf(1), 4)
	assert.Empty(t, env.store.bookingsOf(2))
	assert.Len(t, env.store.bookingsOf(3), 1)

	assert.Equal(t, "2024-02", *env.store.schedules[1].LastGeneratedMonth)
	assert.Nil(t, env.store.schedules[2].LastGeneratedMonth)
	assert.Equal(t, "2024-02", *env.store.schedules[3].LastGeneratedMonth)
}

func TestRunMonthly_InsertFailureKeepsWatermark(t *testing.T) {
	env := newTestEnv(lastJanuary)
	env.stubPricing()

	env.store.addSchedule(weeklySchedule(1, 1))
	env.store.addSchedule(monthlySchedule(2, 15))
	env.store.insertErrors[1] = errDiskFull

	report, err := env.uc.RunMonthly(context.Background(), &RunRequest{})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 1, report.Generated)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0].Reason, "disk full")
	assert.Nil(t, env.store.schedules[1].LastGeneratedMonth)

	// Следующий прогон подхватывает расписание с сохранённым watermark
	delete(env.store.insertErrors, 1)
	report, err = env.uc.RunMonthly(context.Background(), &RunRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 4, report.Generated)
	assert.Empty(t, report.Errors)
}

func TestRunMonthly_OnlyOnLastDayOfMonth(t *testing.T) {
	env := newTestEnv(time.Date(2024, 1, 30, 22, 0, 0, 0, time.UTC))
	env.stubPricing()
	env.store.addSchedule(weeklySchedule(1, 1))

	report, err := env.uc.RunMonthly(context.Background(), &RunRequest{})
	require.NoError(t, err)
	assert.False(t, report.Ran)
	assert.Equal(t, 0, report.Processed)
	assert.Empty(t, env.store.bookingsOf(1))

	report, err = env.uc.RunMonthly(context.Background(), &RunRequest{Force: true})
	require.NoError(t, err)
	assert.True(t, report.Ran)
	assert.Equal(t, 4, report.Generated)
}

func TestRunMonthly_ExplicitMonth(t *testing.T) {
	env := newTestEnv(midJanuary)
	env.stubPricing()
	env.store.addSchedule(monthlySchedule(1, 31))

	report, err := env.uc.RunMonthly(context.Background(), &RunRequest{Force: true, Year: ptr.Ptr(2024), Month: ptr.Ptr(4)})
	require.NoError(t, err)
	assert.Equal(t, "2024-04", report.MonthYear.String())
	assert.Equal(t, []string{"2024-04-30"}, bookingDates(env.store.bookingsOf(1)))
}

func TestRunMonthly_LockHeld(t *testing.T) {
	env := newTestEnv(lastJanuary)
	env.store.addSchedule(weeklySchedule(1, 1))

	release, err := env.locker.Acquire(context.Background(), "recurring-bookings:2024-02", time.Minute)
	require.NoError(t, err)
	defer release()

	_, err = env.uc.RunMonthly(context.Background(), &RunRequest{})
	assert.ErrorIs(t, err, ErrRunInProgress)
	assert.Empty(t, env.store.bookingsOf(1))
}

func TestRunMonthly_ListFailure(t *testing.T) {
	env := newTestEnv(lastJanuary)
	env.store.listErr = errors.New("connection refused")

	_, err := env.uc.RunMonthly(context.Background(), &RunRequest{})
	assert.ErrorIs(t, err, ErrPersistence)

	// Блокировка освобождается и после ошибки
	release, err := env.locker.Acquire(context.Background(), "recurring-bookings:2024-02", time.Minute)
	require.NoError(t, err)
	release()
}

func TestRun_ReportsSchedulesNotReachedBeforeDeadline(t *testing.T) {
	env := newTestEnv(lastJanuary)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	env.pricing.On("Calculate", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(defaultBreakdown(), nil).
		Once()

	env.store.addSchedule(weeklySchedule(1, 1))
	env.store.addSchedule(weeklySchedule(2, 2))
	env.store.addSchedule(weeklySchedule(3, 3))

	month, err := types.NewMonthYear(2024, 2)
	require.NoError(t, err)

	report, err := env.uc.Run(ctx, AllActiveForMonth(scheduleStore{env.store}), month, TriggerScheduled)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 4, report.Generated)
	assert.Equal(t, []int64{2, 3}, report.NotProcessed)
	assert.Nil(t, env.store.schedules[2].LastGeneratedMonth)
	assert.Nil(t, env.store.schedules[3].LastGeneratedMonth)
}

func TestRun_SkipsIneligibleSchedules(t *testing.T) {
	env := newTestEnv(lastJanuary)
	env.stubPricing()

	month, err := types.NewMonthYear(2024, 2)
	require.NoError(t, err)

	inactive := weeklySchedule(1, 1)
	inactive.IsActive = false

	generated := weeklySchedule(2, 1)
	generated.LastGeneratedMonth = ptr.Ptr("2024-02")

	future := weeklySchedule(3, 1)
	future.StartDate = types.MustParseDate("2024-03-01")

	ended := weeklySchedule(4, 1)
	ended.EndDate = ptr.Ptr(types.MustParseDate("2024-01-31"))

	for _, s := range []*domain.RecurringSchedule{inactive, generated, future, ended} {
		env.store.addSchedule(s)

		report, err := env.uc.Run(context.Background(), SingleSchedule(s), month, TriggerManual)
		require.NoError(t, err)
		assert.Equal(t, 0, report.Processed)
		assert.Equal(t, 1, report.Skipped)
		require.Len(t, report.Results, 1)
		assert.Equal(t, OutcomeSkipped, report.Results[0].Outcome)
	}

	assert.Empty(t, env.store.bookings)
	env.pricing.AssertNotCalled(t, "Calculate", mock.Anything, mock.Anything)
}

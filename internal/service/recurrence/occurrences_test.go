package recurrence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RecurringService/internal/domain"
	"github.com/m04kA/SMC-RecurringService/pkg/ptr"
	"github.com/m04kA/SMC-RecurringService/pkg/types"
)

func mustMonth(t *testing.T, s string) types.MonthYear {
	t.Helper()
	m, err := types.ParseMonthYear(s)
	require.NoError(t, err)
	return m
}

func mustDates(values ...string) []types.Date {
	result := make([]types.Date, 0, len(values))
	for _, v := range values {
		result = append(result, types.MustParseDate(v))
	}
	return result
}

func TestCalculateOccurrences(t *testing.T) {
	tests := []struct {
		name     string
		schedule *domain.RecurringSchedule
		month    string
		want     []types.Date
	}{
		{
			name: "weekly mondays",
			schedule: &domain.RecurringSchedule{
				Frequency: domain.FrequencyWeekly,
				DayOfWeek: ptr.Ptr(1),
				StartDate: types.MustParseDate("2023-06-01"),
			},
			month: "2024-01",
			want:  mustDates("2024-01-01", "2024-01-08", "2024-01-15", "2024-01-22", "2024-01-29"),
		},
		{
			name: "weekly sunday",
			schedule: &domain.RecurringSchedule{
				Frequency: domain.FrequencyWeekly,
				DayOfWeek: ptr.Ptr(0),
				StartDate: types.MustParseDate("2023-06-01"),
			},
			month: "2024-02",
			want:  mustDates("2024-02-04", "2024-02-11", "2024-02-18", "2024-02-25"),
		},
		{
			name: "monthly clamps to leap february",
			schedule: &domain.RecurringSchedule{
				Frequency:  domain.FrequencyMonthly,
				DayOfMonth: ptr.Ptr(31),
				StartDate:  types.MustParseDate("2023-01-01"),
			},
			month: "2024-02",
			want:  mustDates("2024-02-29"),
		},
		{
			name: "monthly clamps to short february",
			schedule: &domain.RecurringSchedule{
				Frequency:  domain.FrequencyMonthly,
				DayOfMonth: ptr.Ptr(31),
				StartDate:  types.MustParseDate("2022-01-01"),
			},
			month: "2023-02",
			want:  mustDates("2023-02-28"),
		},
		{
			name: "monthly clamps to thirty days",
			schedule: &domain.RecurringSchedule{
				Frequency:  domain.FrequencyMonthly,
				DayOfMonth: ptr.Ptr(31),
				StartDate:  types.MustParseDate("2023-01-01"),
			},
			month: "2024-04",
			want:  mustDates("2024-04-30"),
		},
		{
			name: "bi-weekly first month",
			schedule: &domain.RecurringSchedule{
				Frequency: domain.FrequencyBiWeekly,
				DayOfWeek: ptr.Ptr(3),
				StartDate: types.MustParseDate("2024-01-03"),
			},
			month: "2024-01",
			want:  mustDates("2024-01-03", "2024-01-17", "2024-01-31"),
		},
		{
			name: "bi-weekly keeps phase into next month",
			schedule: &domain.RecurringSchedule{
				Frequency: domain.FrequencyBiWeekly,
				DayOfWeek: ptr.Ptr(3),
				StartDate: types.MustParseDate("2024-01-03"),
			},
			month: "2024-02",
			want:  mustDates("2024-02-14", "2024-02-28"),
		},
		{
			name: "bi-weekly anchor moves to first matching weekday",
			schedule: &domain.RecurringSchedule{
				Frequency: domain.FrequencyBiWeekly,
				DayOfWeek: ptr.Ptr(3),
				StartDate: types.MustParseDate("2024-01-01"),
			},
			month: "2024-01",
			want:  mustDates("2024-01-03", "2024-01-17", "2024-01-31"),
		},
		{
			name: "bi-weekly keeps phase across years",
			schedule: &domain.RecurringSchedule{
				Frequency: domain.FrequencyBiWeekly,
				DayOfWeek: ptr.Ptr(3),
				StartDate: types.MustParseDate("2020-01-01"),
			},
			month: "2024-01",
			want:  mustDates("2024-01-10", "2024-01-24"),
		},
		{
			name: "bi-weekly anchor after month",
			schedule: &domain.RecurringSchedule{
				Frequency: domain.FrequencyBiWeekly,
				DayOfWeek: ptr.Ptr(3),
				StartDate: types.MustParseDate("2024-03-01"),
			},
			month: "2024-02",
			want:  []types.Date{},
		},
		{
			name: "custom weekly union sorted",
			schedule: &domain.RecurringSchedule{
				Frequency:  domain.FrequencyCustomWeekly,
				DaysOfWeek: []int{3, 1},
				StartDate:  types.MustParseDate("2023-06-01"),
			},
			month: "2024-01",
			want: mustDates(
				"2024-01-01", "2024-01-03", "2024-01-08", "2024-01-10", "2024-01-15",
				"2024-01-17", "2024-01-22", "2024-01-24", "2024-01-29", "2024-01-31",
			),
		},
		{
			name: "custom weekly duplicate days",
			schedule: &domain.RecurringSchedule{
				Frequency:  domain.FrequencyCustomWeekly,
				DaysOfWeek: []int{1, 1},
				StartDate:  types.MustParseDate("2023-06-01"),
			},
			month: "2024-01",
			want:  mustDates("2024-01-01", "2024-01-08", "2024-01-15", "2024-01-22", "2024-01-29"),
		},
		{
			name: "custom bi-weekly anchors each weekday",
			schedule: &domain.RecurringSchedule{
				Frequency:  domain.FrequencyCustomBiWeekly,
				DaysOfWeek: []int{1, 5},
				StartDate:  types.MustParseDate("2024-01-01"),
			},
			month: "2024-01",
			want:  mustDates("2024-01-01", "2024-01-05", "2024-01-15", "2024-01-19", "2024-01-29"),
		},
		{
			name: "weekly without day of week",
			schedule: &domain.RecurringSchedule{
				Frequency: domain.FrequencyWeekly,
				StartDate: types.MustParseDate("2023-06-01"),
			},
			month: "2024-01",
			want:  []types.Date{},
		},
		{
			name: "monthly without day of month",
			schedule: &domain.RecurringSchedule{
				Frequency: domain.FrequencyMonthly,
				StartDate: types.MustParseDate("2023-06-01"),
			},
			month: "2024-01",
			want:  []types.Date{},
		},
		{
			name: "custom weekly with empty days",
			schedule: &domain.RecurringSchedule{
				Frequency:  domain.FrequencyCustomWeekly,
				DaysOfWeek: []int{},
				StartDate:  types.MustParseDate("2023-06-01"),
			},
			month: "2024-01",
			want:  []types.Date{},
		},
		{
			name: "unknown frequency",
			schedule: &domain.RecurringSchedule{
				Frequency: domain.Frequency("daily"),
				DayOfWeek: ptr.Ptr(1),
				StartDate: types.MustParseDate("2023-06-01"),
			},
			month: "2024-01",
			want:  []types.Date{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateOccurrences(tt.schedule, mustMonth(t, tt.month))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculateOccurrences_IgnoresWindow(t *testing.T) {
	schedule := &domain.RecurringSchedule{
		Frequency: domain.FrequencyWeekly,
		DayOfWeek: ptr.Ptr(1),
		StartDate: types.MustParseDate("2024-01-10"),
		EndDate:   ptr.Ptr(types.MustParseDate("2024-01-25")),
	}

	all := CalculateOccurrences(schedule, mustMonth(t, "2024-01"))
	require.Len(t, all, 5)

	inWindow := ApplyWindow(schedule, all)
	assert.Equal(t, mustDates("2024-01-15", "2024-01-22"), inWindow)
}

func TestApplyWindow_InclusiveBounds(t *testing.T) {
	schedule := &domain.RecurringSchedule{
		StartDate: types.MustParseDate("2024-01-08"),
		EndDate:   ptr.Ptr(types.MustParseDate("2024-01-22")),
	}

	got := ApplyWindow(schedule, mustDates("2024-01-01", "2024-01-08", "2024-01-15", "2024-01-22", "2024-01-29"))
	assert.Equal(t, mustDates("2024-01-08", "2024-01-15", "2024-01-22"), got)
}

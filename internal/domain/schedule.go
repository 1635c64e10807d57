package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-RecurringService/pkg/types"
)

// Frequency is the repetition pattern of a recurring schedule
type Frequency string

const (
	FrequencyWeekly         Frequency = "weekly"
	FrequencyBiWeekly       Frequency = "bi-weekly"
	FrequencyMonthly        Frequency = "monthly"
	FrequencyCustomWeekly   Frequency = "custom-weekly"
	FrequencyCustomBiWeekly Frequency = "custom-bi-weekly"
)

// PricingFrequency is the frequency vocabulary understood by the pricing service
type PricingFrequency string

const (
	PricingWeekly   PricingFrequency = "weekly"
	PricingBiWeekly PricingFrequency = "bi-weekly"
	PricingMonthly  PricingFrequency = "monthly"
	PricingOneTime  PricingFrequency = "one-time"
)

// IsValid returns true for a known schedule frequency
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiWeekly, FrequencyMonthly, FrequencyCustomWeekly, FrequencyCustomBiWeekly:
		return true
	default:
		return false
	}
}

// Pricing maps the schedule frequency onto the pricing vocabulary.
// Unknown frequencies are priced as one-time services.
func (f Frequency) Pricing() PricingFrequency {
	switch f {
	case FrequencyWeekly, FrequencyCustomWeekly:
		return PricingWeekly
	case FrequencyBiWeekly, FrequencyCustomBiWeekly:
		return PricingBiWeekly
	case FrequencyMonthly:
		return PricingMonthly
	default:
		return PricingOneTime
	}
}

// RecurringSchedule is a customer's standing order for periodic cleaning
type RecurringSchedule struct {
	ID         int64
	CustomerID int64
	CleanerID  *int64 // NULL = not assigned

	// Pattern
	Frequency  Frequency
	DayOfWeek  *int  // 0-6, weekly / bi-weekly
	DayOfMonth *int  // 1-31, monthly
	DaysOfWeek []int // 0-6, custom variants

	// Service
	ServiceType      string
	Bedrooms         int
	Bathrooms        int
	Extras           []string
	ExtrasQuantities map[string]int
	Notes            *string

	// Address
	AddressLine1  string
	AddressSuburb string
	AddressCity   string

	BookingTime types.TimeString

	// Window, both bounds inclusive
	StartDate types.Date
	EndDate   *types.Date

	// Manual pricing override
	TotalAmount     *decimal.Decimal
	CleanerEarnings *int64 // cents

	LastGeneratedMonth *string // "YYYY-MM"
	IsActive           bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPattern returns true when the fields required by the schedule's frequency are present and in range
func (s *RecurringSchedule) HasPattern() bool {
	switch s.Frequency {
	case FrequencyWeekly, FrequencyBiWeekly:
		return s.DayOfWeek != nil && isWeekday(*s.DayOfWeek)
	case FrequencyMonthly:
		return s.DayOfMonth != nil && *s.DayOfMonth >= 1 && *s.DayOfMonth <= 31
	case FrequencyCustomWeekly, FrequencyCustomBiWeekly:
		if len(s.DaysOfWeek) == 0 {
			return false
		}
		for _, d := range s.DaysOfWeek {
			if !isWeekday(d) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// HasPriceOverride returns true when a positive manual total is stored on the schedule
func (s *RecurringSchedule) HasPriceOverride() bool {
	return s.TotalAmount != nil && s.TotalAmount.IsPositive()
}

// IsGeneratedFor returns true if the watermark already points at the month.
// A malformed watermark never matches, so the month is generated and the watermark rewritten.
func (s *RecurringSchedule) IsGeneratedFor(month types.MonthYear) bool {
	if s.LastGeneratedMonth == nil {
		return false
	}
	watermark, err := types.ParseMonthYear(*s.LastGeneratedMonth)
	return err == nil && watermark == month
}

// StartsAfter returns true if the schedule window begins after the month ends
func (s *RecurringSchedule) StartsAfter(month types.MonthYear) bool {
	return s.StartDate.After(month.LastDay())
}

// EndsBefore returns true if the schedule window closes before the month starts
func (s *RecurringSchedule) EndsBefore(month types.MonthYear) bool {
	return s.EndDate != nil && s.EndDate.Before(month.FirstDay())
}

// InWindow returns true if the date lies inside [StartDate, EndDate]
func (s *RecurringSchedule) InWindow(d types.Date) bool {
	if d.Before(s.StartDate) {
		return false
	}
	if s.EndDate != nil && d.After(*s.EndDate) {
		return false
	}
	return true
}

func isWeekday(d int) bool {
	return d >= 0 && d <= 6
}

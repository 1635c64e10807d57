package domain

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-RecurringService/pkg/types"
)

// GenerationRules holds the business constants used while materializing recurring bookings
type GenerationRules struct {
	ServiceFee            decimal.Decimal // fixed fee added on top of the subtotal
	CleanerCommissionRate decimal.Decimal // share of (total - fee) paid to the cleaner
	TeamServiceTypes      []string        // service types assigned to a team instead of a cleaner
	DefaultBookingTime    types.TimeString
}

// DefaultGenerationRules returns the rules used when config.toml does not override them
func DefaultGenerationRules() GenerationRules {
	return GenerationRules{
		ServiceFee:            decimal.RequireFromString(DefaultServiceFee),
		CleanerCommissionRate: decimal.RequireFromString(DefaultCleanerCommissionRate),
		TeamServiceTypes:      append([]string(nil), DefaultTeamServiceTypes...),
		DefaultBookingTime:    types.TimeString(DefaultBookingTime),
	}
}

// RequiresTeam returns true if the service type is performed by a team
func (r GenerationRules) RequiresTeam(serviceType string) bool {
	for _, t := range r.TeamServiceTypes {
		if strings.EqualFold(t, serviceType) {
			return true
		}
	}
	return false
}

// CleanerEarnings returns round((total - serviceFee) * rate * 100) in cents
func (r GenerationRules) CleanerEarnings(total, serviceFee decimal.Decimal) int64 {
	return total.Sub(serviceFee).Mul(r.CleanerCommissionRate).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

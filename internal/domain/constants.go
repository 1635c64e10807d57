package domain

// Default business rules, overridable through [generation] in config.toml
const (
	DefaultServiceFee            = "50.00"
	DefaultCleanerCommissionRate = "0.60"
	DefaultBookingTime           = "09:00"
	DefaultRunTimeoutSeconds     = 240
)

// DefaultTeamServiceTypes service types that are always handled by a team, not a single cleaner
var DefaultTeamServiceTypes = []string{
	"deep-cleaning",
	"move-in-out",
}

// Validation limits
const (
	MinGenerationYear = 2000
	MaxGenerationYear = 2100
)

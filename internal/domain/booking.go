package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-RecurringService/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
)

// Booking is one concrete scheduled visit.
// Service, customer and address fields are copied at generation time so later schedule edits
// never change already generated bookings.
type Booking struct {
	ID string

	CustomerID    int64
	CustomerName  string
	CustomerEmail *string
	CustomerPhone *string

	CleanerID    *int64
	RequiresTeam bool

	ServiceType      string
	Bedrooms         int
	Bathrooms        int
	Extras           []string
	ExtrasQuantities map[string]int
	Notes            *string

	AddressLine1  string
	AddressSuburb string
	AddressCity   string

	BookingDate types.Date
	BookingTime types.TimeString
	Frequency   Frequency
	Status      BookingStatus

	TotalAmount     decimal.Decimal
	ServiceFee      decimal.Decimal
	CleanerEarnings *int64 // cents
	PriceSnapshot   PriceSnapshot

	RecurringScheduleID *int64 // NULL for one-time bookings

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PriceSnapshot is the immutable pricing record attached to a booking at creation time
type PriceSnapshot struct {
	ServiceType      string           `json:"service_type"`
	Bedrooms         int              `json:"bedrooms"`
	Bathrooms        int              `json:"bathrooms"`
	Extras           []string         `json:"extras"`
	ExtrasQuantities map[string]int   `json:"extras_quantities,omitempty"`
	Frequency        PricingFrequency `json:"frequency"`

	Subtotal          decimal.Decimal `json:"subtotal"`
	ServiceFee        decimal.Decimal `json:"service_fee"`
	FrequencyDiscount decimal.Decimal `json:"frequency_discount"`
	Total             decimal.Decimal `json:"total"`
	CleanerEarnings   *int64          `json:"cleaner_earnings,omitempty"` // cents

	ManualPrice bool      `json:"manual_price"`
	SnapshotAt  time.Time `json:"snapshot_at"`
}

// Value stores the snapshot as jsonb text
func (p PriceSnapshot) Value() (driver.Value, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan reads the snapshot from jsonb
func (p *PriceSnapshot) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*p = PriceSnapshot{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("%w: cannot scan %T into PriceSnapshot", ErrInvalidSnapshot, value)
	}
	return json.Unmarshal(raw, p)
}

// ErrInvalidSnapshot is returned when a stored price snapshot cannot be decoded
var ErrInvalidSnapshot = errors.New("domain: invalid price snapshot")

// ScheduleBookingsFilter filters materialized bookings of one schedule
type ScheduleBookingsFilter struct {
	ScheduleID int64       // required
	From       *types.Date // inclusive, optional
	To         *types.Date // inclusive, optional
	Status     *BookingStatus
}

// IsValid returns true for a known booking status
func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

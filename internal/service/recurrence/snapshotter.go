package recurrence

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-RecurringService/internal/domain"
	"github.com/m04kA/SMC-RecurringService/internal/integrations/pricing"
)

// Snapshotter считает цену одного визита по расписанию.
// Снимок считается один раз на расписание и месяц и копируется во все бронирования пакета.
type Snapshotter struct {
	pricing PricingClient
	rules   domain.GenerationRules
	now     Clock
}

// NewSnapshotter создает новый экземпляр Snapshotter
func NewSnapshotter(pricingClient PricingClient, rules domain.GenerationRules) *Snapshotter {
	return &Snapshotter{
		pricing: pricingClient,
		rules:   rules,
		now:     time.Now,
	}
}

// ComputeSnapshot возвращает снимок цены.
// При ручной цене на расписании сервис цен не вызывается.
func (s *Snapshotter) ComputeSnapshot(ctx context.Context, schedule *domain.RecurringSchedule) (*domain.PriceSnapshot, error) {
	snapshot := &domain.PriceSnapshot{
		ServiceType:      schedule.ServiceType,
		Bedrooms:         schedule.Bedrooms,
		Bathrooms:        schedule.Bathrooms,
		Extras:           copyExtras(schedule.Extras),
		ExtrasQuantities: copyQuantities(schedule.ExtrasQuantities),
		Frequency:        schedule.Frequency.Pricing(),
		SnapshotAt:       s.now().UTC(),
	}

	if schedule.HasPriceOverride() {
		total := *schedule.TotalAmount
		snapshot.ServiceFee = s.rules.ServiceFee
		snapshot.Subtotal = total.Sub(s.rules.ServiceFee)
		snapshot.FrequencyDiscount = decimal.Zero
		snapshot.Total = total
		snapshot.ManualPrice = true
		if schedule.CleanerEarnings != nil {
			earnings := *schedule.CleanerEarnings
			snapshot.CleanerEarnings = &earnings
		}
		return snapshot, nil
	}

	breakdown, err := s.pricing.Calculate(ctx, pricing.Request{
		ServiceType:      schedule.ServiceType,
		Bedrooms:         schedule.Bedrooms,
		Bathrooms:        schedule.Bathrooms,
		Extras:           snapshot.Extras,
		ExtrasQuantities: snapshot.ExtrasQuantities,
		Frequency:        string(snapshot.Frequency),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: schedule_id=%d: %v", ErrPricing, schedule.ID, err)
	}

	earnings := s.rules.CleanerEarnings(breakdown.Total, breakdown.ServiceFee)

	snapshot.Subtotal = breakdown.Subtotal
	snapshot.ServiceFee = breakdown.ServiceFee
	snapshot.FrequencyDiscount = breakdown.FrequencyDiscount
	snapshot.Total = breakdown.Total
	snapshot.CleanerEarnings = &earnings
	snapshot.ManualPrice = false

	return snapshot, nil
}

func copyExtras(extras []string) []string {
	if extras == nil {
		return []string{}
	}
	return append([]string(nil), extras...)
}

func copyQuantities(q map[string]int) map[string]int {
	if len(q) == 0 {
		return nil
	}
	result := make(map[string]int, len(q))
	for k, v := range q {
		result[k] = v
	}
	return result
}

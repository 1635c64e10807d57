package pricing

import "github.com/shopspring/decimal"

// Request параметры услуги для расчёта цены
type Request struct {
	ServiceType      string         `json:"serviceType"`
	Bedrooms         int            `json:"bedrooms"`
	Bathrooms        int            `json:"bathrooms"`
	Extras           []string       `json:"extras"`
	ExtrasQuantities map[string]int `json:"extrasQuantities,omitempty"`
	Frequency        string         `json:"frequency"` // weekly, bi-weekly, monthly, one-time
}

// Breakdown результат расчёта цены
type Breakdown struct {
	Subtotal          decimal.Decimal `json:"subtotal"`
	ServiceFee        decimal.Decimal `json:"serviceFee"`
	FrequencyDiscount decimal.Decimal `json:"frequencyDiscount"`
	Total             decimal.Decimal `json:"total"`
}

// ErrorResponse модель ошибки от сервиса цен
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

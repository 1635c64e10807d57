package generate_schedule_bookings

import (
	generateBookings "github.com/m04kA/SMC-RecurringService/internal/usecase/generate_bookings"
)

// GenerateRequest HTTP request model (тело необязательно)
type GenerateRequest struct {
	Year  *int `json:"year,omitempty"`
	Month *int `json:"month,omitempty"`
}

// GenerateResponse HTTP response model
type GenerateResponse struct {
	ScheduleID int64    `json:"scheduleId"`
	MonthYear  string   `json:"monthYear"` // "2024-02"
	Generated  int      `json:"generated"`
	Skipped    int      `json:"skipped"`
	Dates      []string `json:"dates"`
	SkipReason string   `json:"skipReason,omitempty"`
	Warning    string   `json:"warning,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *GenerateRequest) ToUseCaseRequest(scheduleID, userID int64) *generateBookings.GenerateRequest {
	return &generateBookings.GenerateRequest{
		ScheduleID: scheduleID,
		UserID:     userID,
		Year:       r.Year,
		Month:      r.Month,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *generateBookings.GenerateResponse) *GenerateResponse {
	dates := make([]string, 0, len(resp.Dates))
	for _, d := range resp.Dates {
		dates = append(dates, d.String())
	}

	return &GenerateResponse{
		ScheduleID: resp.ScheduleID,
		MonthYear:  resp.MonthYear.String(),
		Generated:  resp.Generated,
		Skipped:    resp.Skipped,
		Dates:      dates,
		SkipReason: string(resp.SkipReason),
		Warning:    resp.Warning,
	}
}

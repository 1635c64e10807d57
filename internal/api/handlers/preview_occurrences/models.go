package preview_occurrences

import (
	previewOccurrences "github.com/m04kA/SMC-RecurringService/internal/usecase/preview_occurrences"
)

// OccurrenceResponse одна дата по шаблону расписания
type OccurrenceResponse struct {
	Date             string `json:"date"` // "2024-02-05"
	InWindow         bool   `json:"inWindow"`
	AlreadyGenerated bool   `json:"alreadyGenerated"`
}

// PreviewResponse HTTP response model
type PreviewResponse struct {
	ScheduleID         int64                `json:"scheduleId"`
	MonthYear          string               `json:"monthYear"`
	Frequency          string               `json:"frequency"`
	Eligible           bool                 `json:"eligible"`
	SkipReason         string               `json:"skipReason,omitempty"`
	LastGeneratedMonth *string              `json:"lastGeneratedMonth,omitempty"`
	ValidShape         bool                 `json:"validShape"`
	Occurrences        []OccurrenceResponse `json:"occurrences"`
	ToGenerate         int                  `json:"toGenerate"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *previewOccurrences.Response) *PreviewResponse {
	occurrences := make([]OccurrenceResponse, 0, len(resp.Occurrences))
	for _, o := range resp.Occurrences {
		occurrences = append(occurrences, OccurrenceResponse{
			Date:             o.Date.String(),
			InWindow:         o.InWindow,
			AlreadyGenerated: o.AlreadyGenerated,
		})
	}

	return &PreviewResponse{
		ScheduleID:         resp.ScheduleID,
		MonthYear:          resp.MonthYear.String(),
		Frequency:          resp.Frequency,
		Eligible:           resp.Eligible,
		SkipReason:         resp.SkipReason,
		LastGeneratedMonth: resp.Watermark,
		ValidShape:         resp.ValidShape,
		Occurrences:        occurrences,
		ToGenerate:         resp.ToGenerate,
	}
}

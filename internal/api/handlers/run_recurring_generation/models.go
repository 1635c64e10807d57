package run_recurring_generation

import (
	"time"

	generateBookings "github.com/m04kA/SMC-RecurringService/internal/usecase/generate_bookings"
)

// ScheduleErrorResponse ошибка по одному расписанию
type ScheduleErrorResponse struct {
	ScheduleID int64  `json:"scheduleId"`
	MonthYear  string `json:"monthYear"`
	Reason     string `json:"reason"`
}

// RunResponse итог прогона генерации
type RunResponse struct {
	Ran          bool                    `json:"ran"`
	Message      string                  `json:"message,omitempty"`
	MonthYear    string                  `json:"monthYear"`
	Trigger      string                  `json:"trigger"`
	Processed    int                     `json:"processed"`
	Generated    int                     `json:"generated"`
	Skipped      int                     `json:"skipped"`
	Errors       []ScheduleErrorResponse `json:"errors"`
	Warnings     []string                `json:"warnings"`
	NotProcessed []int64                 `json:"notProcessed,omitempty"`
	StartedAt    *time.Time              `json:"startedAt,omitempty"`
	FinishedAt   *time.Time              `json:"finishedAt,omitempty"`
}

// FromUseCaseReport конвертирует отчёт use case в HTTP response
func FromUseCaseReport(report *generateBookings.RunReport) *RunResponse {
	resp := &RunResponse{
		Ran:          report.Ran,
		Message:      report.SkipNote,
		MonthYear:    report.MonthYear.String(),
		Trigger:      string(report.Trigger),
		Processed:    report.Processed,
		Generated:    report.Generated,
		Skipped:      report.Skipped,
		Errors:       make([]ScheduleErrorResponse, 0, len(report.Errors)),
		Warnings:     report.Warnings,
		NotProcessed: report.NotProcessed,
	}

	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}

	for _, e := range report.Errors {
		resp.Errors = append(resp.Errors, ScheduleErrorResponse{
			ScheduleID: e.ScheduleID,
			MonthYear:  e.MonthYear.String(),
			Reason:     e.Reason,
		})
	}

	if !report.StartedAt.IsZero() {
		startedAt := report.StartedAt
		resp.StartedAt = &startedAt
	}
	if !report.FinishedAt.IsZero() {
		finishedAt := report.FinishedAt
		resp.FinishedAt = &finishedAt
	}

	return resp
}

package generate_bookings

import (
	"time"

	"github.com/m04kA/SMC-RecurringService/internal/service/recurrence"
	"github.com/m04kA/SMC-RecurringService/pkg/types"
)

// Trigger источник запуска генерации
type Trigger string

const (
	TriggerManual    Trigger = "manual"
	TriggerScheduled Trigger = "scheduled"
)

// Outcome итог обработки одного расписания
type Outcome string

const (
	OutcomeGenerated Outcome = "generated" // watermark сдвинут, generated может быть 0
	OutcomeSkipped   Outcome = "skipped"   // не прошло проверку допуска
	OutcomeFailed    Outcome = "failed"    // ошибка, watermark не тронут
)

// SkipReason причина пропуска расписания
type SkipReason = recurrence.SkipReason

const (
	SkipInactive         = recurrence.SkipInactive
	SkipAlreadyGenerated = recurrence.SkipAlreadyGenerated
	SkipNotStarted       = recurrence.SkipNotStarted
	SkipEnded            = recurrence.SkipEnded
)

// GenerateRequest модель запроса ручной генерации по одному расписанию
type GenerateRequest struct {
	ScheduleID int64 // ID расписания
	UserID     int64 // ID администратора (для логов)
	Year       *int  // Год (опционально, по умолчанию следующий месяц)
	Month      *int  // Месяц 1-12 (опционально)
}

// GenerateResponse результат ручной генерации
type GenerateResponse struct {
	ScheduleID int64
	MonthYear  types.MonthYear
	Generated  int
	Skipped    int
	Dates      []types.Date
	SkipReason SkipReason // пусто, если расписание обработано
	Warning    string
}

// RunRequest модель запроса плановой генерации
type RunRequest struct {
	Force bool // игнорировать проверку последнего дня месяца
	Year  *int // Год (опционально, только вместе с Month)
	Month *int // Месяц 1-12 (опционально)
}

// ScheduleResult итог обработки одного расписания в прогоне
type ScheduleResult struct {
	ScheduleID int64
	MonthYear  types.MonthYear
	Outcome    Outcome
	SkipReason SkipReason
	Generated  int          // создано бронирований
	Skipped    int          // дат отброшено окном или уже существующими бронированиями
	Dates      []types.Date // даты созданных бронирований
	Warning    string
	Err        error
}

// ScheduleError ошибка обработки одного расписания
type ScheduleError struct {
	ScheduleID int64
	MonthYear  types.MonthYear
	Reason     string
}

// RunReport итог прогона по набору расписаний
type RunReport struct {
	MonthYear types.MonthYear
	Trigger   Trigger

	Ran       bool   // false, если прогон не выполнялся (не последний день месяца)
	SkipNote  string // почему прогон не выполнялся
	Processed int    // расписания, прошедшие проверку допуска (включая упавшие)
	Generated int    // всего создано бронирований
	Skipped   int    // расписания, отсеянные проверкой допуска

	Errors       []ScheduleError
	Warnings     []string
	NotProcessed []int64 // расписания, до которых прогон не дошёл до дедлайна

	Results []ScheduleResult

	StartedAt  time.Time
	FinishedAt time.Time
}

package run_recurring_generation

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-RecurringService/internal/api/handlers"
	generateBookings "github.com/m04kA/SMC-RecurringService/internal/usecase/generate_bookings"
)

const (
	msgInvalidForce   = "некорректный параметр force, ожидается true или false"
	msgInvalidYear    = "некорректный параметр year"
	msgInvalidMonth   = "некорректный месяц генерации, ожидаются year и month (1-12)"
	msgRunInProgress  = "генерация уже выполняется"
	msgRunPersistence = "не удалось получить список расписаний"
)

type Handler struct {
	useCase RunMonthlyUseCase
	logger  Logger
}

func NewHandler(useCase RunMonthlyUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET|POST /api/v1/jobs/recurring-bookings?force=true&year=2024&month=2
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &generateBookings.RunRequest{}

	if raw := query.Get("force"); raw != "" {
		force, err := strconv.ParseBool(raw)
		if err != nil {
			h.logger.Warn("%s /jobs/recurring-bookings - Invalid force: %q", r.Method, raw)
			handlers.RespondBadRequest(w, msgInvalidForce)
			return
		}
		req.Force = force
	}

	if raw := query.Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			h.logger.Warn("%s /jobs/recurring-bookings - Invalid year: %q", r.Method, raw)
			handlers.RespondBadRequest(w, msgInvalidYear)
			return
		}
		req.Year = &year
	}

	if raw := query.Get("month"); raw != "" {
		month, err := strconv.Atoi(raw)
		if err != nil {
			h.logger.Warn("%s /jobs/recurring-bookings - Invalid month: %q", r.Method, raw)
			handlers.RespondBadRequest(w, msgInvalidMonth)
			return
		}
		req.Month = &month
	}

	report, err := h.useCase.RunMonthly(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, generateBookings.ErrInvalidMonth):
			h.logger.Warn("%s /jobs/recurring-bookings - Invalid month: %v", r.Method, err)
			handlers.RespondBadRequest(w, msgInvalidMonth)

		case errors.Is(err, generateBookings.ErrRunInProgress):
			h.logger.Warn("%s /jobs/recurring-bookings - Run already in progress", r.Method)
			handlers.RespondConflict(w, msgRunInProgress)

		case errors.Is(err, generateBookings.ErrPersistence):
			h.logger.Error("%s /jobs/recurring-bookings - Failed to list schedules: %v", r.Method, err)
			handlers.RespondError(w, http.StatusInternalServerError, msgRunPersistence)

		default:
			h.logger.Error("%s /jobs/recurring-bookings - Run failed: %v", r.Method, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	if !report.Ran {
		h.logger.Info("%s /jobs/recurring-bookings - Skipped: %s", r.Method, report.SkipNote)
	} else {
		h.logger.Info("%s /jobs/recurring-bookings - Done: month=%s, processed=%d, generated=%d, errors=%d, not_processed=%d",
			r.Method, report.MonthYear, report.Processed, report.Generated, len(report.Errors), len(report.NotProcessed))
	}

	handlers.RespondJSON(w, http.StatusOK, FromUseCaseReport(report))
}

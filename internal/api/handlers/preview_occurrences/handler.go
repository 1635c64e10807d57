package preview_occurrences

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-RecurringService/internal/api/handlers"
	"github.com/m04kA/SMC-RecurringService/internal/api/middleware"
	previewOccurrences "github.com/m04kA/SMC-RecurringService/internal/usecase/preview_occurrences"
)

const (
	msgInvalidScheduleID = "некорректный ID расписания"
	msgInvalidYear       = "некорректный параметр year"
	msgInvalidMonth      = "некорректный месяц, ожидаются year и month (1-12)"
	msgMissingUserID     = "отсутствует ID пользователя"
	msgScheduleNotFound  = "расписание не найдено"
)

type Handler struct {
	useCase PreviewUseCase
	logger  Logger
}

func NewHandler(useCase PreviewUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/recurring-schedules/{scheduleId}/occurrences?year=2024&month=2
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	scheduleID, err := strconv.ParseInt(mux.Vars(r)["scheduleId"], 10, 64)
	if err != nil || scheduleID <= 0 {
		h.logger.Warn("GET /recurring-schedules/{id}/occurrences - Invalid schedule ID: %q", mux.Vars(r)["scheduleId"])
		handlers.RespondBadRequest(w, msgInvalidScheduleID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /recurring-schedules/{id}/occurrences - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	req := &previewOccurrences.Request{ScheduleID: scheduleID, UserID: userID}

	if raw := r.URL.Query().Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			h.logger.Warn("GET /recurring-schedules/{id}/occurrences - Invalid year: %q", raw)
			handlers.RespondBadRequest(w, msgInvalidYear)
			return
		}
		req.Year = &year
	}

	if raw := r.URL.Query().Get("month"); raw != "" {
		month, err := strconv.Atoi(raw)
		if err != nil {
			h.logger.Warn("GET /recurring-schedules/{id}/occurrences - Invalid month: %q", raw)
			handlers.RespondBadRequest(w, msgInvalidMonth)
			return
		}
		req.Month = &month
	}

	result, err := h.useCase.Execute(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, previewOccurrences.ErrScheduleNotFound):
			h.logger.Warn("GET /recurring-schedules/{id}/occurrences - Schedule not found: schedule_id=%d", scheduleID)
			handlers.RespondNotFound(w, msgScheduleNotFound)
		case errors.Is(err, previewOccurrences.ErrInvalidMonth):
			h.logger.Warn("GET /recurring-schedules/{id}/occurrences - Invalid month: %v", err)
			handlers.RespondBadRequest(w, msgInvalidMonth)
		default:
			h.logger.Error("GET /recurring-schedules/{id}/occurrences - Failed to preview: schedule_id=%d, error=%v", scheduleID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /recurring-schedules/{id}/occurrences - Success: schedule_id=%d, month=%s, to_generate=%d",
		scheduleID, result.MonthYear, result.ToGenerate)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}

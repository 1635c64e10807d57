package get_schedule_bookings

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-RecurringService/internal/api/handlers"
	"github.com/m04kA/SMC-RecurringService/internal/api/middleware"
	"github.com/m04kA/SMC-RecurringService/internal/service/schedules"
	"github.com/m04kA/SMC-RecurringService/internal/service/schedules/models"
)

const (
	msgInvalidScheduleID = "некорректный ID расписания"
	msgMissingUserID     = "отсутствует ID пользователя"
	msgInvalidFilter     = "некорректные параметры фильтра (from, to в формате YYYY-MM-DD, status)"
	msgScheduleNotFound  = "расписание не найдено"
)

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/recurring-schedules/{scheduleId}/bookings?from=2024-02-01&to=2024-02-29&status=pending
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	scheduleID, err := strconv.ParseInt(mux.Vars(r)["scheduleId"], 10, 64)
	if err != nil || scheduleID <= 0 {
		h.logger.Warn("GET /recurring-schedules/{id}/bookings - Invalid schedule ID: %q", mux.Vars(r)["scheduleId"])
		handlers.RespondBadRequest(w, msgInvalidScheduleID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /recurring-schedules/{id}/bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	req := &models.GetScheduleBookingsRequest{
		UserID:     userID,
		ScheduleID: scheduleID,
		From:       queryParam(r, "from"),
		To:         queryParam(r, "to"),
		Status:     queryParam(r, "status"),
	}

	result, err := h.service.GetScheduleBookings(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, schedules.ErrInvalidInput):
			h.logger.Warn("GET /recurring-schedules/{id}/bookings - Invalid filter: schedule_id=%d, error=%v", scheduleID, err)
			handlers.RespondBadRequest(w, msgInvalidFilter)
		case errors.Is(err, schedules.ErrScheduleNotFound):
			h.logger.Warn("GET /recurring-schedules/{id}/bookings - Schedule not found: schedule_id=%d", scheduleID)
			handlers.RespondNotFound(w, msgScheduleNotFound)
		default:
			h.logger.Error("GET /recurring-schedules/{id}/bookings - Failed to get bookings: schedule_id=%d, error=%v", scheduleID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /recurring-schedules/{id}/bookings - Success: schedule_id=%d, count=%d", scheduleID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result)
}

func queryParam(r *http.Request, name string) *string {
	value := r.URL.Query().Get(name)
	if value == "" {
		return nil
	}
	return &value
}

package generate_schedule_bookings

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-RecurringService/internal/api/handlers"
	"github.com/m04kA/SMC-RecurringService/internal/api/middleware"
	generateBookings "github.com/m04kA/SMC-RecurringService/internal/usecase/generate_bookings"
)

const (
	msgInvalidScheduleID  = "некорректный ID расписания"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgScheduleNotFound   = "расписание не найдено"
	msgCustomerNotFound   = "клиент расписания не найден"
	msgScheduleInactive   = "расписание неактивно"
	msgInvalidMonth       = "некорректный месяц генерации, ожидаются year и month (1-12)"
	msgPricingFailed      = "не удалось рассчитать стоимость"
	msgDeadlineExceeded   = "генерация не уложилась в отведённое время"
)

type Handler struct {
	useCase GenerateBookingsUseCase
	logger  Logger
}

func NewHandler(useCase GenerateBookingsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/recurring-schedules/{scheduleId}/generate
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	scheduleID, err := strconv.ParseInt(mux.Vars(r)["scheduleId"], 10, 64)
	if err != nil || scheduleID <= 0 {
		h.logger.Warn("POST /recurring-schedules/{id}/generate - Invalid schedule ID: %q", mux.Vars(r)["scheduleId"])
		handlers.RespondBadRequest(w, msgInvalidScheduleID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /recurring-schedules/{id}/generate - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Тело необязательно: без него генерируется следующий месяц
	var req GenerateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil && !errors.Is(err, handlers.ErrEmptyBody) {
		h.logger.Warn("POST /recurring-schedules/{id}/generate - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Generate(r.Context(), req.ToUseCaseRequest(scheduleID, userID))
	if err != nil {
		switch {
		case errors.Is(err, generateBookings.ErrScheduleNotFound):
			h.logger.Warn("POST /recurring-schedules/{id}/generate - Schedule not found: schedule_id=%d", scheduleID)
			handlers.RespondNotFound(w, msgScheduleNotFound)

		case errors.Is(err, generateBookings.ErrCustomerNotFound):
			h.logger.Warn("POST /recurring-schedules/{id}/generate - Customer not found: schedule_id=%d", scheduleID)
			handlers.RespondNotFound(w, msgCustomerNotFound)

		case errors.Is(err, generateBookings.ErrScheduleInactive):
			h.logger.Warn("POST /recurring-schedules/{id}/generate - Schedule inactive: schedule_id=%d", scheduleID)
			handlers.RespondBadRequest(w, msgScheduleInactive)

		case errors.Is(err, generateBookings.ErrInvalidMonth):
			h.logger.Warn("POST /recurring-schedules/{id}/generate - Invalid month: schedule_id=%d, error=%v", scheduleID, err)
			handlers.RespondBadRequest(w, msgInvalidMonth)

		case errors.Is(err, generateBookings.ErrPricing):
			h.logger.Error("POST /recurring-schedules/{id}/generate - Pricing failed: schedule_id=%d, error=%v", scheduleID, err)
			handlers.RespondError(w, http.StatusBadGateway, msgPricingFailed)

		case errors.Is(err, generateBookings.ErrDeadlineExceeded):
			h.logger.Error("POST /recurring-schedules/{id}/generate - Deadline exceeded: schedule_id=%d", scheduleID)
			handlers.RespondError(w, http.StatusGatewayTimeout, msgDeadlineExceeded)

		default:
			h.logger.Error("POST /recurring-schedules/{id}/generate - Failed to generate bookings: schedule_id=%d, error=%v",
				scheduleID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /recurring-schedules/{id}/generate - Done: schedule_id=%d, user_id=%d, month=%s, generated=%d, skipped=%d",
		scheduleID, userID, result.MonthYear, result.Generated, result.Skipped)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}

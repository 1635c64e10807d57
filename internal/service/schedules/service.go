package schedules

import (
	"context"
	"errors"
	"fmt"

	scheduleRepo "github.com/m04kA/SMC-RecurringService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-RecurringService/internal/service/schedules/models"
)

// Service сервис чтения расписаний и созданных по ним бронирований
type Service struct {
	scheduleRepo ScheduleRepository
	bookingRepo  BookingRepository
	logger       Logger
}

// NewService создает новый экземпляр сервиса расписаний
func NewService(scheduleRepo ScheduleRepository, bookingRepo BookingRepository, logger Logger) *Service {
	return &Service{
		scheduleRepo: scheduleRepo,
		bookingRepo:  bookingRepo,
		logger:       logger,
	}
}

// GetScheduleBookings возвращает расписание и его бронирования.
// Период и статус фильтруются опционально.
func (s *Service) GetScheduleBookings(ctx context.Context, req *models.GetScheduleBookingsRequest) (*models.ScheduleBookingsResponse, error) {
	s.logger.Info("GetScheduleBookings: schedule=%d, user=%d, from=%v, to=%v, status=%v",
		req.ScheduleID, req.UserID, deref(req.From), deref(req.To), deref(req.Status))

	// Конвертируем request в domain фильтр
	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetScheduleBookings: invalid filter for schedule=%d: %v", req.ScheduleID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	schedule, err := s.scheduleRepo.GetByID(ctx, req.ScheduleID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
			s.logger.Warn("GetScheduleBookings: schedule id=%d not found", req.ScheduleID)
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("GetScheduleBookings: repository error for schedule id=%d: %v", req.ScheduleID, err)
		return nil, fmt.Errorf("%w: GetScheduleBookings - schedule repository error: %v", ErrInternal, err)
	}

	bookings, err := s.bookingRepo.GetBySchedule(ctx, filter)
	if err != nil {
		s.logger.Error("GetScheduleBookings: repository error for schedule id=%d: %v", req.ScheduleID, err)
		return nil, fmt.Errorf("%w: GetScheduleBookings - booking repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetScheduleBookings: successfully fetched %d bookings for schedule=%d", len(bookings), req.ScheduleID)
	return &models.ScheduleBookingsResponse{
		Schedule: models.FromDomainSchedule(schedule),
		Bookings: models.FromDomainBookingList(bookings),
	}, nil
}

func deref(v *string) string {
	if v == nil {
		return "-"
	}
	return *v
}

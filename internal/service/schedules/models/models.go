package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-RecurringService/internal/domain"
	"github.com/m04kA/SMC-RecurringService/pkg/types"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")

	// ErrInvalidPeriod возвращается, когда from позже to
	ErrInvalidPeriod = errors.New("from must not be after to")
)

// Request модели

// GetScheduleBookingsRequest запрос на получение бронирований расписания
type GetScheduleBookingsRequest struct {
	UserID     int64   `json:"userId"`
	ScheduleID int64   `json:"scheduleId"`
	From       *string `json:"from,omitempty"`   // "2024-02-01" (опционально)
	To         *string `json:"to,omitempty"`     // "2024-02-29" (опционально)
	Status     *string `json:"status,omitempty"` // Фильтр по статусу (опционально)
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetScheduleBookingsRequest) ToDomainFilter() (domain.ScheduleBookingsFilter, error) {
	filter := domain.ScheduleBookingsFilter{ScheduleID: r.ScheduleID}

	if r.From != nil {
		from, err := types.ParseDate(*r.From)
		if err != nil {
			return filter, err
		}
		filter.From = &from
	}

	if r.To != nil {
		to, err := types.ParseDate(*r.To)
		if err != nil {
			return filter, err
		}
		filter.To = &to
	}

	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return filter, ErrInvalidPeriod
	}

	if r.Status != nil {
		status := domain.BookingStatus(*r.Status)
		if !status.IsValid() {
			return filter, ErrInvalidStatus
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// ScheduleResponse данные регулярного расписания
type ScheduleResponse struct {
	ID                 int64    `json:"id"`
	CustomerID         int64    `json:"customerId"`
	CleanerID          *int64   `json:"cleanerId,omitempty"`
	Frequency          string   `json:"frequency"`
	DayOfWeek          *int     `json:"dayOfWeek,omitempty"`
	DayOfMonth         *int     `json:"dayOfMonth,omitempty"`
	DaysOfWeek         []int    `json:"daysOfWeek,omitempty"`
	ServiceType        string   `json:"serviceType"`
	Bedrooms           int      `json:"bedrooms"`
	Bathrooms          int      `json:"bathrooms"`
	Extras             []string `json:"extras"`
	BookingTime        string   `json:"bookingTime"`
	StartDate          string   `json:"startDate"`
	EndDate            *string  `json:"endDate,omitempty"`
	TotalAmount        *string  `json:"totalAmount,omitempty"`
	LastGeneratedMonth *string  `json:"lastGeneratedMonth,omitempty"`
	IsActive           bool     `json:"isActive"`
}

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID              string  `json:"id"`
	CustomerID      int64   `json:"customerId"`
	CustomerName    string  `json:"customerName"`
	CleanerID       *int64  `json:"cleanerId,omitempty"`
	RequiresTeam    bool    `json:"requiresTeam"`
	ServiceType     string  `json:"serviceType"`
	BookingDate     string  `json:"bookingDate"` // "2024-02-05"
	BookingTime     string  `json:"bookingTime"` // "09:00"
	Frequency       string  `json:"frequency"`
	Status          string  `json:"status"`
	TotalAmount     string  `json:"totalAmount"`
	ServiceFee      string  `json:"serviceFee"`
	CleanerEarnings *int64  `json:"cleanerEarnings,omitempty"` // центы
	ManualPrice     bool    `json:"manualPrice"`
	Notes           *string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// ScheduleBookingsResponse расписание со списком бронирований
type ScheduleBookingsResponse struct {
	Schedule *ScheduleResponse `json:"schedule"`
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainSchedule конвертирует domain модель в DTO
func FromDomainSchedule(s *domain.RecurringSchedule) *ScheduleResponse {
	if s == nil {
		return nil
	}

	resp := &ScheduleResponse{
		ID:                 s.ID,
		CustomerID:         s.CustomerID,
		CleanerID:          s.CleanerID,
		Frequency:          string(s.Frequency),
		DayOfWeek:          s.DayOfWeek,
		DayOfMonth:         s.DayOfMonth,
		DaysOfWeek:         s.DaysOfWeek,
		ServiceType:        s.ServiceType,
		Bedrooms:           s.Bedrooms,
		Bathrooms:          s.Bathrooms,
		Extras:             s.Extras,
		BookingTime:        s.BookingTime.String(),
		StartDate:          s.StartDate.String(),
		LastGeneratedMonth: s.LastGeneratedMonth,
		IsActive:           s.IsActive,
	}

	if resp.Extras == nil {
		resp.Extras = []string{}
	}

	if s.EndDate != nil {
		end := s.EndDate.String()
		resp.EndDate = &end
	}

	if s.TotalAmount != nil {
		total := s.TotalAmount.StringFixed(2)
		resp.TotalAmount = &total
	}

	return resp
}

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	return &BookingResponse{
		ID:              b.ID,
		CustomerID:      b.CustomerID,
		CustomerName:    b.CustomerName,
		CleanerID:       b.CleanerID,
		RequiresTeam:    b.RequiresTeam,
		ServiceType:     b.ServiceType,
		BookingDate:     b.BookingDate.String(),
		BookingTime:     b.BookingTime.String(),
		Frequency:       string(b.Frequency),
		Status:          string(b.Status),
		TotalAmount:     b.TotalAmount.StringFixed(2),
		ServiceFee:      b.ServiceFee.StringFixed(2),
		CleanerEarnings: b.CleanerEarnings,
		ManualPrice:     b.PriceSnapshot.ManualPrice,
		Notes:           b.Notes,
		CreatedAt:       b.CreatedAt,
	}
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) []BookingResponse {
	resp := make([]BookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp = append(resp, *bookingResp)
		}
	}
	return resp
}

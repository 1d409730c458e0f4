package get_month_view

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// Request запрос месячного календаря
type Request struct {
	Year            int
	Month           int
	IncludeInactive bool // добавить отменённые бронирования в списки дней
}

// DayView бронирования и занятость одного дня
type DayView struct {
	Date         time.Time
	Reservations []*domain.Reservation
	Availability domain.DayAvailability
}

// MonthView календарь месяца, по одному DayView на каждый день
type MonthView struct {
	Year  int
	Month time.Month
	Days  []DayView
}

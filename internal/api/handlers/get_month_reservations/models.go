package get_month_reservations

import (
	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	getMonthView "github.com/m04kA/SMC-ReservationService/internal/usecase/get_month_view"
)

// MonthResponse HTTP response model
type MonthResponse struct {
	Year  int           `json:"year"`
	Month int           `json:"month"`
	Days  []DayResponse `json:"days"`
}

// DayResponse день календаря
type DayResponse struct {
	Date          string                         `json:"date"`
	State         string                         `json:"state"` // empty | partial | full | unavailable
	TotalSlots    int                            `json:"totalSlots"`
	OccupiedSlots int                            `json:"occupiedSlots"`
	Reservations  []handlers.ReservationResponse `json:"reservations"`
}

// FromUseCaseResponse конвертирует календарь в HTTP response с учётом прав просматривающего
func FromUseCaseResponse(view *getMonthView.MonthView, viewer domain.Actor) MonthResponse {
	resp := MonthResponse{
		Year:  view.Year,
		Month: int(view.Month),
		Days:  make([]DayResponse, 0, len(view.Days)),
	}

	for _, d := range view.Days {
		resp.Days = append(resp.Days, DayResponse{
			Date:          d.Date.Format(domain.DateFormat),
			State:         string(d.Availability.State),
			TotalSlots:    d.Availability.Total,
			OccupiedSlots: d.Availability.Occupied,
			Reservations:  handlers.ForViewerList(d.Reservations, viewer),
		})
	}

	return resp
}

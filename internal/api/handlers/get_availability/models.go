package get_availability

import "github.com/m04kA/SMC-ReservationService/internal/domain"

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	Date          string         `json:"date"`
	State         string         `json:"state"`
	TotalSlots    int            `json:"totalSlots"`
	OccupiedSlots int            `json:"occupiedSlots"`
	FreeSlots     int            `json:"freeSlots"`
	Slots         []SlotResponse `json:"slots"`
}

// SlotResponse слот с признаком занятости
type SlotResponse struct {
	Time     string `json:"time"`
	Occupied bool   `json:"occupied"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(day *domain.DayAvailability) AvailabilityResponse {
	slots := make([]SlotResponse, 0, len(day.Slots))
	for _, s := range day.Slots {
		slots = append(slots, SlotResponse{Time: s.Time.String(), Occupied: s.Occupied})
	}

	return AvailabilityResponse{
		Date:          day.Date.Format(domain.DateFormat),
		State:         string(day.State),
		TotalSlots:    day.Total,
		OccupiedSlots: day.Occupied,
		FreeSlots:     day.Free(),
		Slots:         slots,
	}
}

package complete_reservation

import "time"

// CompleteReservationRequest HTTP request model; без completedAt используется текущее время
type CompleteReservationRequest struct {
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

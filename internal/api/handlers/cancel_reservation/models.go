package cancel_reservation

// CancelReservationRequest HTTP request model; тело необязательно
type CancelReservationRequest struct {
	Reason *string `json:"reason,omitempty"`
}

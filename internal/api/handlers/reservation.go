package handlers

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// ReservationResponse единое внешнее представление бронирования
type ReservationResponse struct {
	ID                 int64   `json:"id"`
	UserID             int64   `json:"userId,omitempty"`
	VehicleID          int64   `json:"vehicleId,omitempty"`
	ServiceID          int64   `json:"serviceId,omitempty"`
	Date               string  `json:"date"`
	Time               string  `json:"time"`
	Status             string  `json:"status"`
	Notes              *string `json:"notes,omitempty"`
	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"`
	CompletedAt        *string `json:"completedAt,omitempty"`
	CreatedAt          string  `json:"createdAt,omitempty"`
	UpdatedAt          string  `json:"updatedAt,omitempty"`
}

// FromDomain полное представление бронирования
func FromDomain(r *domain.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:                 r.ID,
		UserID:             r.UserID,
		VehicleID:          r.VehicleID,
		ServiceID:          r.ServiceID,
		Date:               r.Date.Format(domain.DateFormat),
		Time:               r.Time.String(),
		Status:             r.Status.String(),
		Notes:              r.Notes,
		CancellationReason: r.CancellationReason,
		CancelledAt:        formatTime(r.CancelledAt),
		CompletedAt:        formatTime(r.CompletedAt),
		CreatedAt:          r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          r.UpdatedAt.Format(time.RFC3339),
	}
}

// FromDomainList полное представление списка
func FromDomainList(list []*domain.Reservation) []ReservationResponse {
	result := make([]ReservationResponse, 0, len(list))
	for _, r := range list {
		result = append(result, FromDomain(r))
	}
	return result
}

// ForViewer представление для общих календарных списков:
// чужие бронирования клиент видит только как занятый слот.
func ForViewer(r *domain.Reservation, viewer domain.Actor) ReservationResponse {
	if viewer.CanAccess(r) {
		return FromDomain(r)
	}
	return ReservationResponse{
		ID:     r.ID,
		Date:   r.Date.Format(domain.DateFormat),
		Time:   r.Time.String(),
		Status: r.Status.String(),
	}
}

// ForViewerList ForViewer для списка
func ForViewerList(list []*domain.Reservation, viewer domain.Actor) []ReservationResponse {
	result := make([]ReservationResponse, 0, len(list))
	for _, r := range list {
		result = append(result, ForViewer(r, viewer))
	}
	return result
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

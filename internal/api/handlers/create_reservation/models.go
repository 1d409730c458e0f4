package create_reservation

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	createReservation "github.com/m04kA/SMC-ReservationService/internal/usecase/create_reservation"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

var (
	errInvalidDate = errors.New("invalid date")
	errInvalidTime = errors.New("invalid time")
)

// CreateReservationRequest HTTP request model
type CreateReservationRequest struct {
	VehicleID int64   `json:"vehicleId"`
	ServiceID int64   `json:"serviceId"`
	Date      string  `json:"date"` // "2025-03-10"
	Time      string  `json:"time"` // "09:00"
	Notes     *string `json:"notes,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case.
// Пустые дата и время передаются дальше нулевыми значениями, их отсутствие проверяет use case.
func (r *CreateReservationRequest) ToUseCaseRequest(actor domain.Actor) (*createReservation.Request, error) {
	req := &createReservation.Request{
		Actor:     actor,
		VehicleID: r.VehicleID,
		ServiceID: r.ServiceID,
		Notes:     r.Notes,
	}

	if r.Date != "" {
		date, err := domain.ParseDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidDate, err)
		}
		req.Date = date
	}

	if r.Time != "" {
		slot, err := types.NewTimeStringFromString(r.Time)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidTime, err)
		}
		req.Time = slot
	}

	return req, nil
}

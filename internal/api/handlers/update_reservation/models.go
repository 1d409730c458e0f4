package update_reservation

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

var (
	errInvalidDate = errors.New("invalid date")
	errInvalidTime = errors.New("invalid time")
)

// UpdateReservationRequest HTTP request model; отсутствующее поле не меняется
type UpdateReservationRequest struct {
	Date  *string `json:"date,omitempty"`
	Time  *string `json:"time,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *UpdateReservationRequest) ToServiceRequest(actor domain.Actor, id int64) (models.UpdateRequest, error) {
	req := models.UpdateRequest{
		Actor:         actor,
		ReservationID: id,
		Notes:         r.Notes,
	}

	if r.Date != nil {
		date, err := domain.ParseDate(*r.Date)
		if err != nil {
			return req, fmt.Errorf("%w: %v", errInvalidDate, err)
		}
		req.Date = &date
	}

	if r.Time != nil {
		slot, err := types.NewTimeStringFromString(*r.Time)
		if err != nil {
			return req, fmt.Errorf("%w: %v", errInvalidTime, err)
		}
		req.Time = &slot
	}

	return req, nil
}

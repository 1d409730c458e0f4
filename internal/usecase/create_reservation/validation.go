package create_reservation

import (
	"fmt"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// validateRequest проверяет обязательные поля запроса
func validateRequest(req *Request) error {
	if req.VehicleID <= 0 {
		return ErrInvalidVehicleID
	}
	if req.ServiceID <= 0 {
		return ErrInvalidServiceID
	}
	if req.Date.IsZero() {
		return ErrMissingDate
	}
	if req.Time.IsZero() {
		return ErrMissingTime
	}
	if err := req.Time.Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return domain.ValidateNotes(req.Notes)
}

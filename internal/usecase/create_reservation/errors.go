package create_reservation

import (
	"fmt"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

var (
	// ErrInvalidVehicleID не передан vehicleId
	ErrInvalidVehicleID = fmt.Errorf("%w: vehicleId is required", domain.ErrValidation)

	// ErrInvalidServiceID не передан serviceId
	ErrInvalidServiceID = fmt.Errorf("%w: serviceId is required", domain.ErrValidation)

	// ErrMissingDate не передана дата
	ErrMissingDate = fmt.Errorf("%w: date is required", domain.ErrValidation)

	// ErrMissingTime не передано время
	ErrMissingTime = fmt.Errorf("%w: time is required", domain.ErrValidation)

	// ErrVehicleNotFound автомобиль не найден
	ErrVehicleNotFound = fmt.Errorf("%w: vehicle not found", domain.ErrValidation)

	// ErrVehicleNotOwned автомобиль принадлежит другому пользователю
	ErrVehicleNotOwned = fmt.Errorf("%w: vehicle belongs to another user", domain.ErrAuthorization)

	// ErrServiceNotFound услуги нет в каталоге
	ErrServiceNotFound = fmt.Errorf("%w: service not found", domain.ErrValidation)

	// ErrServiceInactive услуга снята с продажи
	ErrServiceInactive = fmt.Errorf("%w: service is not available for booking", domain.ErrValidation)
)

package create_reservation

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	Actor     domain.Actor     // инициатор (из токена)
	VehicleID int64            // ID автомобиля
	ServiceID int64            // ID услуги
	Date      time.Time        // дата бронирования (без времени)
	Time      types.TimeString // время начала слота, например "10:00"
	Notes     *string          // заметки (опционально)
}

package get_availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

type GetAvailabilityUseCase interface {
	Execute(ctx context.Context, date time.Time) (*domain.DayAvailability, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

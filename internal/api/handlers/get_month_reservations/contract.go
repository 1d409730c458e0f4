package get_month_reservations

import (
	"context"

	getMonthView "github.com/m04kA/SMC-ReservationService/internal/usecase/get_month_view"
)

type GetMonthViewUseCase interface {
	Execute(ctx context.Context, req getMonthView.Request) (*getMonthView.MonthView, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

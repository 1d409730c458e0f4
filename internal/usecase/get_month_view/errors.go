package get_month_view

import (
	"fmt"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

var (
	// ErrInvalidMonth месяц вне диапазона 1-12
	ErrInvalidMonth = fmt.Errorf("%w: month must be between 1 and 12", domain.ErrValidation)

	// ErrInvalidYear год вне поддерживаемого диапазона
	ErrInvalidYear = fmt.Errorf("%w: year must be between %d and %d", domain.ErrValidation, minYear, maxYear)
)

const (
	minYear = 2000
	maxYear = 2100
)

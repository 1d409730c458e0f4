package get_availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	List(ctx context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error)
}

// AvailabilityCache кэш дневной занятости.
// Get возвращает версию даты; Set с этой версией не перезапишет дату, инвалидированную после Get.
type AvailabilityCache interface {
	Get(ctx context.Context, date time.Time) (*domain.DayAvailability, int64, error)
	Set(ctx context.Context, day domain.DayAvailability, version int64) error
}

// Metrics счётчики попаданий в кэш
type Metrics interface {
	CacheHit()
	CacheMiss()
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

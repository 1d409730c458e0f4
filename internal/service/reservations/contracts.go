package reservations

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	List(ctx context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.ReservationStatus, reason *string, at time.Time) (*domain.Reservation, error)
	Delete(ctx context.Context, id int64) error
}

// ConflictGuard атомарный перенос бронирования на другой слот
type ConflictGuard interface {
	Reschedule(
		ctx context.Context,
		id int64,
		change domain.ScheduleChange,
		precondition func(current *domain.Reservation) error,
	) (before, after *domain.Reservation, err error)
}

// CancellationPolicy правило отмены по времени
type CancellationPolicy interface {
	Check(r *domain.Reservation, now time.Time, role domain.Role) error
}

// AvailabilityCache инвалидация кэша занятости
type AvailabilityCache interface {
	Invalidate(ctx context.Context, dates ...time.Time) error
}

// EventPublisher публикация событий бронирований
type EventPublisher interface {
	Publish(ctx context.Context, e domain.ReservationEvent) error
}

// Metrics счётчик переходов статусов
type Metrics interface {
	Transition(from, to string)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реальный провайдер времени
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

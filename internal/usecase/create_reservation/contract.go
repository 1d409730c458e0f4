package create_reservation

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-ReservationService/internal/integrations/userservice"
)

// ConflictGuard атомарное занятие слота
type ConflictGuard interface {
	Reserve(ctx context.Context, r *domain.Reservation) (*domain.Reservation, error)
}

// UserServiceClient интерфейс клиента для UserService
type UserServiceClient interface {
	GetVehicle(ctx context.Context, vehicleID int64) (*userservice.Vehicle, error)
}

// CatalogServiceClient интерфейс клиента каталога услуг
type CatalogServiceClient interface {
	GetService(ctx context.Context, serviceID int64) (*catalogservice.Service, error)
}

// AvailabilityCache инвалидация кэша занятости
type AvailabilityCache interface {
	Invalidate(ctx context.Context, dates ...time.Time) error
}

// EventPublisher публикация событий бронирований
type EventPublisher interface {
	Publish(ctx context.Context, e domain.ReservationEvent) error
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

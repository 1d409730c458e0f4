package create_reservation

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-ReservationService/internal/integrations/userservice"
)

// UseCase use case для создания бронирования
type UseCase struct {
	guard         ConflictGuard
	catalog       *domain.SlotCatalog
	userClient    UserServiceClient
	catalogClient CatalogServiceClient
	cache         AvailabilityCache
	events        EventPublisher
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	guard ConflictGuard,
	catalog *domain.SlotCatalog,
	userClient UserServiceClient,
	catalogClient CatalogServiceClient,
	cache AvailabilityCache,
	events EventPublisher,
	logger Logger,
) *UseCase {
	return &UseCase{
		guard:         guard,
		catalog:       catalog,
		userClient:    userClient,
		catalogClient: catalogClient,
		cache:         cache,
		events:        events,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// WithTimeProvider подменяет источник текущего времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case создания бронирования.
// Проверка слота и вставка выполняются атомарно в ConflictGuard.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*domain.Reservation, error) {
	uc.logger.Info("CreateReservation: user=%d, vehicle=%d, service=%d, date=%s, time=%s",
		req.Actor.UserID, req.VehicleID, req.ServiceID, req.Date.Format(domain.DateFormat), req.Time)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateReservation: validation failed: %v", err)
		return nil, err
	}

	// 2. Дата не в прошлом, время из каталога и ещё не наступило
	now := uc.timeProvider.Now()
	if err := uc.catalog.ValidateBookable(req.Date, req.Time, now); err != nil {
		uc.logger.Warn("CreateReservation: slot rejected: %v", err)
		return nil, err
	}

	// 3. Автомобиль принадлежит пользователю
	ownerID, err := uc.resolveVehicleOwner(ctx, req)
	if err != nil {
		return nil, err
	}

	// 4. Услуга есть в каталоге и доступна
	if err := uc.checkService(ctx, req.ServiceID); err != nil {
		return nil, err
	}

	// 5. Атомарно занимаем слот
	created, err := uc.guard.Reserve(ctx, &domain.Reservation{
		UserID:    ownerID,
		VehicleID: req.VehicleID,
		ServiceID: req.ServiceID,
		Date:      domain.NormalizeDate(req.Date),
		Time:      req.Time,
		Status:    domain.StatusPending,
		Notes:     req.Notes,
	})
	if err != nil {
		return nil, err
	}

	if err := uc.cache.Invalidate(ctx, created.Date); err != nil {
		uc.logger.Warn("CreateReservation: cache invalidation failed for %s: %v", created.Date.Format(domain.DateFormat), err)
	}
	if err := uc.events.Publish(ctx, domain.NewReservationEvent(domain.EventCreated, created, req.Actor, now)); err != nil {
		uc.logger.Warn("CreateReservation: publish event failed for reservation id=%d: %v", created.ID, err)
	}

	uc.logger.Info("CreateReservation: reservation id=%d created for user=%d at %s %s",
		created.ID, created.UserID, created.Date.Format(domain.DateFormat), created.Time)
	return created, nil
}

// resolveVehicleOwner возвращает владельца бронирования.
// Клиент бронирует только на свой автомобиль; администратор - на автомобиль любого клиента.
func (uc *UseCase) resolveVehicleOwner(ctx context.Context, req *Request) (int64, error) {
	vehicle, err := uc.userClient.GetVehicle(ctx, req.VehicleID)
	if err != nil {
		if errors.Is(err, userservice.ErrVehicleNotFound) {
			uc.logger.Warn("CreateReservation: vehicle=%d not found", req.VehicleID)
			return 0, ErrVehicleNotFound
		}
		uc.logger.Error("CreateReservation: failed to get vehicle=%d: %v", req.VehicleID, err)
		return 0, fmt.Errorf("%w: get vehicle: %v", domain.ErrInternal, err)
	}

	if vehicle.UserID == req.Actor.UserID {
		return req.Actor.UserID, nil
	}
	if req.Actor.IsAdmin() {
		return vehicle.UserID, nil
	}

	uc.logger.Warn("CreateReservation: vehicle=%d belongs to user=%d, not user=%d", req.VehicleID, vehicle.UserID, req.Actor.UserID)
	return 0, ErrVehicleNotOwned
}

func (uc *UseCase) checkService(ctx context.Context, serviceID int64) error {
	service, err := uc.catalogClient.GetService(ctx, serviceID)
	if err != nil {
		if errors.Is(err, catalogservice.ErrServiceNotFound) {
			uc.logger.Warn("CreateReservation: service=%d not found", serviceID)
			return ErrServiceNotFound
		}
		uc.logger.Error("CreateReservation: failed to get service=%d: %v", serviceID, err)
		return fmt.Errorf("%w: get service: %v", domain.ErrInternal, err)
	}

	if !service.Active {
		uc.logger.Warn("CreateReservation: service=%d is inactive", serviceID)
		return ErrServiceInactive
	}
	return nil
}

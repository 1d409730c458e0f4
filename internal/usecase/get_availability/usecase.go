package get_availability

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// UseCase занятость слотов на дату
type UseCase struct {
	repo         ReservationRepository
	catalog      *domain.SlotCatalog
	cache        AvailabilityCache
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	repo ReservationRepository,
	catalog *domain.SlotCatalog,
	cache AvailabilityCache,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		repo:         repo,
		catalog:      catalog,
		cache:        cache,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник текущего времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute возвращает слоты даты с признаком занятости.
// Для прошедшей даты слотов нет. Результат читается из кэша, если он включен.
func (uc *UseCase) Execute(ctx context.Context, date time.Time) (*domain.DayAvailability, error) {
	day := domain.NormalizeDate(date)
	slots := uc.catalog.SlotsFor(day, uc.catalog.Today(uc.timeProvider.Now()))
	if len(slots) == 0 {
		empty := domain.BuildDayAvailability(day, nil, nil)
		return &empty, nil
	}

	// Версию читаем до запроса в БД: запись, инвалидированная после этого момента, в кэш не попадёт
	cached, version, err := uc.cache.Get(ctx, day)
	if err != nil {
		uc.logger.Warn("GetAvailability: cache read failed for %s: %v", day.Format(domain.DateFormat), err)
	}
	if cached != nil {
		uc.metrics.CacheHit()
		return cached, nil
	}
	uc.metrics.CacheMiss()

	reservations, err := uc.repo.List(ctx, domain.ReservationFilter{StartDate: &day, EndDate: &day})
	if err != nil {
		uc.logger.Error("GetAvailability: repository error for %s: %v", day.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: GetAvailability - repository error: %v", domain.ErrInternal, err)
	}

	result := domain.BuildDayAvailability(day, slots, reservations)

	if err := uc.cache.Set(ctx, result, version); err != nil {
		uc.logger.Warn("GetAvailability: cache write failed for %s: %v", day.Format(domain.DateFormat), err)
	}

	return &result, nil
}

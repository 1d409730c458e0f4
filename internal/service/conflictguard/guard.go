package conflictguard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// Guard атомарно проверяет и занимает слот (дата, время).
// Проверка и запись выполняются в одной SERIALIZABLE транзакции; частичный уникальный индекс
// отсекает проигравшего конкурента, если транзакции пересеклись.
type Guard struct {
	repo      ReservationRepository
	txManager TransactionManager
	metrics   Metrics
	logger    Logger
}

// NewGuard создает новый экземпляр guard
func NewGuard(repo ReservationRepository, txManager TransactionManager, metrics Metrics, logger Logger) *Guard {
	return &Guard{
		repo:      repo,
		txManager: txManager,
		metrics:   metrics,
		logger:    logger,
	}
}

// CheckAvailable true, если на слот нет активных бронирований, кроме excludeID.
// Результат информационный: окончательную проверку делают Reserve и Reschedule.
func (g *Guard) CheckAvailable(ctx context.Context, date time.Time, slot types.TimeString, excludeID *int64) (bool, error) {
	holders, err := g.repo.ActiveSlotHolders(ctx, date, slot, excludeID)
	if err != nil {
		return false, fmt.Errorf("%w: CheckAvailable - repository error: %v", domain.ErrInternal, err)
	}
	return len(holders) == 0, nil
}

// Reserve сохраняет новое бронирование, если слот свободен.
// Занятый слот возвращается как domain.ErrConflict и не повторяется автоматически.
func (g *Guard) Reserve(ctx context.Context, r *domain.Reservation) (*domain.Reservation, error) {
	var created *domain.Reservation

	err := g.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		holders, err := g.repo.ActiveSlotHolders(ctx, r.Date, r.Time, nil)
		if err != nil {
			return err
		}
		if len(holders) > 0 {
			return fmt.Errorf("%w: held by %v", errSlotHeld, holders)
		}

		created, err = g.repo.Create(ctx, r)
		return err
	})
	if err != nil {
		return nil, g.classify("Reserve", r.Date, r.Time, err)
	}

	g.logger.Info("Reserve: slot %s %s taken by reservation id=%d",
		created.Date.Format(domain.DateFormat), created.Time, created.ID)
	return created, nil
}

// Reschedule применяет change к бронированию id под блокировкой строки.
// precondition вызывается с текущим состоянием и может отклонить изменение бизнес-ошибкой.
// Возвращает состояние до и после изменения.
func (g *Guard) Reschedule(
	ctx context.Context,
	id int64,
	change domain.ScheduleChange,
	precondition func(current *domain.Reservation) error,
) (before, after *domain.Reservation, err error) {
	var target domain.Reservation

	err = g.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		current, err := g.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if precondition != nil {
			if err := precondition(current); err != nil {
				return err
			}
		}

		target = change.Apply(*current)
		if target.SlotKey() != current.SlotKey() {
			holders, err := g.repo.ActiveSlotHolders(ctx, target.Date, target.Time, &id)
			if err != nil {
				return err
			}
			if len(holders) > 0 {
				return fmt.Errorf("%w: held by %v", errSlotHeld, holders)
			}
		}

		updated, err := g.repo.UpdateSchedule(ctx, &target)
		if err != nil {
			return err
		}

		before, after = current, updated
		return nil
	})
	if err != nil {
		return nil, nil, g.classify("Reschedule", target.Date, target.Time, err)
	}

	return before, after, nil
}

func (g *Guard) classify(op string, date time.Time, slot types.TimeString, err error) error {
	switch {
	case errors.Is(err, errSlotHeld),
		errors.Is(err, reservationRepo.ErrSlotTaken),
		reservationRepo.IsSerializationFailure(err):
		g.metrics.SlotConflict()
		g.logger.Warn("%s: slot %s %s is not available: %v", op, date.Format(domain.DateFormat), slot, err)
		return fmt.Errorf("%w: %s %s", domain.ErrConflict, date.Format(domain.DateFormat), slot)

	case errors.Is(err, reservationRepo.ErrReservationNotFound):
		return domain.ErrNotFound

	case errors.Is(err, reservationRepo.ErrStateChanged):
		return fmt.Errorf("%w: %v", domain.ErrInvalidState, err)

	case domain.IsBusinessError(err):
		return err

	default:
		g.logger.Error("%s: repository error: %v", op, err)
		return fmt.Errorf("%w: %s - repository error: %v", domain.ErrInternal, op, err)
	}
}

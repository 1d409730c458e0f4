package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
)

// Service жизненный цикл бронирований: чтение, перенос, смена статуса и удаление
type Service struct {
	repo         ReservationRepository
	guard        ConflictGuard
	policy       CancellationPolicy
	catalog      *domain.SlotCatalog
	cache        AvailabilityCache
	events       EventPublisher
	metrics      Metrics
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	repo ReservationRepository,
	guard ConflictGuard,
	policy CancellationPolicy,
	catalog *domain.SlotCatalog,
	cache AvailabilityCache,
	events EventPublisher,
	metrics Metrics,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		repo:         repo,
		guard:        guard,
		policy:       policy,
		catalog:      catalog,
		cache:        cache,
		events:       events,
		metrics:      metrics,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник текущего времени
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// Get возвращает бронирование владельцу или оператору
func (s *Service) Get(ctx context.Context, actor domain.Actor, id int64) (*domain.Reservation, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.repoError("Get", id, err)
	}

	if !actor.CanAccess(r) {
		s.logger.Warn("Get: access denied for user=%d to reservation id=%d", actor.UserID, id)
		return nil, fmt.Errorf("%w: reservation %d", domain.ErrAuthorization, id)
	}

	return r, nil
}

// List возвращает бронирования инициатора; администратор видит все
func (s *Service) List(ctx context.Context, req models.ListRequest) ([]*domain.Reservation, error) {
	filter := domain.ReservationFilter{IncludeInactive: true}

	if !req.Actor.IsAdmin() {
		userID := req.Actor.UserID
		filter.UserID = &userID
	}

	if req.Status != nil {
		status, ok := domain.ParseStatus(*req.Status)
		if !ok {
			return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, *req.Status)
		}
		filter.Status = &status
	}

	list, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error for user=%d: %v", req.Actor.UserID, err)
		return nil, fmt.Errorf("%w: List - repository error: %v", domain.ErrInternal, err)
	}

	return list, nil
}

// ListByDate возвращает все бронирования на дату, включая отменённые
func (s *Service) ListByDate(ctx context.Context, date time.Time) ([]*domain.Reservation, error) {
	day := domain.NormalizeDate(date)

	list, err := s.repo.List(ctx, domain.ReservationFilter{
		StartDate:       &day,
		EndDate:         &day,
		IncludeInactive: true,
	})
	if err != nil {
		s.logger.Error("ListByDate: repository error for date=%s: %v", day.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: ListByDate - repository error: %v", domain.ErrInternal, err)
	}

	return list, nil
}

// Update меняет дату, время и заметки бронирования в статусе PENDING
func (s *Service) Update(ctx context.Context, req models.UpdateRequest) (*domain.Reservation, error) {
	change := req.ToScheduleChange()
	if change.IsEmpty() {
		return nil, fmt.Errorf("%w: Update - reservation_id=%d", domain.ErrEmptyChange, req.ReservationID)
	}
	if err := domain.ValidateNotes(change.Notes); err != nil {
		return nil, err
	}

	now := s.timeProvider.Now()

	before, after, err := s.guard.Reschedule(ctx, req.ReservationID, change, func(current *domain.Reservation) error {
		if err := domain.CheckEditable(current, req.Actor); err != nil {
			return err
		}
		if !change.MovesSlot() {
			return nil
		}
		target := change.Apply(*current)
		return s.catalog.ValidateBookable(target.Date, target.Time, now)
	})
	if err != nil {
		s.logBusiness("Update", req.ReservationID, req.Actor, err)
		return nil, err
	}

	s.logger.Info("Update: reservation id=%d moved %s %s -> %s %s by user=%d",
		after.ID, before.Date.Format(domain.DateFormat), before.Time, after.Date.Format(domain.DateFormat), after.Time, req.Actor.UserID)

	s.afterCommit(ctx, domain.NewReservationEvent(domain.EventUpdated, after, req.Actor, now), before.Date, after.Date)
	return after, nil
}

// Cancel отменяет бронирование с учётом политики отмены
func (s *Service) Cancel(ctx context.Context, req models.TransitionRequest) (*domain.Reservation, error) {
	if req.Reason != nil && len([]rune(*req.Reason)) > domain.MaxCancellationReasonLength {
		return nil, fmt.Errorf("%w: reason must be at most %d characters", domain.ErrValidation, domain.MaxCancellationReasonLength)
	}
	return s.transition(ctx, "Cancel", req, domain.StatusCancelled)
}

// Confirm подтверждает бронирование (только оператор)
func (s *Service) Confirm(ctx context.Context, req models.TransitionRequest) (*domain.Reservation, error) {
	return s.transition(ctx, "Confirm", req, domain.StatusConfirmed)
}

// Complete отмечает обслуживание выполненным (оператор или сигнал истории обслуживания)
func (s *Service) Complete(ctx context.Context, req models.TransitionRequest) (*domain.Reservation, error) {
	return s.transition(ctx, "Complete", req, domain.StatusCompleted)
}

func (s *Service) transition(
	ctx context.Context,
	op string,
	req models.TransitionRequest,
	target domain.ReservationStatus,
) (*domain.Reservation, error) {
	now := s.timeProvider.Now()
	at := now
	if req.At != nil {
		at = *req.At
	}

	var (
		from    domain.ReservationStatus
		updated *domain.Reservation
	)

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetByID(ctx, req.ReservationID)
		if err != nil {
			return err
		}

		if err := domain.CheckTransition(current, req.Actor, target); err != nil {
			return err
		}

		if target == domain.StatusCancelled {
			if err := s.policy.Check(current, now, req.Actor.Role); err != nil {
				return err
			}
		}

		from = current.Status
		updated, err = s.repo.UpdateStatus(ctx, current.ID, current.Status, target, req.Reason, at)
		return err
	})
	if err != nil {
		err = s.classify(op, req.ReservationID, err)
		s.logBusiness(op, req.ReservationID, req.Actor, err)
		return nil, err
	}

	s.logger.Info("%s: reservation id=%d %s -> %s by user=%d role=%s",
		op, updated.ID, from, updated.Status, req.Actor.UserID, req.Actor.Role)
	s.metrics.Transition(string(from), string(updated.Status))

	s.afterCommit(ctx, domain.NewReservationEvent(domain.EventForStatus(target), updated, req.Actor, now), updated.Date)
	return updated, nil
}

// Delete физически удаляет бронирование (только администратор)
func (s *Service) Delete(ctx context.Context, actor domain.Actor, id int64) error {
	if !actor.IsAdmin() {
		s.logger.Warn("Delete: user=%d is not an administrator", actor.UserID)
		return fmt.Errorf("%w: only administrators can delete reservations", domain.ErrAuthorization)
	}

	var deleted *domain.Reservation
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		r, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, id); err != nil {
			return err
		}
		deleted = r
		return nil
	})
	if err != nil {
		return s.classify("Delete", id, err)
	}

	s.logger.Info("Delete: reservation id=%d (%s %s) deleted by admin=%d",
		id, deleted.Date.Format(domain.DateFormat), deleted.Time, actor.UserID)

	s.afterCommit(ctx, domain.NewReservationEvent(domain.EventDeleted, deleted, actor, s.timeProvider.Now()), deleted.Date)
	return nil
}

// afterCommit инвалидирует кэш и публикует событие; ошибки не откатывают изменение
func (s *Service) afterCommit(ctx context.Context, event domain.ReservationEvent, dates ...time.Time) {
	if err := s.cache.Invalidate(ctx, dates...); err != nil {
		s.logger.Warn("availability cache invalidation failed for reservation id=%d: %v", event.ReservationID, err)
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("publish %s failed for reservation id=%d: %v", event.Type, event.ReservationID, err)
	}
}

func (s *Service) classify(op string, id int64, err error) error {
	switch {
	case errors.Is(err, reservationRepo.ErrReservationNotFound):
		return fmt.Errorf("%w: reservation %d", domain.ErrNotFound, id)
	case errors.Is(err, reservationRepo.ErrStateChanged):
		return fmt.Errorf("%w: %v", domain.ErrInvalidState, err)
	case domain.IsBusinessError(err):
		return err
	default:
		s.logger.Error("%s: repository error for reservation id=%d: %v", op, id, err)
		return fmt.Errorf("%w: %s - repository error: %v", domain.ErrInternal, op, err)
	}
}

func (s *Service) repoError(op string, id int64, err error) error {
	if errors.Is(err, reservationRepo.ErrReservationNotFound) {
		s.logger.Warn("%s: reservation id=%d not found", op, id)
	}
	return s.classify(op, id, err)
}

func (s *Service) logBusiness(op string, id int64, actor domain.Actor, err error) {
	if domain.IsBusinessError(err) {
		s.logger.Warn("%s: reservation id=%d rejected for user=%d: %v", op, id, actor.UserID, err)
	}
}

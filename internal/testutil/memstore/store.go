// Package memstore хранилище бронирований в памяти для тестов.
// Повторяет контракт PostgreSQL-репозитория: частичный уникальный индекс по активным слотам,
// compare-and-set смены статуса и откат транзакций.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

type txKey struct{}

// Store хранилище бронирований
type Store struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]domain.Reservation
	now    func() time.Time
}

// New создает пустое хранилище
func New() *Store {
	return &Store{
		nextID: 1,
		rows:   make(map[int64]domain.Reservation),
		now:    time.Now,
	}
}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

func (s *Store) lock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// Seed кладёт бронирование как есть (с заданным ID), минуя проверки
func (s *Store) Seed(r domain.Reservation) *domain.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == 0 {
		r.ID = s.nextID
	}
	if r.ID >= s.nextID {
		s.nextID = r.ID + 1
	}
	r.Date = domain.NormalizeDate(r.Date)
	s.rows[r.ID] = r
	out := r
	return &out
}

// Len количество строк
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (s *Store) slotTaken(date time.Time, slot types.TimeString, excludeID int64) bool {
	key := domain.SlotKey{Date: domain.NormalizeDate(date), Time: slot}
	for id, r := range s.rows {
		if id == excludeID || !r.Status.IsActive() {
			continue
		}
		if r.SlotKey() == key {
			return true
		}
	}
	return false
}

func (s *Store) Create(ctx context.Context, r *domain.Reservation) (*domain.Reservation, error) {
	defer s.lock(ctx)()

	if r.Status.IsActive() && s.slotTaken(r.Date, r.Time, 0) {
		return nil, fmt.Errorf("%w: %s %s", reservationRepo.ErrSlotTaken, r.Date.Format(domain.DateFormat), r.Time)
	}

	now := s.now()
	created := *r
	created.ID = s.nextID
	created.Date = domain.NormalizeDate(r.Date)
	created.CreatedAt = now
	created.UpdatedAt = now
	s.nextID++
	s.rows[created.ID] = created

	out := created
	return &out, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	defer s.lock(ctx)()

	r, ok := s.rows[id]
	if !ok {
		return nil, reservationRepo.ErrReservationNotFound
	}
	return &r, nil
}

func (s *Store) List(ctx context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error) {
	defer s.lock(ctx)()

	result := make([]*domain.Reservation, 0)
	for _, r := range s.rows {
		if filter.UserID != nil && r.UserID != *filter.UserID {
			continue
		}
		if filter.StartDate != nil && r.Date.Before(domain.NormalizeDate(*filter.StartDate)) {
			continue
		}
		if filter.EndDate != nil && r.Date.After(domain.NormalizeDate(*filter.EndDate)) {
			continue
		}
		if filter.Status != nil {
			if r.Status != *filter.Status {
				continue
			}
		} else if !filter.IncludeInactive && !r.Status.IsActive() {
			continue
		}
		item := r
		result = append(result, &item)
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Time != b.Time {
			return a.Time.IsBefore(b.Time)
		}
		return a.ID < b.ID
	})

	return result, nil
}

func (s *Store) ActiveSlotHolders(ctx context.Context, date time.Time, slot types.TimeString, excludeID *int64) ([]int64, error) {
	defer s.lock(ctx)()

	key := domain.SlotKey{Date: domain.NormalizeDate(date), Time: slot}
	ids := make([]int64, 0)
	for id, r := range s.rows {
		if excludeID != nil && id == *excludeID {
			continue
		}
		if r.Status.IsActive() && r.SlotKey() == key {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *Store) UpdateSchedule(ctx context.Context, r *domain.Reservation) (*domain.Reservation, error) {
	defer s.lock(ctx)()

	current, ok := s.rows[r.ID]
	if !ok || current.Status != domain.StatusPending {
		return nil, fmt.Errorf("%w: reservation %d", reservationRepo.ErrStateChanged, r.ID)
	}
	if s.slotTaken(r.Date, r.Time, r.ID) {
		return nil, fmt.Errorf("%w: %s %s", reservationRepo.ErrSlotTaken, r.Date.Format(domain.DateFormat), r.Time)
	}

	current.Date = domain.NormalizeDate(r.Date)
	current.Time = r.Time
	current.Notes = r.Notes
	current.UpdatedAt = s.now()
	s.rows[r.ID] = current

	out := current
	return &out, nil
}

func (s *Store) UpdateStatus(
	ctx context.Context,
	id int64,
	from, to domain.ReservationStatus,
	reason *string,
	at time.Time,
) (*domain.Reservation, error) {
	defer s.lock(ctx)()

	current, ok := s.rows[id]
	if !ok || current.Status != from {
		return nil, fmt.Errorf("%w: reservation %d", reservationRepo.ErrStateChanged, id)
	}

	current.Status = to
	current.UpdatedAt = s.now()
	switch to {
	case domain.StatusCancelled:
		current.CancelledAt = &at
		current.CancellationReason = reason
	case domain.StatusCompleted:
		current.CompletedAt = &at
	}
	s.rows[id] = current

	out := current
	return &out, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	defer s.lock(ctx)()

	if _, ok := s.rows[id]; !ok {
		return reservationRepo.ErrReservationNotFound
	}
	delete(s.rows, id)
	return nil
}

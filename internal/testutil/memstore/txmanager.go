package memstore

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// TxManager сериализует транзакции на мьютексе хранилища и откатывает изменения при ошибке
type TxManager struct {
	store *Store
}

// TxManager возвращает менеджер транзакций хранилища
func (s *Store) TxManager() *TxManager {
	return &TxManager{store: s}
}

func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make(map[int64]domain.Reservation, len(s.rows))
	for id, r := range s.rows {
		snapshot[id] = r
	}
	nextID := s.nextID

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.rows = snapshot
		s.nextID = nextID
		return err
	}
	return nil
}

// SetNow подменяет часы, которыми проставляются created_at и updated_at
func (s *Store) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

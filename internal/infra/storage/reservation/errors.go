package reservation

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = errors.New("reservation.repository: reservation not found")

	// ErrSlotTaken возвращается при нарушении уникальности активного слота
	ErrSlotTaken = errors.New("reservation.repository: slot already taken")

	// ErrStateChanged возвращается, когда статус бронирования изменился между чтением и записью
	ErrStateChanged = errors.New("reservation.repository: reservation state changed concurrently")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("reservation.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("reservation.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("reservation.repository: failed to scan row")
)

// Коды ошибок PostgreSQL
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// activeSlotIndex частичный уникальный индекс по (reservation_date, slot_time)
const activeSlotIndex = "reservations_active_slot_uidx"

func isActiveSlotViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return string(pqErr.Code) == pgUniqueViolation && pqErr.Constraint == activeSlotIndex
}

// IsSerializationFailure true, если транзакция проиграла конкурентной (40001, 40P01)
func IsSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	code := string(pqErr.Code)
	return code == pgSerializationFailure || code == pgDeadlockDetected
}

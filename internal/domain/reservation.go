package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// ReservationStatus статус бронирования
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "PENDING"
	StatusConfirmed ReservationStatus = "CONFIRMED"
	StatusCancelled ReservationStatus = "CANCELLED"
	StatusCompleted ReservationStatus = "COMPLETED"
)

// ActiveStatuses статусы, занимающие слот
var ActiveStatuses = []ReservationStatus{
	StatusPending,
	StatusConfirmed,
	StatusCompleted,
}

// ParseStatus разбирает статус без учёта регистра
func ParseStatus(s string) (ReservationStatus, bool) {
	switch ReservationStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, true
	case StatusConfirmed:
		return StatusConfirmed, true
	case StatusCancelled:
		return StatusCancelled, true
	case StatusCompleted:
		return StatusCompleted, true
	}
	return "", false
}

// IsActive true, если бронирование занимает слот
func (s ReservationStatus) IsActive() bool {
	return s != StatusCancelled
}

func (s ReservationStatus) String() string {
	return string(s)
}

// Reservation бронирование слота на обслуживание автомобиля
type Reservation struct {
	ID        int64
	UserID    int64
	VehicleID int64
	ServiceID int64
	Date      time.Time // полночь UTC, без времени
	Time      types.TimeString
	Status    ReservationStatus
	Notes     *string

	CancellationReason *string
	CancelledAt        *time.Time
	CompletedAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOwnedBy true, если бронирование принадлежит пользователю
func (r *Reservation) IsOwnedBy(userID int64) bool {
	return r.UserID == userID
}

// SlotKey ключ (дата, время), по которому проверяется уникальность активных бронирований
func (r *Reservation) SlotKey() SlotKey {
	return SlotKey{Date: NormalizeDate(r.Date), Time: r.Time}
}

// SlotKey пара (дата, время)
type SlotKey struct {
	Date time.Time
	Time types.TimeString
}

// ScheduleChange изменение даты, времени и заметок бронирования.
// nil-поле означает "не менять".
type ScheduleChange struct {
	Date  *time.Time
	Time  *types.TimeString
	Notes *string
}

// IsEmpty true, если ничего не меняется
func (c ScheduleChange) IsEmpty() bool {
	return c.Date == nil && c.Time == nil && c.Notes == nil
}

// MovesSlot true, если меняется дата или время
func (c ScheduleChange) MovesSlot() bool {
	return c.Date != nil || c.Time != nil
}

// Apply возвращает копию бронирования с применёнными изменениями
func (c ScheduleChange) Apply(r Reservation) Reservation {
	if c.Date != nil {
		r.Date = NormalizeDate(*c.Date)
	}
	if c.Time != nil {
		r.Time = *c.Time
	}
	if c.Notes != nil {
		r.Notes = c.Notes
	}
	return r
}

// ReservationFilter фильтр списка бронирований
type ReservationFilter struct {
	UserID          *int64             // nil - все пользователи
	StartDate       *time.Time         // включительно
	EndDate         *time.Time         // включительно
	Status          *ReservationStatus // точный статус
	IncludeInactive bool               // включать ли отменённые
}

// NormalizeDate отбрасывает время, оставляя календарную дату в UTC
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ValidateNotes проверяет длину заметок
func ValidateNotes(notes *string) error {
	if notes != nil && len([]rune(*notes)) > MaxNotesLength {
		return fmt.Errorf("%w: at most %d characters", ErrNotesTooLong, MaxNotesLength)
	}
	return nil
}

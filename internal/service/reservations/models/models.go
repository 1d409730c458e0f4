package models

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// ListRequest запрос списка бронирований инициатора (или всех для администратора)
type ListRequest struct {
	Actor  domain.Actor
	Status *string // PENDING | CONFIRMED | CANCELLED | COMPLETED, без учёта регистра
}

// UpdateRequest изменение даты, времени и заметок; nil-поле не меняется
type UpdateRequest struct {
	Actor         domain.Actor
	ReservationID int64
	Date          *time.Time
	Time          *types.TimeString
	Notes         *string
}

// ToScheduleChange конвертирует запрос в доменное изменение
func (r UpdateRequest) ToScheduleChange() domain.ScheduleChange {
	return domain.ScheduleChange{
		Date:  r.Date,
		Time:  r.Time,
		Notes: r.Notes,
	}
}

// TransitionRequest запрос смены статуса
type TransitionRequest struct {
	Actor         domain.Actor
	ReservationID int64
	Reason        *string    // только для отмены
	At            *time.Time // момент события, если известен источнику (иначе текущее время)
}

package handlers

import (
	"errors"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

const (
	msgPastDate     = "нельзя записаться на прошедшую дату"
	msgUnknownSlot  = "указанное время не входит в расписание слотов"
	msgSlotStarted  = "выбранный слот уже начался"
	msgNotesTooLong = "слишком длинный комментарий"
	msgEmptyChange  = "не указано ни одного изменяемого поля"
)

// ValidationMessage текст для клиента по ошибке валидации расписания.
// Для неизвестных ошибок возвращает fallback.
func ValidationMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, domain.ErrPastDate):
		return msgPastDate
	case errors.Is(err, domain.ErrUnknownSlot):
		return msgUnknownSlot
	case errors.Is(err, domain.ErrSlotStarted):
		return msgSlotStarted
	case errors.Is(err, domain.ErrNotesTooLong):
		return msgNotesTooLong
	case errors.Is(err, domain.ErrEmptyChange):
		return msgEmptyChange
	default:
		return fallback
	}
}

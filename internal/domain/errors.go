package domain

import (
	"errors"
	"fmt"
)

// Таксономия бизнес-ошибок. Слои оборачивают их через fmt.Errorf("%w: ...").
var (
	// ErrValidation некорректные или неполные входные данные
	ErrValidation = errors.New("validation error")

	// ErrConflict слот уже занят другим активным бронированием
	ErrConflict = errors.New("slot no longer available")

	// ErrPolicy запрос нарушает политику отмены
	ErrPolicy = errors.New("policy violation")

	// ErrInvalidState операция недопустима в текущем статусе
	ErrInvalidState = errors.New("invalid reservation state")

	// ErrInvalidTransition переход статуса не разрешён
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrAuthorization у пользователя нет прав на операцию
	ErrAuthorization = errors.New("not authorized")

	// ErrNotFound бронирование не найдено
	ErrNotFound = errors.New("reservation not found")

	// ErrInternal внутренняя ошибка
	ErrInternal = errors.New("internal error")
)

// Ошибки валидации расписания; все оборачивают ErrValidation
var (
	ErrPastDate     = fmt.Errorf("%w: date is in the past", ErrValidation)
	ErrUnknownSlot  = fmt.Errorf("%w: time is not a catalog slot", ErrValidation)
	ErrSlotStarted  = fmt.Errorf("%w: slot has already started", ErrValidation)
	ErrNotesTooLong = fmt.Errorf("%w: notes are too long", ErrValidation)
	ErrEmptyChange  = fmt.Errorf("%w: nothing to update", ErrValidation)
)

// IsBusinessError true для ошибок, которые отдаются клиенту как 4xx
func IsBusinessError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrPolicy) ||
		errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrAuthorization) ||
		errors.Is(err, ErrNotFound)
}

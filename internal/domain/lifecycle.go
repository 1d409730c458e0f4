package domain

import "fmt"

// validTransitions машина состояний бронирования
var validTransitions = map[ReservationStatus][]ReservationStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled, StatusCompleted},
	StatusConfirmed: {StatusCancelled, StatusCompleted},
	StatusCancelled: {},
	StatusCompleted: {},
}

// IsValid true для известного статуса
func (s ReservationStatus) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransitionTo true, если переход разрешён машиной состояний
func (s ReservationStatus) CanTransitionTo(target ReservationStatus) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal true, если из статуса нет переходов
func (s ReservationStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// CheckTransition проверяет, может ли actor перевести бронирование в статус target.
// Владелец может только отменить своё бронирование, оператор - выполнить любой разрешённый переход.
func CheckTransition(r *Reservation, actor Actor, target ReservationStatus) error {
	if !actor.CanAccess(r) {
		return fmt.Errorf("%w: user %d is not the owner of reservation %d", ErrAuthorization, actor.UserID, r.ID)
	}

	if r.Status.IsTerminal() {
		return fmt.Errorf("%w: reservation %d is %s", ErrInvalidTransition, r.ID, r.Status)
	}

	if !r.Status.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, target)
	}

	if !actor.IsOperator() && target != StatusCancelled {
		return fmt.Errorf("%w: only an operator can move a reservation to %s", ErrInvalidTransition, target)
	}

	return nil
}

// CheckEditable проверяет, может ли actor менять дату, время и заметки бронирования
func CheckEditable(r *Reservation, actor Actor) error {
	if !actor.CanAccess(r) {
		return fmt.Errorf("%w: user %d is not the owner of reservation %d", ErrAuthorization, actor.UserID, r.ID)
	}

	if r.Status != StatusPending {
		return fmt.Errorf("%w: reservation %d is %s, only %s can be edited", ErrInvalidState, r.ID, r.Status, StatusPending)
	}

	return nil
}

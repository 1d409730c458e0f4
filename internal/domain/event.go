package domain

import "time"

// EventType тип доменного события бронирования
type EventType string

const (
	EventCreated   EventType = "reservation.created"
	EventUpdated   EventType = "reservation.updated"
	EventConfirmed EventType = "reservation.confirmed"
	EventCancelled EventType = "reservation.cancelled"
	EventCompleted EventType = "reservation.completed"
	EventDeleted   EventType = "reservation.deleted"
)

// EventForStatus событие, соответствующее переходу в статус
func EventForStatus(s ReservationStatus) EventType {
	switch s {
	case StatusConfirmed:
		return EventConfirmed
	case StatusCancelled:
		return EventCancelled
	case StatusCompleted:
		return EventCompleted
	default:
		return EventUpdated
	}
}

// ReservationEvent событие об изменении бронирования
type ReservationEvent struct {
	Type          EventType
	ReservationID int64
	UserID        int64
	Date          time.Time
	Time          string
	Status        ReservationStatus
	ActorRole     Role
	OccurredAt    time.Time
}

// NewReservationEvent событие по текущему состоянию бронирования
func NewReservationEvent(t EventType, r *Reservation, actor Actor, at time.Time) ReservationEvent {
	return ReservationEvent{
		Type:          t,
		ReservationID: r.ID,
		UserID:        r.UserID,
		Date:          NormalizeDate(r.Date),
		Time:          r.Time.String(),
		Status:        r.Status,
		ActorRole:     actor.Role,
		OccurredAt:    at.UTC(),
	}
}

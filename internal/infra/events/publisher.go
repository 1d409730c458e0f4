package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// ErrPublish ошибка публикации события
var ErrPublish = errors.New("events: publish failed")

// Broker транспорт сообщений (pkg/rabbitmq.Publisher)
type Broker interface {
	Publish(ctx context.Context, routingKey, messageID string, payload any) error
}

// Message формат события в брокере
type Message struct {
	EventID       string    `json:"eventId"`
	Type          string    `json:"type"`
	ReservationID int64     `json:"reservationId"`
	UserID        int64     `json:"userId"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	Status        string    `json:"status"`
	ActorRole     string    `json:"actorRole"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// NewMessage переводит доменное событие в сообщение брокера
func NewMessage(e domain.ReservationEvent) Message {
	return Message{
		EventID:       uuid.NewString(),
		Type:          string(e.Type),
		ReservationID: e.ReservationID,
		UserID:        e.UserID,
		Date:          e.Date.Format(domain.DateFormat),
		Time:          e.Time,
		Status:        string(e.Status),
		ActorRole:     string(e.ActorRole),
		OccurredAt:    e.OccurredAt,
	}
}

// Publisher публикует события бронирований; routing key совпадает с типом события
type Publisher struct {
	broker Broker
}

// NewPublisher создает публикатор событий поверх брокера
func NewPublisher(broker Broker) *Publisher {
	return &Publisher{broker: broker}
}

// Publish отправляет событие в брокер
func (p *Publisher) Publish(ctx context.Context, e domain.ReservationEvent) error {
	msg := NewMessage(e)
	if err := p.broker.Publish(ctx, msg.Type, msg.EventID, msg); err != nil {
		return fmt.Errorf("%w: %s reservation=%d: %v", ErrPublish, msg.Type, msg.ReservationID, err)
	}
	return nil
}

// Noop публикатор, который ничего не отправляет (брокер выключен)
type Noop struct{}

func (Noop) Publish(context.Context, domain.ReservationEvent) error { return nil }

package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
)

// ServiceHistoryRoutingKey ключ сообщений о завершённом обслуживании
const ServiceHistoryRoutingKey = "service_history.completed"

// ServiceCompletedMessage сообщение истории обслуживания
type ServiceCompletedMessage struct {
	ReservationID int64      `json:"reservationId"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}

// ServiceHistoryConsumer переводит бронирования в COMPLETED по сигналам истории обслуживания
type ServiceHistoryConsumer struct {
	service ReservationService
	logger  Logger
}

func NewServiceHistoryConsumer(service ReservationService, logger Logger) *ServiceHistoryConsumer {
	return &ServiceHistoryConsumer{
		service: service,
		logger:  logger,
	}
}

// Start читает доставки в отдельной горутине до закрытия канала или отмены ctx.
// Неподтверждённые доставки после отмены брокер вернёт в очередь.
func (c *ServiceHistoryConsumer) Start(ctx context.Context, msgs <-chan amqp.Delivery) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("[ServiceHistoryConsumer] context cancelled, stopping consumer")
				return
			case msg, ok := <-msgs:
				if !ok {
					c.logger.Info("[ServiceHistoryConsumer] channel closed, stopping consumer")
					return
				}
				c.Handle(ctx, msg)
			}
		}
	}()
	return done
}

// Handle обрабатывает одну доставку.
// Повторная или устаревшая доставка подтверждается, временная ошибка возвращает сообщение в очередь.
func (c *ServiceHistoryConsumer) Handle(ctx context.Context, msg amqp.Delivery) {
	var payload ServiceCompletedMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil || payload.ReservationID <= 0 {
		c.logger.Warn("[ServiceHistoryConsumer] malformed message dropped: body=%q, error=%v", msg.Body, err)
		c.nack(msg, false)
		return
	}

	_, err := c.service.Complete(ctx, models.TransitionRequest{
		Actor:         domain.SystemActor(),
		ReservationID: payload.ReservationID,
		At:            payload.CompletedAt,
	})
	switch {
	case err == nil:
		c.logger.Info("[ServiceHistoryConsumer] reservation completed: reservation_id=%d", payload.ReservationID)
		c.ack(msg)

	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrInvalidState):
		c.logger.Warn("[ServiceHistoryConsumer] signal ignored: reservation_id=%d, reason=%v", payload.ReservationID, err)
		c.ack(msg)

	default:
		c.logger.Error("[ServiceHistoryConsumer] failed to complete reservation: reservation_id=%d, error=%v",
			payload.ReservationID, err)
		c.nack(msg, true)
	}
}

func (c *ServiceHistoryConsumer) ack(msg amqp.Delivery) {
	if err := msg.Ack(false); err != nil {
		c.logger.Error("[ServiceHistoryConsumer] ack failed: delivery_tag=%d, error=%v", msg.DeliveryTag, err)
	}
}

func (c *ServiceHistoryConsumer) nack(msg amqp.Delivery, requeue bool) {
	if err := msg.Nack(false, requeue); err != nil {
		c.logger.Error("[ServiceHistoryConsumer] nack failed: delivery_tag=%d, error=%v", msg.DeliveryTag, err)
	}
}

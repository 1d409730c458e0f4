package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

type brokerMock struct {
	mock.Mock
}

func (m *brokerMock) Publish(ctx context.Context, routingKey, messageID string, payload any) error {
	args := m.Called(ctx, routingKey, messageID, payload)
	return args.Error(0)
}

func testEvent() domain.ReservationEvent {
	r := &domain.Reservation{
		ID:     7,
		UserID: 1,
		Date:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Time:   "09:00",
		Status: domain.StatusCancelled,
	}
	return domain.NewReservationEvent(domain.EventCancelled, r, domain.Actor{UserID: 1, Role: domain.RoleClient}, time.Now())
}

func TestPublisher_Publish(t *testing.T) {
	broker := new(brokerMock)
	broker.On("Publish", mock.Anything, "reservation.cancelled", mock.AnythingOfType("string"), mock.MatchedBy(func(m Message) bool {
		_, err := uuid.Parse(m.EventID)
		return err == nil &&
			m.ReservationID == 7 &&
			m.Date == "2025-03-10" &&
			m.Time == "09:00" &&
			m.Status == "CANCELLED" &&
			m.ActorRole == "client"
	})).Return(nil)

	err := NewPublisher(broker).Publish(context.Background(), testEvent())

	require.NoError(t, err)
	broker.AssertExpectations(t)
}

func TestPublisher_BrokerError(t *testing.T) {
	broker := new(brokerMock)
	broker.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("channel closed"))

	err := NewPublisher(broker).Publish(context.Background(), testEvent())

	assert.ErrorIs(t, err, ErrPublish)
}

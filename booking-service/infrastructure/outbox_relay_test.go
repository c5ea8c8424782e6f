package infrastructure

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/stayease/booking-system/booking-service/domain"
	"github.com/stayease/booking-system/booking-service/mocks"
	"github.com/stayease/booking-system/shared/events"
	"github.com/stayease/booking-system/shared/models"
)

func unsentMessage(eventType string) *domain.OutboxMessage {
	return domain.NewOutboxMessage(
		models.GenerateUUID(),
		models.GenerateUUID(),
		domain.ChannelRoom,
		eventType,
		json.RawMessage(`{"saga_id":"x"}`),
		domain.BookingStatusDeposited,
	)
}

func TestOutboxRelay_RelayBatch(t *testing.T) {
	t.Run("publishes unsent messages and stamps them", func(t *testing.T) {
		store := mocks.NewMockOutboxStore(t)
		publisher := mocks.NewMockPublisher(t)

		msg := unsentMessage(events.RoomReservationRequestedEvent)

		store.EXPECT().FindUnsent(mock.Anything, 50).
			Return([]*domain.OutboxMessage{msg}, nil).Once()

		var published *events.Event
		publisher.EXPECT().Publish(mock.Anything, mock.Anything).
			Run(func(ctx context.Context, evts ...*events.Event) {
				published = evts[0]
			}).Return(nil).Once()

		store.EXPECT().MarkProcessed(mock.Anything, msg.ID, mock.Anything).
			Return(nil).Once()

		relay := NewOutboxRelay(store, publisher)

		err := relay.relayBatch(context.Background())

		assert.NoError(t, err)
		assert.NotNil(t, published)
		assert.Equal(t, events.RoomReservationRequestedEvent, published.EventType)
		assert.Equal(t, msg.SagaID, published.CorrelationID)
		assert.Equal(t, msg.BookingID, published.AggregateID)
	})

	t.Run("a failed publish leaves the row unstamped and continues", func(t *testing.T) {
		store := mocks.NewMockOutboxStore(t)
		publisher := mocks.NewMockPublisher(t)

		broken := unsentMessage(events.RoomReservationRequestedEvent)
		healthy := unsentMessage(events.NotificationRequestedEvent)

		store.EXPECT().FindUnsent(mock.Anything, 50).
			Return([]*domain.OutboxMessage{broken, healthy}, nil).Once()

		publisher.EXPECT().Publish(mock.Anything, mock.Anything).
			Return(errors.New("topic unavailable")).Once()
		publisher.EXPECT().Publish(mock.Anything, mock.Anything).
			Return(nil).Once()

		// Only the healthy message is stamped; the broken one is retried
		// on the next tick.
		store.EXPECT().MarkProcessed(mock.Anything, healthy.ID, mock.Anything).
			Return(nil).Once()

		relay := NewOutboxRelay(store, publisher)

		err := relay.relayBatch(context.Background())

		assert.NoError(t, err)
	})

	t.Run("store error is reported", func(t *testing.T) {
		store := mocks.NewMockOutboxStore(t)
		publisher := mocks.NewMockPublisher(t)

		store.EXPECT().FindUnsent(mock.Anything, 50).
			Return(nil, errors.New("connection reset")).Once()

		relay := NewOutboxRelay(store, publisher)

		err := relay.relayBatch(context.Background())

		assert.Error(t, err)
	})
}

func TestOutboxRelay_StartStop(t *testing.T) {
	store := mocks.NewMockOutboxStore(t)
	publisher := mocks.NewMockPublisher(t)

	polled := make(chan struct{}, 1)
	store.EXPECT().FindUnsent(mock.Anything, 10).
		RunAndReturn(func(ctx context.Context, limit int) ([]*domain.OutboxMessage, error) {
			select {
			case polled <- struct{}{}:
			default:
			}
			return nil, nil
		})

	relay := NewOutboxRelay(store, publisher,
		WithPollInterval(5*time.Millisecond),
		WithBatchSize(10),
	)

	assert.NoError(t, relay.Start(context.Background()))

	select {
	case <-polled:
	case <-time.After(time.Second):
		t.Fatal("relay never polled the store")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, relay.Stop(ctx))
}

func TestOutboxRelay_StartIsIdempotent(t *testing.T) {
	store := mocks.NewMockOutboxStore(t)
	publisher := mocks.NewMockPublisher(t)

	store.EXPECT().FindUnsent(mock.Anything, 10).Return(nil, nil).Maybe()

	relay := NewOutboxRelay(store, publisher,
		WithPollInterval(5*time.Millisecond),
		WithBatchSize(10),
	)

	// Concurrent Start calls must agree on a single loop; a second loop
	// would be orphaned by the overwritten cancel handle and survive Stop.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, relay.Start(context.Background()))
		}()
	}
	wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, relay.Stop(ctx))

	// One Stop is enough: nothing is left running
	assert.False(t, relay.running.Load())
}

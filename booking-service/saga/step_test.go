package saga_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/stayease/booking-system/booking-service/domain"
	"github.com/stayease/booking-system/booking-service/mocks"
	"github.com/stayease/booking-system/shared/models"
)

var (
	testSagaID    = models.ID("550e8400-e29b-41d4-a716-446655440001")
	testBookingID = models.ID("550e8400-e29b-41d4-a716-446655440002")
	testGuestID   = models.ID("550e8400-e29b-41d4-a716-446655440003")
)

// bookingInStatus builds a persisted-looking booking driven to the given status
func bookingInStatus(t *testing.T, status domain.BookingStatus) *domain.Booking {
	t.Helper()

	booking, err := domain.CreateBooking(testGuestID, "deluxe-king",
		models.NewMoney(50000, "USD"), models.NewMoney(10000, "USD"))
	assert.NoError(t, err)
	booking.ID = testBookingID

	switch status {
	case domain.BookingStatusPending:
	case domain.BookingStatusConfirmed:
		assert.NoError(t, booking.Confirm())
	case domain.BookingStatusDeposited:
		assert.NoError(t, booking.Deposit())
	case domain.BookingStatusPaid:
		assert.NoError(t, booking.Deposit())
		assert.NoError(t, booking.Pay())
	case domain.BookingStatusCheckedIn:
		assert.NoError(t, booking.Deposit())
		assert.NoError(t, booking.CheckIn())
	case domain.BookingStatusCheckedOut:
		assert.NoError(t, booking.Deposit())
		assert.NoError(t, booking.CheckIn())
		assert.NoError(t, booking.CheckOut())
	case domain.BookingStatusCancelled:
		assert.NoError(t, booking.Cancel("test"))
	}

	booking.ClearEvents()
	return booking
}

// outboxMessageAt builds an outbox row for the channel sitting at the given
// saga status
func outboxMessageAt(channel domain.Channel, eventType string, status domain.SagaStatus) *domain.OutboxMessage {
	msg := domain.NewOutboxMessage(testSagaID, testBookingID, channel, eventType,
		json.RawMessage(`{}`), domain.BookingStatusPending)
	msg.SagaStatus = status
	return msg
}

// passthroughTx makes the mock transaction manager run the callback
func passthroughTx(tx *mocks.MockTxManager) {
	tx.EXPECT().WithinTx(mock.Anything, mock.Anything).
		RunAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}).Once()
}

// captureSaves collects every outbox message handed to Save
func captureSaves(outbox *mocks.MockOutboxStore, saved *[]*domain.OutboxMessage, times int) {
	outbox.EXPECT().Save(mock.Anything, mock.Anything).
		Run(func(ctx context.Context, msg *domain.OutboxMessage) {
			*saved = append(*saved, msg)
		}).Return(nil).Times(times)
}

func savedForChannel(saved []*domain.OutboxMessage, channel domain.Channel) *domain.OutboxMessage {
	for _, msg := range saved {
		if msg.Channel == channel {
			return msg
		}
	}
	return nil
}

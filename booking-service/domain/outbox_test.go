package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stayease/booking-system/shared/models"
)

func newTestOutboxMessage() *OutboxMessage {
	return NewOutboxMessage(
		models.GenerateUUID(),
		models.GenerateUUID(),
		ChannelPayment,
		"payment.deposit.requested",
		json.RawMessage(`{"amount":10000}`),
		BookingStatusPending,
	)
}

func TestNewOutboxMessage(t *testing.T) {
	msg := newTestOutboxMessage()

	assert.Equal(t, SagaStatusStarted, msg.SagaStatus)
	assert.Equal(t, BookingStatusPending, msg.BusinessStatus)
	assert.Equal(t, 1, msg.Version.Value)
	assert.Nil(t, msg.ProcessedAt)
}

func TestOutboxMessageMoveTo(t *testing.T) {
	msg := newTestOutboxMessage()

	msg.MoveTo(SagaStatusProcessing, BookingStatusDeposited)

	assert.Equal(t, SagaStatusProcessing, msg.SagaStatus)
	assert.Equal(t, BookingStatusDeposited, msg.BusinessStatus)
	assert.Equal(t, 2, msg.Version.Value)
}

func TestOutboxMessageCompensate(t *testing.T) {
	msg := newTestOutboxMessage()
	msg.MoveTo(SagaStatusProcessing, BookingStatusDeposited)
	msg.Stamp(time.Now())

	msg.Compensate("payment.refund.requested", BookingStatusCancelled)

	// The row becomes its own undo instruction and is republished by the relay
	assert.Equal(t, SagaStatusCompensating, msg.SagaStatus)
	assert.Equal(t, "payment.refund.requested", msg.EventType)
	assert.Equal(t, BookingStatusCancelled, msg.BusinessStatus)
	assert.Nil(t, msg.ProcessedAt)
	assert.Equal(t, 3, msg.Version.Value)
}

func TestOutboxMessageStamp(t *testing.T) {
	msg := newTestOutboxMessage()
	at := time.Now()

	msg.Stamp(at)

	assert.NotNil(t, msg.ProcessedAt)
	assert.Equal(t, at, *msg.ProcessedAt)
}

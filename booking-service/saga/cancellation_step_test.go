package saga_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/stayease/booking-system/booking-service/domain"
	"github.com/stayease/booking-system/booking-service/mocks"
	"github.com/stayease/booking-system/booking-service/saga"
	"github.com/stayease/booking-system/shared/events"
)

func TestCancellationStep_Process(t *testing.T) {
	event := &saga.SagaEvent{
		SagaID:    testSagaID,
		BookingID: testBookingID,
		Signal:    saga.SignalBookingCancellation,
		Reason:    "guest request",
	}

	t.Run("cancellation after deposit refunds, releases and notifies", func(t *testing.T) {
		bookings := mocks.NewMockBookingRepository(t)
		outbox := mocks.NewMockOutboxStore(t)
		tx := mocks.NewMockTxManager(t)

		paymentMsg := outboxMessageAt(domain.ChannelPayment, events.PaymentDepositRequestedEvent, domain.SagaStatusProcessing)
		roomMsg := outboxMessageAt(domain.ChannelRoom, events.RoomReservationRequestedEvent, domain.SagaStatusStarted)
		booking := bookingInStatus(t, domain.BookingStatusDeposited)

		outbox.EXPECT().FindBySagaIDAndStatuses(mock.Anything, testSagaID, domain.ChannelPayment,
			[]domain.SagaStatus{domain.SagaStatusStarted, domain.SagaStatusProcessing}).
			Return(paymentMsg, nil).Once()
		passthroughTx(tx)
		bookings.EXPECT().FindByID(mock.Anything, testBookingID).Return(booking, nil).Once()
		bookings.EXPECT().Save(mock.Anything, booking).Return(nil).Once()
		outbox.EXPECT().FindBySagaIDAndStatuses(mock.Anything, testSagaID, domain.ChannelRoom,
			[]domain.SagaStatus{domain.SagaStatusStarted, domain.SagaStatusProcessing}).
			Return(roomMsg, nil).Once()

		var saved []*domain.OutboxMessage
		captureSaves(outbox, &saved, 3)

		err := saga.NewCancellationStep(bookings, outbox, tx).Process(context.Background(), event)

		assert.NoError(t, err)
		assert.Equal(t, domain.BookingStatusCancelled, booking.Status)

		// Collected deposit turns into a refund request
		assert.Equal(t, events.PaymentRefundRequestedEvent, paymentMsg.EventType)
		assert.Equal(t, domain.SagaStatusCompensating, paymentMsg.SagaStatus)
		assert.Nil(t, paymentMsg.ProcessedAt)

		// Reserved room turns into a release request
		assert.Equal(t, events.RoomReleaseRequestedEvent, roomMsg.EventType)
		assert.Equal(t, domain.SagaStatusCompensating, roomMsg.SagaStatus)

		notifyMsg := savedForChannel(saved, domain.ChannelNotification)
		assert.NotNil(t, notifyMsg)
		assert.Equal(t, events.NotificationRequestedEvent, notifyMsg.EventType)
		assert.Contains(t, string(notifyMsg.Payload), "guest request")
	})

	t.Run("cancellation before any money moved leaves the charge to the provider", func(t *testing.T) {
		bookings := mocks.NewMockBookingRepository(t)
		outbox := mocks.NewMockOutboxStore(t)
		tx := mocks.NewMockTxManager(t)

		paymentMsg := outboxMessageAt(domain.ChannelPayment, events.PaymentDepositRequestedEvent, domain.SagaStatusStarted)
		booking := bookingInStatus(t, domain.BookingStatusPending)

		outbox.EXPECT().FindBySagaIDAndStatuses(mock.Anything, testSagaID, domain.ChannelPayment,
			[]domain.SagaStatus{domain.SagaStatusStarted, domain.SagaStatusProcessing}).
			Return(paymentMsg, nil).Once()
		passthroughTx(tx)
		bookings.EXPECT().FindByID(mock.Anything, testBookingID).Return(booking, nil).Once()
		bookings.EXPECT().Save(mock.Anything, booking).Return(nil).Once()
		outbox.EXPECT().FindBySagaIDAndStatuses(mock.Anything, testSagaID, domain.ChannelRoom,
			[]domain.SagaStatus{domain.SagaStatusStarted, domain.SagaStatusProcessing}).
			Return(nil, nil).Once()

		var saved []*domain.OutboxMessage
		captureSaves(outbox, &saved, 1)

		err := saga.NewCancellationStep(bookings, outbox, tx).Process(context.Background(), event)

		assert.NoError(t, err)
		assert.Equal(t, domain.BookingStatusCancelled, booking.Status)

		// The charge is still in flight: the leg stays open so that a
		// late completion becomes a refund and a failure closes it.
		assert.Equal(t, domain.SagaStatusStarted, paymentMsg.SagaStatus)
		assert.Equal(t, events.PaymentDepositRequestedEvent, paymentMsg.EventType)

		notifyMsg := savedForChannel(saved, domain.ChannelNotification)
		assert.NotNil(t, notifyMsg)
	})

	t.Run("replayed cancellation stops at the cancelled booking", func(t *testing.T) {
		bookings := mocks.NewMockBookingRepository(t)
		outbox := mocks.NewMockOutboxStore(t)
		tx := mocks.NewMockTxManager(t)

		// The open payment leg is still there, but the booking already
		// carries the cancellation; nothing fans out twice.
		paymentMsg := outboxMessageAt(domain.ChannelPayment, events.PaymentDepositRequestedEvent, domain.SagaStatusStarted)
		booking := bookingInStatus(t, domain.BookingStatusCancelled)

		outbox.EXPECT().FindBySagaIDAndStatuses(mock.Anything, testSagaID, domain.ChannelPayment,
			[]domain.SagaStatus{domain.SagaStatusStarted, domain.SagaStatusProcessing}).
			Return(paymentMsg, nil).Once()
		passthroughTx(tx)
		bookings.EXPECT().FindByID(mock.Anything, testBookingID).Return(booking, nil).Once()

		err := saga.NewCancellationStep(bookings, outbox, tx).Process(context.Background(), event)

		assert.NoError(t, err)
	})

	t.Run("cancellation with every leg resolved finds nothing to cancel", func(t *testing.T) {
		bookings := mocks.NewMockBookingRepository(t)
		outbox := mocks.NewMockOutboxStore(t)
		tx := mocks.NewMockTxManager(t)

		outbox.EXPECT().FindBySagaIDAndStatuses(mock.Anything, testSagaID, domain.ChannelPayment,
			[]domain.SagaStatus{domain.SagaStatusStarted, domain.SagaStatusProcessing}).
			Return(nil, nil).Once()

		err := saga.NewCancellationStep(bookings, outbox, tx).Process(context.Background(), event)

		assert.NoError(t, err)
	})
}

func TestCancellationStep_Rollback(t *testing.T) {
	bookings := mocks.NewMockBookingRepository(t)
	outbox := mocks.NewMockOutboxStore(t)
	tx := mocks.NewMockTxManager(t)

	// Cancelling a cancellation has no meaning
	err := saga.NewCancellationStep(bookings, outbox, tx).Rollback(context.Background(), &saga.SagaEvent{
		SagaID:    testSagaID,
		BookingID: testBookingID,
	})

	assert.NoError(t, err)
}

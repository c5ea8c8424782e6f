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

func TestCheckInStep_Process(t *testing.T) {
	event := &saga.SagaEvent{
		SagaID:    testSagaID,
		BookingID: testBookingID,
		Signal:    saga.SignalRoomReserved,
	}

	t.Run("reserved room checks the guest in and queues the notification", func(t *testing.T) {
		bookings := mocks.NewMockBookingRepository(t)
		outbox := mocks.NewMockOutboxStore(t)
		tx := mocks.NewMockTxManager(t)

		gateMsg := outboxMessageAt(domain.ChannelRoom, events.RoomReservationRequestedEvent, domain.SagaStatusStarted)
		booking := bookingInStatus(t, domain.BookingStatusDeposited)

		outbox.EXPECT().FindBySagaIDAndStatus(mock.Anything, testSagaID, domain.ChannelRoom, domain.SagaStatusStarted).
			Return(gateMsg, nil).Once()
		passthroughTx(tx)
		bookings.EXPECT().FindByID(mock.Anything, testBookingID).Return(booking, nil).Once()
		bookings.EXPECT().Save(mock.Anything, booking).Return(nil).Once()

		var saved []*domain.OutboxMessage
		captureSaves(outbox, &saved, 2)

		err := saga.NewCheckInStep(bookings, outbox, tx).Process(context.Background(), event)

		assert.NoError(t, err)
		assert.Equal(t, domain.BookingStatusCheckedIn, booking.Status)

		roomMsg := savedForChannel(saved, domain.ChannelRoom)
		assert.NotNil(t, roomMsg)
		assert.Equal(t, domain.SagaStatusProcessing, roomMsg.SagaStatus)
		assert.NotNil(t, roomMsg.ProcessedAt)

		notifyMsg := savedForChannel(saved, domain.ChannelNotification)
		assert.NotNil(t, notifyMsg)
		assert.Equal(t, events.NotificationRequestedEvent, notifyMsg.EventType)
		assert.Equal(t, domain.SagaStatusStarted, notifyMsg.SagaStatus)
	})

	t.Run("redelivered reservation does nothing", func(t *testing.T) {
		bookings := mocks.NewMockBookingRepository(t)
		outbox := mocks.NewMockOutboxStore(t)
		tx := mocks.NewMockTxManager(t)

		outbox.EXPECT().FindBySagaIDAndStatus(mock.Anything, testSagaID, domain.ChannelRoom, domain.SagaStatusStarted).
			Return(nil, nil).Once()

		err := saga.NewCheckInStep(bookings, outbox, tx).Process(context.Background(), event)

		assert.NoError(t, err)
	})

	t.Run("cancelled booking rejects the check-in and fails the leg", func(t *testing.T) {
		bookings := mocks.NewMockBookingRepository(t)
		outbox := mocks.NewMockOutboxStore(t)
		tx := mocks.NewMockTxManager(t)

		gateMsg := outboxMessageAt(domain.ChannelRoom, events.RoomReservationRequestedEvent, domain.SagaStatusStarted)
		booking := bookingInStatus(t, domain.BookingStatusCancelled)

		outbox.EXPECT().FindBySagaIDAndStatus(mock.Anything, testSagaID, domain.ChannelRoom, domain.SagaStatusStarted).
			Return(gateMsg, nil).Once()
		passthroughTx(tx)
		bookings.EXPECT().FindByID(mock.Anything, testBookingID).Return(booking, nil).Once()

		var saved []*domain.OutboxMessage
		captureSaves(outbox, &saved, 1)

		err := saga.NewCheckInStep(bookings, outbox, tx).Process(context.Background(), event)

		assert.ErrorIs(t, err, domain.ErrDomainRule)
		assert.Equal(t, domain.SagaStatusFailed, gateMsg.SagaStatus)
	})
}

func TestCheckInStep_Rollback(t *testing.T) {
	event := &saga.SagaEvent{
		SagaID:    testSagaID,
		BookingID: testBookingID,
		Signal:    saga.SignalRoomReservationFailed,
		Reason:    "no rooms available",
	}

	t.Run("reservation failure refunds a collected deposit", func(t *testing.T) {
		bookings := mocks.NewMockBookingRepository(t)
		outbox := mocks.NewMockOutboxStore(t)
		tx := mocks.NewMockTxManager(t)

		gateMsg := outboxMessageAt(domain.ChannelRoom, events.RoomReservationRequestedEvent, domain.SagaStatusStarted)
		paymentMsg := outboxMessageAt(domain.ChannelPayment, events.PaymentDepositRequestedEvent, domain.SagaStatusProcessing)
		booking := bookingInStatus(t, domain.BookingStatusDeposited)

		outbox.EXPECT().FindBySagaIDAndStatuses(mock.Anything, testSagaID, domain.ChannelRoom,
			[]domain.SagaStatus{domain.SagaStatusStarted, domain.SagaStatusProcessing}).
			Return(gateMsg, nil).Once()
		passthroughTx(tx)
		bookings.EXPECT().FindByID(mock.Anything, testBookingID).Return(booking, nil).Once()
		bookings.EXPECT().Save(mock.Anything, booking).Return(nil).Once()
		outbox.EXPECT().FindBySagaIDAndStatuses(mock.Anything, testSagaID, domain.ChannelPayment,
			[]domain.SagaStatus{domain.SagaStatusProcessing}).
			Return(paymentMsg, nil).Once()

		var saved []*domain.OutboxMessage
		captureSaves(outbox, &saved, 2)

		err := saga.NewCheckInStep(bookings, outbox, tx).Rollback(context.Background(), event)

		assert.NoError(t, err)
		assert.Equal(t, domain.BookingStatusCancelled, booking.Status)

		assert.Equal(t, events.PaymentRefundRequestedEvent, paymentMsg.EventType)
		assert.Equal(t, domain.SagaStatusCompensating, paymentMsg.SagaStatus)
		assert.Nil(t, paymentMsg.ProcessedAt)

		// The failed reservation never held a room, so the leg closes
		assert.Equal(t, domain.SagaStatusFailed, gateMsg.SagaStatus)
		assert.NotNil(t, gateMsg.ProcessedAt)
	})

	t.Run("reservation failure with no deposit closes the leg", func(t *testing.T) {
		bookings := mocks.NewMockBookingRepository(t)
		outbox := mocks.NewMockOutboxStore(t)
		tx := mocks.NewMockTxManager(t)

		gateMsg := outboxMessageAt(domain.ChannelRoom, events.RoomReservationRequestedEvent, domain.SagaStatusStarted)
		booking := bookingInStatus(t, domain.BookingStatusPending)

		outbox.EXPECT().FindBySagaIDAndStatuses(mock.Anything, testSagaID, domain.ChannelRoom,
			[]domain.SagaStatus{domain.SagaStatusStarted, domain.SagaStatusProcessing}).
			Return(gateMsg, nil).Once()
		passthroughTx(tx)
		bookings.EXPECT().FindByID(mock.Anything, testBookingID).Return(booking, nil).Once()
		bookings.EXPECT().Save(mock.Anything, booking).Return(nil).Once()
		outbox.EXPECT().FindBySagaIDAndStatuses(mock.Anything, testSagaID, domain.ChannelPayment,
			[]domain.SagaStatus{domain.SagaStatusProcessing}).
			Return(nil, nil).Once()

		var saved []*domain.OutboxMessage
		captureSaves(outbox, &saved, 1)

		err := saga.NewCheckInStep(bookings, outbox, tx).Rollback(context.Background(), event)

		assert.NoError(t, err)
		assert.Equal(t, domain.SagaStatusFailed, gateMsg.SagaStatus)
	})

	t.Run("room released confirms an already cancelled booking", func(t *testing.T) {
		bookings := mocks.NewMockBookingRepository(t)
		outbox := mocks.NewMockOutboxStore(t)
		tx := mocks.NewMockTxManager(t)

		gateMsg := outboxMessageAt(domain.ChannelRoom, events.RoomReleaseRequestedEvent, domain.SagaStatusProcessing)
		booking := bookingInStatus(t, domain.BookingStatusCancelled)

		outbox.EXPECT().FindBySagaIDAndStatuses(mock.Anything, testSagaID, domain.ChannelRoom,
			[]domain.SagaStatus{domain.SagaStatusProcessing, domain.SagaStatusCompensating}).
			Return(gateMsg, nil).Once()
		passthroughTx(tx)
		bookings.EXPECT().FindByID(mock.Anything, testBookingID).Return(booking, nil).Once()
		outbox.EXPECT().FindBySagaIDAndStatuses(mock.Anything, testSagaID, domain.ChannelPayment,
			[]domain.SagaStatus{domain.SagaStatusProcessing}).
			Return(nil, nil).Once()

		var saved []*domain.OutboxMessage
		captureSaves(outbox, &saved, 1)

		err := saga.NewCheckInStep(bookings, outbox, tx).Rollback(context.Background(), &saga.SagaEvent{
			SagaID:    testSagaID,
			BookingID: testBookingID,
			Signal:    saga.SignalRoomReleased,
		})

		assert.NoError(t, err)
		// Booking is already cancelled, only the room leg closes
		assert.Equal(t, domain.BookingStatusCancelled, booking.Status)
		assert.Equal(t, domain.SagaStatusFailed, gateMsg.SagaStatus)
	})

	t.Run("release confirmation closes a compensating leg", func(t *testing.T) {
		bookings := mocks.NewMockBookingRepository(t)
		outbox := mocks.NewMockOutboxStore(t)
		tx := mocks.NewMockTxManager(t)

		// The row was turned into a release instruction earlier; the
		// confirmation only has to close it.
		gateMsg := outboxMessageAt(domain.ChannelRoom, events.RoomReleaseRequestedEvent, domain.SagaStatusCompensating)
		gateMsg.BusinessStatus = domain.BookingStatusCancelled

		outbox.EXPECT().FindBySagaIDAndStatuses(mock.Anything, testSagaID, domain.ChannelRoom,
			[]domain.SagaStatus{domain.SagaStatusProcessing, domain.SagaStatusCompensating}).
			Return(gateMsg, nil).Once()
		passthroughTx(tx)

		var saved []*domain.OutboxMessage
		captureSaves(outbox, &saved, 1)

		err := saga.NewCheckInStep(bookings, outbox, tx).Rollback(context.Background(), &saga.SagaEvent{
			SagaID:    testSagaID,
			BookingID: testBookingID,
			Signal:    saga.SignalRoomReleased,
		})

		assert.NoError(t, err)
		assert.Equal(t, domain.SagaStatusFailed, gateMsg.SagaStatus)
		assert.NotNil(t, gateMsg.ProcessedAt)
		assert.Equal(t, domain.BookingStatusCancelled, gateMsg.BusinessStatus)
	})
}

package handlers

import (
	"context"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/stayease/booking-system/booking-service/domain"
	"github.com/stayease/booking-system/booking-service/mocks"
	"github.com/stayease/booking-system/booking-service/saga"
	"github.com/stayease/booking-system/shared/events"
	"github.com/stayease/booking-system/shared/models"
)

var (
	testSagaID    = models.ID("550e8400-e29b-41d4-a716-446655440001")
	testBookingID = models.ID("550e8400-e29b-41d4-a716-446655440002")
)

func newEvent(eventType string, data interface{}) *events.Event {
	return events.NewEvent(testBookingID, eventType, data).WithCorrelationID(testSagaID)
}

func TestBookingSagaHandlers_Handle_Routing(t *testing.T) {
	paymentData := map[string]interface{}{
		"saga_id":    testSagaID.String(),
		"booking_id": testBookingID.String(),
		"purpose":    "deposit",
	}
	checkoutData := map[string]interface{}{
		"saga_id":    testSagaID.String(),
		"booking_id": testBookingID.String(),
		"purpose":    "checkout",
	}
	roomData := map[string]interface{}{
		"saga_id":    testSagaID.String(),
		"booking_id": testBookingID.String(),
	}

	tests := []struct {
		name       string
		event      *events.Event
		setupMocks func(deposit, checkout, checkIn, cancellation *mocks.MockStep)
	}{
		{
			name:  "payment completed for deposit routes to deposit process",
			event: newEvent(events.PaymentCompletedEvent, paymentData),
			setupMocks: func(deposit, checkout, checkIn, cancellation *mocks.MockStep) {
				deposit.EXPECT().Process(mock.Anything, mock.MatchedBy(func(e *saga.SagaEvent) bool {
					return e.SagaID == testSagaID && e.Signal == saga.SignalPaymentCompleted
				})).Return(nil).Once()
			},
		},
		{
			name:  "payment completed for checkout routes to checkout process",
			event: newEvent(events.PaymentCompletedEvent, checkoutData),
			setupMocks: func(deposit, checkout, checkIn, cancellation *mocks.MockStep) {
				checkout.EXPECT().Process(mock.Anything, mock.Anything).Return(nil).Once()
			},
		},
		{
			name:  "payment failed for deposit routes to deposit rollback",
			event: newEvent(events.PaymentFailedEvent, paymentData),
			setupMocks: func(deposit, checkout, checkIn, cancellation *mocks.MockStep) {
				deposit.EXPECT().Rollback(mock.Anything, mock.MatchedBy(func(e *saga.SagaEvent) bool {
					return e.Signal == saga.SignalPaymentFailed
				})).Return(nil).Once()
			},
		},
		{
			name:  "payment cancelled for checkout routes to checkout rollback",
			event: newEvent(events.PaymentCancelledEvent, checkoutData),
			setupMocks: func(deposit, checkout, checkIn, cancellation *mocks.MockStep) {
				checkout.EXPECT().Rollback(mock.Anything, mock.Anything).Return(nil).Once()
			},
		},
		{
			name:  "payment expired routes to rollback",
			event: newEvent(events.PaymentExpiredEvent, paymentData),
			setupMocks: func(deposit, checkout, checkIn, cancellation *mocks.MockStep) {
				deposit.EXPECT().Rollback(mock.Anything, mock.MatchedBy(func(e *saga.SagaEvent) bool {
					return e.Signal == saga.SignalPaymentExpired
				})).Return(nil).Once()
			},
		},
		{
			name:  "payment pending is treated as a timeout failure",
			event: newEvent(events.PaymentPendingEvent, paymentData),
			setupMocks: func(deposit, checkout, checkIn, cancellation *mocks.MockStep) {
				deposit.EXPECT().Rollback(mock.Anything, mock.MatchedBy(func(e *saga.SagaEvent) bool {
					return e.Signal == saga.SignalPaymentPending
				})).Return(nil).Once()
			},
		},
		{
			name:  "payment refunded routes to deposit rollback",
			event: newEvent(events.PaymentRefundedEvent, paymentData),
			setupMocks: func(deposit, checkout, checkIn, cancellation *mocks.MockStep) {
				deposit.EXPECT().Rollback(mock.Anything, mock.MatchedBy(func(e *saga.SagaEvent) bool {
					return e.Signal == saga.SignalPaymentRefunded
				})).Return(nil).Once()
			},
		},
		{
			name:  "room reserved routes to check-in process",
			event: newEvent(events.RoomReservedEvent, roomData),
			setupMocks: func(deposit, checkout, checkIn, cancellation *mocks.MockStep) {
				checkIn.EXPECT().Process(mock.Anything, mock.MatchedBy(func(e *saga.SagaEvent) bool {
					return e.Signal == saga.SignalRoomReserved
				})).Return(nil).Once()
			},
		},
		{
			name:  "room reservation failed routes to check-in rollback",
			event: newEvent(events.RoomReservationFailedEvent, roomData),
			setupMocks: func(deposit, checkout, checkIn, cancellation *mocks.MockStep) {
				checkIn.EXPECT().Rollback(mock.Anything, mock.Anything).Return(nil).Once()
			},
		},
		{
			name:  "room released routes to check-in rollback",
			event: newEvent(events.RoomReleasedEvent, roomData),
			setupMocks: func(deposit, checkout, checkIn, cancellation *mocks.MockStep) {
				checkIn.EXPECT().Rollback(mock.Anything, mock.MatchedBy(func(e *saga.SagaEvent) bool {
					return e.Signal == saga.SignalRoomReleased
				})).Return(nil).Once()
			},
		},
		{
			name:  "cancellation request routes to cancellation process",
			event: newEvent(events.BookingCancellationRequestedEvent, roomData),
			setupMocks: func(deposit, checkout, checkIn, cancellation *mocks.MockStep) {
				cancellation.EXPECT().Process(mock.Anything, mock.MatchedBy(func(e *saga.SagaEvent) bool {
					return e.Signal == saga.SignalBookingCancellation
				})).Return(nil).Once()
			},
		},
		{
			name:       "unknown event type is ignored",
			event:      newEvent("loyalty.points.granted", roomData),
			setupMocks: func(deposit, checkout, checkIn, cancellation *mocks.MockStep) {},
		},
		{
			name: "saga ID falls back to the envelope correlation ID",
			event: newEvent(events.RoomReservedEvent, map[string]interface{}{
				"booking_id": testBookingID.String(),
			}),
			setupMocks: func(deposit, checkout, checkIn, cancellation *mocks.MockStep) {
				checkIn.EXPECT().Process(mock.Anything, mock.MatchedBy(func(e *saga.SagaEvent) bool {
					return e.SagaID == testSagaID
				})).Return(nil).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deposit := mocks.NewMockStep(t)
			checkout := mocks.NewMockStep(t)
			checkIn := mocks.NewMockStep(t)
			cancellation := mocks.NewMockStep(t)

			tt.setupMocks(deposit, checkout, checkIn, cancellation)

			h := NewBookingSagaHandlers(deposit, checkout, checkIn, cancellation)

			err := h.Handle(context.Background(), tt.event)

			assert.NoError(t, err)
		})
	}
}

func TestBookingSagaHandlers_Handle_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		event *events.Event
	}{
		{
			name:  "payload is not an object",
			event: newEvent(events.PaymentCompletedEvent, "garbage"),
		},
		{
			name: "unknown payment purpose",
			event: newEvent(events.PaymentCompletedEvent, map[string]interface{}{
				"saga_id":    testSagaID.String(),
				"booking_id": testBookingID.String(),
				"purpose":    "minibar",
			}),
		},
		{
			name: "missing booking ID",
			event: newEvent(events.RoomReservedEvent, map[string]interface{}{
				"saga_id": testSagaID.String(),
			}),
		},
		{
			name: "missing saga ID everywhere",
			event: events.NewEvent(testBookingID, events.BookingCancellationRequestedEvent, map[string]interface{}{
				"booking_id": testBookingID.String(),
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deposit := mocks.NewMockStep(t)
			checkout := mocks.NewMockStep(t)
			checkIn := mocks.NewMockStep(t)
			cancellation := mocks.NewMockStep(t)

			h := NewBookingSagaHandlers(deposit, checkout, checkIn, cancellation)

			// Malformed events are dropped, never redelivered, and no
			// step is invoked.
			err := h.Handle(context.Background(), tt.event)

			assert.NoError(t, err)
		})
	}
}

func TestBookingSagaHandlers_Handle_ErrorPolicy(t *testing.T) {
	event := newEvent(events.RoomReservedEvent, map[string]interface{}{
		"saga_id":    testSagaID.String(),
		"booking_id": testBookingID.String(),
	})

	tests := []struct {
		name        string
		stepError   error
		expectError bool
	}{
		{
			name:        "domain rule rejection is swallowed",
			stepError:   pkgerrors.Wrap(domain.ErrDomainRule, "check-in requires a deposited or paid booking"),
			expectError: false,
		},
		{
			name:        "concurrency conflict is swallowed",
			stepError:   pkgerrors.Wrap(domain.ErrConcurrencyConflict, "outbox message"),
			expectError: false,
		},
		{
			name:        "unmatched signal is swallowed",
			stepError:   pkgerrors.Wrap(saga.ErrUnmatchedSignal, "channel room"),
			expectError: false,
		},
		{
			name:        "infrastructure error propagates for redelivery",
			stepError:   pkgerrors.New("connection reset"),
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deposit := mocks.NewMockStep(t)
			checkout := mocks.NewMockStep(t)
			checkIn := mocks.NewMockStep(t)
			cancellation := mocks.NewMockStep(t)

			checkIn.EXPECT().Process(mock.Anything, mock.Anything).Return(tt.stepError).Once()

			h := NewBookingSagaHandlers(deposit, checkout, checkIn, cancellation)

			err := h.Handle(context.Background(), event)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

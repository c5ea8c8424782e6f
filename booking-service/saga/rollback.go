package saga

import (
	"github.com/pkg/errors"

	"github.com/stayease/booking-system/booking-service/domain"
)

// ErrUnmatchedSignal reports a failure signal with no rollback table entry.
// That is a defect in the table, not a runtime condition to swallow.
var ErrUnmatchedSignal = errors.New("no rollback statuses for signal")

// Signal is the outcome code a channel reports back to the saga
type Signal string

const (
	// Payment channel (provider vocabulary)
	SignalPaymentCompleted Signal = "payment_completed"
	SignalPaymentCancelled Signal = "payment_cancelled"
	SignalPaymentFailed    Signal = "payment_failed"
	SignalPaymentExpired   Signal = "payment_expired"
	SignalPaymentPending   Signal = "payment_pending"
	SignalPaymentRefunded  Signal = "payment_refunded"

	// Room channel
	SignalRoomReserved          Signal = "room_reserved"
	SignalRoomReservationFailed Signal = "room_reservation_failed"
	SignalRoomReleased          Signal = "room_released"

	// Guest-initiated cancellation
	SignalBookingCancellation Signal = "booking_cancellation"
)

// rollbackStatuses declares, per channel, which prior saga statuses a
// failure signal may compensate. A payment that completed but must unwind
// can only be sitting at started; a cancellation of an in-flight payment
// finds the row at processing; failures and timeouts may hit either.
// Confirmation signals (refunded, released) close legs that are already
// compensating.
var rollbackStatuses = map[domain.Channel]map[Signal][]domain.SagaStatus{
	domain.ChannelPayment: {
		SignalPaymentCompleted:    {domain.SagaStatusStarted},
		SignalPaymentCancelled:    {domain.SagaStatusProcessing},
		SignalPaymentFailed:       {domain.SagaStatusStarted, domain.SagaStatusProcessing},
		SignalPaymentExpired:      {domain.SagaStatusStarted, domain.SagaStatusProcessing},
		SignalPaymentPending:      {domain.SagaStatusStarted, domain.SagaStatusProcessing},
		SignalPaymentRefunded:     {domain.SagaStatusCompensating},
		SignalBookingCancellation: {domain.SagaStatusStarted, domain.SagaStatusProcessing},
	},
	domain.ChannelRoom: {
		SignalRoomReservationFailed: {domain.SagaStatusStarted, domain.SagaStatusProcessing},
		SignalRoomReleased:          {domain.SagaStatusProcessing, domain.SagaStatusCompensating},
		SignalBookingCancellation:   {domain.SagaStatusStarted, domain.SagaStatusProcessing},
	},
}

// containsStatus reports whether status is one of statuses
func containsStatus(statuses []domain.SagaStatus, status domain.SagaStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

// RollbackStatuses resolves the set of valid prior saga statuses for a
// failure signal on a channel
func RollbackStatuses(channel domain.Channel, signal Signal) ([]domain.SagaStatus, error) {
	table, ok := rollbackStatuses[channel]
	if !ok {
		return nil, errors.Wrapf(ErrUnmatchedSignal, "channel %s has no rollback table", channel)
	}

	statuses, ok := table[signal]
	if !ok {
		return nil, errors.Wrapf(ErrUnmatchedSignal, "channel %s, signal %s", channel, signal)
	}

	return statuses, nil
}

package domain

import "github.com/pkg/errors"

// bookingToSaga is the single place a booking status is translated into a
// saga coordination status.
var bookingToSaga = map[BookingStatus]SagaStatus{
	BookingStatusPending:    SagaStatusStarted,
	BookingStatusConfirmed:  SagaStatusStarted,
	BookingStatusDeposited:  SagaStatusProcessing,
	BookingStatusPaid:       SagaStatusProcessing,
	BookingStatusCheckedIn:  SagaStatusProcessing,
	BookingStatusCheckedOut: SagaStatusCompleted,
	BookingStatusCancelled:  SagaStatusCompensating,
}

// MapBookingStatusToSagaStatus translates a booking status into the saga
// coordination status. The mapping is total over AllBookingStatuses; an
// unknown status can only come from a programming error and is reported by
// ValidateStatusMapping at startup, never at runtime. For safety the zero
// lookup degrades to failed.
func MapBookingStatusToSagaStatus(status BookingStatus) SagaStatus {
	if s, ok := bookingToSaga[status]; ok {
		return s
	}
	return SagaStatusFailed
}

// ValidateStatusMapping verifies every reachable booking status has a saga
// status. Wiring calls this once during startup and refuses to boot on a gap.
func ValidateStatusMapping() error {
	for _, status := range AllBookingStatuses {
		if _, ok := bookingToSaga[status]; !ok {
			return errors.Errorf("booking status %q has no saga status mapping", status)
		}
	}
	return nil
}

package saga

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/stayease/booking-system/booking-service/domain"
	"github.com/stayease/booking-system/shared/events"
)

// CheckInStep advances the check-in process on the room channel: a
// confirmed room reservation moves the booking to checked-in and queues
// the guest notification.
type CheckInStep struct {
	bookings domain.BookingRepository
	outbox   domain.OutboxStore
	tx       domain.TxManager
}

// NewCheckInStep creates a new CheckInStep
func NewCheckInStep(bookings domain.BookingRepository, outbox domain.OutboxStore, tx domain.TxManager) *CheckInStep {
	return &CheckInStep{
		bookings: bookings,
		outbox:   outbox,
		tx:       tx,
	}
}

// Process handles a confirmed room reservation
func (s *CheckInStep) Process(ctx context.Context, event *SagaEvent) error {
	if err := validateEvent(event); err != nil {
		return errors.Wrap(err, "invalid saga event")
	}

	msg, err := s.outbox.FindBySagaIDAndStatus(ctx, event.SagaID, domain.ChannelRoom, domain.SagaStatusStarted)
	if err != nil {
		return errors.Wrap(err, "failed to query outbox")
	}
	if msg == nil {
		// Duplicate or stale delivery
		return nil
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		booking, err := s.bookings.FindByID(ctx, event.BookingID)
		if err != nil {
			return errors.Wrap(err, "failed to find booking")
		}
		if booking == nil {
			return errors.New("booking not found")
		}

		if err := booking.CheckIn(); err != nil {
			return err
		}

		if err := s.bookings.Save(ctx, booking); err != nil {
			return errors.Wrap(err, "failed to save booking")
		}
		booking.ClearEvents()

		msg.MoveTo(domain.MapBookingStatusToSagaStatus(booking.Status), booking.Status)
		msg.Stamp(time.Now())
		if err := s.outbox.Save(ctx, msg); err != nil {
			return errors.Wrap(err, "failed to save outbox message")
		}

		next, ok := domain.NextChannel(domain.ProcessCheckIn, domain.ChannelRoom)
		if !ok {
			return nil
		}

		payload, err := json.Marshal(nextMessagePayload{
			SagaID:    event.SagaID,
			BookingID: booking.ID,
			Status:    booking.Status,
		})
		if err != nil {
			return errors.Wrap(err, "failed to marshal next message payload")
		}

		nextMsg := domain.NewOutboxMessage(event.SagaID, booking.ID, next, events.NotificationRequestedEvent, payload, booking.Status)
		return errors.Wrap(s.outbox.Save(ctx, nextMsg), "failed to save next outbox message")
	})

	if err != nil && errors.Is(err, domain.ErrDomainRule) {
		markFailed(ctx, s.outbox, msg)
	}
	return err
}

// Rollback compensates the room leg after a reservation failure or release
func (s *CheckInStep) Rollback(ctx context.Context, event *SagaEvent) error {
	if err := validateEvent(event); err != nil {
		return errors.Wrap(err, "invalid saga event")
	}

	statuses, err := RollbackStatuses(domain.ChannelRoom, event.Signal)
	if err != nil {
		return err
	}

	msg, err := s.outbox.FindBySagaIDAndStatuses(ctx, event.SagaID, domain.ChannelRoom, statuses)
	if err != nil {
		return errors.Wrap(err, "failed to query outbox")
	}
	if msg == nil {
		// Already compensated
		return nil
	}

	if msg.SagaStatus == domain.SagaStatusCompensating {
		// Release confirmation for a leg that was already unwinding: the
		// booking and the payment leg were resolved when the release was
		// requested, so only this row is left to close.
		return s.tx.WithinTx(ctx, func(ctx context.Context) error {
			msg.MoveTo(domain.SagaStatusFailed, msg.BusinessStatus)
			msg.Stamp(time.Now())
			return errors.Wrap(s.outbox.Save(ctx, msg), "failed to save outbox message")
		})
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		booking, err := s.bookings.FindByID(ctx, event.BookingID)
		if err != nil {
			return errors.Wrap(err, "failed to find booking")
		}
		if booking == nil {
			return errors.New("booking not found")
		}

		if booking.Status != domain.BookingStatusCancelled {
			if err := booking.Cancel(event.Reason); err != nil {
				return err
			}
			if err := s.bookings.Save(ctx, booking); err != nil {
				return errors.Wrap(err, "failed to save booking")
			}
			booking.ClearEvents()
		}

		// Refund the deposit the payment leg already collected
		paymentMsg, err := s.outbox.FindBySagaIDAndStatuses(ctx, event.SagaID, domain.ChannelPayment,
			[]domain.SagaStatus{domain.SagaStatusProcessing})
		if err != nil {
			return errors.Wrap(err, "failed to query payment outbox message")
		}

		if paymentMsg != nil {
			paymentMsg.Compensate(events.PaymentRefundRequestedEvent, booking.Status)
			if err := s.outbox.Save(ctx, paymentMsg); err != nil {
				return errors.Wrap(err, "failed to save payment outbox message")
			}
		}

		// The reservation failed or the room is already released; either
		// way the room leg itself has nothing left to confirm.
		msg.MoveTo(domain.SagaStatusFailed, booking.Status)
		msg.Stamp(time.Now())
		return errors.Wrap(s.outbox.Save(ctx, msg), "failed to save outbox message")
	})
}

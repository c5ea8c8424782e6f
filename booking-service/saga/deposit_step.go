package saga

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/stayease/booking-system/booking-service/domain"
	"github.com/stayease/booking-system/shared/events"
)

// DepositStep advances the deposit process on the payment channel: the
// deposit payment result moves the booking to deposited and queues the
// room reservation request for the next channel.
type DepositStep struct {
	bookings domain.BookingRepository
	outbox   domain.OutboxStore
	tx       domain.TxManager
}

// NewDepositStep creates a new DepositStep
func NewDepositStep(bookings domain.BookingRepository, outbox domain.OutboxStore, tx domain.TxManager) *DepositStep {
	return &DepositStep{
		bookings: bookings,
		outbox:   outbox,
		tx:       tx,
	}
}

// Process handles a completed deposit payment
func (s *DepositStep) Process(ctx context.Context, event *SagaEvent) error {
	if err := validateEvent(event); err != nil {
		return errors.Wrap(err, "invalid saga event")
	}

	msg, err := s.outbox.FindBySagaIDAndStatus(ctx, event.SagaID, domain.ChannelPayment, domain.SagaStatusStarted)
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

		if booking.Status == domain.BookingStatusCancelled {
			// The guest cancelled while the charge was in flight and the
			// money landed anyway. The leg must unwind with a refund, not
			// close as a rejection.
			return s.refundLateCharge(ctx, msg, booking)
		}

		if err := booking.Deposit(); err != nil {
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

		next, ok := domain.NextChannel(domain.ProcessDeposit, domain.ChannelPayment)
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

		nextMsg := domain.NewOutboxMessage(event.SagaID, booking.ID, next, events.RoomReservationRequestedEvent, payload, booking.Status)
		return errors.Wrap(s.outbox.Save(ctx, nextMsg), "failed to save next outbox message")
	})

	if err != nil && errors.Is(err, domain.ErrDomainRule) {
		markFailed(ctx, s.outbox, msg)
	}
	return err
}

// refundLateCharge turns a charge that completed after the guest cancelled
// into its refund instruction. The leg may only gate on the statuses the
// rollback table declares for a completed charge; anything else means it
// was already resolved.
func (s *DepositStep) refundLateCharge(ctx context.Context, msg *domain.OutboxMessage, booking *domain.Booking) error {
	statuses, err := RollbackStatuses(domain.ChannelPayment, SignalPaymentCompleted)
	if err != nil {
		return err
	}
	if !containsStatus(statuses, msg.SagaStatus) {
		return nil
	}

	msg.Compensate(events.PaymentRefundRequestedEvent, booking.Status)
	return errors.Wrap(s.outbox.Save(ctx, msg), "failed to save outbox message")
}

// Rollback compensates the deposit leg after a payment failure signal
func (s *DepositStep) Rollback(ctx context.Context, event *SagaEvent) error {
	if err := validateEvent(event); err != nil {
		return errors.Wrap(err, "invalid saga event")
	}

	statuses, err := RollbackStatuses(domain.ChannelPayment, event.Signal)
	if err != nil {
		return err
	}

	msg, err := s.outbox.FindBySagaIDAndStatuses(ctx, event.SagaID, domain.ChannelPayment, statuses)
	if err != nil {
		return errors.Wrap(err, "failed to query outbox")
	}
	if msg == nil {
		// Already compensated
		return nil
	}

	if event.Signal == SignalPaymentRefunded {
		// Refund confirmation: the unwinding leg is done
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

		roomMsg, err := s.outbox.FindBySagaIDAndStatuses(ctx, event.SagaID, domain.ChannelRoom,
			[]domain.SagaStatus{domain.SagaStatusStarted, domain.SagaStatusProcessing})
		if err != nil {
			return errors.Wrap(err, "failed to query room outbox message")
		}

		if roomMsg != nil {
			// The room leg already advanced: turn its row into the release
			// instruction. The release confirmation closes that row later.
			roomMsg.Compensate(events.RoomReleaseRequestedEvent, booking.Status)
			if err := s.outbox.Save(ctx, roomMsg); err != nil {
				return errors.Wrap(err, "failed to save room outbox message")
			}
		}

		// No money moved on a failed charge, so this leg has nothing of
		// its own left to confirm.
		msg.MoveTo(domain.SagaStatusFailed, booking.Status)
		msg.Stamp(time.Now())
		return errors.Wrap(s.outbox.Save(ctx, msg), "failed to save outbox message")
	})
}

package saga

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/stayease/booking-system/booking-service/domain"
	"github.com/stayease/booking-system/shared/events"
)

// CheckoutStep advances the checkout process on the payment channel: the
// final balance payment closes the stay and queues the checkout
// notification. There is nothing to compensate once the guest has stayed,
// so a failed checkout payment marks the leg failed and notifies instead
// of cancelling the booking.
type CheckoutStep struct {
	bookings domain.BookingRepository
	outbox   domain.OutboxStore
	tx       domain.TxManager
}

// NewCheckoutStep creates a new CheckoutStep
func NewCheckoutStep(bookings domain.BookingRepository, outbox domain.OutboxStore, tx domain.TxManager) *CheckoutStep {
	return &CheckoutStep{
		bookings: bookings,
		outbox:   outbox,
		tx:       tx,
	}
}

// Process handles a completed checkout payment
func (s *CheckoutStep) Process(ctx context.Context, event *SagaEvent) error {
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

		if err := booking.CheckOut(); err != nil {
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

		next, ok := domain.NextChannel(domain.ProcessCheckout, domain.ChannelPayment)
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

// Rollback resolves a failed checkout payment. The booking keeps its
// checked-in status; the payment leg is closed as failed and the guest is
// notified so the balance can be settled out of band.
func (s *CheckoutStep) Rollback(ctx context.Context, event *SagaEvent) error {
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

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		msg.MoveTo(domain.SagaStatusFailed, msg.BusinessStatus)
		msg.Stamp(time.Now())
		if err := s.outbox.Save(ctx, msg); err != nil {
			return errors.Wrap(err, "failed to save outbox message")
		}

		payload, err := json.Marshal(nextMessagePayload{
			SagaID:    event.SagaID,
			BookingID: event.BookingID,
			Status:    msg.BusinessStatus,
			Reason:    event.Reason,
		})
		if err != nil {
			return errors.Wrap(err, "failed to marshal notification payload")
		}

		notifyMsg := domain.NewOutboxMessage(event.SagaID, event.BookingID, domain.ChannelNotification,
			events.NotificationRequestedEvent, payload, msg.BusinessStatus)
		return errors.Wrap(s.outbox.Save(ctx, notifyMsg), "failed to save notification outbox message")
	})
}

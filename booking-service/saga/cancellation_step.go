package saga

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/stayease/booking-system/booking-service/domain"
	"github.com/stayease/booking-system/shared/events"
)

// CancellationStep runs the cancellation process: the booking is cancelled
// and every channel that already advanced is sent its undo instruction
// (payment refund, room release) plus a guest notification. Cancellation
// is itself the compensation path, so Rollback has nothing to undo.
type CancellationStep struct {
	bookings domain.BookingRepository
	outbox   domain.OutboxStore
	tx       domain.TxManager
}

// NewCancellationStep creates a new CancellationStep
func NewCancellationStep(bookings domain.BookingRepository, outbox domain.OutboxStore, tx domain.TxManager) *CancellationStep {
	return &CancellationStep{
		bookings: bookings,
		outbox:   outbox,
		tx:       tx,
	}
}

// Process handles a cancellation request
func (s *CancellationStep) Process(ctx context.Context, event *SagaEvent) error {
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
		// Already cancelled, or nothing to cancel
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
			// The first cancellation already fanned out the undo work
			return nil
		}

		if err := booking.Cancel(event.Reason); err != nil {
			return err
		}
		if err := s.bookings.Save(ctx, booking); err != nil {
			return errors.Wrap(err, "failed to save booking")
		}
		booking.ClearEvents()

		// Payment leg: a deposit that was collected is refunded. A charge
		// still in flight stays open until the provider reports: a late
		// completion becomes a refund, a failure closes the leg.
		if msg.SagaStatus == domain.SagaStatusProcessing {
			msg.Compensate(events.PaymentRefundRequestedEvent, booking.Status)
			if err := s.outbox.Save(ctx, msg); err != nil {
				return errors.Wrap(err, "failed to save payment outbox message")
			}
		}

		// Room leg
		roomMsg, err := s.outbox.FindBySagaIDAndStatuses(ctx, event.SagaID, domain.ChannelRoom,
			[]domain.SagaStatus{domain.SagaStatusStarted, domain.SagaStatusProcessing})
		if err != nil {
			return errors.Wrap(err, "failed to query room outbox message")
		}
		if roomMsg != nil {
			roomMsg.Compensate(events.RoomReleaseRequestedEvent, booking.Status)
			if err := s.outbox.Save(ctx, roomMsg); err != nil {
				return errors.Wrap(err, "failed to save room outbox message")
			}
		}

		payload, err := json.Marshal(nextMessagePayload{
			SagaID:    event.SagaID,
			BookingID: booking.ID,
			Status:    booking.Status,
			Reason:    event.Reason,
		})
		if err != nil {
			return errors.Wrap(err, "failed to marshal notification payload")
		}

		notifyMsg := domain.NewOutboxMessage(event.SagaID, booking.ID, domain.ChannelNotification,
			events.NotificationRequestedEvent, payload, booking.Status)
		return errors.Wrap(s.outbox.Save(ctx, notifyMsg), "failed to save notification outbox message")
	})

	if err != nil && errors.Is(err, domain.ErrDomainRule) {
		markFailed(ctx, s.outbox, msg)
	}
	return err
}

// Rollback is a no-op: cancelling a cancellation has no meaning, and the
// gate in Process already makes replays silent.
func (s *CancellationStep) Rollback(ctx context.Context, event *SagaEvent) error {
	return nil
}

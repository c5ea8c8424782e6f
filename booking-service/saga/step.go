package saga

import (
	"context"
	"log"
	"time"

	"github.com/pkg/errors"

	"github.com/stayease/booking-system/booking-service/domain"
	"github.com/stayease/booking-system/shared/models"
)

// Purpose distinguishes what a payment-channel result pays for
type Purpose string

const (
	PurposeDeposit  Purpose = "deposit"
	PurposeCheckout Purpose = "checkout"
)

// SagaEvent is the dispatcher's normalized view of an inbound bus event:
// correlation identifiers plus the channel outcome that drives routing.
type SagaEvent struct {
	SagaID    models.ID
	BookingID models.ID
	Signal    Signal
	Purpose   Purpose
	Amount    models.Money
	Reason    string
}

// Step is a unit of saga business logic. Process advances the saga;
// Rollback compensates it. Both are idempotent: when the expected outbox
// row is absent the call is a duplicate or stale delivery and returns
// without side effects.
type Step interface {
	Process(ctx context.Context, event *SagaEvent) error
	Rollback(ctx context.Context, event *SagaEvent) error
}

// nextMessagePayload is the envelope persisted for the next channel's
// outbox row when a step completes.
type nextMessagePayload struct {
	SagaID    models.ID            `json:"saga_id"`
	BookingID models.ID            `json:"booking_id"`
	Status    domain.BookingStatus `json:"booking_status"`
	Amount    *models.Money        `json:"amount,omitempty"`
	Reason    string               `json:"reason,omitempty"`
}

func validateEvent(event *SagaEvent) error {
	if event.SagaID.String() == "" {
		return errors.New("saga ID is required")
	}
	if event.BookingID.String() == "" {
		return errors.New("booking ID is required")
	}
	return nil
}

// markFailed stamps the gate row as failed after a business-rule rejection.
// Best effort: the original rejection is what the caller reports.
func markFailed(ctx context.Context, store domain.OutboxStore, msg *domain.OutboxMessage) {
	msg.MoveTo(domain.SagaStatusFailed, msg.BusinessStatus)
	msg.Stamp(time.Now())
	if err := store.Save(ctx, msg); err != nil {
		log.Printf("failed to mark outbox message %s as failed: %v", msg.ID, err)
	}
}

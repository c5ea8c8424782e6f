package handlers

import (
	"context"
	"encoding/json"
	"log"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/stayease/booking-system/booking-service/domain"
	"github.com/stayease/booking-system/booking-service/saga"
	"github.com/stayease/booking-system/shared/events"
	"github.com/stayease/booking-system/shared/models"
	"github.com/stayease/booking-system/shared/telemetry"
)

// BookingSagaHandlers dispatches inbound bus events to the saga steps.
// Events arrive at-least-once and possibly out of order; every route ends
// in an idempotent step, and one event's failure never blocks its
// siblings: each is handled by its own subscriber worker and only
// infrastructure errors propagate to trigger redelivery.
type BookingSagaHandlers struct {
	depositStep      saga.Step
	checkoutStep     saga.Step
	checkInStep      saga.Step
	cancellationStep saga.Step
}

// NewBookingSagaHandlers creates new booking saga event handlers
func NewBookingSagaHandlers(
	depositStep saga.Step,
	checkoutStep saga.Step,
	checkInStep saga.Step,
	cancellationStep saga.Step,
) *BookingSagaHandlers {
	return &BookingSagaHandlers{
		depositStep:      depositStep,
		checkoutStep:     checkoutStep,
		checkInStep:      checkInStep,
		cancellationStep: cancellationStep,
	}
}

// HandlerID returns the unique identifier for this event handler
func (h *BookingSagaHandlers) HandlerID() string {
	return "booking-saga-event-handler"
}

// Handle implements the events.EventHandler interface
func (h *BookingSagaHandlers) Handle(ctx context.Context, event *events.Event) error {
	switch event.EventType {
	case events.PaymentCompletedEvent:
		return h.handlePaymentResult(ctx, event, saga.SignalPaymentCompleted, false)
	case events.PaymentCancelledEvent:
		return h.handlePaymentResult(ctx, event, saga.SignalPaymentCancelled, true)
	case events.PaymentFailedEvent:
		return h.handlePaymentResult(ctx, event, saga.SignalPaymentFailed, true)
	case events.PaymentExpiredEvent:
		return h.handlePaymentResult(ctx, event, saga.SignalPaymentExpired, true)
	case events.PaymentPendingEvent:
		// A pending result only reaches us via the provider's timeout sweep;
		// it is a failure category, not a progress report.
		return h.handlePaymentResult(ctx, event, saga.SignalPaymentPending, true)
	case events.PaymentRefundedEvent:
		// Refund confirmation closes a compensating payment leg
		return h.handlePaymentResult(ctx, event, saga.SignalPaymentRefunded, true)
	case events.RoomReservedEvent:
		return h.handleRoomResult(ctx, event, saga.SignalRoomReserved, false)
	case events.RoomReservationFailedEvent:
		return h.handleRoomResult(ctx, event, saga.SignalRoomReservationFailed, true)
	case events.RoomReleasedEvent:
		return h.handleRoomResult(ctx, event, saga.SignalRoomReleased, true)
	case events.BookingCancellationRequestedEvent:
		return h.handleCancellationRequest(ctx, event)
	default:
		// Unknown event type, ignore
		return nil
	}
}

func (h *BookingSagaHandlers) handlePaymentResult(ctx context.Context, event *events.Event, signal saga.Signal, rollback bool) error {
	var data PaymentResultData
	if err := h.parseEventData(event, &data); err != nil {
		h.dropMalformed(ctx, event, err)
		return nil
	}

	sagaEvent := &saga.SagaEvent{
		SagaID:    correlate(event, data.SagaID),
		BookingID: data.BookingID,
		Signal:    signal,
		Purpose:   saga.Purpose(data.Purpose),
		Amount:    data.Amount,
		Reason:    data.Reason,
	}

	if err := h.validateCorrelation(ctx, event, sagaEvent); err != nil {
		return nil
	}

	var step saga.Step
	switch sagaEvent.Purpose {
	case saga.PurposeDeposit:
		step = h.depositStep
	case saga.PurposeCheckout:
		step = h.checkoutStep
	default:
		h.dropMalformed(ctx, event, errors.Errorf("unknown payment purpose %q", data.Purpose))
		return nil
	}

	if rollback {
		return h.finish(ctx, event, step.Rollback(ctx, sagaEvent))
	}
	return h.finish(ctx, event, step.Process(ctx, sagaEvent))
}

func (h *BookingSagaHandlers) handleRoomResult(ctx context.Context, event *events.Event, signal saga.Signal, rollback bool) error {
	var data RoomResultData
	if err := h.parseEventData(event, &data); err != nil {
		h.dropMalformed(ctx, event, err)
		return nil
	}

	sagaEvent := &saga.SagaEvent{
		SagaID:    correlate(event, data.SagaID),
		BookingID: data.BookingID,
		Signal:    signal,
		Reason:    data.Reason,
	}

	if err := h.validateCorrelation(ctx, event, sagaEvent); err != nil {
		return nil
	}

	if rollback {
		return h.finish(ctx, event, h.checkInStep.Rollback(ctx, sagaEvent))
	}
	return h.finish(ctx, event, h.checkInStep.Process(ctx, sagaEvent))
}

func (h *BookingSagaHandlers) handleCancellationRequest(ctx context.Context, event *events.Event) error {
	var data CancellationRequestData
	if err := h.parseEventData(event, &data); err != nil {
		h.dropMalformed(ctx, event, err)
		return nil
	}

	sagaEvent := &saga.SagaEvent{
		SagaID:    correlate(event, data.SagaID),
		BookingID: data.BookingID,
		Signal:    saga.SignalBookingCancellation,
		Reason:    data.Reason,
	}

	if err := h.validateCorrelation(ctx, event, sagaEvent); err != nil {
		return nil
	}

	return h.finish(ctx, event, h.cancellationStep.Process(ctx, sagaEvent))
}

// finish applies the propagation policy: duplicate deliveries already
// returned nil inside the step, business rejections and optimistic
// conflicts are logged and swallowed, only infrastructure failures
// propagate so the bus redelivers.
func (h *BookingSagaHandlers) finish(ctx context.Context, event *events.Event, err error) error {
	switch {
	case err == nil:
		h.count(ctx, event, "ok")
		return nil
	case errors.Is(err, domain.ErrDomainRule):
		log.Printf("saga step rejected event %s (%s): %v", event.ID, event.EventType, err)
		h.count(ctx, event, "domain_rule_violation")
		return nil
	case errors.Is(err, domain.ErrConcurrencyConflict):
		log.Printf("concurrency conflict handling event %s (%s): %v", event.ID, event.EventType, err)
		h.count(ctx, event, "concurrency_conflict")
		return nil
	case errors.Is(err, saga.ErrUnmatchedSignal):
		log.Printf("rollback table defect handling event %s (%s): %v", event.ID, event.EventType, err)
		h.count(ctx, event, "unmatched_signal")
		return nil
	default:
		h.count(ctx, event, "error")
		return err
	}
}

func (h *BookingSagaHandlers) validateCorrelation(ctx context.Context, event *events.Event, sagaEvent *saga.SagaEvent) error {
	if sagaEvent.SagaID.String() == "" {
		err := errors.New("missing saga ID")
		h.dropMalformed(ctx, event, err)
		return err
	}
	if sagaEvent.BookingID.String() == "" {
		err := errors.New("missing booking ID")
		h.dropMalformed(ctx, event, err)
		return err
	}
	return nil
}

func (h *BookingSagaHandlers) dropMalformed(ctx context.Context, event *events.Event, err error) {
	log.Printf("dropping malformed event %s (%s): %v", event.ID, event.EventType, err)
	h.count(ctx, event, "malformed")
}

func (h *BookingSagaHandlers) count(ctx context.Context, event *events.Event, outcome string) {
	telemetry.RecordCounter(ctx, "saga_events_total", "Inbound saga events by outcome", 1,
		attribute.String("event_type", event.EventType),
		attribute.String("outcome", outcome),
	)
}

// parseEventData parses event data into the specified struct
func (h *BookingSagaHandlers) parseEventData(event *events.Event, target interface{}) error {
	jsonData, err := json.Marshal(event.Data)
	if err != nil {
		return errors.Wrap(err, "failed to marshal event data")
	}

	if err := json.Unmarshal(jsonData, target); err != nil {
		return errors.Wrap(err, "failed to unmarshal event data")
	}

	return nil
}

// correlate prefers the payload saga ID and falls back to the envelope
// correlation ID
func correlate(event *events.Event, sagaID models.ID) models.ID {
	if sagaID.String() != "" {
		return sagaID
	}
	return event.CorrelationID
}

// Inbound event data structures
type PaymentResultData struct {
	SagaID        models.ID    `json:"saga_id"`
	BookingID     models.ID    `json:"booking_id"`
	Purpose       string       `json:"purpose"`
	Amount        models.Money `json:"amount"`
	TransactionID string       `json:"transaction_id,omitempty"`
	Reason        string       `json:"reason,omitempty"`
}

type RoomResultData struct {
	SagaID    models.ID `json:"saga_id"`
	BookingID models.ID `json:"booking_id"`
	RoomID    string    `json:"room_id,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

type CancellationRequestData struct {
	SagaID    models.ID `json:"saga_id"`
	BookingID models.ID `json:"booking_id"`
	Reason    string    `json:"reason,omitempty"`
}

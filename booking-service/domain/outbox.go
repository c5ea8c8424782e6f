package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/stayease/booking-system/shared/models"
)

// ErrConcurrencyConflict is returned when an outbox row was updated
// concurrently. The caller decides between log-and-drop (duplicate
// delivery) and leaving the event to the bus redelivery policy.
var ErrConcurrencyConflict = errors.New("outbox message concurrency conflict")

// SagaStatus is the coordination state of one channel of a saga,
// independent of the business status of the booking.
type SagaStatus string

const (
	SagaStatusStarted      SagaStatus = "started"
	SagaStatusProcessing   SagaStatus = "processing"
	SagaStatusCompensating SagaStatus = "compensating"
	SagaStatusCompleted    SagaStatus = "completed"
	SagaStatusFailed       SagaStatus = "failed"
)

// IsTerminal reports whether no further transition is possible
func (s SagaStatus) IsTerminal() bool {
	return s == SagaStatusCompleted || s == SagaStatusFailed
}

// Channel identifies the downstream concern an outbox message targets
type Channel string

const (
	ChannelPayment      Channel = "payment"
	ChannelRoom         Channel = "room"
	ChannelNotification Channel = "notification"
)

// AllChannels lists every known channel
var AllChannels = []Channel{ChannelPayment, ChannelRoom, ChannelNotification}

// OutboxMessage is the persisted intent to notify a downstream channel,
// written in the same transaction as the booking mutation it belongs to.
// For a given (saga, channel) there is at most one message in each
// non-terminal saga status; that uniqueness is what makes the
// (sagaID, status) lookup an idempotency gate.
type OutboxMessage struct {
	ID             models.ID
	SagaID         models.ID
	BookingID      models.ID
	Channel        Channel
	EventType      string
	Payload        json.RawMessage
	BusinessStatus BookingStatus
	SagaStatus     SagaStatus
	CreatedAt      time.Time
	ProcessedAt    *time.Time
	Version        models.Version
}

// NewOutboxMessage creates a message in the started state
func NewOutboxMessage(sagaID, bookingID models.ID, channel Channel, eventType string, payload json.RawMessage, businessStatus BookingStatus) *OutboxMessage {
	return &OutboxMessage{
		ID:             models.GenerateUUID(),
		SagaID:         sagaID,
		BookingID:      bookingID,
		Channel:        channel,
		EventType:      eventType,
		Payload:        payload,
		BusinessStatus: businessStatus,
		SagaStatus:     SagaStatusStarted,
		CreatedAt:      time.Now(),
		Version:        models.NewVersion(),
	}
}

// MoveTo transitions the message to a new coordination status, snapshotting
// the booking status that drove the transition
func (m *OutboxMessage) MoveTo(status SagaStatus, businessStatus BookingStatus) {
	m.SagaStatus = status
	m.BusinessStatus = businessStatus
	m.Version = m.Version.Update()
}

// Stamp records the moment the message was consumed or relayed
func (m *OutboxMessage) Stamp(at time.Time) {
	m.ProcessedAt = &at
}

// Compensate turns the message into its own undo instruction: the row moves
// to compensating, carries the compensating event type, and is un-stamped so
// the relay publishes it to the channel that must unwind. Reusing the row
// preserves the one-non-terminal-message-per-channel invariant.
func (m *OutboxMessage) Compensate(eventType string, businessStatus BookingStatus) {
	m.EventType = eventType
	m.SagaStatus = SagaStatusCompensating
	m.BusinessStatus = businessStatus
	m.ProcessedAt = nil
	m.Version = m.Version.Update()
}

// OutboxStore persists outbox messages. Absence is a normal idempotency
// outcome: the Find methods return (nil, nil) when no row matches.
type OutboxStore interface {
	// FindBySagaIDAndStatus is the idempotency gate for process calls.
	FindBySagaIDAndStatus(ctx context.Context, sagaID models.ID, channel Channel, status SagaStatus) (*OutboxMessage, error)
	// FindBySagaIDAndStatuses serves rollback, where several prior
	// statuses are valid depending on the failure signal.
	FindBySagaIDAndStatuses(ctx context.Context, sagaID models.ID, channel Channel, statuses []SagaStatus) (*OutboxMessage, error)
	FindBySagaID(ctx context.Context, sagaID models.ID) ([]*OutboxMessage, error)
	// Save upserts the message. It must run inside the same transaction
	// as the booking mutation; a lost optimistic update surfaces as
	// ErrConcurrencyConflict.
	Save(ctx context.Context, msg *OutboxMessage) error
	// FindUnsent returns messages the relay still has to publish.
	FindUnsent(ctx context.Context, limit int) ([]*OutboxMessage, error)
	MarkProcessed(ctx context.Context, id models.ID, at time.Time) error
}

// TxManager runs fn inside a single local database transaction. Repositories
// and the outbox store pick the transaction up from the context, so a saga
// step's booking mutation and outbox writes commit or roll back together.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

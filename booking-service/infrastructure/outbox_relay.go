package infrastructure

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/stayease/booking-system/booking-service/domain"
	"github.com/stayease/booking-system/shared/events"
	"github.com/stayease/booking-system/shared/telemetry"
)

// OutboxRelay polls the outbox for unsent messages and publishes them to
// the event bus. Delivery is at least once: a crash between Publish and
// MarkProcessed republishes the message on the next tick, and consumers
// rely on their idempotency gates to absorb the duplicate.
type OutboxRelay struct {
	store     domain.OutboxStore
	publisher events.Publisher
	options   *outboxRelayOptions

	running atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}
	mux     sync.Mutex
}

type outboxRelayOptions struct {
	pollInterval time.Duration
	batchSize    int
}

// OutboxRelayOption configures the relay
type OutboxRelayOption func(*outboxRelayOptions)

func WithPollInterval(interval time.Duration) OutboxRelayOption {
	return func(o *outboxRelayOptions) {
		o.pollInterval = interval
	}
}

func WithBatchSize(size int) OutboxRelayOption {
	return func(o *outboxRelayOptions) {
		o.batchSize = size
	}
}

// NewOutboxRelay creates a new outbox relay
func NewOutboxRelay(store domain.OutboxStore, publisher events.Publisher, opts ...OutboxRelayOption) *OutboxRelay {
	options := &outboxRelayOptions{
		pollInterval: 500 * time.Millisecond,
		batchSize:    50,
	}

	for _, opt := range opts {
		opt(options)
	}

	return &OutboxRelay{
		store:     store,
		publisher: publisher,
		options:   options,
	}
}

// Start starts the relay loop
func (r *OutboxRelay) Start(ctx context.Context) error {
	r.mux.Lock()
	defer r.mux.Unlock()

	// Checked under the lock so concurrent Start calls cannot both spawn
	// a loop and orphan the first one's cancel handle.
	if r.running.Load() {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})

	go r.run(ctx)

	r.running.Store(true)

	return nil
}

// Stop stops the relay loop and waits for the in-flight batch to finish
func (r *OutboxRelay) Stop(ctx context.Context) error {
	r.mux.Lock()
	defer r.mux.Unlock()

	if !r.running.Load() {
		return nil
	}

	if r.cancel != nil {
		r.cancel()
	}

	select {
	case <-r.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	r.cancel = nil
	r.running.Store(false)

	return nil
}

func (r *OutboxRelay) run(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.options.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.relayBatch(ctx); err != nil {
				log.Printf("outbox relay: %v", err)
			}
		}
	}
}

// relayBatch publishes one batch of unsent messages. A failed publish
// leaves the row unstamped and moves on, so one broken message does not
// starve the rest of the batch.
func (r *OutboxRelay) relayBatch(ctx context.Context) error {
	msgs, err := r.store.FindUnsent(ctx, r.options.batchSize)
	if err != nil {
		return err
	}

	for _, msg := range msgs {
		if err := r.relay(ctx, msg); err != nil {
			log.Printf("outbox relay: message %s: %v", msg.ID, err)
			r.count(ctx, msg, "error")
			continue
		}
		r.count(ctx, msg, "published")
	}

	return nil
}

func (r *OutboxRelay) relay(ctx context.Context, msg *domain.OutboxMessage) error {
	event := events.NewEvent(msg.BookingID, msg.EventType, msg.Payload).
		WithCorrelationID(msg.SagaID).
		WithMetadata("channel", string(msg.Channel)).
		WithMetadata("saga_status", string(msg.SagaStatus))

	if err := r.publisher.Publish(ctx, event); err != nil {
		return err
	}

	return r.store.MarkProcessed(ctx, msg.ID, time.Now())
}

func (r *OutboxRelay) count(ctx context.Context, msg *domain.OutboxMessage, outcome string) {
	telemetry.RecordCounter(ctx, "outbox_messages_relayed_total", "Outbox messages relayed by outcome", 1,
		attribute.String("channel", string(msg.Channel)),
		attribute.String("outcome", outcome),
	)
}

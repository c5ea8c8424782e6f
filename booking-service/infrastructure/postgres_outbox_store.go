package infrastructure

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/stayease/booking-system/booking-service/domain"
	"github.com/stayease/booking-system/shared/models"
)

// PostgresOutboxStore implements OutboxStore using PostgreSQL.
// Concurrent dispatcher workers race on the same saga rows, so every
// update is guarded by the row version and a lost race surfaces as
// domain.ErrConcurrencyConflict.
type PostgresOutboxStore struct {
	db *sqlx.DB
}

// NewPostgresOutboxStore creates a new PostgresOutboxStore
func NewPostgresOutboxStore(db *sqlx.DB) *PostgresOutboxStore {
	return &PostgresOutboxStore{db: db}
}

// postgresOutboxMessage represents an outbox message in database
type postgresOutboxMessage struct {
	ID             string          `db:"id"`
	SagaID         string          `db:"saga_id"`
	BookingID      string          `db:"booking_id"`
	Channel        string          `db:"channel"`
	EventType      string          `db:"event_type"`
	Payload        json.RawMessage `db:"payload"`
	BusinessStatus string          `db:"business_status"`
	SagaStatus     string          `db:"saga_status"`
	CreatedAt      time.Time       `db:"created_at"`
	ProcessedAt    *time.Time      `db:"processed_at"`
	Version        int             `db:"version"`
}

const outboxColumns = `id, saga_id, booking_id, channel, event_type, payload,
	   business_status, saga_status, created_at, processed_at, version`

// FindBySagaIDAndStatus finds the message for one saga channel in one
// coordination status. Absence returns (nil, nil): it means the delivery
// is a duplicate or arrived out of order.
func (s *PostgresOutboxStore) FindBySagaIDAndStatus(ctx context.Context, sagaID models.ID, channel domain.Channel, status domain.SagaStatus) (*domain.OutboxMessage, error) {
	query := `
		SELECT ` + outboxColumns + `
		FROM saga_outbox
		WHERE saga_id = $1 AND channel = $2 AND saga_status = $3`

	var pgMsg postgresOutboxMessage
	err := resolve(ctx, s.db).GetContext(ctx, &pgMsg, query, sagaID.String(), string(channel), string(status))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // No matching message
		}
		return nil, errors.Wrap(err, "failed to find outbox message")
	}

	return s.toDomain(&pgMsg)
}

// FindBySagaIDAndStatuses finds the message for one saga channel in any of
// the given statuses. At most one row can match: a saga channel holds at
// most one message per non-terminal status and moves it forward in place.
func (s *PostgresOutboxStore) FindBySagaIDAndStatuses(ctx context.Context, sagaID models.ID, channel domain.Channel, statuses []domain.SagaStatus) (*domain.OutboxMessage, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	rawStatuses := make([]string, len(statuses))
	for i, status := range statuses {
		rawStatuses[i] = string(status)
	}

	query, args, err := sqlx.In(`
		SELECT `+outboxColumns+`
		FROM saga_outbox
		WHERE saga_id = ? AND channel = ? AND saga_status IN (?)`,
		sagaID.String(), string(channel), rawStatuses)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build outbox query")
	}

	var pgMsg postgresOutboxMessage
	err = resolve(ctx, s.db).GetContext(ctx, &pgMsg, s.db.Rebind(query), args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // No matching message
		}
		return nil, errors.Wrap(err, "failed to find outbox message")
	}

	return s.toDomain(&pgMsg)
}

// FindBySagaID returns every message of a saga, oldest first
func (s *PostgresOutboxStore) FindBySagaID(ctx context.Context, sagaID models.ID) ([]*domain.OutboxMessage, error) {
	query := `
		SELECT ` + outboxColumns + `
		FROM saga_outbox
		WHERE saga_id = $1
		ORDER BY created_at ASC`

	var pgMsgs []postgresOutboxMessage
	err := resolve(ctx, s.db).SelectContext(ctx, &pgMsgs, query, sagaID.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to find outbox messages by saga ID")
	}

	msgs := make([]*domain.OutboxMessage, len(pgMsgs))
	for i, pgMsg := range pgMsgs {
		msg, err := s.toDomain(&pgMsg)
		if err != nil {
			return nil, err
		}
		msgs[i] = msg
	}

	return msgs, nil
}

// Save upserts an outbox message. A freshly created message (version 1)
// inserts; anything else updates with optimistic locking.
func (s *PostgresOutboxStore) Save(ctx context.Context, msg *domain.OutboxMessage) error {
	if msg.Version.Value == 1 {
		return s.insertMessage(ctx, msg)
	}
	return s.updateMessage(ctx, msg)
}

func (s *PostgresOutboxStore) insertMessage(ctx context.Context, msg *domain.OutboxMessage) error {
	query := `
		INSERT INTO saga_outbox (
			id, saga_id, booking_id, channel, event_type, payload,
			business_status, saga_status, created_at, processed_at, version
		) VALUES (
			:id, :saga_id, :booking_id, :channel, :event_type, :payload,
			:business_status, :saga_status, :created_at, :processed_at, :version
		)`

	pgMsg := s.toPostgres(msg)
	_, err := sqlx.NamedExecContext(ctx, resolve(ctx, s.db), query, pgMsg)
	if err != nil {
		return errors.Wrap(err, "failed to insert outbox message")
	}

	return nil
}

func (s *PostgresOutboxStore) updateMessage(ctx context.Context, msg *domain.OutboxMessage) error {
	query := `
		UPDATE saga_outbox
		SET event_type = :event_type, business_status = :business_status,
			saga_status = :saga_status, processed_at = :processed_at, version = :version
		WHERE id = :id AND version = :old_version`

	pgMsg := s.toPostgres(msg)
	result, err := sqlx.NamedExecContext(ctx, resolve(ctx, s.db), query, map[string]interface{}{
		"id":              pgMsg.ID,
		"event_type":      pgMsg.EventType,
		"business_status": pgMsg.BusinessStatus,
		"saga_status":     pgMsg.SagaStatus,
		"processed_at":    pgMsg.ProcessedAt,
		"version":         pgMsg.Version,
		"old_version":     pgMsg.Version - 1, // Optimistic locking
	})
	if err != nil {
		return errors.Wrap(err, "failed to update outbox message")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read update result")
	}
	if affected == 0 {
		return errors.Wrapf(domain.ErrConcurrencyConflict, "outbox message %s version %d", msg.ID, msg.Version.Value-1)
	}

	return nil
}

// FindUnsent returns publishable messages for the relay: never stamped and
// still in a status the saga can move from. Oldest rows go first so the
// relay drains in arrival order.
func (s *PostgresOutboxStore) FindUnsent(ctx context.Context, limit int) ([]*domain.OutboxMessage, error) {
	query := `
		SELECT ` + outboxColumns + `
		FROM saga_outbox
		WHERE processed_at IS NULL
		  AND saga_status IN ($1, $2)
		ORDER BY created_at ASC
		LIMIT $3`

	var pgMsgs []postgresOutboxMessage
	err := resolve(ctx, s.db).SelectContext(ctx, &pgMsgs, query,
		string(domain.SagaStatusStarted), string(domain.SagaStatusCompensating), limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find unsent outbox messages")
	}

	msgs := make([]*domain.OutboxMessage, len(pgMsgs))
	for i, pgMsg := range pgMsgs {
		msg, err := s.toDomain(&pgMsg)
		if err != nil {
			return nil, err
		}
		msgs[i] = msg
	}

	return msgs, nil
}

// MarkProcessed stamps a message after the relay published it. The version
// guard is deliberately absent: stamping races only with itself and a
// second stamp is harmless.
func (s *PostgresOutboxStore) MarkProcessed(ctx context.Context, id models.ID, at time.Time) error {
	query := `
		UPDATE saga_outbox
		SET processed_at = $1
		WHERE id = $2 AND processed_at IS NULL`

	_, err := resolve(ctx, s.db).ExecContext(ctx, query, at, id.String())
	if err != nil {
		return errors.Wrap(err, "failed to mark outbox message processed")
	}

	return nil
}

// toPostgres converts domain outbox message to postgres model
func (s *PostgresOutboxStore) toPostgres(msg *domain.OutboxMessage) *postgresOutboxMessage {
	return &postgresOutboxMessage{
		ID:             msg.ID.String(),
		SagaID:         msg.SagaID.String(),
		BookingID:      msg.BookingID.String(),
		Channel:        string(msg.Channel),
		EventType:      msg.EventType,
		Payload:        msg.Payload,
		BusinessStatus: string(msg.BusinessStatus),
		SagaStatus:     string(msg.SagaStatus),
		CreatedAt:      msg.CreatedAt,
		ProcessedAt:    msg.ProcessedAt,
		Version:        msg.Version.Value,
	}
}

// toDomain converts postgres model to domain outbox message
func (s *PostgresOutboxStore) toDomain(pgMsg *postgresOutboxMessage) (*domain.OutboxMessage, error) {
	id, err := models.NewID(pgMsg.ID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid outbox message ID")
	}

	sagaID, err := models.NewID(pgMsg.SagaID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid saga ID")
	}

	bookingID, err := models.NewID(pgMsg.BookingID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid booking ID")
	}

	msg := &domain.OutboxMessage{
		ID:             id,
		SagaID:         sagaID,
		BookingID:      bookingID,
		Channel:        domain.Channel(pgMsg.Channel),
		EventType:      pgMsg.EventType,
		Payload:        pgMsg.Payload,
		BusinessStatus: domain.BookingStatus(pgMsg.BusinessStatus),
		SagaStatus:     domain.SagaStatus(pgMsg.SagaStatus),
		CreatedAt:      pgMsg.CreatedAt,
		ProcessedAt:    pgMsg.ProcessedAt,
		Version:        models.Version{Value: pgMsg.Version},
	}

	return msg, nil
}

package infrastructure

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type txContextKey struct{}

// SqlxTxManager implements domain.TxManager on a sqlx connection pool.
// The open transaction travels in the context; repositories built on the
// same pool pick it up through the execer helpers below, so a saga step's
// booking and outbox writes commit atomically.
type SqlxTxManager struct {
	db *sqlx.DB
}

// NewSqlxTxManager creates a new SqlxTxManager
func NewSqlxTxManager(db *sqlx.DB) *SqlxTxManager {
	return &SqlxTxManager{db: db}
}

// WithinTx runs fn inside a single database transaction. Nested calls join
// the transaction already in the context instead of opening a second one.
func (m *SqlxTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	if err := fn(context.WithValue(ctx, txContextKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return errors.Wrapf(err, "rollback failed: %v", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

func txFromContext(ctx context.Context) *sqlx.Tx {
	tx, _ := ctx.Value(txContextKey{}).(*sqlx.Tx)
	return tx
}

// execer is the subset of sqlx shared by *sqlx.DB and *sqlx.Tx that the
// repositories need
type execer interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// resolve returns the context transaction when one is open, the pool otherwise
func resolve(ctx context.Context, db *sqlx.DB) execer {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return db
}

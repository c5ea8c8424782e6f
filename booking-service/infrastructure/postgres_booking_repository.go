package infrastructure

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/stayease/booking-system/booking-service/domain"
	"github.com/stayease/booking-system/shared/events"
	"github.com/stayease/booking-system/shared/models"
)

// PostgresBookingRepository implements BookingRepository using PostgreSQL
type PostgresBookingRepository struct {
	db *sqlx.DB
}

// NewPostgresBookingRepository creates a new PostgresBookingRepository
func NewPostgresBookingRepository(db *sqlx.DB) *PostgresBookingRepository {
	return &PostgresBookingRepository{db: db}
}

// postgresBooking represents booking in database
type postgresBooking struct {
	ID            string     `db:"id"`
	GuestID       string     `db:"guest_id"`
	RoomTypeID    string     `db:"room_type_id"`
	TotalAmount   int64      `db:"total_amount"`
	DepositAmount int64      `db:"deposit_amount"`
	Currency      string     `db:"currency"`
	Status        string     `db:"status"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
	DeletedAt     *time.Time `db:"deleted_at"`
	Version       int        `db:"version"`
}

// Save saves a booking to the database
func (r *PostgresBookingRepository) Save(ctx context.Context, booking *domain.Booking) error {
	// Process events to determine operation type
	for _, event := range booking.Events() {
		switch event.EventType {
		case events.BookingCreatedEvent:
			return r.insertBooking(ctx, booking)
		case events.BookingConfirmedEvent, events.BookingDepositedEvent,
			events.BookingPaidEvent, events.BookingCheckedInEvent,
			events.BookingCheckedOutEvent, events.BookingCancelledEvent:
			return r.updateBooking(ctx, booking)
		}
	}
	return nil
}

// insertBooking inserts a new booking
func (r *PostgresBookingRepository) insertBooking(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (
			id, guest_id, room_type_id, total_amount, deposit_amount,
			currency, status, created_at, updated_at, version
		) VALUES (
			:id, :guest_id, :room_type_id, :total_amount, :deposit_amount,
			:currency, :status, :created_at, :updated_at, :version
		)`

	pgBooking := r.toPostgres(booking)
	_, err := sqlx.NamedExecContext(ctx, resolve(ctx, r.db), query, pgBooking)
	if err != nil {
		return errors.Wrap(err, "failed to insert booking")
	}

	return nil
}

// updateBooking updates an existing booking with optimistic locking
func (r *PostgresBookingRepository) updateBooking(ctx context.Context, booking *domain.Booking) error {
	query := `
		UPDATE bookings
		SET status = :status, updated_at = :updated_at, version = :version
		WHERE id = :id AND version = :old_version`

	result, err := sqlx.NamedExecContext(ctx, resolve(ctx, r.db), query, map[string]interface{}{
		"id":          booking.ID.String(),
		"status":      string(booking.Status),
		"updated_at":  booking.Timestamps.UpdatedAt,
		"version":     booking.Version.Value,
		"old_version": booking.Version.Value - 1, // Optimistic locking
	})
	if err != nil {
		return errors.Wrap(err, "failed to update booking")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read update result")
	}
	if affected == 0 {
		return errors.Wrapf(domain.ErrConcurrencyConflict, "booking %s version %d", booking.ID, booking.Version.Value-1)
	}

	return nil
}

// FindByID finds a booking by ID
func (r *PostgresBookingRepository) FindByID(ctx context.Context, id models.ID) (*domain.Booking, error) {
	query := `
		SELECT id, guest_id, room_type_id, total_amount, deposit_amount,
			   currency, status, created_at, updated_at, deleted_at, version
		FROM bookings
		WHERE id = $1 AND deleted_at IS NULL`

	var pgBooking postgresBooking
	err := resolve(ctx, r.db).GetContext(ctx, &pgBooking, query, id.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Booking not found
		}
		return nil, errors.Wrap(err, "failed to find booking")
	}

	return r.toDomain(&pgBooking)
}

// toPostgres converts domain booking to postgres model
func (r *PostgresBookingRepository) toPostgres(booking *domain.Booking) *postgresBooking {
	return &postgresBooking{
		ID:            booking.ID.String(),
		GuestID:       booking.GuestID.String(),
		RoomTypeID:    booking.RoomTypeID,
		TotalAmount:   booking.TotalAmount.Amount,
		DepositAmount: booking.DepositAmount.Amount,
		Currency:      booking.TotalAmount.Currency,
		Status:        string(booking.Status),
		CreatedAt:     booking.Timestamps.CreatedAt,
		UpdatedAt:     booking.Timestamps.UpdatedAt,
		DeletedAt:     booking.Timestamps.DeletedAt,
		Version:       booking.Version.Value,
	}
}

// toDomain converts postgres model to domain booking
func (r *PostgresBookingRepository) toDomain(pgBooking *postgresBooking) (*domain.Booking, error) {
	id, err := models.NewID(pgBooking.ID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid booking ID")
	}

	guestID, err := models.NewID(pgBooking.GuestID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid guest ID")
	}

	booking := &domain.Booking{
		ID:            id,
		GuestID:       guestID,
		RoomTypeID:    pgBooking.RoomTypeID,
		TotalAmount:   models.NewMoney(pgBooking.TotalAmount, pgBooking.Currency),
		DepositAmount: models.NewMoney(pgBooking.DepositAmount, pgBooking.Currency),
		Status:        domain.BookingStatus(pgBooking.Status),
		Timestamps: models.Timestamps{
			CreatedAt: pgBooking.CreatedAt,
			UpdatedAt: pgBooking.UpdatedAt,
			DeletedAt: pgBooking.DeletedAt,
		},
		Version: models.Version{Value: pgBooking.Version},
	}

	return booking, nil
}

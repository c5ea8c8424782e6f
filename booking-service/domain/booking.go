package domain

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/stayease/booking-system/shared/events"
	"github.com/stayease/booking-system/shared/models"
)

// ErrDomainRule marks a business-rule rejection. Callers treat it as a
// non-retryable failure: the saga is marked failed instead of redelivered.
var ErrDomainRule = errors.New("domain rule violation")

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusDeposited  BookingStatus = "deposited"
	BookingStatusPaid       BookingStatus = "paid"
	BookingStatusCheckedIn  BookingStatus = "checked_in"
	BookingStatusCheckedOut BookingStatus = "checked_out"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

// AllBookingStatuses lists every reachable booking status. The status
// mapper validation iterates this at startup.
var AllBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusDeposited,
	BookingStatusPaid,
	BookingStatusCheckedIn,
	BookingStatusCheckedOut,
	BookingStatusCancelled,
}

// Booking aggregate root
type Booking struct {
	ID            models.ID
	GuestID       models.ID
	RoomTypeID    string
	TotalAmount   models.Money
	DepositAmount models.Money
	Status        BookingStatus
	Timestamps    models.Timestamps
	Version       models.Version

	events []*events.Event
}

// CreateBooking factory method
func CreateBooking(guestID models.ID, roomTypeID string, totalAmount, depositAmount models.Money) (*Booking, error) {
	if !totalAmount.IsPositive() {
		return nil, errors.New("total amount must be positive")
	}
	if depositAmount.Amount < 0 {
		return nil, errors.New("deposit amount must not be negative")
	}

	booking := &Booking{
		ID:            models.GenerateUUID(),
		GuestID:       guestID,
		RoomTypeID:    roomTypeID,
		TotalAmount:   totalAmount,
		DepositAmount: depositAmount,
		Status:        BookingStatusPending,
		Timestamps:    models.NewTimestamps(),
		Version:       models.NewVersion(),
	}

	event := events.NewEvent(booking.ID, events.BookingCreatedEvent, BookingCreatedData{
		BookingID:     booking.ID,
		GuestID:       booking.GuestID,
		RoomTypeID:    booking.RoomTypeID,
		TotalAmount:   booking.TotalAmount,
		DepositAmount: booking.DepositAmount,
	})

	booking.recordEvent(event)
	return booking, nil
}

// Confirm marks the booking as confirmed
func (b *Booking) Confirm() error {
	if b.Status != BookingStatusPending {
		return errors.Wrap(ErrDomainRule, "booking can only be confirmed from pending status")
	}

	b.transition(BookingStatusConfirmed)

	b.recordEvent(events.NewEvent(b.ID, events.BookingConfirmedEvent, BookingStatusData{
		BookingID: b.ID,
		GuestID:   b.GuestID,
		Status:    b.Status,
	}))
	return nil
}

// Deposit marks the deposit as paid
func (b *Booking) Deposit() error {
	if b.Status != BookingStatusPending && b.Status != BookingStatusConfirmed {
		return errors.Wrap(ErrDomainRule, "deposit is only accepted for pending or confirmed bookings")
	}

	b.transition(BookingStatusDeposited)

	b.recordEvent(events.NewEvent(b.ID, events.BookingDepositedEvent, BookingDepositedData{
		BookingID: b.ID,
		GuestID:   b.GuestID,
		Amount:    b.DepositAmount,
	}))
	return nil
}

// Pay marks the outstanding balance as paid
func (b *Booking) Pay() error {
	if b.Status != BookingStatusDeposited {
		return errors.Wrap(ErrDomainRule, "booking can only be paid from deposited status")
	}

	b.transition(BookingStatusPaid)

	outstanding, _ := b.TotalAmount.Subtract(b.DepositAmount)
	b.recordEvent(events.NewEvent(b.ID, events.BookingPaidEvent, BookingPaidData{
		BookingID: b.ID,
		GuestID:   b.GuestID,
		Amount:    outstanding,
	}))
	return nil
}

// CheckIn marks the guest as checked in
func (b *Booking) CheckIn() error {
	if b.Status != BookingStatusDeposited && b.Status != BookingStatusPaid {
		return errors.Wrap(ErrDomainRule, "check-in requires a deposited or paid booking")
	}

	b.transition(BookingStatusCheckedIn)

	b.recordEvent(events.NewEvent(b.ID, events.BookingCheckedInEvent, BookingStatusData{
		BookingID: b.ID,
		GuestID:   b.GuestID,
		Status:    b.Status,
	}))
	return nil
}

// CheckOut marks the stay as completed
func (b *Booking) CheckOut() error {
	if b.Status != BookingStatusCheckedIn {
		return errors.Wrap(ErrDomainRule, "check-out requires a checked-in booking")
	}

	b.transition(BookingStatusCheckedOut)

	b.recordEvent(events.NewEvent(b.ID, events.BookingCheckedOutEvent, BookingStatusData{
		BookingID: b.ID,
		GuestID:   b.GuestID,
		Status:    b.Status,
	}))
	return nil
}

// Cancel cancels the booking. A stay that already started cannot be cancelled.
func (b *Booking) Cancel(reason string) error {
	switch b.Status {
	case BookingStatusCheckedIn, BookingStatusCheckedOut:
		return errors.Wrap(ErrDomainRule, "cannot cancel a booking after check-in")
	case BookingStatusCancelled:
		return errors.Wrap(ErrDomainRule, "booking is already cancelled")
	}

	b.transition(BookingStatusCancelled)

	b.recordEvent(events.NewEvent(b.ID, events.BookingCancelledEvent, BookingCancelledData{
		BookingID:   b.ID,
		GuestID:     b.GuestID,
		Reason:      reason,
		CancelledAt: time.Now(),
	}))
	return nil
}

func (b *Booking) transition(status BookingStatus) {
	b.Status = status
	b.Timestamps = b.Timestamps.Update()
	b.Version = b.Version.Update()
}

// Events returns domain events
func (b *Booking) Events() []*events.Event {
	return b.events
}

// ClearEvents clears domain events
func (b *Booking) ClearEvents() {
	b.events = make([]*events.Event, 0)
}

func (b *Booking) recordEvent(event *events.Event) {
	b.events = append(b.events, event)
}

// Event Data Structures
type BookingCreatedData struct {
	BookingID     models.ID    `json:"booking_id"`
	GuestID       models.ID    `json:"guest_id"`
	RoomTypeID    string       `json:"room_type_id"`
	TotalAmount   models.Money `json:"total_amount"`
	DepositAmount models.Money `json:"deposit_amount"`
}

type BookingStatusData struct {
	BookingID models.ID     `json:"booking_id"`
	GuestID   models.ID     `json:"guest_id"`
	Status    BookingStatus `json:"status"`
}

type BookingDepositedData struct {
	BookingID models.ID    `json:"booking_id"`
	GuestID   models.ID    `json:"guest_id"`
	Amount    models.Money `json:"amount"`
}

type BookingPaidData struct {
	BookingID models.ID    `json:"booking_id"`
	GuestID   models.ID    `json:"guest_id"`
	Amount    models.Money `json:"amount"`
}

type BookingCancelledData struct {
	BookingID   models.ID `json:"booking_id"`
	GuestID     models.ID `json:"guest_id"`
	Reason      string    `json:"reason"`
	CancelledAt time.Time `json:"cancelled_at"`
}

// BookingRepository interface
type BookingRepository interface {
	Save(ctx context.Context, booking *Booking) error
	FindByID(ctx context.Context, id models.ID) (*Booking, error)
}

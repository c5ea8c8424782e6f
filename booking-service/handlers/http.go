package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stayease/booking-system/booking-service/domain"
	"github.com/stayease/booking-system/shared/models"
)

// BookingHandlers contains booking HTTP handlers. The API is read only:
// bookings change through the event bus, never through HTTP.
type BookingHandlers struct {
	bookings domain.BookingRepository
	outbox   domain.OutboxStore
}

// NewBookingHandlers creates new booking handlers
func NewBookingHandlers(bookings domain.BookingRepository, outbox domain.OutboxStore) *BookingHandlers {
	return &BookingHandlers{
		bookings: bookings,
		outbox:   outbox,
	}
}

// BookingResponse is the wire representation of a booking
type BookingResponse struct {
	ID            models.ID            `json:"id"`
	GuestID       models.ID            `json:"guest_id"`
	RoomTypeID    string               `json:"room_type_id"`
	TotalAmount   models.Money         `json:"total_amount"`
	DepositAmount models.Money         `json:"deposit_amount"`
	Status        domain.BookingStatus `json:"status"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
	Version       int                  `json:"version"`
}

// OutboxMessageResponse is the wire representation of one saga outbox row
type OutboxMessageResponse struct {
	ID             models.ID            `json:"id"`
	SagaID         models.ID            `json:"saga_id"`
	BookingID      models.ID            `json:"booking_id"`
	Channel        domain.Channel       `json:"channel"`
	EventType      string               `json:"event_type"`
	Payload        json.RawMessage      `json:"payload"`
	BusinessStatus domain.BookingStatus `json:"business_status"`
	SagaStatus     domain.SagaStatus    `json:"saga_status"`
	CreatedAt      time.Time            `json:"created_at"`
	ProcessedAt    *time.Time           `json:"processed_at,omitempty"`
	Version        int                  `json:"version"`
}

// GetBooking handles booking retrieval requests
func (h *BookingHandlers) GetBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, err := models.NewID(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid booking ID", http.StatusBadRequest)
		return
	}

	booking, err := h.bookings.FindByID(r.Context(), bookingID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if booking == nil {
		http.Error(w, "booking not found", http.StatusNotFound)
		return
	}

	response := &BookingResponse{
		ID:            booking.ID,
		GuestID:       booking.GuestID,
		RoomTypeID:    booking.RoomTypeID,
		TotalAmount:   booking.TotalAmount,
		DepositAmount: booking.DepositAmount,
		Status:        booking.Status,
		CreatedAt:     booking.Timestamps.CreatedAt,
		UpdatedAt:     booking.Timestamps.UpdatedAt,
		Version:       booking.Version.Value,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// GetSagaMessages returns every outbox row recorded for a saga, newest last
func (h *BookingHandlers) GetSagaMessages(w http.ResponseWriter, r *http.Request) {
	sagaID, err := models.NewID(chi.URLParam(r, "saga_id"))
	if err != nil {
		http.Error(w, "Invalid saga ID", http.StatusBadRequest)
		return
	}

	messages, err := h.outbox.FindBySagaID(r.Context(), sagaID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	response := make([]*OutboxMessageResponse, 0, len(messages))
	for _, msg := range messages {
		response = append(response, &OutboxMessageResponse{
			ID:             msg.ID,
			SagaID:         msg.SagaID,
			BookingID:      msg.BookingID,
			Channel:        msg.Channel,
			EventType:      msg.EventType,
			Payload:        msg.Payload,
			BusinessStatus: msg.BusinessStatus,
			SagaStatus:     msg.SagaStatus,
			CreatedAt:      msg.CreatedAt,
			ProcessedAt:    msg.ProcessedAt,
			Version:        msg.Version.Value,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// RegisterRoutes registers booking routes
func (h *BookingHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/bookings/{id}", h.GetBooking)
		r.Get("/sagas/{saga_id}/messages", h.GetSagaMessages)
	})
}

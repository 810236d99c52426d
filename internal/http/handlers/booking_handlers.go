package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/diagnosis/doctors-portal/internal/domain"
	httpmw "github.com/diagnosis/doctors-portal/internal/http/middleware"
	"github.com/diagnosis/doctors-portal/internal/http/response"
	"github.com/diagnosis/doctors-portal/internal/repo/mongodb"
	"github.com/diagnosis/doctors-portal/pkg/events"
	"github.com/diagnosis/doctors-portal/pkg/logger"
)

// ListBookings handles GET /booking?patient=<email>. The patient query must
// match the token subject; anyone can only read their own bookings.
func (h *Handlers) ListBookings(w http.ResponseWriter, r *http.Request) {
	patient := r.URL.Query().Get("patient")
	if patient == "" || patient != httpmw.Email(r) {
		response.Forbidden(w, "forbidden access")
		return
	}

	bookings, err := h.bookings.ListByPatient(r.Context(), patient)
	if err != nil {
		logger.ErrorContext(r.Context(), "booking list failed", "error", err, "patient", patient)
		response.InternalError(w, "error listing bookings")
		return
	}
	response.JSON(w, http.StatusOK, bookings)
}

// GetBooking handles GET /booking/{id}.
func (h *Handlers) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid id")
		return
	}

	booking, err := h.bookings.FindByID(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "booking fetch failed", "error", err, "id", id.Hex())
		response.InternalError(w, "error getting booking")
		return
	}
	if booking == nil {
		response.NotFound(w, "booking not found")
		return
	}
	response.JSON(w, http.StatusOK, booking)
}

// CreateBooking handles POST /booking. A booking is a duplicate when one
// already exists for the same (treatment, date, patient); duplicates come
// back as success:false with the existing document, not as an error.
func (h *Handlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var in domain.Booking
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}
	if in.Treatment == "" || in.Date == "" || in.Patient == "" || in.Slot == "" {
		response.BadRequest(w, "treatment, date, patient and slot are required")
		return
	}

	existing, err := h.bookings.FindDuplicate(r.Context(), in.Treatment, in.Date, in.Patient)
	if err != nil {
		logger.ErrorContext(r.Context(), "duplicate check failed", "error", err)
		response.InternalError(w, "error creating booking")
		return
	}
	if existing != nil {
		response.JSON(w, http.StatusOK, domain.CreateBookingResponse{Success: false, Booking: existing})
		return
	}

	in.ID = primitive.NilObjectID
	in.Paid = false
	in.TransactionID = ""
	booking, err := h.bookings.Insert(r.Context(), &in)
	if errors.Is(err, mongodb.ErrDuplicateBooking) {
		// Lost the race against an identical submission; answer with the winner.
		existing, ferr := h.bookings.FindDuplicate(r.Context(), in.Treatment, in.Date, in.Patient)
		if ferr != nil || existing == nil {
			logger.ErrorContext(r.Context(), "duplicate refetch failed", "error", ferr)
			response.InternalError(w, "error creating booking")
			return
		}
		response.JSON(w, http.StatusOK, domain.CreateBookingResponse{Success: false, Booking: existing})
		return
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "booking insert failed", "error", err)
		response.InternalError(w, "error creating booking")
		return
	}

	if err := h.events.Publish(r.Context(), events.BookingCreated, events.BookingCreatedEvent{
		BookingID: booking.ID.Hex(),
		Treatment: booking.Treatment,
		Date:      booking.Date,
		Slot:      booking.Slot,
		Patient:   booking.Patient,
		CreatedAt: booking.CreatedAt,
	}); err != nil {
		logger.WarnContext(r.Context(), "booking.created publish failed", "error", err)
	}

	if err := h.mail.SendBookingConfirmation(booking.Patient, booking.Treatment, booking.Date, booking.Slot); err != nil {
		logger.WarnContext(r.Context(), "confirmation mail failed", "error", err, "patient", booking.Patient)
	}

	response.JSON(w, http.StatusOK, domain.CreateBookingResponse{Success: true, Booking: booking})
}

// ConfirmBooking handles PUT /booking/{id}: marks the booking paid, stores
// the transaction id, then appends the payment payload. The two writes are
// independent; if the payment insert fails after the booking update the
// store keeps a paid booking without a payment record, and the 500 here is
// the only signal.
func (h *Handlers) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid id")
		return
	}

	payload := make(domain.PaymentRecord)
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}
	transactionID, _ := payload["transactionId"].(string)
	if transactionID == "" {
		response.BadRequest(w, "transactionId is required")
		return
	}

	result, err := h.bookings.Confirm(r.Context(), id, transactionID)
	if err != nil {
		logger.ErrorContext(r.Context(), "booking confirm failed", "error", err, "id", id.Hex())
		response.InternalError(w, "error updating booking")
		return
	}
	if result.Matched == 0 {
		response.NotFound(w, "booking not found")
		return
	}

	if err := h.payments.Insert(r.Context(), payload); err != nil {
		logger.ErrorContext(r.Context(), "payment record insert failed after booking update",
			"error", err, "booking_id", id.Hex(), "transaction_id", transactionID)
		response.InternalError(w, "booking updated but payment record failed")
		return
	}

	if err := h.events.Publish(r.Context(), events.BookingPaid, events.BookingPaidEvent{
		BookingID:     id.Hex(),
		TransactionID: transactionID,
		PaidAt:        time.Now(),
	}); err != nil {
		logger.WarnContext(r.Context(), "booking.paid publish failed", "error", err)
	}

	response.JSON(w, http.StatusOK, result)
}

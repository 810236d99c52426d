package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/diagnosis/doctors-portal/internal/domain"
	httpmw "github.com/diagnosis/doctors-portal/internal/http/middleware"
	"github.com/diagnosis/doctors-portal/internal/http/response"
	"github.com/diagnosis/doctors-portal/internal/payments"
	"github.com/diagnosis/doctors-portal/pkg/events"
	"github.com/diagnosis/doctors-portal/pkg/logger"
)

// CreatePaymentIntent handles POST /create-payment-intent (token required).
// The price arrives in major currency units; the adapter converts to minor
// units for the processor. Only the client secret goes back.
func (h *Handlers) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var in domain.PaymentIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}
	if in.Price <= 0 {
		response.BadRequest(w, "price must be positive")
		return
	}

	clientSecret, err := h.intents.CreateIntent(r.Context(), in.Price)
	if err != nil {
		logger.ErrorContext(r.Context(), "payment intent failed", "error", err)
		response.WriteError(w, http.StatusInternalServerError, "payment provider error", response.CodePaymentFailed)
		return
	}

	if err := h.events.Publish(r.Context(), events.PaymentIntentCreated, events.PaymentIntentCreatedEvent{
		Email:       httpmw.Email(r),
		AmountMinor: payments.MinorUnits(in.Price),
		Currency:    h.intents.Currency(),
		CreatedAt:   time.Now(),
	}); err != nil {
		logger.WarnContext(r.Context(), "payment.intent.created publish failed", "error", err)
	}

	response.JSON(w, http.StatusOK, domain.PaymentIntentResponse{ClientSecret: clientSecret})
}

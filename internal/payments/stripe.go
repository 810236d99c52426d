package payments

import (
	"context"
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// IntentCreator creates a client-confirmable payment intent and returns the
// client secret the frontend needs to complete payment.
type IntentCreator interface {
	CreateIntent(ctx context.Context, price float64) (string, error)
	// Currency is the ISO 4217 code intents are charged in.
	Currency() string
}

type StripeIntents struct {
	currency string
}

func NewStripeIntents(secretKey, currency string) *StripeIntents {
	stripe.Key = secretKey
	return &StripeIntents{currency: currency}
}

func (s *StripeIntents) Currency() string { return s.currency }

func (s *StripeIntents) CreateIntent(ctx context.Context, price float64) (string, error) {
	params := &stripe.PaymentIntentParams{
		Params:             stripe.Params{Context: ctx},
		Amount:             stripe.Int64(MinorUnits(price)),
		Currency:           stripe.String(s.currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("create payment intent: %w", err)
	}
	return pi.ClientSecret, nil
}

// MinorUnits converts a major-unit price to the processor's integer minor
// units (cents), rounding half away from zero.
func MinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}

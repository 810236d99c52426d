package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/diagnosis/doctors-portal/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSPublisher{conn: conn}, nil
}

func (n *NATSPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSPublisher) Close() error {
	n.conn.Close()
	return nil
}

// NoopPublisher is used when NATS is unavailable; events are dropped, not fatal.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }

// Event subjects
const (
	BookingCreated       = "booking.created"
	BookingPaid          = "booking.paid"
	PaymentIntentCreated = "payment.intent.created"
	DoctorAdded          = "doctor.added"
	DoctorRemoved        = "doctor.removed"
)

type BookingCreatedEvent struct {
	BookingID string    `json:"booking_id"`
	Treatment string    `json:"treatment"`
	Date      string    `json:"date"`
	Slot      string    `json:"slot"`
	Patient   string    `json:"patient"`
	CreatedAt time.Time `json:"created_at"`
}

type BookingPaidEvent struct {
	BookingID     string    `json:"booking_id"`
	TransactionID string    `json:"transaction_id"`
	PaidAt        time.Time `json:"paid_at"`
}

type PaymentIntentCreatedEvent struct {
	Email       string    `json:"email"`
	AmountMinor int64     `json:"amount_minor"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"created_at"`
}

type DoctorEvent struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

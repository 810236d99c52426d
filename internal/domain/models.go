package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const RoleAdmin = "admin"

// Service is a bookable treatment with its full, static slot list.
// The availability endpoint narrows Slots in memory; the stored document
// is never mutated by reads.
type Service struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name  string             `bson:"name" json:"name"`
	Slots []string           `bson:"slots,omitempty" json:"slots,omitempty"`
}

type Booking struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Treatment     string             `bson:"treatment" json:"treatment"`
	Date          string             `bson:"date" json:"date"`
	Slot          string             `bson:"slot" json:"slot"`
	Patient       string             `bson:"patient" json:"patient"`
	PatientName   string             `bson:"patientName,omitempty" json:"patientName,omitempty"`
	Phone         string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Price         float64            `bson:"price,omitempty" json:"price,omitempty"`
	Paid          bool               `bson:"paid" json:"paid"`
	TransactionID string             `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	CreatedAt     time.Time          `bson:"created_at,omitempty" json:"created_at,omitempty"`
}

type User struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Email string             `bson:"email" json:"email"`
	Name  string             `bson:"name,omitempty" json:"name,omitempty"`
	Role  string             `bson:"role,omitempty" json:"role,omitempty"`
}

// IsAdmin is nil-safe: a missing user record is never an admin.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

type Doctor struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Email     string             `bson:"email" json:"email"`
	Name      string             `bson:"name" json:"name"`
	Specialty string             `bson:"specialty,omitempty" json:"specialty,omitempty"`
	Image     string             `bson:"img,omitempty" json:"img,omitempty"`
}

// PaymentRecord is an append-only mirror of the confirmation request body.
// The shape is client-defined, so it stays a loose document.
type PaymentRecord map[string]interface{}

// UpdateResult is the store-agnostic slice of a write result the API exposes.
type UpdateResult struct {
	Matched  int64 `json:"matchedCount"`
	Modified int64 `json:"modifiedCount"`
	Upserted int64 `json:"upsertedCount"`
}

type DeleteResult struct {
	Deleted int64 `json:"deletedCount"`
}

type UpsertUserResponse struct {
	Result *UpdateResult `json:"result"`
	Token  string        `json:"token"`
}

type CreateBookingResponse struct {
	Success bool     `json:"success"`
	Booking *Booking `json:"booking"`
}

type AdminCheckResponse struct {
	Admin bool `json:"admin"`
}

type ConfirmBookingRequest struct {
	TransactionID string `json:"transactionId"`
}

type PaymentIntentRequest struct {
	Price float64 `json:"price"`
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

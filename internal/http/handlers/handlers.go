package handlers

import (
	"time"

	"github.com/diagnosis/doctors-portal/internal/availability"
	"github.com/diagnosis/doctors-portal/internal/mailer"
	"github.com/diagnosis/doctors-portal/internal/payments"
	"github.com/diagnosis/doctors-portal/internal/repo/mongodb"
	"github.com/diagnosis/doctors-portal/pkg/events"
)

type Handlers struct {
	users    mongodb.UsersRepo
	bookings mongodb.BookingsRepo
	services mongodb.ServicesRepo
	doctors  mongodb.DoctorsRepo
	payments mongodb.PaymentsRepo

	availability *availability.Service
	intents      payments.IntentCreator
	mail         mailer.Service
	events       events.Publisher

	jwtSecret string
	tokenTTL  time.Duration
}

type Deps struct {
	Users    mongodb.UsersRepo
	Bookings mongodb.BookingsRepo
	Services mongodb.ServicesRepo
	Doctors  mongodb.DoctorsRepo
	Payments mongodb.PaymentsRepo

	Availability *availability.Service
	Intents      payments.IntentCreator
	Mail         mailer.Service
	Events       events.Publisher

	JWTSecret string
	TokenTTL  time.Duration
}

func New(d Deps) *Handlers {
	return &Handlers{
		users:        d.Users,
		bookings:     d.Bookings,
		services:     d.Services,
		doctors:      d.Doctors,
		payments:     d.Payments,
		availability: d.Availability,
		intents:      d.Intents,
		mail:         d.Mail,
		events:       d.Events,
		jwtSecret:    d.JWTSecret,
		tokenTTL:     d.TokenTTL,
	}
}

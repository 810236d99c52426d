package handlers_test

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/diagnosis/doctors-portal/internal/availability"
	"github.com/diagnosis/doctors-portal/internal/domain"
	"github.com/diagnosis/doctors-portal/internal/http/handlers"
	httpmw "github.com/diagnosis/doctors-portal/internal/http/middleware"
)

const secret = "test-secret"

// ---------- Mocks ----------

type mockUsersRepo struct {
	users   map[string]*domain.User
	upserts map[string]map[string]interface{}
	findErr error
}

func newMockUsersRepo() *mockUsersRepo {
	return &mockUsersRepo{
		users:   make(map[string]*domain.User),
		upserts: make(map[string]map[string]interface{}),
	}
}

func (m *mockUsersRepo) Upsert(_ context.Context, email string, doc map[string]interface{}) (*domain.UpdateResult, error) {
	m.upserts[email] = doc
	u := m.users[email]
	if u == nil {
		u = &domain.User{Email: email}
		m.users[email] = u
	}
	if name, ok := doc["name"].(string); ok {
		u.Name = name
	}
	return &domain.UpdateResult{Matched: 0, Modified: 0, Upserted: 1}, nil
}

func (m *mockUsersRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.users[email], nil
}

func (m *mockUsersRepo) List(_ context.Context) ([]domain.User, error) {
	users := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, *u)
	}
	return users, nil
}

func (m *mockUsersRepo) PromoteAdmin(_ context.Context, email string) (*domain.UpdateResult, error) {
	u, ok := m.users[email]
	if !ok {
		return &domain.UpdateResult{}, nil
	}
	u.Role = domain.RoleAdmin
	return &domain.UpdateResult{Matched: 1, Modified: 1}, nil
}

type mockBookingsRepo struct {
	bookings   map[string]*domain.Booking
	insertErr  error
	confirmErr error
	// hideDuplicateOnce makes the next FindDuplicate miss, simulating a
	// concurrent identical submission landing between check and insert.
	hideDuplicateOnce bool
}

func newMockBookingsRepo() *mockBookingsRepo {
	return &mockBookingsRepo{bookings: make(map[string]*domain.Booking)}
}

func (m *mockBookingsRepo) FindDuplicate(_ context.Context, treatment, date, patient string) (*domain.Booking, error) {
	if m.hideDuplicateOnce {
		m.hideDuplicateOnce = false
		return nil, nil
	}
	for _, b := range m.bookings {
		if b.Treatment == treatment && b.Date == date && b.Patient == patient {
			return b, nil
		}
	}
	return nil, nil
}

func (m *mockBookingsRepo) Insert(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	b.ID = primitive.NewObjectID()
	b.CreatedAt = time.Now()
	m.bookings[b.ID.Hex()] = b
	return b, nil
}

func (m *mockBookingsRepo) FindByID(_ context.Context, id primitive.ObjectID) (*domain.Booking, error) {
	return m.bookings[id.Hex()], nil
}

func (m *mockBookingsRepo) ListByPatient(_ context.Context, patient string) ([]domain.Booking, error) {
	result := make([]domain.Booking, 0)
	for _, b := range m.bookings {
		if b.Patient == patient {
			result = append(result, *b)
		}
	}
	return result, nil
}

func (m *mockBookingsRepo) ListByDate(_ context.Context, date string) ([]domain.Booking, error) {
	result := make([]domain.Booking, 0)
	for _, b := range m.bookings {
		if b.Date == date {
			result = append(result, *b)
		}
	}
	return result, nil
}

func (m *mockBookingsRepo) Confirm(_ context.Context, id primitive.ObjectID, transactionID string) (*domain.UpdateResult, error) {
	if m.confirmErr != nil {
		return nil, m.confirmErr
	}
	b, ok := m.bookings[id.Hex()]
	if !ok {
		return &domain.UpdateResult{}, nil
	}
	b.Paid = true
	b.TransactionID = transactionID
	return &domain.UpdateResult{Matched: 1, Modified: 1}, nil
}

type mockServicesRepo struct {
	services []domain.Service
}

func (m *mockServicesRepo) ListNames(_ context.Context) ([]domain.Service, error) {
	names := make([]domain.Service, 0, len(m.services))
	for _, s := range m.services {
		names = append(names, domain.Service{ID: s.ID, Name: s.Name})
	}
	return names, nil
}

func (m *mockServicesRepo) ListAll(_ context.Context) ([]domain.Service, error) {
	all := make([]domain.Service, len(m.services))
	copy(all, m.services)
	for i := range all {
		all[i].Slots = append([]string(nil), all[i].Slots...)
	}
	return all, nil
}

type mockDoctorsRepo struct {
	doctors map[string]*domain.Doctor
}

func newMockDoctorsRepo() *mockDoctorsRepo {
	return &mockDoctorsRepo{doctors: make(map[string]*domain.Doctor)}
}

func (m *mockDoctorsRepo) List(_ context.Context) ([]domain.Doctor, error) {
	result := make([]domain.Doctor, 0, len(m.doctors))
	for _, d := range m.doctors {
		result = append(result, *d)
	}
	return result, nil
}

func (m *mockDoctorsRepo) Insert(_ context.Context, d *domain.Doctor) (*domain.Doctor, error) {
	d.ID = primitive.NewObjectID()
	m.doctors[d.Email] = d
	return d, nil
}

func (m *mockDoctorsRepo) DeleteByEmail(_ context.Context, email string) (*domain.DeleteResult, error) {
	if _, ok := m.doctors[email]; !ok {
		return &domain.DeleteResult{Deleted: 0}, nil
	}
	delete(m.doctors, email)
	return &domain.DeleteResult{Deleted: 1}, nil
}

type mockPaymentsRepo struct {
	records   []domain.PaymentRecord
	insertErr error
}

func (m *mockPaymentsRepo) Insert(_ context.Context, p domain.PaymentRecord) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.records = append(m.records, p)
	return nil
}

type mockIntents struct {
	lastPrice float64
	secret    string
	currency  string
	err       error
}

func (m *mockIntents) CreateIntent(_ context.Context, price float64) (string, error) {
	m.lastPrice = price
	return m.secret, m.err
}

func (m *mockIntents) Currency() string { return m.currency }

type mockMailer struct {
	lastTo string
	sent   int
}

func (m *mockMailer) Send(toEmail, toName, subject, text, html string) (string, error) {
	m.lastTo = toEmail
	m.sent++
	return "mock-id", nil
}

func (m *mockMailer) SendBookingConfirmation(email, treatment, date, slot string) error {
	m.lastTo = email
	m.sent++
	return nil
}

type mockPublisher struct {
	subjects []string
	payloads []interface{}
}

func (m *mockPublisher) Publish(_ context.Context, subject string, data interface{}) error {
	m.subjects = append(m.subjects, subject)
	m.payloads = append(m.payloads, data)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

// ---------- Test harness ----------

type fixture struct {
	users    *mockUsersRepo
	bookings *mockBookingsRepo
	services *mockServicesRepo
	doctors  *mockDoctorsRepo
	payments *mockPaymentsRepo
	intents  *mockIntents
	mail     *mockMailer
	events   *mockPublisher
	router   chi.Router
}

// newFixture wires the handlers into the same route tree cmd/api builds,
// minus the rate limiter.
func newFixture() *fixture {
	f := &fixture{
		users:    newMockUsersRepo(),
		bookings: newMockBookingsRepo(),
		services: &mockServicesRepo{},
		doctors:  newMockDoctorsRepo(),
		payments: &mockPaymentsRepo{},
		intents:  &mockIntents{secret: "pi_123_secret_456", currency: "eur"},
		mail:     &mockMailer{},
		events:   &mockPublisher{},
	}

	h := handlers.New(handlers.Deps{
		Users:        f.users,
		Bookings:     f.bookings,
		Services:     f.services,
		Doctors:      f.doctors,
		Payments:     f.payments,
		Availability: availability.New(f.services, f.bookings),
		Intents:      f.intents,
		Mail:         f.mail,
		Events:       f.events,
		JWTSecret:    secret,
		TokenTTL:     time.Hour,
	})

	auth := httpmw.NewAuth(secret, f.users)

	r := chi.NewRouter()
	r.Get("/service", h.ListServices)
	r.Get("/available", h.Available)
	r.Put("/user/{email}", h.UpsertUser)
	r.With(auth.RequireToken).Get("/user", h.ListUsers)
	r.With(auth.RequireToken, auth.RequireAdmin).Put("/user/admin/{email}", h.PromoteAdmin)
	r.Get("/admin/{email}", h.AdminCheck)
	r.Route("/booking", func(r chi.Router) {
		r.Post("/", h.CreateBooking)
		r.With(auth.RequireToken).Get("/", h.ListBookings)
		r.With(auth.RequireToken).Get("/{id}", h.GetBooking)
		r.With(auth.RequireToken).Put("/{id}", h.ConfirmBooking)
	})
	r.Route("/doctor", func(r chi.Router) {
		r.With(auth.RequireToken, auth.RequireAdmin).Get("/", h.ListDoctors)
		r.With(auth.RequireToken, auth.RequireAdmin).Post("/", h.AddDoctor)
		r.With(auth.RequireToken).Delete("/{email}", h.DeleteDoctor)
	})
	r.With(auth.RequireToken).Post("/create-payment-intent", h.CreatePaymentIntent)

	f.router = r
	return f
}

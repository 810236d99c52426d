package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/diagnosis/doctors-portal/internal/availability"
	"github.com/diagnosis/doctors-portal/internal/http/handlers"
	httpmw "github.com/diagnosis/doctors-portal/internal/http/middleware"
	"github.com/diagnosis/doctors-portal/internal/mailer"
	"github.com/diagnosis/doctors-portal/internal/payments"
	"github.com/diagnosis/doctors-portal/internal/repo/mongodb"
	"github.com/diagnosis/doctors-portal/pkg/config"
	"github.com/diagnosis/doctors-portal/pkg/events"
	"github.com/diagnosis/doctors-portal/pkg/logger"
	mw "github.com/diagnosis/doctors-portal/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	// Connect to the document store
	ctx := context.Background()
	client, err := mongodb.Connect(ctx, cfg.Mongo)
	if err != nil {
		logger.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer client.Disconnect(context.Background())

	collections := mongodb.NewCollections(client, cfg.Mongo.Database)
	if err := mongodb.EnsureIndexes(ctx, collections); err != nil {
		logger.Error("Failed to ensure indexes", "error", err)
		os.Exit(1)
	}

	// Event bus is best-effort; a dead NATS must not keep the API down.
	var bus events.Publisher
	if natsBus, err := events.NewNATSPublisher(cfg.NATS.URL); err != nil {
		logger.Warn("NATS unavailable, events disabled", "error", err)
		bus = events.NoopPublisher{}
	} else {
		bus = natsBus
	}
	defer bus.Close()

	var mail mailer.Service
	if cfg.Email.DevMode {
		mail = mailer.NewDevMailer()
	} else {
		mail = mailer.NewMailer(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.FromEmail)
	}

	// Initialize repositories
	usersRepo := mongodb.NewUsersRepo(collections)
	bookingsRepo := mongodb.NewBookingsRepo(collections)
	servicesRepo := mongodb.NewServicesRepo(collections)
	doctorsRepo := mongodb.NewDoctorsRepo(collections)
	paymentsRepo := mongodb.NewPaymentsRepo(collections)

	h := handlers.New(handlers.Deps{
		Users:        usersRepo,
		Bookings:     bookingsRepo,
		Services:     servicesRepo,
		Doctors:      doctorsRepo,
		Payments:     paymentsRepo,
		Availability: availability.New(servicesRepo, bookingsRepo),
		Intents:      payments.NewStripeIntents(cfg.Stripe.SecretKey, cfg.Stripe.Currency),
		Mail:         mail,
		Events:       bus,
		JWTSecret:    cfg.Auth.JWTSecret,
		TokenTTL:     cfg.Auth.AccessTokenTTL,
	})

	auth := httpmw.NewAuth(cfg.Auth.JWTSecret, usersRepo)
	limiter := newRateLimiter(cfg.Redis)

	// Setup router
	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.Recover)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000", "*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(mw.Health)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("server connected successfully"))
	})

	r.Get("/service", h.ListServices)
	r.Get("/available", h.Available)

	r.With(limiter.Middleware()).Put("/user/{email}", h.UpsertUser)
	r.With(auth.RequireToken).Get("/user", h.ListUsers)
	r.With(auth.RequireToken, auth.RequireAdmin).Put("/user/admin/{email}", h.PromoteAdmin)
	r.Get("/admin/{email}", h.AdminCheck)

	r.Route("/booking", func(r chi.Router) {
		r.With(limiter.Middleware()).Post("/", h.CreateBooking)
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

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down API...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("API shutdown error", "error", err)
		}
	}()

	logger.Info("Starting doctors-portal API", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("API server error", "error", err)
		os.Exit(1)
	}
}

func newRateLimiter(cfg config.RedisConfig) *httpmw.RateLimiter {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		logger.Warn("Invalid REDIS_URL, rate limiting fails open", "error", err)
		opts = &redis.Options{Addr: "localhost:6379"}
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	opts.DB = cfg.DB

	return httpmw.NewRateLimiter(redis.NewClient(opts), httpmw.RateLimitConfig{
		Requests: 30,
		Window:   time.Minute,
		KeyFunc:  httpmw.ClientIPKeyFunc,
	})
}

// Package router wires the HTTP surface of the clinic platform: public
// discovery and chat endpoints, the demo checkout pages, and the
// JWT-protected appointment operations.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/prescripto/clinic-platform/internal/appointments"
	"github.com/prescripto/clinic-platform/internal/chat"
	httpmiddleware "github.com/prescripto/clinic-platform/internal/http/middleware"
	"github.com/prescripto/clinic-platform/internal/identity"
	"github.com/prescripto/clinic-platform/internal/payments"
	"github.com/prescripto/clinic-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	Appointments       *appointments.Handler
	Chat               *chat.Handler
	FakePayments       *payments.FakeHandler
	Identity           *identity.Resolver
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// ChatRatePerSecond throttles the chat endpoint per IP; zero disables
	// the limiter.
	ChatRatePerSecond float64
	ChatBurst         int
}

// New creates a new Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (health, metrics, discovery, chat, demo checkout).
	r.Group(func(public chi.Router) {
		public.Get("/health", handleHealth)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.Appointments != nil {
			public.Get("/providers", cfg.Appointments.ListProviders)
			public.Get("/providers/{providerID}/slots", cfg.Appointments.ProviderSlots)
		}
		if cfg.Chat != nil {
			chatRoute := public.With()
			if cfg.ChatRatePerSecond > 0 {
				chatRoute = public.With(httpmiddleware.RateLimit(cfg.ChatRatePerSecond, cfg.ChatBurst))
			}
			chatRoute.Post("/chat", cfg.Chat.Chat)
		}
		if cfg.FakePayments != nil {
			public.Mount("/payments/fake", cfg.FakePayments.Routes())
		}
	})

	// Appointment routes require a valid bearer token.
	if cfg.Appointments != nil && cfg.Identity != nil {
		r.Route("/appointments", func(authed chi.Router) {
			authed.Use(identity.Middleware(cfg.Identity))
			authed.Post("/", cfg.Appointments.Book)
			authed.Get("/", cfg.Appointments.List)
			authed.Post("/{appointmentID}/cancel", cfg.Appointments.Cancel)
			authed.Post("/{appointmentID}/payment", cfg.Appointments.RequestPayment)
			authed.Post("/{appointmentID}/verify", cfg.Appointments.VerifyPayment)
		})
	}

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

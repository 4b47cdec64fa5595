package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/prescripto/clinic-platform/internal/api/router"
	"github.com/prescripto/clinic-platform/internal/appointments"
	"github.com/prescripto/clinic-platform/internal/chat"
	appconfig "github.com/prescripto/clinic-platform/internal/config"
	"github.com/prescripto/clinic-platform/internal/events"
	"github.com/prescripto/clinic-platform/internal/identity"
	"github.com/prescripto/clinic-platform/internal/notify"
	"github.com/prescripto/clinic-platform/internal/observability/metrics"
	"github.com/prescripto/clinic-platform/internal/patients"
	"github.com/prescripto/clinic-platform/internal/payments"
	"github.com/prescripto/clinic-platform/internal/providers"
	"github.com/prescripto/clinic-platform/internal/schedule"
	"github.com/prescripto/clinic-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Storage: Postgres when configured, in-memory otherwise.
	var (
		providerDir providers.Directory
		patientDir  patients.Directory
		ledger      appointments.Ledger
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		providerDir = providers.NewPostgresDirectory(pool)
		patientDir = patients.NewPostgresDirectory(pool)
		ledger = appointments.NewPostgresLedger(pool)
		logger.Info("using postgres storage")
	} else {
		providerDir = providers.NewInMemoryDirectory()
		patientDir = patients.NewInMemoryDirectory()
		ledger = appointments.NewMemoryLedger()
		logger.Warn("DATABASE_URL not set, using in-memory storage")
	}

	// Slot claims and chat sessions: Redis when configured.
	var (
		slots    schedule.SlotStore
		sessions chat.SessionStore
	)
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer func() { _ = client.Close() }()
		slots = schedule.NewRedisStore(client)
		sessions = chat.NewRedisSessionStore(client, cfg.ChatSessionTTL)
		logger.Info("using redis for slot claims and chat sessions")
	} else {
		slots = schedule.NewMemoryStore()
		sessions = chat.NewMemorySessionStore()
		logger.Warn("REDIS_ADDR not set, using in-memory slot claims")
	}

	gateway, err := setupGateway(cfg, logger)
	if err != nil {
		logger.Error("payment gateway setup failed", "error", err)
		os.Exit(1)
	}

	notifier := notify.NewNotifier(notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger), logger)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.KafkaBrokers != "" {
		kafkaPublisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.AppointmentEventTopic, logger)
		defer func() { _ = kafkaPublisher.Close() }()
		publisher = kafkaPublisher
		logger.Info("publishing appointment events to kafka", "topic", cfg.AppointmentEventTopic)
	}

	metricsHandler, bookingMetrics := setupBookingMetrics()

	service := appointments.NewService(appointments.ServiceConfig{
		Providers: providerDir,
		Patients:  patientDir,
		Slots:     slots,
		Ledger:    ledger,
		Gateway:   gateway,
		Notifier:  notifier,
		Publisher: publisher,
		Metrics:   bookingMetrics,
		Logger:    logger,
	})

	var advisor chat.Advisor = chat.StaticAdvisor{}
	if cfg.GeminiAPIKey != "" {
		gemini, err := chat.NewGeminiAdvisor(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to initialize gemini advisor", "error", err)
			os.Exit(1)
		}
		defer func() { _ = gemini.Close() }()
		advisor = gemini
		logger.Info("chat advisor backed by gemini", "model", cfg.GeminiModelID)
	} else {
		logger.Warn("GEMINI_API_KEY not set, chat uses canned advice")
	}
	dialogue := chat.NewDialogue(sessions, advisor, logger)

	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}
	resolver := identity.NewResolver(cfg.JWTSecret)

	routerCfg := &router.Config{
		Logger:             logger,
		Appointments:       appointments.NewHandler(service, logger),
		Chat:               chat.NewHandler(dialogue, logger),
		Identity:           resolver,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		ChatRatePerSecond:  2,
		ChatBurst:          5,
	}
	if cfg.AllowFakePayments {
		routerCfg.FakePayments = payments.NewFakeHandler(service, logger)
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// setupGateway picks the checkout provider from configuration. Stripe wins
// when a secret key is present; the fake gateway needs an explicit opt-in.
func setupGateway(cfg *appconfig.Config, logger *logging.Logger) (payments.Gateway, error) {
	switch {
	case cfg.StripeSecretKey != "":
		logger.Info("using stripe checkout")
		return payments.NewStripeGateway(cfg.StripeSecretKey, cfg.Currency,
			cfg.PaymentSuccessURL, cfg.PaymentCancelURL, logger), nil
	case cfg.AllowFakePayments:
		logger.Warn("fake payments enabled, do not use in production")
		return payments.NewFakeGateway(cfg.PublicBaseURL, logger), nil
	default:
		return nil, errors.New("no payment gateway configured; set STRIPE_SECRET_KEY or ALLOW_FAKE_PAYMENTS=true")
	}
}

func setupBookingMetrics() (http.Handler, *metrics.BookingMetrics) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	bookingMetrics := metrics.NewBookingMetrics(registry)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), bookingMetrics
}

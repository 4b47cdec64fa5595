package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appconfig "github.com/prescripto/clinic-platform/internal/config"
	"github.com/prescripto/clinic-platform/internal/payments"
	"github.com/prescripto/clinic-platform/pkg/logging"
)

func TestSetupBookingMetricsExposesMetrics(t *testing.T) {
	handler, bookingMetrics := setupBookingMetrics()
	if handler == nil || bookingMetrics == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}

	bookingMetrics.ObserveBook("success")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "clinic_scheduling_book_total") {
		t.Fatalf("expected booking counter to be exported")
	}
}

func TestSetupGatewayPrefersStripe(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{
		StripeSecretKey:   "sk_test_123",
		Currency:          "usd",
		AllowFakePayments: true,
	}

	gateway, err := setupGateway(cfg, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := gateway.(*payments.StripeGateway); !ok {
		t.Fatalf("expected stripe gateway, got %T", gateway)
	}
}

func TestSetupGatewayFakeNeedsOptIn(t *testing.T) {
	logger := logging.New("error")

	if _, err := setupGateway(&appconfig.Config{}, logger); err == nil {
		t.Fatalf("expected error without any gateway configured")
	}

	gateway, err := setupGateway(&appconfig.Config{
		AllowFakePayments: true,
		PublicBaseURL:     "http://localhost:8080",
	}, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := gateway.(*payments.FakeGateway); !ok {
		t.Fatalf("expected fake gateway, got %T", gateway)
	}
}

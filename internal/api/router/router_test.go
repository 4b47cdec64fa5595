package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prescripto/clinic-platform/internal/appointments"
	"github.com/prescripto/clinic-platform/internal/chat"
	"github.com/prescripto/clinic-platform/internal/identity"
	"github.com/prescripto/clinic-platform/internal/patients"
	"github.com/prescripto/clinic-platform/internal/payments"
	"github.com/prescripto/clinic-platform/internal/providers"
	"github.com/prescripto/clinic-platform/internal/schedule"
	"github.com/prescripto/clinic-platform/pkg/logging"
)

const testJWTSecret = "router-test-secret"

func newTestRouter(t *testing.T) (http.Handler, *identity.Resolver) {
	t.Helper()

	logger := logging.Default()

	providerDir := providers.NewInMemoryDirectory()
	providerDir.Put(&providers.Provider{
		ID:         "prov-1",
		Name:       "Dr. Reyes",
		Speciality: "Dermatology",
		FeeCents:   5000,
		Available:  true,
	})
	patientDir := patients.NewInMemoryDirectory()
	patientDir.Put(&patients.Patient{ID: "user-1", Name: "Jordan", Email: "jordan@example.com"})

	service := appointments.NewService(appointments.ServiceConfig{
		Providers: providerDir,
		Patients:  patientDir,
		Slots:     schedule.NewMemoryStore(),
		Ledger:    appointments.NewMemoryLedger(),
		Gateway:   payments.NewFakeGateway("http://localhost:8080", logger),
		Logger:    logger,
	})

	dialogue := chat.NewDialogue(chat.NewMemorySessionStore(), chat.StaticAdvisor{}, logger)
	resolver := identity.NewResolver(testJWTSecret)

	cfg := &Config{
		Logger:       logger,
		Appointments: appointments.NewHandler(service, logger),
		Chat:         chat.NewHandler(dialogue, logger),
		FakePayments: payments.NewFakeHandler(service, logger),
		Identity:     resolver,
	}
	return New(cfg), resolver
}

func bearerToken(t *testing.T, resolver *identity.Resolver, userID string) string {
	t.Helper()
	token, err := resolver.Mint(identity.Caller{ID: userID, Role: identity.RolePatient}, time.Hour)
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}
	return "Bearer " + token
}

func TestRouterHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterProvidersArePublic(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/providers", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp struct {
		Providers []struct {
			ID string `json:"ID"`
		} `json:"providers"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode providers response: %v", err)
	}
	if len(resp.Providers) != 1 {
		t.Errorf("expected 1 provider, got %d", len(resp.Providers))
	}
}

func TestRouterAppointmentsRequireAuth(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/appointments/", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
}

func TestRouterBookWithToken(t *testing.T) {
	router, resolver := newTestRouter(t)

	payload := map[string]string{
		"provider_id": "prov-1",
		"slot_date":   "2026-09-10",
		"slot_time":   "10:00",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/appointments/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t, resolver, "user-1"))
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}
}

func TestRouterChatEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	body, _ := json.Marshal(map[string]string{"session_id": "sess-1", "message": "hi"})
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp struct {
		Reply string `json:"reply"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode chat response: %v", err)
	}
	if resp.Reply == "" {
		t.Errorf("expected a non-empty reply")
	}
}

func TestRouterFakeCheckoutPage(t *testing.T) {
	router, resolver := newTestRouter(t)

	// Book first so the appointment exists for completion.
	body, _ := json.Marshal(map[string]string{
		"provider_id": "prov-1",
		"slot_date":   "2026-09-11",
		"slot_time":   "11:00",
	})
	bookReq := httptest.NewRequest(http.MethodPost, "/appointments/", bytes.NewReader(body))
	bookReq.Header.Set("Authorization", bearerToken(t, resolver, "user-1"))
	bookRR := httptest.NewRecorder()
	router.ServeHTTP(bookRR, bookReq)
	if bookRR.Code != http.StatusCreated {
		t.Fatalf("book failed: %d %s", bookRR.Code, bookRR.Body.String())
	}
	var appt struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(bookRR.Body).Decode(&appt); err != nil {
		t.Fatalf("failed to decode booking: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/payments/fake/"+appt.ID, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("unexpected content type %q", ct)
	}
}

func TestRouterChatRateLimit(t *testing.T) {
	limited := New(&Config{
		Chat:              mustChatHandler(t),
		ChatRatePerSecond: 1,
		ChatBurst:         1,
	})

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		body, _ := json.Marshal(map[string]string{"session_id": "sess-1", "message": "hi"})
		req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(body))
		req.RemoteAddr = "10.1.1.1:4000"
		rr := httptest.NewRecorder()
		limited.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	if codes[0] != http.StatusOK {
		t.Fatalf("expected first chat request to pass, got %v", codes)
	}
	if codes[1] != http.StatusTooManyRequests {
		t.Fatalf("expected second chat request to be limited, got %v", codes)
	}
}

func mustChatHandler(t *testing.T) *chat.Handler {
	t.Helper()
	logger := logging.Default()
	dialogue := chat.NewDialogue(chat.NewMemorySessionStore(), chat.StaticAdvisor{}, logger)
	return chat.NewHandler(dialogue, logger)
}

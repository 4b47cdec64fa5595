package appointments

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/prescripto/clinic-platform/internal/identity"
)

func newTestRouter(t *testing.T) (*chi.Mux, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	h := NewHandler(env.service, nil)

	r := chi.NewRouter()
	r.Get("/providers", h.ListProviders)
	r.Get("/providers/{providerID}/slots", h.ProviderSlots)
	r.Post("/appointments", h.Book)
	r.Get("/appointments", h.List)
	r.Post("/appointments/{appointmentID}/cancel", h.Cancel)
	r.Post("/appointments/{appointmentID}/payment", h.RequestPayment)
	r.Post("/appointments/{appointmentID}/verify", h.VerifyPayment)
	return r, env
}

func doJSON(t *testing.T, r http.Handler, method, path, callerID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		payload = bytes.NewBuffer(raw)
	} else {
		payload = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, payload)
	if callerID != "" {
		ctx := identity.WithCaller(context.Background(), identity.Caller{ID: callerID, Role: identity.RolePatient})
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandlerBook(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/appointments", "user-1", bookRequest{
		ProviderID: "prov-1", SlotDate: "2024-06-01", SlotTime: "10:00 AM",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var appt Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &appt); err != nil {
		t.Fatalf("response is not an appointment: %v", err)
	}
	if appt.ProviderID != "prov-1" || appt.AmountCents != 5000 {
		t.Errorf("unexpected appointment: %+v", appt)
	}

	// Same slot again conflicts.
	rec = doJSON(t, router, http.MethodPost, "/appointments", "user-2", bookRequest{
		ProviderID: "prov-1", SlotDate: "2024-06-01", SlotTime: "10:00 AM",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("conflict status = %d, want 409", rec.Code)
	}
}

func TestHandlerBookValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/appointments", "user-1", bookRequest{ProviderID: "prov-1"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing fields status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/appointments", "", bookRequest{
		ProviderID: "prov-1", SlotDate: "2024-06-01", SlotTime: "10:00 AM",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/appointments", "user-1", bookRequest{
		ProviderID: "ghost", SlotDate: "2024-06-01", SlotTime: "10:00 AM",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown provider status = %d, want 404", rec.Code)
	}
}

func TestHandlerCancelAuthorization(t *testing.T) {
	router, env := newTestRouter(t)

	appt, err := env.service.Book(context.Background(), "user-1", "prov-1", "2024-06-01", "10:00 AM")
	if err != nil {
		t.Fatalf("Book returned error: %v", err)
	}

	rec := doJSON(t, router, http.MethodPost, "/appointments/"+appt.ID+"/cancel", "user-2", nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-owner cancel status = %d, want 403", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/appointments/"+appt.ID+"/cancel", "user-1", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("owner cancel status = %d, want 200", rec.Code)
	}
}

func TestHandlerPaymentFlow(t *testing.T) {
	router, env := newTestRouter(t)

	appt, err := env.service.Book(context.Background(), "user-1", "prov-1", "2024-06-01", "10:00 AM")
	if err != nil {
		t.Fatalf("Book returned error: %v", err)
	}

	rec := doJSON(t, router, http.MethodPost, "/appointments/"+appt.ID+"/payment", "user-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("payment status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp paymentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("payment response: %v", err)
	}
	if resp.SessionURL == "" {
		t.Error("payment response has no session URL")
	}

	rec = doJSON(t, router, http.MethodPost, "/appointments/"+appt.ID+"/verify", "user-1", verifyRequest{Success: true})
	if rec.Code != http.StatusOK {
		t.Errorf("verify status = %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/appointments/"+appt.ID+"/verify", "user-1", verifyRequest{Success: false})
	if rec.Code != http.StatusPaymentRequired {
		t.Errorf("failed verify status = %d, want 402", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/appointments/ghost/verify", "user-1", verifyRequest{Success: true})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown verify status = %d, want 404", rec.Code)
	}
}

func TestHandlerProviderEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/providers", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("providers status = %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/providers/prov-1/slots", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("slots status = %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/providers/ghost/slots", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown provider slots status = %d, want 404", rec.Code)
	}
}

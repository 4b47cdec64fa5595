package payments

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/prescripto/clinic-platform/pkg/logging"
)

// PaymentConfirmer records the result of a checkout for an appointment.
type PaymentConfirmer interface {
	ConfirmPayment(ctx context.Context, appointmentID string, succeeded bool) error
}

// FakeHandler exposes a tiny demo UI to "complete" appointment fees without
// Stripe. Only mount this handler when ALLOW_FAKE_PAYMENTS=true.
type FakeHandler struct {
	confirmer PaymentConfirmer
	logger    *logging.Logger
}

// NewFakeHandler creates the demo checkout handler.
func NewFakeHandler(confirmer PaymentConfirmer, logger *logging.Logger) *FakeHandler {
	if confirmer == nil {
		panic("payments: confirmer required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FakeHandler{confirmer: confirmer, logger: logger}
}

// Routes returns the demo checkout routes; mount under /payments/fake.
func (h *FakeHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{appointmentID}", h.HandleCheckout)
	r.Post("/{appointmentID}/complete", h.HandleComplete)
	r.Get("/{appointmentID}/success", h.HandleSuccess)
	return r
}

func (h *FakeHandler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := appointmentIDParam(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Demo Appointment Checkout</title>
    <style>
      body{font-family:system-ui,-apple-system,Segoe UI,Roboto,Ubuntu,Cantarell,Noto Sans,sans-serif;max-width:680px;margin:40px auto;padding:0 16px;}
      .card{border:1px solid #e5e7eb;border-radius:12px;padding:18px;}
      .btn{display:inline-block;background:#111827;color:#fff;padding:12px 16px;border-radius:10px;text-decoration:none;border:0;cursor:pointer;}
      .muted{color:#6b7280;font-size:14px;}
      code{background:#f3f4f6;padding:2px 6px;border-radius:6px;}
    </style>
  </head>
  <body>
    <h1>Demo Appointment Checkout</h1>
    <div class="card">
      <p class="muted">This is a demo-only payment page (no real payment is processed).</p>
      <form method="POST" action="/payments/fake/%s/complete">
        <button class="btn" type="submit">Pay Appointment Fee</button>
      </form>
      <p class="muted">Appointment ID: <code>%s</code></p>
    </div>
  </body>
</html>`, appointmentID, appointmentID)
}

func (h *FakeHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := appointmentIDParam(w, r)
	if !ok {
		return
	}
	if err := h.confirmer.ConfirmPayment(r.Context(), appointmentID, true); err != nil {
		h.logger.Error("fake payment completion failed", "error", err, "appointment_id", appointmentID)
		http.Error(w, "failed to complete payment", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/payments/fake/%s/success", appointmentID), http.StatusSeeOther)
}

func (h *FakeHandler) HandleSuccess(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := appointmentIDParam(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Payment Completed</title>
    <style>
      body{font-family:system-ui,-apple-system,Segoe UI,Roboto,Ubuntu,Cantarell,Noto Sans,sans-serif;max-width:680px;margin:40px auto;padding:0 16px;}
      .card{border:1px solid #e5e7eb;border-radius:12px;padding:18px;}
      .muted{color:#6b7280;font-size:14px;}
      code{background:#f3f4f6;padding:2px 6px;border-radius:6px;}
    </style>
  </head>
  <body>
    <h1>Payment Completed</h1>
    <div class="card">
      <p>Thanks! Your demo appointment fee is marked as paid.</p>
      <p class="muted">You can close this tab and return to the app.</p>
      <p class="muted">Appointment ID: <code>%s</code></p>
    </div>
  </body>
</html>`, appointmentID)
}

func appointmentIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, "appointmentID"))
	if raw == "" {
		http.Error(w, "missing appointment id", http.StatusBadRequest)
		return "", false
	}
	return raw, true
}

package appointments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prescripto/clinic-platform/internal/identity"
	"github.com/prescripto/clinic-platform/internal/patients"
	"github.com/prescripto/clinic-platform/internal/payments"
	"github.com/prescripto/clinic-platform/internal/providers"
	"github.com/prescripto/clinic-platform/internal/schedule"
	"github.com/prescripto/clinic-platform/pkg/logging"
)

// Handler exposes the scheduling operations over HTTP.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates an appointments handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if service == nil {
		panic("appointments: service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

type bookRequest struct {
	ProviderID string `json:"provider_id"`
	SlotDate   string `json:"slot_date"`
	SlotTime   string `json:"slot_time"`
}

type paymentResponse struct {
	SessionID  string `json:"session_id"`
	SessionURL string `json:"session_url"`
}

type verifyRequest struct {
	Success bool `json:"success"`
}

// ListProviders handles GET /providers.
func (h *Handler) ListProviders(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Providers(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"providers": list})
}

// ProviderSlots handles GET /providers/{providerID}/slots.
func (h *Handler) ProviderSlots(w http.ResponseWriter, r *http.Request) {
	providerID := chi.URLParam(r, "providerID")
	booked, err := h.service.BookedSlots(r.Context(), providerID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"booked_slots": booked})
}

// Book handles POST /appointments.
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity.CallerFromContext(r.Context())
	if !ok {
		http.Error(w, "missing caller identity", http.StatusUnauthorized)
		return
	}
	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if req.ProviderID == "" || req.SlotDate == "" || req.SlotTime == "" {
		http.Error(w, "provider_id, slot_date and slot_time are required", http.StatusBadRequest)
		return
	}

	appt, err := h.service.Book(r.Context(), caller.ID, req.ProviderID, req.SlotDate, req.SlotTime)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, appt)
}

// List handles GET /appointments.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity.CallerFromContext(r.Context())
	if !ok {
		http.Error(w, "missing caller identity", http.StatusUnauthorized)
		return
	}
	list, err := h.service.ListForUser(r.Context(), caller.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []*Appointment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointments": list})
}

// Cancel handles POST /appointments/{appointmentID}/cancel.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity.CallerFromContext(r.Context())
	if !ok {
		http.Error(w, "missing caller identity", http.StatusUnauthorized)
		return
	}
	appointmentID := chi.URLParam(r, "appointmentID")
	if err := h.service.Cancel(r.Context(), caller.ID, appointmentID); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cancelled": true})
}

// RequestPayment handles POST /appointments/{appointmentID}/payment.
func (h *Handler) RequestPayment(w http.ResponseWriter, r *http.Request) {
	appointmentID := chi.URLParam(r, "appointmentID")
	sess, err := h.service.RequestPayment(r.Context(), appointmentID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentResponse{SessionID: sess.ID, SessionURL: sess.URL})
}

// VerifyPayment handles POST /appointments/{appointmentID}/verify, the
// redirect target after checkout. Safe to hit more than once.
func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	appointmentID := chi.URLParam(r, "appointmentID")
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := h.service.ConfirmPayment(r.Context(), appointmentID, req.Success); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"paid": true})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, providers.ErrProviderNotFound),
		errors.Is(err, patients.ErrPatientNotFound),
		errors.Is(err, ErrAppointmentNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, schedule.ErrSlotTaken),
		errors.Is(err, ErrProviderUnavailable),
		errors.Is(err, ErrAppointmentCancelled):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrUnauthorized):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, schedule.ErrInvalidDate), errors.Is(err, schedule.ErrInvalidSlot):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrPaymentNotCompleted):
		http.Error(w, err.Error(), http.StatusPaymentRequired)
	case errors.Is(err, payments.ErrGatewayUnavailable):
		http.Error(w, "payment gateway unavailable", http.StatusBadGateway)
	default:
		h.logger.Error("request failed", "error", err, "path", r.URL.Path)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

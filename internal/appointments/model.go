package appointments

import (
	"errors"
	"time"
)

// UserSnapshot is the patient profile captured at booking time. It is stored
// by value so later profile edits never rewrite booking history.
type UserSnapshot struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	DOB      string `json:"dob,omitempty"`
	Gender   string `json:"gender,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// ProviderSnapshot is the provider profile captured at booking time.
type ProviderSnapshot struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Speciality string `json:"speciality,omitempty"`
	Degree     string `json:"degree,omitempty"`
	Experience string `json:"experience,omitempty"`
	About      string `json:"about,omitempty"`
	Address    string `json:"address,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
	FeeCents   int64  `json:"fee_cents"`
}

// Appointment is one booking in the ledger. Records are never deleted;
// cancellation is a soft state so history survives. AmountCents is fixed at
// creation and never changes with later fee edits.
type Appointment struct {
	ID           string           `json:"id"`
	UserID       string           `json:"user_id"`
	ProviderID   string           `json:"provider_id"`
	UserData     UserSnapshot     `json:"user_data"`
	ProviderData ProviderSnapshot `json:"provider_data"`
	AmountCents  int64            `json:"amount_cents"`
	SlotDate     string           `json:"slot_date"`
	SlotTime     string           `json:"slot_time"`
	CreatedAt    time.Time        `json:"created_at"`
	Cancelled    bool             `json:"cancelled"`
	Paid         bool             `json:"paid"`
}

// Draft is the input to Ledger.Create; identity and CreatedAt are assigned by
// the ledger.
type Draft struct {
	UserID       string
	ProviderID   string
	UserData     UserSnapshot
	ProviderData ProviderSnapshot
	AmountCents  int64
	SlotDate     string
	SlotTime     string
}

var (
	// ErrAppointmentNotFound is returned when an id does not resolve.
	ErrAppointmentNotFound = errors.New("appointments: appointment not found")
	// ErrUnauthorized is returned when the caller does not own the appointment.
	ErrUnauthorized = errors.New("appointments: caller does not own appointment")
	// ErrProviderUnavailable is returned when booking with a provider who is
	// not taking appointments.
	ErrProviderUnavailable = errors.New("appointments: provider not available")
	// ErrAppointmentCancelled is returned when payment is attempted against a
	// cancelled appointment.
	ErrAppointmentCancelled = errors.New("appointments: appointment cancelled")
	// ErrPaymentNotCompleted is returned when the gateway reports a failed
	// payment outcome. No ledger state changes on this path.
	ErrPaymentNotCompleted = errors.New("appointments: payment not completed")
)

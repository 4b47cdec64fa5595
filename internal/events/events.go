// Package events publishes appointment lifecycle events for downstream
// consumers (reminders, analytics). Publishing is best-effort and happens
// after the ledger transition commits; the booking path never fails because
// a broker is down.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted on the appointment topic.
const (
	TypeAppointmentBooked    = "appointment.booked.v1"
	TypeAppointmentCancelled = "appointment.cancelled.v1"
	TypeAppointmentPaid      = "appointment.paid.v1"
)

// AppointmentEvent is the payload for all appointment lifecycle events.
type AppointmentEvent struct {
	AppointmentID string `json:"appointment_id"`
	UserID        string `json:"user_id"`
	ProviderID    string `json:"provider_id"`
	SlotDate      string `json:"slot_date"`
	SlotTime      string `json:"slot_time"`
	AmountCents   int64  `json:"amount_cents,omitempty"`
}

// Envelope captures transport metadata for published events.
type Envelope struct {
	EventID   uuid.UUID       `json:"event_id"`
	EventType string          `json:"event_type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewEnvelope wraps a payload in a fresh envelope.
func NewEnvelope(eventType string, payload AppointmentEvent) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:   uuid.New(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Payload:   raw,
	}, nil
}

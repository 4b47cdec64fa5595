package appointments

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Ledger is the authoritative record of all appointments, cancelled or not.
//
// Create assigns identity and CreatedAt and persists the record with
// cancelled=false, paid=false. MarkCancelled and MarkPaid are idempotent:
// re-marking an already-cancelled or already-paid appointment is a no-op,
// not an error.
type Ledger interface {
	Create(ctx context.Context, draft Draft) (*Appointment, error)
	Get(ctx context.Context, id string) (*Appointment, error)
	ListForUser(ctx context.Context, userID string) ([]*Appointment, error)
	MarkCancelled(ctx context.Context, id string) error
	MarkPaid(ctx context.Context, id string) error
}

// MemoryLedger is a Ledger backed by an in-memory map.
type MemoryLedger struct {
	mu      sync.RWMutex
	records map[string]*Appointment
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{records: make(map[string]*Appointment)}
}

var _ Ledger = (*MemoryLedger)(nil)

// Create persists a new appointment from the draft.
func (l *MemoryLedger) Create(ctx context.Context, draft Draft) (*Appointment, error) {
	appt := &Appointment{
		ID:           uuid.New().String(),
		UserID:       draft.UserID,
		ProviderID:   draft.ProviderID,
		UserData:     draft.UserData,
		ProviderData: draft.ProviderData,
		AmountCents:  draft.AmountCents,
		SlotDate:     draft.SlotDate,
		SlotTime:     draft.SlotTime,
		CreatedAt:    time.Now().UTC(),
	}

	l.mu.Lock()
	l.records[appt.ID] = appt
	l.mu.Unlock()

	copied := *appt
	return &copied, nil
}

// Get retrieves an appointment by id.
func (l *MemoryLedger) Get(ctx context.Context, id string) (*Appointment, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	appt, ok := l.records[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	copied := *appt
	return &copied, nil
}

// ListForUser returns all appointments for a user, cancelled ones included.
func (l *MemoryLedger) ListForUser(ctx context.Context, userID string) ([]*Appointment, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []*Appointment
	for _, appt := range l.records {
		if appt.UserID == userID {
			copied := *appt
			out = append(out, &copied)
		}
	}
	return out, nil
}

// MarkCancelled flags the appointment cancelled.
func (l *MemoryLedger) MarkCancelled(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	appt, ok := l.records[id]
	if !ok {
		return ErrAppointmentNotFound
	}
	appt.Cancelled = true
	return nil
}

// MarkPaid flags the appointment paid.
func (l *MemoryLedger) MarkPaid(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	appt, ok := l.records[id]
	if !ok {
		return ErrAppointmentNotFound
	}
	appt.Paid = true
	return nil
}

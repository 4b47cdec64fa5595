package patients

import (
	"context"
	"errors"
	"sync"
)

// Patient is the profile slice the scheduler snapshots into appointments.
// Registration and profile editing belong to the account service.
type Patient struct {
	ID       string
	Name     string
	Email    string
	Phone    string
	Address  string
	DOB      string
	Gender   string
	ImageURL string
}

// ErrPatientNotFound is returned when an id does not resolve to a patient.
var ErrPatientNotFound = errors.New("patients: patient not found")

// Directory exposes read-only patient lookups.
type Directory interface {
	GetByID(ctx context.Context, id string) (*Patient, error)
}

// InMemoryDirectory is a Directory backed by an in-memory map.
type InMemoryDirectory struct {
	mu       sync.RWMutex
	patients map[string]*Patient
}

// NewInMemoryDirectory creates an empty in-memory directory.
func NewInMemoryDirectory() *InMemoryDirectory {
	return &InMemoryDirectory{patients: make(map[string]*Patient)}
}

// Put inserts or replaces a patient. Used by seeding and tests.
func (d *InMemoryDirectory) Put(p *Patient) {
	d.mu.Lock()
	copied := *p
	d.patients[p.ID] = &copied
	d.mu.Unlock()
}

// GetByID retrieves a patient by id.
func (d *InMemoryDirectory) GetByID(ctx context.Context, id string) (*Patient, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	p, ok := d.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	copied := *p
	return &copied, nil
}

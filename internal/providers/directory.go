package providers

import (
	"context"
	"sync"
)

// Directory exposes read-only provider lookups to the scheduler.
type Directory interface {
	GetByID(ctx context.Context, id string) (*Provider, error)
	List(ctx context.Context) ([]*Provider, error)
}

// InMemoryDirectory is a Directory backed by an in-memory map.
type InMemoryDirectory struct {
	mu        sync.RWMutex
	providers map[string]*Provider
}

// NewInMemoryDirectory creates an empty in-memory directory.
func NewInMemoryDirectory() *InMemoryDirectory {
	return &InMemoryDirectory{providers: make(map[string]*Provider)}
}

// Put inserts or replaces a provider. Used by seeding and tests.
func (d *InMemoryDirectory) Put(p *Provider) {
	d.mu.Lock()
	copied := *p
	d.providers[p.ID] = &copied
	d.mu.Unlock()
}

// GetByID retrieves a provider by id.
func (d *InMemoryDirectory) GetByID(ctx context.Context, id string) (*Provider, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	p, ok := d.providers[id]
	if !ok {
		return nil, ErrProviderNotFound
	}
	copied := *p
	return &copied, nil
}

// List returns all providers.
func (d *InMemoryDirectory) List(ctx context.Context) ([]*Provider, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]*Provider, 0, len(d.providers))
	for _, p := range d.providers {
		copied := *p
		out = append(out, &copied)
	}
	return out, nil
}

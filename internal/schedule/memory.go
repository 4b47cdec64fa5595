package schedule

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is a SlotStore holding booked slots in process memory.
//
// Each provider gets its own lock so bookings for different providers never
// contend; the check-and-claim for a single provider runs entirely under that
// provider's mutex, which is what keeps two concurrent claims for the same
// slot from both succeeding.
type MemoryStore struct {
	mu        sync.Mutex
	providers map[string]*providerSlots
}

type providerSlots struct {
	mu    sync.Mutex
	dates map[string]map[string]struct{}
}

// NewMemoryStore creates an empty in-memory slot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{providers: make(map[string]*providerSlots)}
}

var _ SlotStore = (*MemoryStore)(nil)

func (s *MemoryStore) forProvider(providerID string) *providerSlots {
	s.mu.Lock()
	defer s.mu.Unlock()

	ps, ok := s.providers[providerID]
	if !ok {
		ps = &providerSlots{dates: make(map[string]map[string]struct{})}
		s.providers[providerID] = ps
	}
	return ps
}

// Claim atomically reserves (date, slot) for the provider.
func (s *MemoryStore) Claim(ctx context.Context, providerID, date, slot string) error {
	ps := s.forProvider(providerID)
	ps.mu.Lock()
	defer ps.mu.Unlock()

	slots, ok := ps.dates[date]
	if !ok {
		slots = make(map[string]struct{})
		ps.dates[date] = slots
	}
	if _, taken := slots[slot]; taken {
		return ErrSlotTaken
	}
	slots[slot] = struct{}{}
	return nil
}

// Release frees (date, slot) for the provider. Releasing a free slot is a no-op.
func (s *MemoryStore) Release(ctx context.Context, providerID, date, slot string) error {
	ps := s.forProvider(providerID)
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if slots, ok := ps.dates[date]; ok {
		delete(slots, slot)
		if len(slots) == 0 {
			delete(ps.dates, date)
		}
	}
	return nil
}

// Booked returns the provider's booked slots grouped by date.
func (s *MemoryStore) Booked(ctx context.Context, providerID string) (map[string][]string, error) {
	ps := s.forProvider(providerID)
	ps.mu.Lock()
	defer ps.mu.Unlock()

	out := make(map[string][]string, len(ps.dates))
	for date, slots := range ps.dates {
		labels := make([]string, 0, len(slots))
		for slot := range slots {
			labels = append(labels, slot)
		}
		sort.Strings(labels)
		out[date] = labels
	}
	return out, nil
}

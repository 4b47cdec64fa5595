// Package schedule tracks which appointment slots are taken for each
// provider. A slot is a (provider, date, time label) triple; claiming one must
// be atomic per provider so concurrent bookings can never both win.
package schedule

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrSlotTaken is returned when a claim loses to an existing booking.
	ErrSlotTaken = errors.New("schedule: slot already booked")
	// ErrInvalidDate is returned for dates not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("schedule: invalid date")
	// ErrInvalidSlot is returned for empty time labels.
	ErrInvalidSlot = errors.New("schedule: invalid slot label")
)

// SlotStore claims and releases bookable slots.
//
// Claim is check-and-set in one atomic step scoped to the provider: no other
// claim or release for the same provider may interleave between the
// availability check and the write. Release is idempotent; releasing a free
// slot is a no-op.
type SlotStore interface {
	Claim(ctx context.Context, providerID, date, slot string) error
	Release(ctx context.Context, providerID, date, slot string) error
	Booked(ctx context.Context, providerID string) (map[string][]string, error)
}

// ValidateDate checks a calendar date in YYYY-MM-DD form.
func ValidateDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// ValidateSlot checks a time label is non-empty.
func ValidateSlot(slot string) error {
	if strings.TrimSpace(slot) == "" {
		return ErrInvalidSlot
	}
	return nil
}

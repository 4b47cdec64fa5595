package providers

import "errors"

// Provider is a clinician patients can book with. Profile management lives in
// the admin surface; the scheduler only reads identity, fee and availability.
type Provider struct {
	ID         string
	Name       string
	Email      string
	Speciality string
	Degree     string
	Experience string
	About      string
	Address    string
	ImageURL   string
	FeeCents   int64
	Available  bool
}

// ErrProviderNotFound is returned when an id does not resolve to a provider.
var ErrProviderNotFound = errors.New("providers: provider not found")

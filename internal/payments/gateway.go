// Package payments integrates external checkout providers. The scheduler only
// needs "create a payable session for this amount"; everything about the wire
// protocol stays behind the Gateway interface.
package payments

import (
	"context"
	"errors"
)

// ErrGatewayUnavailable wraps transport failures talking to the payment
// provider. Callers may retry with backoff; no ledger state changes on this
// path.
var ErrGatewayUnavailable = errors.New("payments: gateway unavailable")

// SessionParams describes the checkout session to create.
type SessionParams struct {
	AppointmentID string
	AmountCents   int64
	Currency      string
	Description   string
	SuccessURL    string
	CancelURL     string
}

// Session is an opaque reference to a provider-hosted checkout.
type Session struct {
	ID  string
	URL string
}

// Gateway creates checkout sessions with an external payment provider.
type Gateway interface {
	CreateSession(ctx context.Context, params SessionParams) (*Session, error)
}

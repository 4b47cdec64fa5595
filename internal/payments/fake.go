package payments

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/prescripto/clinic-platform/pkg/logging"
)

// FakeGateway is a dev/demo checkout provider that generates an internal URL
// and lets the user "complete" payment without Stripe credentials.
//
// This MUST be gated by configuration (ALLOW_FAKE_PAYMENTS) and should never
// be enabled in production.
type FakeGateway struct {
	publicBaseURL string
	logger        *logging.Logger
}

// NewFakeGateway creates a fake gateway rooted at the service's public URL.
func NewFakeGateway(publicBaseURL string, logger *logging.Logger) *FakeGateway {
	if logger == nil {
		logger = logging.Default()
	}
	return &FakeGateway{
		publicBaseURL: strings.TrimRight(strings.TrimSpace(publicBaseURL), "/"),
		logger:        logger,
	}
}

var _ Gateway = (*FakeGateway)(nil)

// CreateSession returns an internal checkout URL for the appointment.
func (g *FakeGateway) CreateSession(ctx context.Context, p SessionParams) (*Session, error) {
	_ = ctx
	if p.AppointmentID == "" {
		return nil, fmt.Errorf("payments: fake checkout requires appointment id")
	}
	if !isValidBaseURL(g.publicBaseURL) {
		return nil, fmt.Errorf("payments: fake checkout requires an absolute http(s) PUBLIC_BASE_URL")
	}

	g.logger.Info("fake checkout session created", "appointment_id", p.AppointmentID, "amount_cents", p.AmountCents)
	return &Session{
		ID:  "fake:" + p.AppointmentID,
		URL: fmt.Sprintf("%s/payments/fake/%s", g.publicBaseURL, p.AppointmentID),
	}, nil
}

func isValidBaseURL(value string) bool {
	parsed, err := url.Parse(value)
	if err != nil || parsed.Host == "" {
		return false
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return true
	default:
		return false
	}
}

package payments

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v79"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/prescripto/clinic-platform/pkg/logging"
)

var stripeTracer = otel.Tracer("clinic.internal.payments.stripe")

// StripeGateway creates Stripe Checkout Sessions for appointment fees.
type StripeGateway struct {
	currency   string
	successURL string
	cancelURL  string
	logger     *logging.Logger
}

// NewStripeGateway configures the global Stripe key and returns a gateway.
func NewStripeGateway(secretKey, currency, successURL, cancelURL string, logger *logging.Logger) *StripeGateway {
	if logger == nil {
		logger = logging.Default()
	}
	stripe.Key = strings.TrimSpace(secretKey)
	if currency == "" {
		currency = "usd"
	}
	return &StripeGateway{
		currency:   strings.ToLower(currency),
		successURL: successURL,
		cancelURL:  cancelURL,
		logger:     logger,
	}
}

var _ Gateway = (*StripeGateway)(nil)

// CreateSession creates a one-time payment checkout session for the appointment.
func (g *StripeGateway) CreateSession(ctx context.Context, p SessionParams) (*Session, error) {
	ctx, span := stripeTracer.Start(ctx, "stripe.create_checkout_session")
	defer span.End()
	span.SetAttributes(
		attribute.String("clinic.appointment_id", p.AppointmentID),
		attribute.Int64("clinic.amount_cents", p.AmountCents),
	)

	currency := p.Currency
	if currency == "" {
		currency = g.currency
	}
	description := p.Description
	if strings.TrimSpace(description) == "" {
		description = "Appointment Fees"
	}
	successURL := p.SuccessURL
	if successURL == "" {
		successURL = g.successURL
	}
	cancelURL := p.CancelURL
	if cancelURL == "" {
		cancelURL = g.cancelURL
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(successURL),
		CancelURL:         stripe.String(cancelURL),
		ClientReferenceID: stripe.String(p.AppointmentID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(p.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{
			"appointment_id": p.AppointmentID,
		},
	}
	// Stripe-level idempotency: retried session creation for the same
	// appointment reuses the prior session instead of opening a second one.
	params.IdempotencyKey = stripe.String("appointment-checkout-" + p.AppointmentID)

	sess, err := checkoutsession.New(params)
	if err != nil {
		span.RecordError(err)
		g.logger.Error("stripe checkout session create failed", "error", err, "appointment_id", p.AppointmentID)
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	g.logger.Info("stripe checkout session created",
		"appointment_id", p.AppointmentID,
		"session_id", sess.ID,
		"amount_cents", p.AmountCents,
	)
	return &Session{ID: sess.ID, URL: sess.URL}, nil
}

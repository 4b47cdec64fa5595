package notify

import (
	"context"
	"fmt"

	"github.com/prescripto/clinic-platform/pkg/logging"
)

// AppointmentEmail is the slice of an appointment the notifier needs.
type AppointmentEmail struct {
	PatientName  string
	PatientEmail string
	ProviderName string
	SlotDate     string
	SlotTime     string
	AmountCents  int64
}

// Notifier sends appointment lifecycle emails to patients. All sends are
// best-effort: failures are logged and never propagate into the booking path.
type Notifier struct {
	email  EmailSender
	logger *logging.Logger
}

// NewNotifier creates a notifier. A nil sender disables email entirely.
func NewNotifier(email EmailSender, logger *logging.Logger) *Notifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &Notifier{email: email, logger: logger}
}

// AppointmentBooked emails a booking confirmation.
func (n *Notifier) AppointmentBooked(ctx context.Context, a AppointmentEmail) {
	n.send(ctx, a, "Your appointment is booked",
		fmt.Sprintf("Hi %s,\n\nYour appointment with %s on %s at %s is confirmed.\nFee due: %s.\n\nPrescripto Clinic",
			a.PatientName, a.ProviderName, a.SlotDate, a.SlotTime, formatCents(a.AmountCents)))
}

// AppointmentCancelled emails a cancellation notice.
func (n *Notifier) AppointmentCancelled(ctx context.Context, a AppointmentEmail) {
	n.send(ctx, a, "Your appointment was cancelled",
		fmt.Sprintf("Hi %s,\n\nYour appointment with %s on %s at %s has been cancelled.\n\nPrescripto Clinic",
			a.PatientName, a.ProviderName, a.SlotDate, a.SlotTime))
}

// PaymentReceived emails a payment receipt.
func (n *Notifier) PaymentReceived(ctx context.Context, a AppointmentEmail) {
	n.send(ctx, a, "Payment received",
		fmt.Sprintf("Hi %s,\n\nWe received your payment of %s for the appointment with %s on %s at %s.\n\nPrescripto Clinic",
			a.PatientName, formatCents(a.AmountCents), a.ProviderName, a.SlotDate, a.SlotTime))
}

func (n *Notifier) send(ctx context.Context, a AppointmentEmail, subject, body string) {
	if n == nil || n.email == nil || a.PatientEmail == "" {
		return
	}
	msg := EmailMessage{
		To:      a.PatientEmail,
		ToName:  a.PatientName,
		Subject: subject,
		Body:    body,
	}
	if err := n.email.Send(ctx, msg); err != nil {
		n.logger.Error("appointment email failed", "error", err, "to", a.PatientEmail, "subject", subject)
	}
}

func formatCents(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubSender struct {
	sent []EmailMessage
	err  error
}

func (s *stubSender) Send(ctx context.Context, msg EmailMessage) error {
	s.sent = append(s.sent, msg)
	return s.err
}

func TestAppointmentBooked(t *testing.T) {
	sender := &stubSender{}
	n := NewNotifier(sender, nil)

	n.AppointmentBooked(context.Background(), AppointmentEmail{
		PatientName:  "Jane",
		PatientEmail: "jane@example.com",
		ProviderName: "Dr. Ada",
		SlotDate:     "2024-06-01",
		SlotTime:     "10:00 AM",
		AmountCents:  5050,
	})

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.To != "jane@example.com" {
		t.Errorf("To = %q", msg.To)
	}
	if !strings.Contains(msg.Body, "Dr. Ada") || !strings.Contains(msg.Body, "$50.50") {
		t.Errorf("body missing details: %q", msg.Body)
	}
}

func TestSendFailureDoesNotPanic(t *testing.T) {
	sender := &stubSender{err: errors.New("smtp down")}
	n := NewNotifier(sender, nil)
	n.AppointmentCancelled(context.Background(), AppointmentEmail{
		PatientName:  "Jane",
		PatientEmail: "jane@example.com",
	})
	if len(sender.sent) != 1 {
		t.Fatalf("send should still have been attempted")
	}
}

func TestNoEmailAddressSkipsSend(t *testing.T) {
	sender := &stubSender{}
	n := NewNotifier(sender, nil)
	n.PaymentReceived(context.Background(), AppointmentEmail{PatientName: "Jane"})
	if len(sender.sent) != 0 {
		t.Errorf("sent %d emails, want 0", len(sender.sent))
	}
}

func TestNilSenderIsSafe(t *testing.T) {
	n := NewNotifier(nil, nil)
	n.AppointmentBooked(context.Background(), AppointmentEmail{PatientEmail: "jane@example.com"})
}

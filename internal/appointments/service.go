package appointments

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/prescripto/clinic-platform/internal/events"
	"github.com/prescripto/clinic-platform/internal/notify"
	"github.com/prescripto/clinic-platform/internal/observability/metrics"
	"github.com/prescripto/clinic-platform/internal/patients"
	"github.com/prescripto/clinic-platform/internal/payments"
	"github.com/prescripto/clinic-platform/internal/providers"
	"github.com/prescripto/clinic-platform/internal/schedule"
	"github.com/prescripto/clinic-platform/pkg/logging"
)

var schedulingTracer = otel.Tracer("clinic.internal.appointments")

// Service orchestrates booking, cancellation and payment over the slot store
// and the ledger. It is the only component that composes the two, so every
// multi-step invariant lives here.
type Service struct {
	providers providers.Directory
	patients  patients.Directory
	slots     schedule.SlotStore
	ledger    Ledger
	gateway   payments.Gateway
	notifier  *notify.Notifier
	publisher events.Publisher
	metrics   *metrics.BookingMetrics
	logger    *logging.Logger
}

// ServiceConfig collects the service dependencies.
type ServiceConfig struct {
	Providers providers.Directory
	Patients  patients.Directory
	Slots     schedule.SlotStore
	Ledger    Ledger
	Gateway   payments.Gateway
	Notifier  *notify.Notifier
	Publisher events.Publisher
	Metrics   *metrics.BookingMetrics
	Logger    *logging.Logger
}

// NewService constructs a scheduling service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Providers == nil {
		panic("appointments: provider directory required")
	}
	if cfg.Patients == nil {
		panic("appointments: patient directory required")
	}
	if cfg.Slots == nil {
		panic("appointments: slot store required")
	}
	if cfg.Ledger == nil {
		panic("appointments: ledger required")
	}
	if cfg.Publisher == nil {
		cfg.Publisher = events.NopPublisher{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Service{
		providers: cfg.Providers,
		patients:  cfg.Patients,
		slots:     cfg.Slots,
		ledger:    cfg.Ledger,
		gateway:   cfg.Gateway,
		notifier:  cfg.Notifier,
		publisher: cfg.Publisher,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
	}
}

// Book reserves (providerID, date, slot) for the user and records the
// appointment. All-or-nothing as seen by callers: a conflict leaves no ledger
// record, and a ledger failure rolls the slot claim back before returning.
func (s *Service) Book(ctx context.Context, userID, providerID, date, slot string) (*Appointment, error) {
	ctx, span := schedulingTracer.Start(ctx, "appointments.book")
	defer span.End()
	span.SetAttributes(
		attribute.String("clinic.user_id", userID),
		attribute.String("clinic.provider_id", providerID),
		attribute.String("clinic.slot_date", date),
		attribute.String("clinic.slot_time", slot),
	)

	if err := schedule.ValidateDate(date); err != nil {
		return nil, err
	}
	if err := schedule.ValidateSlot(slot); err != nil {
		return nil, err
	}

	provider, err := s.providers.GetByID(ctx, providerID)
	if err != nil {
		s.metrics.ObserveBook("provider_not_found")
		return nil, err
	}
	if !provider.Available {
		s.metrics.ObserveBook("provider_unavailable")
		return nil, ErrProviderUnavailable
	}

	patient, err := s.patients.GetByID(ctx, userID)
	if err != nil {
		s.metrics.ObserveBook("patient_not_found")
		return nil, err
	}

	if err := s.slots.Claim(ctx, providerID, date, slot); err != nil {
		if errors.Is(err, schedule.ErrSlotTaken) {
			s.metrics.ObserveBook("slot_taken")
			s.metrics.ObserveSlotConflict()
		}
		span.RecordError(err)
		return nil, err
	}

	draft := Draft{
		UserID:       userID,
		ProviderID:   providerID,
		UserData:     snapshotUser(patient),
		ProviderData: snapshotProvider(provider),
		AmountCents:  provider.FeeCents,
		SlotDate:     date,
		SlotTime:     slot,
	}
	appt, err := s.ledger.Create(ctx, draft)
	if err != nil {
		// Compensating action: the slot was claimed but no appointment
		// exists, so free it before surfacing the failure.
		if relErr := s.slots.Release(ctx, providerID, date, slot); relErr != nil {
			s.logger.Error("slot rollback failed after ledger error",
				"error", relErr, "provider_id", providerID, "slot_date", date, "slot_time", slot)
		}
		s.metrics.ObserveClaimRollback()
		s.metrics.ObserveBook("ledger_error")
		span.RecordError(err)
		return nil, fmt.Errorf("appointments: create booking: %w", err)
	}

	s.metrics.ObserveBook("success")
	s.logger.Info("appointment booked",
		"appointment_id", appt.ID,
		"user_id", userID,
		"provider_id", providerID,
		"slot_date", date,
		"slot_time", slot,
	)
	s.afterTransition(ctx, events.TypeAppointmentBooked, appt, func() {
		s.notifier.AppointmentBooked(ctx, appointmentEmail(appt))
	})
	return appt, nil
}

// Cancel releases an appointment's slot and soft-deletes the booking.
// Only the owning user may cancel; repeated cancels succeed as no-ops.
func (s *Service) Cancel(ctx context.Context, callerID, appointmentID string) error {
	ctx, span := schedulingTracer.Start(ctx, "appointments.cancel")
	defer span.End()
	span.SetAttributes(attribute.String("clinic.appointment_id", appointmentID))

	appt, err := s.ledger.Get(ctx, appointmentID)
	if err != nil {
		s.metrics.ObserveCancel("not_found")
		return err
	}
	if appt.UserID != callerID {
		s.metrics.ObserveCancel("unauthorized")
		return ErrUnauthorized
	}
	if appt.Cancelled {
		s.metrics.ObserveCancel("already_cancelled")
		return nil
	}
	if appt.Paid {
		// Cancelling a paid appointment is allowed but needs a refund
		// follow-up outside this service.
		s.logger.Warn("paid appointment cancelled, refund follow-up required",
			"appointment_id", appt.ID, "amount_cents", appt.AmountCents)
	}

	// Ledger first: if we crash before the release, the slot stays marked
	// booked but the ledger is right, and slot state is re-derivable from
	// non-cancelled appointments.
	if err := s.ledger.MarkCancelled(ctx, appointmentID); err != nil {
		s.metrics.ObserveCancel("ledger_error")
		span.RecordError(err)
		return fmt.Errorf("appointments: mark cancelled: %w", err)
	}
	if err := s.slots.Release(ctx, appt.ProviderID, appt.SlotDate, appt.SlotTime); err != nil {
		s.metrics.ObserveCancel("release_error")
		span.RecordError(err)
		return fmt.Errorf("appointments: release slot: %w", err)
	}

	s.metrics.ObserveCancel("success")
	s.logger.Info("appointment cancelled", "appointment_id", appt.ID, "user_id", callerID)
	s.afterTransition(ctx, events.TypeAppointmentCancelled, appt, func() {
		s.notifier.AppointmentCancelled(ctx, appointmentEmail(appt))
	})
	return nil
}

// ListForUser returns all of a user's appointments, cancelled ones included.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*Appointment, error) {
	return s.ledger.ListForUser(ctx, userID)
}

// RequestPayment opens a checkout session for the appointment's fee. The
// gateway call blocks on external I/O and deliberately happens with no slot
// lock held.
func (s *Service) RequestPayment(ctx context.Context, appointmentID string) (*payments.Session, error) {
	ctx, span := schedulingTracer.Start(ctx, "appointments.request_payment")
	defer span.End()
	span.SetAttributes(attribute.String("clinic.appointment_id", appointmentID))

	appt, err := s.ledger.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.Cancelled {
		return nil, ErrAppointmentCancelled
	}
	if s.gateway == nil {
		return nil, payments.ErrGatewayUnavailable
	}

	sess, err := s.gateway.CreateSession(ctx, payments.SessionParams{
		AppointmentID: appt.ID,
		AmountCents:   appt.AmountCents,
		Description:   "Appointment Fees",
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.logger.Info("payment session created", "appointment_id", appt.ID, "session_id", sess.ID)
	return sess, nil
}

// ConfirmPayment applies a gateway outcome to the ledger. Confirmations can
// be retried by redirects and webhooks, so a repeated success is a no-op.
func (s *Service) ConfirmPayment(ctx context.Context, appointmentID string, succeeded bool) error {
	ctx, span := schedulingTracer.Start(ctx, "appointments.confirm_payment")
	defer span.End()
	span.SetAttributes(
		attribute.String("clinic.appointment_id", appointmentID),
		attribute.Bool("clinic.payment_succeeded", succeeded),
	)

	appt, err := s.ledger.Get(ctx, appointmentID)
	if err != nil {
		s.metrics.ObservePayment("not_found")
		return err
	}
	if !succeeded {
		s.metrics.ObservePayment("failed")
		return ErrPaymentNotCompleted
	}
	if appt.Paid {
		s.metrics.ObservePayment("duplicate")
		return nil
	}
	if appt.Cancelled {
		// paid=true must never be set on an already-cancelled appointment.
		s.metrics.ObservePayment("cancelled")
		return ErrAppointmentCancelled
	}

	if err := s.ledger.MarkPaid(ctx, appointmentID); err != nil {
		s.metrics.ObservePayment("ledger_error")
		span.RecordError(err)
		return fmt.Errorf("appointments: mark paid: %w", err)
	}

	s.metrics.ObservePayment("succeeded")
	s.logger.Info("payment confirmed", "appointment_id", appt.ID, "amount_cents", appt.AmountCents)
	s.afterTransition(ctx, events.TypeAppointmentPaid, appt, func() {
		s.notifier.PaymentReceived(ctx, appointmentEmail(appt))
	})
	return nil
}

// BookedSlots returns the provider's booked slots grouped by date, for
// availability displays.
func (s *Service) BookedSlots(ctx context.Context, providerID string) (map[string][]string, error) {
	if _, err := s.providers.GetByID(ctx, providerID); err != nil {
		return nil, err
	}
	return s.slots.Booked(ctx, providerID)
}

// Providers lists bookable providers.
func (s *Service) Providers(ctx context.Context) ([]*providers.Provider, error) {
	return s.providers.List(ctx)
}

// afterTransition runs best-effort side effects once a state change has
// committed. Neither a broker nor a mail failure unwinds the transition.
func (s *Service) afterTransition(ctx context.Context, eventType string, appt *Appointment, sendEmail func()) {
	if err := s.publisher.Publish(ctx, eventType, events.AppointmentEvent{
		AppointmentID: appt.ID,
		UserID:        appt.UserID,
		ProviderID:    appt.ProviderID,
		SlotDate:      appt.SlotDate,
		SlotTime:      appt.SlotTime,
		AmountCents:   appt.AmountCents,
	}); err != nil {
		s.logger.Error("event publish failed", "error", err, "event_type", eventType, "appointment_id", appt.ID)
	}
	sendEmail()
}

func snapshotUser(p *patients.Patient) UserSnapshot {
	return UserSnapshot{
		ID:       p.ID,
		Name:     p.Name,
		Email:    p.Email,
		Phone:    p.Phone,
		Address:  p.Address,
		DOB:      p.DOB,
		Gender:   p.Gender,
		ImageURL: p.ImageURL,
	}
}

func snapshotProvider(p *providers.Provider) ProviderSnapshot {
	return ProviderSnapshot{
		ID:         p.ID,
		Name:       p.Name,
		Email:      p.Email,
		Speciality: p.Speciality,
		Degree:     p.Degree,
		Experience: p.Experience,
		About:      p.About,
		Address:    p.Address,
		ImageURL:   p.ImageURL,
		FeeCents:   p.FeeCents,
	}
}

func appointmentEmail(appt *Appointment) notify.AppointmentEmail {
	return notify.AppointmentEmail{
		PatientName:  appt.UserData.Name,
		PatientEmail: appt.UserData.Email,
		ProviderName: appt.ProviderData.Name,
		SlotDate:     appt.SlotDate,
		SlotTime:     appt.SlotTime,
		AmountCents:  appt.AmountCents,
	}
}

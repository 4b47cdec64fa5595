package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters for the scheduling flows.
type BookingMetrics struct {
	bookTotal      *prometheus.CounterVec
	cancelTotal    *prometheus.CounterVec
	paymentTotal   *prometheus.CounterVec
	slotConflicts  prometheus.Counter
	claimRollbacks prometheus.Counter
}

// NewBookingMetrics registers and returns booking metrics.
func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "scheduling",
			Name:      "book_total",
			Help:      "Total booking attempts",
		}, []string{"outcome"}),
		cancelTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "scheduling",
			Name:      "cancel_total",
			Help:      "Total cancellation attempts",
		}, []string{"outcome"}),
		paymentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "scheduling",
			Name:      "payment_total",
			Help:      "Total payment confirmations",
		}, []string{"outcome"}),
		slotConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "scheduling",
			Name:      "slot_conflicts_total",
			Help:      "Bookings rejected because the slot was already taken",
		}),
		claimRollbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "scheduling",
			Name:      "claim_rollbacks_total",
			Help:      "Slot claims rolled back after a ledger write failure",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookTotal, m.cancelTotal, m.paymentTotal, m.slotConflicts, m.claimRollbacks)
	return m
}

// ObserveBook records a booking attempt outcome.
func (m *BookingMetrics) ObserveBook(outcome string) {
	if m == nil {
		return
	}
	m.bookTotal.WithLabelValues(outcome).Inc()
}

// ObserveCancel records a cancel attempt outcome.
func (m *BookingMetrics) ObserveCancel(outcome string) {
	if m == nil {
		return
	}
	m.cancelTotal.WithLabelValues(outcome).Inc()
}

// ObservePayment records a payment confirmation outcome.
func (m *BookingMetrics) ObservePayment(outcome string) {
	if m == nil {
		return
	}
	m.paymentTotal.WithLabelValues(outcome).Inc()
}

// ObserveSlotConflict counts a lost booking race.
func (m *BookingMetrics) ObserveSlotConflict() {
	if m == nil {
		return
	}
	m.slotConflicts.Inc()
}

// ObserveClaimRollback counts a compensating slot release.
func (m *BookingMetrics) ObserveClaimRollback() {
	if m == nil {
		return
	}
	m.claimRollbacks.Inc()
}

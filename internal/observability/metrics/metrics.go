package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking pipeline.
type BookingMetrics struct {
	attemptsTotal      *prometheus.CounterVec
	automationDuration *prometheus.HistogramVec
	slotFetchesTotal   *prometheus.CounterVec
	phoneRetriesTotal  prometheus.Counter
	poolSaturatedTotal prometheus.Counter
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		attemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dentalbridge",
			Subsystem: "booking",
			Name:      "attempts_total",
			Help:      "Total booking attempts by strategy and outcome status",
		}, []string{"strategy", "status"}),
		automationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dentalbridge",
			Subsystem: "booking",
			Name:      "automation_duration_seconds",
			Help:      "Wall time of one form automation attempt",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}, []string{"status"}),
		slotFetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dentalbridge",
			Subsystem: "availability",
			Name:      "slot_fetches_total",
			Help:      "Total slot fetches by source (remote or fallback)",
		}, []string{"source"}),
		phoneRetriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dentalbridge",
			Subsystem: "booking",
			Name:      "phone_rewrites_total",
			Help:      "Times the phone field was rewritten with the formatted number",
		}),
		poolSaturatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dentalbridge",
			Subsystem: "booking",
			Name:      "pool_saturated_total",
			Help:      "Booking attempts rejected because no browser session was free",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.attemptsTotal, m.automationDuration, m.slotFetchesTotal, m.phoneRetriesTotal, m.poolSaturatedTotal)
	return m
}

func (m *BookingMetrics) ObserveAttempt(strategy, status string) {
	if m == nil {
		return
	}
	m.attemptsTotal.WithLabelValues(strategy, status).Inc()
}

func (m *BookingMetrics) ObserveAutomationDuration(status string, seconds float64) {
	if m == nil {
		return
	}
	m.automationDuration.WithLabelValues(status).Observe(seconds)
}

func (m *BookingMetrics) ObserveSlotFetch(source string) {
	if m == nil {
		return
	}
	m.slotFetchesTotal.WithLabelValues(source).Inc()
}

func (m *BookingMetrics) ObservePhoneRewrite() {
	if m == nil {
		return
	}
	m.phoneRetriesTotal.Inc()
}

func (m *BookingMetrics) ObservePoolSaturated() {
	if m == nil {
		return
	}
	m.poolSaturatedTotal.Inc()
}

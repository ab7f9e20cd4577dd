package metrics

import "github.com/prometheus/client_golang/prometheus"

// Drop reasons recorded against filtered-out session candidates.
const (
	DropAppointmentConflict = "appointment_conflict"
	DropExclusionDate       = "exclusion_date"
	DropReviewWeekend       = "review_weekend"
	DropReviewHoliday       = "review_holiday"
)

// AvailabilityMetrics exposes counters/histograms for the visit-session
// availability flow.
type AvailabilityMetrics struct {
	requestsTotal       *prometheus.CounterVec
	sessionsReturned    prometheus.Histogram
	candidatesDropped   *prometheus.CounterVec
	collaboratorFailure *prometheus.CounterVec
	computeLatency      prometheus.Histogram
}

func NewAvailabilityMetrics(reg prometheus.Registerer) *AvailabilityMetrics {
	m := &AvailabilityMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "visits",
			Subsystem: "availability",
			Name:      "requests_total",
			Help:      "Total availability requests by outcome",
		}, []string{"outcome"}),
		sessionsReturned: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "visits",
			Subsystem: "availability",
			Name:      "sessions_returned",
			Help:      "Bookable sessions returned per request",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		}),
		candidatesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "visits",
			Subsystem: "availability",
			Name:      "candidates_dropped_total",
			Help:      "Session candidates removed during filtering, by reason",
		}, []string{"reason"}),
		collaboratorFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "visits",
			Subsystem: "availability",
			Name:      "collaborator_failures_total",
			Help:      "Collaborator lookup failures by collaborator and severity",
		}, []string{"collaborator", "severity"}),
		computeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "visits",
			Subsystem: "availability",
			Name:      "compute_latency_seconds",
			Help:      "End-to-end latency of availability computation",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.sessionsReturned, m.candidatesDropped, m.collaboratorFailure, m.computeLatency)
	return m
}

func (m *AvailabilityMetrics) ObserveRequest(outcome string, sessions int, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(outcome).Inc()
	m.sessionsReturned.Observe(float64(sessions))
	m.computeLatency.Observe(seconds)
}

func (m *AvailabilityMetrics) ObserveDropped(reason string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.candidatesDropped.WithLabelValues(reason).Add(float64(count))
}

func (m *AvailabilityMetrics) ObserveCollaboratorFailure(collaborator, severity string) {
	if m == nil {
		return
	}
	m.collaboratorFailure.WithLabelValues(collaborator, severity).Inc()
}

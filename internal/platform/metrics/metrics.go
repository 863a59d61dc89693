package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the core operations.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registrations     *prometheus.CounterVec
	Submissions       *prometheus.CounterVec
	Evaluations       *prometheus.CounterVec
	StatusTransitions *prometheus.CounterVec
	TxRetries         prometheus.Counter
	OperationLatency  *prometheus.HistogramVec
	AuditEnqueued     prometheus.Counter
	AuditDropped      prometheus.Counter
	AuditFailed       prometheus.Counter
	RateLimited       prometheus.Counter
}

// New creates and registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Registrations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hackhub_registrations_total",
			Help: "Registration attempts by outcome",
		}, []string{"outcome"}), // outcome: "admitted", "full", "duplicate", "closed", "error"

		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hackhub_submissions_total",
			Help: "Project submission attempts by outcome",
		}, []string{"outcome"}),

		Evaluations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hackhub_evaluations_total",
			Help: "Recorded evaluations by resulting project status",
		}, []string{"status"}),

		StatusTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hackhub_event_status_transitions_total",
			Help: "Event lifecycle transitions by source and target status",
		}, []string{"from", "to"}),

		TxRetries: f.NewCounter(prometheus.CounterOpts{
			Name: "hackhub_tx_retries_total",
			Help: "Transactions retried after a serialization failure or deadlock",
		}),

		OperationLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hackhub_operation_duration_seconds",
			Help:    "Duration of core operations including their transaction",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),

		AuditEnqueued: f.NewCounter(prometheus.CounterOpts{
			Name: "hackhub_audit_events_enqueued_total",
			Help: "Audit events accepted into the publisher buffer",
		}),

		AuditDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "hackhub_audit_events_dropped_total",
			Help: "Audit events dropped because the publisher buffer was full",
		}),

		AuditFailed: f.NewCounter(prometheus.CounterOpts{
			Name: "hackhub_audit_sink_failures_total",
			Help: "Audit events the sink failed to write",
		}),

		RateLimited: f.NewCounter(prometheus.CounterOpts{
			Name: "hackhub_rate_limited_requests_total",
			Help: "Requests rejected by the per-caller rate limiter",
		}),
	}
}

func (m *Metrics) IncRegistration(outcome string) {
	if m != nil {
		m.Registrations.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncSubmission(outcome string) {
	if m != nil {
		m.Submissions.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncEvaluation(status string) {
	if m != nil {
		m.Evaluations.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) IncStatusTransition(from, to string) {
	if m != nil {
		m.StatusTransitions.WithLabelValues(from, to).Inc()
	}
}

func (m *Metrics) IncTxRetry() {
	if m != nil {
		m.TxRetries.Inc()
	}
}

func (m *Metrics) IncAuditEnqueued() {
	if m != nil {
		m.AuditEnqueued.Inc()
	}
}

func (m *Metrics) IncAuditDropped() {
	if m != nil {
		m.AuditDropped.Inc()
	}
}

func (m *Metrics) IncAuditFailed() {
	if m != nil {
		m.AuditFailed.Inc()
	}
}

func (m *Metrics) IncRateLimited() {
	if m != nil {
		m.RateLimited.Inc()
	}
}

// ObserveOperation records the time elapsed since start for operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	if m != nil {
		m.OperationLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

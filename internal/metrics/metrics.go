// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "messbot"

// Metrics groups every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	votesCast       *prometheus.CounterVec
	voteFailures    *prometheus.CounterVec
	messTypeChanges prometheus.Counter
	finalizations   prometheus.Counter
	reportsRendered *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec

	sessionsByStatus *prometheus.GaugeVec
	profilesByRole   *prometheus.GaugeVec
	votesStored      prometheus.Gauge
}

// New registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{}

	m.votesCast = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vote_ops_total",
			Help:      "vote operations persisted, by kind",
		},
		[]string{"kind"},
	)
	m.voteFailures = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vote_failures_total",
			Help:      "vote toggles that were reverted",
		},
		[]string{"reason"},
	)
	m.messTypeChanges = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mess_type_changes_total",
			Help:      "mess type changes that wiped a student's votes",
		},
	)
	m.finalizations = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "finalizations_total",
			Help:      "confirmed menu finalizations",
		},
	)
	m.reportsRendered = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_rendered_total",
			Help:      "rendered menu reports, by mess type",
		},
		[]string{"mess_type"},
	)
	m.httpRequests = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by route and status code",
		},
		[]string{"route", "method", "code"},
	)
	m.httpDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	m.sessionsByStatus = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions",
			Help:      "voting sessions, by status",
		},
		[]string{"status"},
	)
	m.profilesByRole = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "profiles",
			Help:      "registered profiles, by role",
		},
		[]string{"role"},
	)
	m.votesStored = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "votes_stored",
			Help:      "vote rows currently stored",
		},
	)

	return m
}

func (m *Metrics) VoteOp(kind string) {
	if m == nil {
		return
	}
	m.votesCast.WithLabelValues(kind).Inc()
}

func (m *Metrics) VoteFailed(reason string) {
	if m == nil {
		return
	}
	m.voteFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) MessTypeChanged() {
	if m == nil {
		return
	}
	m.messTypeChanges.Inc()
}

func (m *Metrics) Finalized() {
	if m == nil {
		return
	}
	m.finalizations.Inc()
}

func (m *Metrics) ReportRendered(messType string) {
	if m == nil {
		return
	}
	m.reportsRendered.WithLabelValues(messType).Inc()
}

func (m *Metrics) HTTPRequest(route, method, code string, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, code).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(seconds)
}

// SetSessions replaces the per-status session gauge values.
func (m *Metrics) SetSessions(counts map[string]int) {
	if m == nil {
		return
	}
	m.sessionsByStatus.Reset()
	for status, n := range counts {
		m.sessionsByStatus.WithLabelValues(status).Set(float64(n))
	}
}

func (m *Metrics) SetProfiles(counts map[string]int) {
	if m == nil {
		return
	}
	m.profilesByRole.Reset()
	for role, n := range counts {
		m.profilesByRole.WithLabelValues(role).Set(float64(n))
	}
}

func (m *Metrics) SetVotesStored(n int) {
	if m == nil {
		return
	}
	m.votesStored.Set(float64(n))
}

// Package metrics expone los collectors Prometheus del broker.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "access_broker"

const (
	LabelOutcome = "outcome"
	LabelStatus  = "status"
)

// Outcomes de una redención.
const (
	OutcomeRedeemed     = "redeemed"
	OutcomeInvalidToken = "invalid_token"
	OutcomeExpired      = "token_expired"
)

// Metrics agrupa los collectors y su registry propio (no usamos el global).
// Un *Metrics nil es válido: todos los métodos son no-op.
type Metrics struct {
	registry *prometheus.Registry

	grantsIssued  prometheus.Counter
	issueRejected *prometheus.CounterVec
	redemptions   *prometheus.CounterVec
	grantsRemoved *prometheus.CounterVec
	activeGrants  prometheus.Gauge
	probeResults  *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		grantsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grants_issued_total",
			Help:      "Number of access grants minted.",
		}),
		issueRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issue_rejected_total",
			Help:      "Number of issue calls rejected, by reason.",
		}, []string{LabelOutcome}),
		redemptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redemptions_total",
			Help:      "Number of token redemptions, by outcome.",
		}, []string{LabelOutcome}),
		grantsRemoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grants_removed_total",
			Help:      "Number of grants removed from the registry, by cause.",
		}, []string{LabelOutcome}),
		activeGrants: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_grants",
			Help:      "Active grants seen by the last listing or sweep.",
		}),
		probeResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downstream_probe_total",
			Help:      "Downstream health probe results, by status.",
		}, []string{LabelStatus}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.grantsIssued,
		m.issueRejected,
		m.redemptions,
		m.grantsRemoved,
		m.activeGrants,
		m.probeResults,
	)
	return m
}

// Handler sirve /metrics para este registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry se expone para tests (testutil.CollectAndCount, etc).
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) GrantIssued() {
	if m == nil {
		return
	}
	m.grantsIssued.Inc()
}

func (m *Metrics) IssueRejected(reason string) {
	if m == nil {
		return
	}
	m.issueRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) Redemption(outcome string) {
	if m == nil {
		return
	}
	m.redemptions.WithLabelValues(outcome).Inc()
}

// GrantsRemoved cuenta bajas del registry. cause: "expired" o "revoked".
func (m *Metrics) GrantsRemoved(cause string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.grantsRemoved.WithLabelValues(cause).Add(float64(n))
}

func (m *Metrics) ActiveGrants(n int) {
	if m == nil {
		return
	}
	m.activeGrants.Set(float64(n))
}

func (m *Metrics) ProbeResult(status string) {
	if m == nil {
		return
	}
	m.probeResults.WithLabelValues(status).Inc()
}

package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"auth_backend/internal/feature/auth/usecase"
)

// Metrics implements usecase.Metrics with Prometheus counters.
type Metrics struct {
	registry      *prometheus.Registry
	loginOutcomes *prometheus.CounterVec
	pruned        prometheus.Counter
	revoked       prometheus.Counter
}

var _ usecase.Metrics = (*Metrics)(nil)

// NewMetrics registers the auth counters and the Go runtime collectors on a
// fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		loginOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auth",
			Name:      "login_outcomes_total",
			Help:      "Login attempts by admission outcome.",
		}, []string{"outcome"}),
		pruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "auth",
			Name:      "sessions_pruned_total",
			Help:      "Expired device sessions removed from user records.",
		}),
		revoked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "auth",
			Name:      "tokens_revoked_total",
			Help:      "Bearer tokens added to the revocation ledger.",
		}),
	}
	reg.MustRegister(
		m.loginOutcomes,
		m.pruned,
		m.revoked,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) LoginOutcome(outcome string) {
	m.loginOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SessionsPruned(n int) {
	if n > 0 {
		m.pruned.Add(float64(n))
	}
}

func (m *Metrics) TokensRevoked(n int) {
	if n > 0 {
		m.revoked.Add(float64(n))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

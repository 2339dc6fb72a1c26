package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/secmon-lab/avsafe/pkg/domain/types"
)

const namespace = "avsafe"

// Metrics holds the Prometheus collectors of the service. Each instance owns
// its registry so tests and multiple servers do not collide.
type Metrics struct {
	registry *prometheus.Registry

	reportsSubmitted  *prometheus.CounterVec
	statusTransitions *prometheus.CounterVec
	numberCollisions  prometheus.Counter
	notifications     *prometheus.CounterVec
	slaReports        *prometheus.GaugeVec
	exports           *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		reportsSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_submitted_total",
			Help:      "Safety reports accepted, by report type and risk level",
		}, []string{"report_type", "risk_level"}),
		statusTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_transitions_total",
			Help:      "Investigation status changes",
		}, []string{"from", "to"}),
		numberCollisions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_number_collisions_total",
			Help:      "Generated report numbers that were already taken",
		}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Slack notifications by kind and result",
		}, []string{"kind", "result"}),
		slaReports: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sla_reports",
			Help:      "Open reports per SLA bucket at the last evaluation",
		}, []string{"bucket"}),
		exports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Spreadsheet exports by destination",
		}, []string{"destination"}),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ReportSubmitted(rt types.ReportType, level types.RiskLevel) {
	if m == nil {
		return
	}
	l := string(level)
	if l == "" {
		l = "none"
	}
	m.reportsSubmitted.WithLabelValues(string(rt), l).Inc()
}

func (m *Metrics) StatusChanged(from, to types.InvestigationStatus) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(string(from), string(to)).Inc()
}

func (m *Metrics) NumberCollision() {
	if m == nil {
		return
	}
	m.numberCollisions.Inc()
}

func (m *Metrics) Notified(kind string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.notifications.WithLabelValues(kind, result).Inc()
}

// SetSLACounts replaces the SLA gauges with counts
func (m *Metrics) SetSLACounts(counts map[types.SLABucket]int) {
	if m == nil {
		return
	}
	for _, b := range types.AllSLABuckets() {
		m.slaReports.WithLabelValues(b.String()).Set(float64(counts[b]))
	}
}

func (m *Metrics) Exported(destination string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(destination).Inc()
}

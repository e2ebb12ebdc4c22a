package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors exported on /metrics
type Metrics struct {
	Registry *prometheus.Registry

	AccessDecisions *prometheus.CounterVec
	ImportRecords   *prometheus.CounterVec
	ImportDuration  prometheus.Histogram
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		AccessDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketplace",
			Subsystem: "access",
			Name:      "decisions_total",
			Help:      "Access checks by required permission and outcome.",
		}, []string{"permission", "outcome"}),
		ImportRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketplace",
			Subsystem: "category_import",
			Name:      "records_total",
			Help:      "Imported category records by result.",
		}, []string{"result"}),
		ImportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "marketplace",
			Subsystem: "category_import",
			Name:      "duration_seconds",
			Help:      "Wall time of category imports.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	m.Registry.MustRegister(
		m.AccessDecisions,
		m.ImportRecords,
		m.ImportDuration,
		prometheus.NewGoCollector(),
	)
	return m
}

func (m *Metrics) ObserveAccess(permission, outcome string) {
	m.AccessDecisions.WithLabelValues(permission, outcome).Inc()
}

func (m *Metrics) ObserveImport(created, updated, skipped, linked, failed int, seconds float64) {
	m.ImportRecords.WithLabelValues("created").Add(float64(created))
	m.ImportRecords.WithLabelValues("updated").Add(float64(updated))
	m.ImportRecords.WithLabelValues("skipped").Add(float64(skipped))
	m.ImportRecords.WithLabelValues("parent_linked").Add(float64(linked))
	m.ImportRecords.WithLabelValues("error").Add(float64(failed))
	m.ImportDuration.Observe(seconds)
}

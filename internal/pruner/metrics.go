package pruner

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for scheduled pruning.
type Metrics struct {
	registry *prometheus.Registry

	runs        *prometheus.CounterVec
	deleted     prometheus.Counter
	lastRun     prometheus.Gauge
	lastDeleted prometheus.Gauge
}

// NewMetrics registers the pruning collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statkeep_prune_runs_total",
				Help: "Total number of scheduled pruning runs",
			},
			[]string{"result"},
		),
		deleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "statkeep_pruned_queries_total",
			Help: "Total number of queries deleted by scheduled pruning",
		}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Name: "statkeep_prune_last_run_timestamp_seconds",
			Help: "Unix time of the last scheduled pruning run",
		}),
		lastDeleted: factory.NewGauge(prometheus.GaugeOpts{
			Name: "statkeep_prune_last_deleted",
			Help: "Number of queries deleted by the last scheduled pruning run",
		}),
	}
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) observe(at time.Time, res Result, err error) {
	m.lastRun.Set(float64(at.Unix()))
	if err != nil {
		m.runs.WithLabelValues("error").Inc()
		return
	}
	m.runs.WithLabelValues("success").Inc()
	m.deleted.Add(float64(res.Deleted))
	m.lastDeleted.Set(float64(res.Deleted))
}

// WriteTextfile writes the current metrics in the node_exporter textfile
// collector format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

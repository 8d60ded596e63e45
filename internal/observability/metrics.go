package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hotspot"

// Metrics holds the Prometheus counters, histograms, and gauges for the analysis pipeline.
type Metrics struct {
	RunsTotal     *prometheus.CounterVec // labels: outcome={ok,empty,superseded,error}
	RunDuration   prometheus.Histogram
	RowsLoaded    prometheus.Counter
	RowsDropped   prometheus.Counter
	DatasetCache  *prometheus.CounterVec // labels: result={hit,miss}
	PublishErrors prometheus.Counter

	// Shape of the latest completed run.
	FilteredPoints   prometheus.Gauge
	DensityClusters  prometheus.Gauge
	NoisePoints      prometheus.Gauge
	PartitionCenters prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.RowsLoaded,
		m.RowsDropped,
		m.DatasetCache,
		m.PublishErrors,
		m.FilteredPoints,
		m.DensityClusters,
		m.NoisePoints,
		m.PartitionCenters,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Analysis passes by outcome.",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete filter-cluster-summarize pass.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		RowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_loaded_total",
			Help:      "Valid rows loaded into datasets.",
		}),
		RowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Rows dropped by validation at load time.",
		}),
		DatasetCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_cache_total",
			Help:      "Dataset cache lookups by result.",
		}, []string{"result"}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed attempts to publish hotspot results.",
		}),
		FilteredPoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "filtered_points",
			Help:      "Events in the latest filtered set.",
		}),
		DensityClusters: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "density_clusters",
			Help:      "Density clusters found in the latest run.",
		}),
		NoisePoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "noise_points",
			Help:      "Events labeled as noise in the latest run.",
		}),
		PartitionCenters: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "partition_centers",
			Help:      "Partition centers produced in the latest run.",
		}),
	}
}

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// exposure aggregation pipeline.
type Metrics struct {
	PayloadsConsumed   prometheus.Counter
	AggregatesProduced *prometheus.CounterVec // labels: period={daily,weekly}
	TransformErrors    prometheus.Counter
	AnomaliesFlagged   *prometheus.CounterVec // labels: period={daily,weekly}, kind={subscore_spike,composite_outlier}
	PipelineRunning    prometheus.Gauge
	BaselineUsers      prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram
	AggregationDuration     prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.PayloadsConsumed,
		m.AggregatesProduced,
		m.TransformErrors,
		m.AnomaliesFlagged,
		m.PipelineRunning,
		m.BaselineUsers,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.AggregationDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		PayloadsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "exposure_engine",
			Name:      "payloads_consumed_total",
			Help:      "Total resolved payloads read from the source topic.",
		}),
		AggregatesProduced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "exposure_engine",
			Name:      "aggregates_produced_total",
			Help:      "Total period aggregates written to the sink topic.",
		}, []string{"period"}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "exposure_engine",
			Name:      "transform_errors_total",
			Help:      "Total payloads that failed normalization or aggregation.",
		}),
		AnomaliesFlagged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "exposure_engine",
			Name:      "anomalies_flagged_total",
			Help:      "Total baseline-relative anomalies emitted, by period and kind.",
		}, []string{"period", "kind"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "exposure_engine",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BaselineUsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "exposure_engine",
			Name:      "baseline_users",
			Help:      "Number of users with rolling baseline history in memory.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "exposure_engine",
			Name:      "batch_size",
			Help:      "Number of payloads per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "exposure_engine",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		AggregationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "exposure_engine",
			Name:      "aggregation_duration_seconds",
			Help:      "Duration of the daily+weekly aggregation for one payload.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
	}
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms and gauges of the
// sounding pipeline.
type Metrics struct {
	Runs              *prometheus.CounterVec // labels: outcome={success,error,skipped}
	SoundingsRendered prometheus.Counter
	LastRunInitTime   prometheus.Gauge

	FetchBytes     *prometheus.CounterVec   // labels: kind={catalog,subset}
	FetchDuration  *prometheus.HistogramVec // labels: kind={catalog,subset}
	RenderDuration prometheus.Histogram

	NotifyErrors prometheus.Counter
}

const namespace = "rap_sounding"

// New creates and registers all metrics with the default Prometheus registry.
func New() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Runs,
		m.SoundingsRendered,
		m.LastRunInitTime,
		m.FetchBytes,
		m.FetchDuration,
		m.RenderDuration,
		m.NotifyErrors,
	)
	return m
}

// NewForTesting creates unregistered metrics so tests can build as many as
// they like.
func NewForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		SoundingsRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "soundings_rendered_total",
			Help:      "Skew-T images written.",
		}),
		LastRunInitTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_init_time_seconds",
			Help:      "Initialization time of the last processed model run, unix seconds.",
		}),
		FetchBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_bytes_total",
			Help:      "Bytes downloaded from the THREDDS server.",
		}, []string{"kind"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "THREDDS request duration in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"kind"}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time to analyze and render one forecast hour.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		NotifyErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notify_errors_total",
			Help:      "Failed MQTT publications.",
		}),
	}
}

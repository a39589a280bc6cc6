package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the batch
// pipelines.
type Metrics struct {
	// Fetch metrics.
	WindowsFetched *prometheus.CounterVec // labels: outcome={ok,empty,error}
	RecordsFetched prometheus.Counter
	WindowDuration prometheus.Histogram

	// CSV processing metrics.
	RowsLoaded   prometheus.Counter
	RowsRetained prometheus.Counter

	// Scoring metrics.
	StationsScored  prometheus.Gauge
	ScoresPublished prometheus.Counter

	RunDuration *prometheus.GaugeVec // labels: pipeline={fetch,summarize,score}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := NewMetricsForTesting()

	prometheus.MustRegister(
		m.WindowsFetched,
		m.RecordsFetched,
		m.WindowDuration,
		m.RowsLoaded,
		m.RowsRetained,
		m.StationsScored,
		m.ScoresPublished,
		m.RunDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		WindowsFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aemet_etl",
			Name:      "windows_fetched_total",
			Help:      "Date windows requested from AEMET by outcome.",
		}, []string{"outcome"}),
		RecordsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aemet_etl",
			Name:      "records_fetched_total",
			Help:      "Daily station records downloaded from AEMET.",
		}),
		WindowDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "aemet_etl",
			Name:      "window_fetch_duration_seconds",
			Help:      "Duration of the metadata and data requests for one window.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		RowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aemet_etl",
			Name:      "rows_loaded_total",
			Help:      "Rows read from the yearly CSV.",
		}),
		RowsRetained: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aemet_etl",
			Name:      "rows_retained_total",
			Help:      "Rows kept by the province filter.",
		}),
		StationsScored: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "aemet_etl",
			Name:      "stations_scored",
			Help:      "Stations in the last risk ranking.",
		}),
		ScoresPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aemet_etl",
			Name:      "scores_published_total",
			Help:      "Risk scores published to Kafka.",
		}),
		RunDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "aemet_etl",
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last pipeline run.",
		}, []string{"pipeline"}),
	}
}

// WriteTextfile dumps the default registry in the node_exporter textfile
// format. An empty path is a no-op.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}

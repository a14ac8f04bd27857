package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for loading
// the unified table and computing derived metrics.
type Metrics struct {
	Registry *prometheus.Registry

	RowsRead     *prometheus.CounterVec // labels: source={temperature,precipitation,coordinates}
	RowsDropped  *prometheus.CounterVec // labels: reason={unmatched_temperature,unmatched_precipitation,duplicate_key}
	LoadErrors   *prometheus.CounterVec // labels: source, kind
	LoadDuration prometheus.Histogram

	UnifiedRows                prometheus.Gauge
	StationsWithoutCoordinates prometheus.Gauge
	CoordinateConflicts        prometheus.Counter

	// Derived metrics engine.
	Computations *prometheus.CounterVec // labels: operation
	EmptyViews   *prometheus.CounterVec // labels: operation
	ViewCache    *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates all metrics and registers them on a private registry,
// so it is safe to call once per test.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RowsRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "station_climate",
			Name:      "rows_read_total",
			Help:      "Data rows read from each input table.",
		}, []string{"source"}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "station_climate",
			Name:      "rows_dropped_total",
			Help:      "Rows discarded while joining, by reason.",
		}, []string{"reason"}),
		LoadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "station_climate",
			Name:      "load_errors_total",
			Help:      "Failed loads by source and error kind.",
		}, []string{"source", "kind"}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "station_climate",
			Name:      "load_duration_seconds",
			Help:      "Duration of a complete load of the three input tables.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		UnifiedRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "station_climate",
			Name:      "unified_rows",
			Help:      "Rows in the current unified table.",
		}),
		StationsWithoutCoordinates: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "station_climate",
			Name:      "stations_without_coordinates",
			Help:      "Stations in the unified table with no coordinate row.",
		}),
		CoordinateConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "station_climate",
			Name:      "coordinate_conflicts_total",
			Help:      "Coordinate rows ignored because the station already had different coordinates.",
		}),
		Computations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "station_climate",
			Name:      "computations_total",
			Help:      "Derived metric computations by operation.",
		}, []string{"operation"}),
		EmptyViews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "station_climate",
			Name:      "empty_selections_total",
			Help:      "Computations skipped because the selected view had no rows.",
		}, []string{"operation"}),
		ViewCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "station_climate",
			Name:      "view_cache_total",
			Help:      "Station view cache lookups by result.",
		}, []string{"result"}),
	}

	m.Registry.MustRegister(
		m.RowsRead,
		m.RowsDropped,
		m.LoadErrors,
		m.LoadDuration,
		m.UnifiedRows,
		m.StationsWithoutCoordinates,
		m.CoordinateConflicts,
		m.Computations,
		m.EmptyViews,
		m.ViewCache,
	)

	return m
}

// WriteTextfile dumps every registered metric in the text exposition format,
// for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}

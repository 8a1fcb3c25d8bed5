package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UnitsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snowline_units_processed_total",
			Help: "Total (glacier, date) units completed, by result status",
		},
		[]string{"status"},
	)

	UnitsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "snowline_units_skipped_total",
			Help: "Units skipped because no scene was available",
		},
	)

	UnitsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "snowline_units_failed_total",
			Help: "Units abandoned after exhausting service retries",
		},
	)

	ServiceRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "snowline_service_retries_total",
			Help: "Retries of transient geometry/raster engine failures",
		},
	)

	UnitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "snowline_unit_duration_seconds",
			Help:    "Wall time per (glacier, date) unit",
			Buckets: prometheus.DefBuckets,
		},
	)
)

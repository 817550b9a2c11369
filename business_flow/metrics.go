package businessflow

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Imports partitioned by province, file type, and final status
	importsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_imports_total",
			Help: "Total number of spreadsheet imports processed",
		},
		[]string{"province", "file_type", "status"},
	)

	// Reconciled rows partitioned by outcome (inserted, updated, skipped)
	importRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_import_rows_total",
			Help: "Total number of spreadsheet rows reconciled",
		},
		[]string{"province", "file_type", "outcome"},
	)

	// End-to-end import duration, parse included
	importDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rate_import_duration_seconds",
			Help:    "Spreadsheet import latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"province", "file_type"},
	)
)

func observeImport(province, fileType, status string, out *importOutcome, started time.Time) {
	importsTotal.WithLabelValues(province, fileType, status).Inc()
	importDuration.WithLabelValues(province, fileType).Observe(time.Since(started).Seconds())
	if out == nil {
		return
	}
	importRowsTotal.WithLabelValues(province, fileType, "inserted").Add(float64(out.Inserted))
	importRowsTotal.WithLabelValues(province, fileType, "updated").Add(float64(out.Updated))
	importRowsTotal.WithLabelValues(province, fileType, "skipped").Add(float64(out.Skipped))
}

// Package metrics provides Prometheus metrics for the dashboard service
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Workbook load metrics
	WorkbookLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_workbook_loads_total",
			Help: "Total number of workbook loads by outcome",
		},
		[]string{"origin", "status"},
	)

	WorkbookLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dashboard_workbook_load_duration_seconds",
			Help:    "Time taken to parse and normalize a workbook",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"origin"},
	)

	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dashboard_workbook_cache_hits_total",
			Help: "Workbook loads served from the content cache",
		},
	)

	// Sheet metrics
	SheetErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_sheet_errors_total",
			Help: "Total number of sheets that could not be loaded",
		},
		[]string{"kind", "type"},
	)

	RecordsLoaded = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dashboard_records_loaded",
			Help: "Records held per entity kind in the current workbook",
		},
		[]string{"kind"},
	)

	// Query metrics
	UnitResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_unit_resolutions_total",
			Help: "Business-unit resolutions by outcome",
		},
		[]string{"status"},
	)

	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_exports_total",
			Help: "Generated export documents by format",
		},
		[]string{"format", "status"},
	)
)

// RecordWorkbookLoad records the outcome and duration of a workbook parse.
// origin is one of a fixed set (upload, reload, startup), never a file name.
func RecordWorkbookLoad(origin, status string, duration time.Duration) {
	WorkbookLoadsTotal.WithLabelValues(origin, status).Inc()
	WorkbookLoadDuration.WithLabelValues(origin).Observe(duration.Seconds())
}

// RecordSheetError counts a sheet that was left out of a load.
func RecordSheetError(kind, errorType string) {
	SheetErrorsTotal.WithLabelValues(kind, errorType).Inc()
}

// SetRecordsLoaded publishes the record count of a kind.
func SetRecordsLoaded(kind string, count int) {
	RecordsLoaded.WithLabelValues(kind).Set(float64(count))
}

// RecordUnitResolution counts a business-unit lookup.
func RecordUnitResolution(matched bool) {
	status := "matched"
	if !matched {
		status = "unresolved"
	}
	UnitResolutionsTotal.WithLabelValues(status).Inc()
}

// RecordExport counts a generated export document.
func RecordExport(format string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ExportsTotal.WithLabelValues(format, status).Inc()
}

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ReportJobsTotal   *prometheus.CounterVec
	ReportJobDuration *prometheus.HistogramVec
	PagesFetchedTotal prometheus.Counter
	RowsSkippedTotal  *prometheus.CounterVec
	JobsInQueue       prometheus.Gauge
)

var initOnce sync.Once

// Init registers all collectors. Safe to call more than once; collectors
// are registered on the first call only.
func Init() {
	initOnce.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	ReportJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_jobs_total",
			Help: "Total number of report job attempts.",
		},
		[]string{"status", "error_type"}, // status: success, failure
	)

	ReportJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "report_job_duration_seconds",
			Help:    "Duration of report job attempts.",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"format"},
	)

	PagesFetchedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "report_pages_fetched_total",
			Help: "Total number of position pages fetched from the data source.",
		},
	)

	RowsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_rows_skipped_total",
			Help: "Total number of source records skipped during aggregation.",
		},
		[]string{"reason"}, // empty_keyword, malformed_date
	)

	JobsInQueue = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "report_jobs_in_queue",
			Help: "Current number of report jobs waiting in the queue.",
		},
	)
}

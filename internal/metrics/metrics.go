package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notedocs_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notedocs_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notedocs_http_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)

	// Collection metrics
	BookmarksTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "notedocs_bookmarks_total",
			Help: "Number of bookmarks at the last stats regeneration",
		},
	)

	BookmarkMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notedocs_bookmark_mutations_total",
			Help: "Total number of bookmark writes by operation",
		},
		[]string{"op"},
	)

	StatsRegenerations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notedocs_stats_regenerations_total",
			Help: "Total number of stats regenerations by result",
		},
		[]string{"result"},
	)

	StatsRegenerationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "notedocs_stats_regeneration_duration_seconds",
			Help:    "Time taken to rescan bookmarks and persist the stats snapshot",
			Buckets: prometheus.DefBuckets,
		},
	)

	ImportedRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notedocs_imported_records_total",
			Help: "Total number of records seen by importers by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	BackupsPruned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notedocs_backups_pruned_total",
			Help: "Total number of JSON backups removed by the janitor",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(RateLimited)
	prometheus.MustRegister(BookmarksTotal)
	prometheus.MustRegister(BookmarkMutations)
	prometheus.MustRegister(StatsRegenerations)
	prometheus.MustRegister(StatsRegenerationDuration)
	prometheus.MustRegister(ImportedRecords)
	prometheus.MustRegister(BackupsPruned)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer measures one operation for a histogram.
type Timer struct {
	start time.Time
}

func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveDuration records the elapsed seconds on h.
func (t *Timer) ObserveDuration(h prometheus.Observer) {
	h.Observe(t.Duration().Seconds())
}

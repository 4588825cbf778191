package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ChecksTotal counts finished checks by final status
	ChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foldercheck_checks_total",
			Help: "Total number of plagiarism checks by final status",
		},
		[]string{"status"},
	)

	// PairComparisons counts project pairs compared
	PairComparisons = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "foldercheck_pair_comparisons_total",
			Help: "Total number of project pairs compared",
		},
	)

	// NormalizeFailures counts submissions skipped because they could not be normalized
	NormalizeFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "foldercheck_normalize_failures_total",
			Help: "Total number of submissions that failed normalization",
		},
	)

	// CheckDuration measures check duration
	CheckDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "foldercheck_check_duration_seconds",
			Help:    "Plagiarism check duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 14),
		},
	)

	// RequestsTotal counts HTTP requests by route and status code
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration measures HTTP request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "route"},
	)

	registerOnce sync.Once
)

// InitPrometheus registers the collectors with the default registry. Safe to call more than once.
func InitPrometheus() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ChecksTotal,
			PairComparisons,
			NormalizeFailures,
			CheckDuration,
			RequestsTotal,
			RequestDuration,
		)
	})
}

// Handler returns the Prometheus scrape handler
func Handler() http.Handler {
	return promhttp.Handler()
}

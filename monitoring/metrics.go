// Package monitoring provides metrics and observability for the portfolio backend
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Feed fetching metrics
	feedFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_feed_fetch_total",
			Help: "Total number of RSS feed fetch attempts",
		},
		[]string{"url", "status"},
	)

	feedFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portfolio_feed_fetch_duration_seconds",
			Help:    "Duration of RSS feed fetch operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"url", "status"},
	)

	feedItemsCount = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portfolio_feed_items_count",
			Help:    "Number of items fetched from RSS feeds",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"url"},
	)

	// Job-check run metrics
	jobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_job_runs_total",
			Help: "Total number of job-check runs",
		},
		[]string{"status"},
	)

	jobRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portfolio_job_run_duration_seconds",
			Help:    "Duration of job-check runs",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"status"},
	)

	recentJobsCount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "portfolio_recent_jobs_count",
			Help:    "Number of recent jobs found per run",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
	)

	// Notification metrics
	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_notifications_total",
			Help: "Total number of chat notifications attempted",
		},
		[]string{"status"},
	)

	// Contact relay metrics
	contactEmailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_contact_emails_total",
			Help: "Total number of contact-form relay attempts",
		},
		[]string{"status"},
	)

	// Background run processor metrics
	runQueueSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "portfolio_run_queue_size",
			Help: "Current size of the background run queue",
		},
	)

	activeWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "portfolio_active_workers",
			Help: "Number of active background run workers",
		},
	)

	// Cache metrics
	cacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"operation"},
	)

	cacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"operation"},
	)

	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portfolio_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)
)

// RecordFeedFetch records metrics for one feed fetch attempt
func RecordFeedFetch(url, status string, duration float64, itemsCount int) {
	feedFetchTotal.WithLabelValues(url, status).Inc()
	feedFetchDuration.WithLabelValues(url, status).Observe(duration)
	if itemsCount >= 0 {
		feedItemsCount.WithLabelValues(url).Observe(float64(itemsCount))
	}
}

// RecordJobRun records metrics for one job-check run
func RecordJobRun(status string, duration float64, recentJobs int) {
	jobRunsTotal.WithLabelValues(status).Inc()
	jobRunDuration.WithLabelValues(status).Observe(duration)
	if recentJobs >= 0 {
		recentJobsCount.Observe(float64(recentJobs))
	}
}

// RecordNotification records a chat notification attempt
func RecordNotification(status string) {
	notificationsTotal.WithLabelValues(status).Inc()
}

// RecordContactEmail records a contact relay attempt
func RecordContactEmail(status string) {
	contactEmailsTotal.WithLabelValues(status).Inc()
}

// UpdateRunQueueSize updates the background run queue gauge
func UpdateRunQueueSize(size int) {
	runQueueSize.Set(float64(size))
}

// UpdateActiveWorkers updates the active workers gauge
func UpdateActiveWorkers(count int) {
	activeWorkers.Set(float64(count))
}

// RecordCacheHit records a cache hit
func RecordCacheHit(operation string) {
	cacheHits.WithLabelValues(operation).Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss(operation string) {
	cacheMisses.WithLabelValues(operation).Inc()
}

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, endpoint, status string, duration float64) {
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration)
}

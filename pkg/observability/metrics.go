// Package observability provides Prometheus metrics and health endpoints
// for the visitlog service.
package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Storage client metrics
	storageOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visitlog_storage_ops_total",
			Help: "Total number of storage operations",
		},
		[]string{"op", "status"},
	)

	storageRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visitlog_storage_retries_total",
			Help: "Total number of storage operation retries",
		},
		[]string{"op"},
	)

	storageOpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "visitlog_storage_op_duration_seconds",
			Help:    "Storage operation duration in seconds, retries included",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	// Directory cache metrics
	cacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "visitlog_cache_hits_total",
			Help: "Total number of directory cache hits",
		},
	)

	cacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "visitlog_cache_misses_total",
			Help: "Total number of directory cache misses",
		},
	)

	cacheWarmRootsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visitlog_cache_warm_roots_total",
			Help: "Total number of allow-list roots warmed, by outcome",
		},
		[]string{"status"},
	)

	// Session metrics
	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "visitlog_active_sessions",
			Help: "Number of currently active visit sessions",
		},
	)

	sessionMessagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "visitlog_session_messages_total",
			Help: "Total number of messages appended to visit sessions",
		},
	)

	initOnce sync.Once
)

// InitMetrics registers all Prometheus metrics.
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			storageOpsTotal,
			storageRetriesTotal,
			storageOpDuration,
			cacheHitsTotal,
			cacheMissesTotal,
			cacheWarmRootsTotal,
			activeSessions,
			sessionMessagesTotal,
		)
	})
}

// MetricsHandler returns an HTTP handler for Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// RecordStorageOp records one storage operation outcome.
func RecordStorageOp(op, status string, duration time.Duration) {
	storageOpsTotal.WithLabelValues(op, status).Inc()
	storageOpDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordStorageRetry records one storage retry.
func RecordStorageRetry(op string) {
	storageRetriesTotal.WithLabelValues(op).Inc()
}

// RecordCacheHit records a directory cache hit.
func RecordCacheHit() { cacheHitsTotal.Inc() }

// RecordCacheMiss records a directory cache miss.
func RecordCacheMiss() { cacheMissesTotal.Inc() }

// RecordCacheWarmRoot records one warmed (or failed) allow-list root.
func RecordCacheWarmRoot(status string) {
	cacheWarmRootsTotal.WithLabelValues(status).Inc()
}

// SetActiveSessions sets the active sessions gauge.
func SetActiveSessions(count int) {
	activeSessions.Set(float64(count))
}

// RecordSessionMessage records one appended session message.
func RecordSessionMessage() { sessionMessagesTotal.Inc() }

package metrics

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Registry is the registry exposed on /api/metrics. promauto registers
	// with the default registerer, so the default gatherer is reused here.
	Registry = prometheus.DefaultGatherer

	// Custom histogram buckets for API response times ranging from milliseconds to 30+ seconds.
	// SMTP round-trips dominate the upper range.
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34}

	// HTTP Metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Database Client Metrics (postgres, sqlite, memory)
	DBOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_client_operation_duration_seconds",
			Help:    "Database client operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"backend", "operation", "status"},
	)

	DBOperationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_client_operation_total",
			Help: "Total number of database client operations",
		},
		[]string{"backend", "operation", "status"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_name"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_name"},
	)

	// Storage Client Metrics (S3-compatible archive)
	ArchiveRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_client_operation_duration_seconds",
			Help:    "Storage client operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	ArchiveRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_client_operation_total",
			Help: "Total number of storage client operations",
		},
		[]string{"operation", "status"},
	)

	// Email Metrics
	EmailSendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "email_send_duration_seconds",
			Help:    "SMTP send duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"kind"},
	)

	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "axioniz_emails_sent_total",
			Help: "Total number of notification emails by kind and outcome",
		},
		[]string{"kind", "status"}, // status: success, error, disabled
	)

	// Business Metrics
	ConsultationSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "axioniz_consultation_submissions_total",
			Help: "Total number of consultation submissions",
		},
		[]string{"status"}, // success, validation_failed, error
	)

	ConsultationStatusUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "axioniz_consultation_status_updates_total",
			Help: "Total number of consultation status changes",
		},
		[]string{"to_status", "result"},
	)

	AdminLogins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "axioniz_admin_logins_total",
			Help: "Total admin login attempts",
		},
		[]string{"status"},
	)

	// Resilience Metrics
	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_rate_limited_total",
			Help: "Requests rejected by a per-IP rate limiter",
		},
		[]string{"limiter"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"breaker"},
	)

	// Infrastructure Metrics
	GoRoutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_goroutines",
			Help: "Number of goroutines",
		},
	)

	HeapAlloc = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)
)

// infrastructureInterval is how often runtime gauges are refreshed.
const infrastructureInterval = 15 * time.Second

// RecordInfrastructureMetrics refreshes runtime gauges until ctx is done.
func RecordInfrastructureMetrics(ctx context.Context) {
	sampleRuntime()

	go func() {
		ticker := time.NewTicker(infrastructureInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sampleRuntime()
			}
		}
	}()
}

func sampleRuntime() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	GoRoutines.Set(float64(runtime.NumGoroutine()))
	HeapAlloc.Set(float64(m.HeapAlloc))
}

// MeasureDuration returns the seconds elapsed since start.
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}

// RecordDBOperation records a database operation outcome for the given backend
func RecordDBOperation(backend, operation, status string, duration float64) {
	DBOperationDuration.WithLabelValues(backend, operation, status).Observe(duration)
	DBOperationTotal.WithLabelValues(backend, operation, status).Inc()
}

// RecordEmail records one notification email outcome. A zero duration means
// nothing reached the relay and only the counter moves.
func RecordEmail(kind, status string, duration float64) {
	if duration > 0 {
		EmailSendDuration.WithLabelValues(kind).Observe(duration)
	}
	EmailsSent.WithLabelValues(kind, status).Inc()
}

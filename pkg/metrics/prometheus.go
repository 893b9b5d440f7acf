// Package metrics provides Prometheus metrics for the goalfeed service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the goalfeed service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Stream metrics
	connectedClients   prometheus.Gauge
	broadcastsTotal    *prometheus.CounterVec
	droppedSubscribers prometheus.Counter
	refreshTriggers    prometheus.Counter

	// Store metrics
	storeFetchLatency prometheus.Histogram
	storeErrors       prometheus.Counter

	// Proxy metrics
	proxyRequests *prometheus.CounterVec
	proxyBytes    prometheus.Counter

	// Health metrics
	dependencyUp  *prometheus.GaugeVec
	overallHealth *prometheus.GaugeVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "goalfeed",
		subsystem:        "stream",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.connectedClients = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "connected_clients",
		Help:      "Number of currently connected stream subscribers",
	})

	m.broadcastsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "broadcasts_total",
		Help:      "Broadcast frames by event type",
	}, []string{"type"})

	m.droppedSubscribers = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dropped_subscribers_total",
		Help:      "Subscribers removed because delivery failed",
	})

	m.refreshTriggers = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_triggers_total",
		Help:      "Refresh broadcasts triggered by the ingestion pipeline",
	})

	m.storeFetchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_fetch_latency_milliseconds",
		Help:      "Latency of full fixture snapshot reads",
		Buckets:   m.histogramBuckets,
	})

	m.storeErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_errors_total",
		Help:      "Failed document store reads",
	})

	m.proxyRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "proxy_requests_total",
		Help:      "Video proxy requests by disposition and status",
	}, []string{"disposition", "status"})

	m.proxyBytes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "proxy_bytes_total",
		Help:      "Bytes streamed through the video proxy",
	})

	m.dependencyUp = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dependency_up",
		Help:      "Per-dependency reachability (1 up, 0 down)",
	}, []string{"dependency"})

	m.overallHealth = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "health_status",
		Help:      "Aggregate health status (1 for the active status label)",
	}, []string{"status"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})
}

// UpdateConnectedClients sets the connected subscriber gauge.
func UpdateConnectedClients(count int) {
	globalManager.connectedClients.Set(float64(count))
}

// RecordBroadcast increments the broadcast counter for an event type.
func RecordBroadcast(eventType string) {
	globalManager.broadcastsTotal.WithLabelValues(eventType).Inc()
}

// RecordDroppedSubscribers counts subscribers removed on failed delivery.
func RecordDroppedSubscribers(count int) {
	globalManager.droppedSubscribers.Add(float64(count))
}

// RecordRefreshTrigger increments the refresh trigger counter.
func RecordRefreshTrigger() {
	globalManager.refreshTriggers.Inc()
}

// RecordStoreFetchLatency records a snapshot read latency in milliseconds.
func RecordStoreFetchLatency(latencyMs float64) {
	globalManager.storeFetchLatency.Observe(latencyMs)
}

// RecordStoreError increments the failed store read counter.
func RecordStoreError() {
	globalManager.storeErrors.Inc()
}

// RecordProxyRequest counts a video proxy request.
func RecordProxyRequest(disposition, statusCode string) {
	globalManager.proxyRequests.WithLabelValues(disposition, statusCode).Inc()
}

// RecordProxyBytes counts bytes streamed through the proxy.
func RecordProxyBytes(n int64) {
	if n > 0 {
		globalManager.proxyBytes.Add(float64(n))
	}
}

// UpdateDependencyUp sets the reachability gauge for one dependency.
func UpdateDependencyUp(dependency string, up bool) {
	v := 0.0
	if up {
		v = 1.0
	}
	globalManager.dependencyUp.WithLabelValues(dependency).Set(v)
}

// UpdateOverallHealth marks the active aggregate status label.
func UpdateOverallHealth(status string) {
	for _, s := range []string{"healthy", "degraded", "unhealthy", "unknown"} {
		v := 0.0
		if s == status {
			v = 1.0
		}
		globalManager.overallHealth.WithLabelValues(s).Set(v)
	}
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// UpdateSystemMemoryUsage updates the memory usage gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount updates the goroutine count gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom registry metrics are registered on.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

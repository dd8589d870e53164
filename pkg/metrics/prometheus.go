// Package metrics provides Prometheus metrics for the waterline service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the waterline service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Ingestion metrics
	readingsReceived *prometheus.CounterVec
	readingsRejected *prometheus.CounterVec
	readingsDropped  prometheus.Counter
	recordLatency    prometheus.Histogram
	dayRollovers     *prometheus.CounterVec
	cumulativeVolume *prometheus.GaugeVec
	seriesLength     *prometheus.GaugeVec

	// Persistence metrics
	persistWrites prometheus.Counter
	persistErrors prometheus.Counter

	// Query metrics
	queryTotal   *prometheus.CounterVec
	queryLatency prometheus.Histogram

	// Prediction metrics
	predictions      *prometheus.CounterVec
	predictionErrors *prometheus.CounterVec
	archiveErrors    prometheus.Counter
	classifyLatency  prometheus.Histogram

	// Queue metrics
	queueSize      prometheus.Gauge
	queueCapacity  prometheus.Gauge
	queueEnqueues  prometheus.Counter
	queueDequeues  prometheus.Counter
	queueFullDrops prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:        "waterline",
		subsystem:        "telemetry",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.readingsReceived = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "readings_received_total",
		Help:      "Raw volume readings accepted per channel.",
	}, []string{"channel"})

	m.readingsRejected = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "readings_rejected_total",
		Help:      "Readings rejected per channel and reason (stale, malformed).",
	}, []string{"channel", "reason"})

	m.readingsDropped = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "readings_dropped_total",
		Help:      "Readings dropped before processing (queue full, decode failure).",
	})

	m.recordLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "record_latency_ms",
		Help:      "Latency of the buffer record path in milliseconds.",
		Buckets:   m.histogramBuckets,
	})

	m.dayRollovers = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "day_rollovers_total",
		Help:      "Series resets at local-date boundaries per channel.",
	}, []string{"channel"})

	m.cumulativeVolume = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cumulative_consumption_ml",
		Help:      "Latest daily cumulative consumption per channel in milliliters.",
	}, []string{"channel"})

	m.seriesLength = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "series_length",
		Help:      "Number of in-memory readings held for the current day per channel.",
	}, []string{"channel"})

	m.persistWrites = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persist_writes_total",
		Help:      "Successful writes to the historical store.",
	})

	m.persistErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persist_errors_total",
		Help:      "Failed writes to the historical store (non-fatal).",
	})

	m.queryTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "consumption_queries_total",
		Help:      "Point-in-time consumption queries by source (memory, store, none).",
	}, []string{"source"})

	m.queryLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "consumption_query_latency_ms",
		Help:      "Latency of point-in-time consumption queries in milliseconds.",
		Buckets:   m.histogramBuckets,
	})

	m.predictions = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "predictions_total",
		Help:      "Served predictions per resulting label.",
	}, []string{"label"})

	m.predictionErrors = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "prediction_errors_total",
		Help:      "Failed prediction requests per kind (client, classifier).",
	}, []string{"kind"})

	m.archiveErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "archive_errors_total",
		Help:      "Failures appending to the prediction audit archive.",
	})

	m.classifyLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "classify_latency_ms",
		Help:      "Latency of classifier calls in milliseconds.",
		Buckets:   m.histogramBuckets,
	})

	m.queueSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Readings currently queued for ingestion.",
	})

	m.queueCapacity = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured capacity of the ingestion queue.",
	})

	m.queueEnqueues = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueues_total",
		Help:      "Readings enqueued for ingestion.",
	})

	m.queueDequeues = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeues_total",
		Help:      "Readings dequeued by the ingest loop.",
	})

	m.queueFullDrops = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_full_drops_total",
		Help:      "Readings dropped because the ingestion queue was full.",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by endpoint, method and status code.",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_ms",
		Help:      "HTTP request duration by endpoint, method and status code.",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	m.systemMemoryUsage = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_usage_bytes",
		Help:      "Heap bytes currently allocated.",
	})

	m.systemGoroutineCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutine_count",
		Help:      "Number of live goroutines.",
	})

	m.systemGCPauseTime = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "gc_pause_time_ms",
		Help:      "Average garbage-collection pause time in milliseconds.",
		Buckets:   m.histogramBuckets,
	})
}

// GetRegistry returns the custom Prometheus registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers recording against the global manager.

// RecordReadingReceived counts an accepted raw reading for a channel.
func RecordReadingReceived(channel string) {
	globalManager.readingsReceived.WithLabelValues(channel).Inc()
}

// RecordReadingRejected counts a rejected reading with a reason label.
func RecordReadingRejected(channel, reason string) {
	globalManager.readingsRejected.WithLabelValues(channel, reason).Inc()
}

// RecordReadingDropped counts a reading lost before processing.
func RecordReadingDropped() {
	globalManager.readingsDropped.Inc()
}

// RecordRecordLatency observes the record path latency in milliseconds.
func RecordRecordLatency(ms float64) {
	globalManager.recordLatency.Observe(ms)
}

// RecordDayRollover counts a series reset at a date boundary.
func RecordDayRollover(channel string) {
	globalManager.dayRollovers.WithLabelValues(channel).Inc()
}

// UpdateCumulativeConsumption sets the latest cumulative gauge for a channel.
func UpdateCumulativeConsumption(channel string, ml float64) {
	globalManager.cumulativeVolume.WithLabelValues(channel).Set(ml)
}

// UpdateSeriesLength sets the in-memory series length gauge for a channel.
func UpdateSeriesLength(channel string, n int) {
	globalManager.seriesLength.WithLabelValues(channel).Set(float64(n))
}

// RecordPersistWrite counts a successful historical-store write.
func RecordPersistWrite() {
	globalManager.persistWrites.Inc()
}

// RecordPersistError counts a failed historical-store write.
func RecordPersistError() {
	globalManager.persistErrors.Inc()
}

// RecordQuery counts a consumption query answered from the given source.
func RecordQuery(source string) {
	globalManager.queryTotal.WithLabelValues(source).Inc()
}

// RecordQueryLatency observes query latency in milliseconds.
func RecordQueryLatency(ms float64) {
	globalManager.queryLatency.Observe(ms)
}

// RecordPrediction counts a served prediction by label.
func RecordPrediction(label string) {
	globalManager.predictions.WithLabelValues(label).Inc()
}

// RecordPredictionError counts a failed prediction by kind.
func RecordPredictionError(kind string) {
	globalManager.predictionErrors.WithLabelValues(kind).Inc()
}

// RecordArchiveError counts a failed audit-archive append.
func RecordArchiveError() {
	globalManager.archiveErrors.Inc()
}

// RecordClassifyLatency observes classifier latency in milliseconds.
func RecordClassifyLatency(ms float64) {
	globalManager.classifyLatency.Observe(ms)
}

// UpdateQueueSize sets the ingestion queue size gauge.
func UpdateQueueSize(n int) {
	globalManager.queueSize.Set(float64(n))
}

// UpdateQueueCapacity sets the ingestion queue capacity gauge.
func UpdateQueueCapacity(n int) {
	globalManager.queueCapacity.Set(float64(n))
}

// RecordQueueEnqueue counts an enqueued reading.
func RecordQueueEnqueue() {
	globalManager.queueEnqueues.Inc()
}

// RecordQueueDequeue counts a dequeued reading.
func RecordQueueDequeue() {
	globalManager.queueDequeues.Inc()
}

// RecordQueueFullDrop counts a reading dropped on a full queue.
func RecordQueueFullDrop() {
	globalManager.queueFullDrops.Inc()
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration observes an HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}

// UpdateSystemMemoryUsage sets the heap allocation gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count gauge.
func UpdateSystemGoroutineCount(n int) {
	globalManager.systemGoroutineCount.Set(float64(n))
}

// RecordSystemGCPauseTime observes an average GC pause in milliseconds.
func RecordSystemGCPauseTime(ms float64) {
	globalManager.systemGCPauseTime.Observe(ms)
}

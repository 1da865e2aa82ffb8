// Package metrics provides Prometheus metrics for the emotion inference service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Ingestion metrics
	samplesReceived *prometheus.CounterVec
	samplesDropped  *prometheus.CounterVec

	// Emission metrics
	resultsEmitted   *prometheus.CounterVec
	ticksSkipped     *prometheus.CounterVec
	inferenceErrors  prometheus.Counter
	inferenceLatency prometheus.Histogram

	// Window buffer metrics
	bufferSamples prometheus.Gauge
	bufferRRTotal prometheus.Gauge

	// Queue metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueues      prometheus.Counter
	queueDequeues      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker and history metrics
	workerCount prometheus.Gauge
	historySize prometheus.Gauge

	// Result handoff metrics
	resultsPublished prometheus.Counter
	publishErrors    prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var (
	defaultManager  *Manager
	defaultRegistry = prometheus.NewRegistry()
)

//nolint:gochecknoinits // package-level default manager, same pattern as the rest of the service
func init() {
	defaultManager = NewManager(WithPrometheusRegistry(defaultRegistry))
}

// NewManager creates a metrics manager and registers all collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "synheart",
		subsystem:        "emotion",
		histogramBuckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	factory := func(name, help string) prometheus.Opts {
		return prometheus.Opts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      name,
			Help:      help,
		}
	}

	m.samplesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts(factory("samples_received_total", "Samples accepted into the window buffer, by source.")),
		[]string{"source"},
	)
	m.samplesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts(factory("samples_dropped_total", "Samples rejected at the push boundary, by reason.")),
		[]string{"reason"},
	)
	m.resultsEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts(factory("results_emitted_total", "Emotion results emitted, by top-1 label.")),
		[]string{"label"},
	)
	m.ticksSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts(factory("ticks_skipped_total", "ConsumeReady calls that produced no result, by reason.")),
		[]string{"reason"},
	)
	m.inferenceErrors = prometheus.NewCounter(
		prometheus.CounterOpts(factory("inference_errors_total", "Classifier failures absorbed by the streaming path.")),
	)
	m.inferenceLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "inference_latency_ms",
		Help:      "Feature extraction plus classification latency in milliseconds.",
		Buckets:   m.histogramBuckets,
	})

	m.bufferSamples = prometheus.NewGauge(
		prometheus.GaugeOpts(factory("buffer_samples", "Samples currently held in the sliding window.")),
	)
	m.bufferRRTotal = prometheus.NewGauge(
		prometheus.GaugeOpts(factory("buffer_rr_total", "RR intervals currently held in the sliding window.")),
	)

	m.queueSize = prometheus.NewGauge(
		prometheus.GaugeOpts(factory("queue_size", "Samples waiting in the ingestion queue.")),
	)
	m.queueCapacity = prometheus.NewGauge(
		prometheus.GaugeOpts(factory("queue_capacity", "Configured capacity of the ingestion queue.")),
	)
	m.queueUtilization = prometheus.NewGauge(
		prometheus.GaugeOpts(factory("queue_utilization", "Queue fill ratio between 0 and 1.")),
	)
	m.queueEnqueues = prometheus.NewCounter(
		prometheus.CounterOpts(factory("queue_enqueues_total", "Successful enqueues into the ingestion queue.")),
	)
	m.queueDequeues = prometheus.NewCounter(
		prometheus.CounterOpts(factory("queue_dequeues_total", "Samples handed to workers from the ingestion queue.")),
	)
	m.queueEnqueueErrors = prometheus.NewCounter(
		prometheus.CounterOpts(factory("queue_enqueue_errors_total", "Enqueue attempts rejected by the ingestion queue.")),
	)

	m.workerCount = prometheus.NewGauge(
		prometheus.GaugeOpts(factory("worker_count", "Running ingestion workers.")),
	)
	m.historySize = prometheus.NewGauge(
		prometheus.GaugeOpts(factory("history_size", "Results currently retained in the history store.")),
	)

	m.resultsPublished = prometheus.NewCounter(
		prometheus.CounterOpts(factory("results_published_total", "Results handed off to the external publisher.")),
	)
	m.publishErrors = prometheus.NewCounter(
		prometheus.CounterOpts(factory("publish_errors_total", "Failed handoffs to the external publisher.")),
	)

	m.httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts(factory("http_requests_total", "HTTP requests by endpoint, method, and status.")),
		[]string{"endpoint", "method", "status"},
	)
	m.httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds.",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	if !m.enabled {
		return
	}

	m.registry.MustRegister(
		m.samplesReceived, m.samplesDropped,
		m.resultsEmitted, m.ticksSkipped, m.inferenceErrors, m.inferenceLatency,
		m.bufferSamples, m.bufferRRTotal,
		m.queueSize, m.queueCapacity, m.queueUtilization,
		m.queueEnqueues, m.queueDequeues, m.queueEnqueueErrors,
		m.workerCount, m.historySize,
		m.resultsPublished, m.publishErrors,
		m.httpRequests, m.httpRequestDuration,
	)
}

// Package-level helpers operating on the default manager.

func RecordSampleReceived(source string) {
	defaultManager.samplesReceived.WithLabelValues(source).Inc()
}

func RecordSampleDropped(reason string) {
	defaultManager.samplesDropped.WithLabelValues(reason).Inc()
}

func RecordResultEmitted(label string) {
	defaultManager.resultsEmitted.WithLabelValues(label).Inc()
}

func RecordTickSkipped(reason string) {
	defaultManager.ticksSkipped.WithLabelValues(reason).Inc()
}

func RecordInferenceError() {
	defaultManager.inferenceErrors.Inc()
}

func RecordInferenceLatency(latencyMs float64) {
	defaultManager.inferenceLatency.Observe(latencyMs)
}

func UpdateBufferSamples(count int) {
	defaultManager.bufferSamples.Set(float64(count))
}

func UpdateBufferRRTotal(count int) {
	defaultManager.bufferRRTotal.Set(float64(count))
}

func UpdateQueueSize(size int) {
	defaultManager.queueSize.Set(float64(size))
}

func UpdateQueueCapacity(capacity int) {
	defaultManager.queueCapacity.Set(float64(capacity))
}

func UpdateQueueUtilization(utilization float64) {
	defaultManager.queueUtilization.Set(utilization)
}

func RecordQueueEnqueue() {
	defaultManager.queueEnqueues.Inc()
}

func RecordQueueDequeue() {
	defaultManager.queueDequeues.Inc()
}

func RecordQueueEnqueueError() {
	defaultManager.queueEnqueueErrors.Inc()
}

func UpdateWorkerCount(count int) {
	defaultManager.workerCount.Set(float64(count))
}

func UpdateHistorySize(size int) {
	defaultManager.historySize.Set(float64(size))
}

func RecordResultPublished() {
	defaultManager.resultsPublished.Inc()
}

func RecordPublishError() {
	defaultManager.publishErrors.Inc()
}

func RecordHTTPRequest(endpoint, method, status string) {
	defaultManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, status string, durationMs float64) {
	defaultManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(durationMs)
}

// GetRegistry returns the registry backing the default manager, for serving
// on /healthz and /metrics.
func GetRegistry() *prometheus.Registry {
	return defaultRegistry
}

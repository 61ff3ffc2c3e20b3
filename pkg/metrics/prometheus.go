package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Prediction metrics
	predictions       prometheus.Counter
	predictionErrors  *prometheus.CounterVec
	predictionLatency prometheus.Histogram
	lastProbability   prometheus.Gauge
	probabilities     prometheus.Histogram

	// History loading metrics
	historyLoadLatency *prometheus.HistogramVec
	historyLoadErrors  *prometheus.CounterVec
	historyLength      prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // registry without default Go collectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "winrate",
		subsystem:        "predictor",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.predictions = auto.NewCounter(m.counterOpts("predictions_total", "Total number of successful win probability predictions"))
	m.predictionErrors = auto.NewCounterVec(m.counterOpts("prediction_errors_total", "Failed predictions by error kind"), []string{"kind"})
	m.predictionLatency = auto.NewHistogram(m.histogramOpts("prediction_latency_milliseconds", "End-to-end prediction latency in milliseconds, history load included", m.histogramBuckets))
	m.lastProbability = auto.NewGauge(m.gaugeOpts("last_probability", "Most recently predicted win probability"))
	m.probabilities = auto.NewHistogram(m.histogramOpts("probability", "Distribution of predicted win probabilities", prometheus.LinearBuckets(0.1, 0.1, 9)))

	m.historyLoadLatency = auto.NewHistogramVec(m.histogramOpts("history_load_latency_milliseconds", "Match history load latency in milliseconds", m.histogramBuckets), []string{"source"})
	m.historyLoadErrors = auto.NewCounterVec(m.counterOpts("history_load_errors_total", "Failed history loads by source and kind"), []string{"source", "kind"})
	m.historyLength = auto.NewHistogram(m.histogramOpts("history_matches", "Number of matches in loaded histories", prometheus.ExponentialBuckets(1, 2, 10)))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets), []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total", "Errors by component and type"), []string{"component", "error_type"})
	m.errorRateByType = auto.NewCounterVec(m.counterOpts("errors_by_type_total", "Errors by type and severity"), []string{"error_type", "severity"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total", "Errors by endpoint, method and type"), []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// RecordPrediction records a successful prediction and its latency.
func (m *Manager) RecordPrediction(probability, latencyMs float64) {
	m.predictions.Inc()
	m.lastProbability.Set(probability)
	m.probabilities.Observe(probability)
	m.predictionLatency.Observe(latencyMs)
}

// RecordPredictionError counts a failed prediction.
func (m *Manager) RecordPredictionError(kind string) {
	m.predictionErrors.WithLabelValues(kind).Inc()
}

// RecordHistoryLoad records a successful history load.
func (m *Manager) RecordHistoryLoad(source string, matches int, latencyMs float64) {
	m.historyLoadLatency.WithLabelValues(source).Observe(latencyMs)
	m.historyLength.Observe(float64(matches))
}

// RecordHistoryLoadError counts a failed history load.
func (m *Manager) RecordHistoryLoadError(source, kind string) {
	m.historyLoadErrors.WithLabelValues(source, kind).Inc()
}

// RecordPrediction records a successful prediction on the global manager.
func RecordPrediction(probability, latencyMs float64) {
	globalManager.RecordPrediction(probability, latencyMs)
}

// RecordPredictionError counts a failed prediction on the global manager.
func RecordPredictionError(kind string) {
	globalManager.RecordPredictionError(kind)
}

// RecordHistoryLoad records a history load on the global manager.
func RecordHistoryLoad(source string, matches int, latencyMs float64) {
	globalManager.RecordHistoryLoad(source, matches, latencyMs)
}

// RecordHistoryLoadError counts a failed history load on the global manager.
func RecordHistoryLoadError(source, kind string) {
	globalManager.RecordHistoryLoadError(source, kind)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package metrics provides Prometheus metrics for the mlerank rating service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	iterationBuckets []float64
	registry         prometheus.Registerer

	// Estimation
	estimationRuns    *prometheus.CounterVec
	estimationLatency prometheus.Histogram
	iterations        prometheus.Histogram
	gamesAggregated   prometheus.Counter
	aggregationErrors *prometheus.CounterVec
	duplicateGames    prometheus.Counter
	rosterSize        prometheus.Gauge
	providerFetches   *prometheus.CounterVec
	providerLatency   prometheus.Histogram

	// Workers
	workerTasks *prometheus.CounterVec
	workersBusy prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "mlerank",
		subsystem:        "ratings",
		histogramBuckets: prometheus.DefBuckets,
		iterationBuckets: prometheus.ExponentialBuckets(1, 2, 15),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one block per collector
	auto := promauto.With(m.registry)

	m.estimationRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "estimation_runs_total",
		Help:      "Estimation runs by terminal state (converged, failed)",
	}, []string{"state"})

	m.estimationLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "estimation_duration_milliseconds",
		Help:      "Wall time of a full fetch, aggregate and iterate run",
		Buckets:   m.histogramBuckets,
	})

	m.iterations = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "estimation_iterations",
		Help:      "Fixed-point steps taken per estimation run",
		Buckets:   m.iterationBuckets,
	})

	m.gamesAggregated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "games_aggregated_total",
		Help:      "Game outcomes folded into pairwise matrices",
	})

	m.aggregationErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "aggregation_errors_total",
		Help:      "Rejected game outcomes by kind",
	}, []string{"kind"})

	m.duplicateGames = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "duplicate_games_total",
		Help:      "Game records dropped because their id was already seen",
	})

	m.rosterSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "roster_size",
		Help:      "Number of competitors in the configured roster",
	})

	m.providerFetches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "provider_fetches_total",
		Help:      "Game data provider calls by provider and result",
	}, []string{"provider", "result"})

	m.providerLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "provider_fetch_duration_milliseconds",
		Help:      "Game data provider call latency",
		Buckets:   m.histogramBuckets,
	})

	m.workerTasks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_tasks_total",
		Help:      "Pool tasks by result (ok, error, skipped)",
	}, []string{"result"})

	m.workersBusy = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "workers_busy",
		Help:      "Pool workers currently running a task",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_component_total",
		Help:      "Errors by component and error type",
	}, []string{"component", "error_type"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_endpoint_total",
		Help:      "HTTP errors by endpoint, method and error type",
	}, []string{"endpoint", "method", "error_type"})
}

// RecordEstimation counts one finished run in the given terminal state.
func RecordEstimation(state string) {
	globalManager.estimationRuns.WithLabelValues(state).Inc()
}

// RecordEstimationLatency records a run's wall time in milliseconds.
func RecordEstimationLatency(latencyMs float64) {
	globalManager.estimationLatency.Observe(latencyMs)
}

// RecordIterations records the number of fixed-point steps of a run.
func RecordIterations(n int) {
	globalManager.iterations.Observe(float64(n))
}

// AddGamesAggregated adds n to the aggregated games counter.
func AddGamesAggregated(n int) {
	globalManager.gamesAggregated.Add(float64(n))
}

// RecordAggregationError counts a rejected outcome of the given kind.
func RecordAggregationError(kind string) {
	globalManager.aggregationErrors.WithLabelValues(kind).Inc()
}

// RecordDuplicateGame counts a dropped duplicate game record.
func RecordDuplicateGame() {
	globalManager.duplicateGames.Inc()
}

// UpdateRosterSize sets the roster size gauge.
func UpdateRosterSize(n int) {
	globalManager.rosterSize.Set(float64(n))
}

// RecordProviderFetch counts a provider call and observes its latency.
func RecordProviderFetch(provider, result string, latencyMs float64) {
	globalManager.providerFetches.WithLabelValues(provider, result).Inc()
	globalManager.providerLatency.Observe(latencyMs)
}

// RecordWorkerTask counts a finished pool task.
func RecordWorkerTask(result string) {
	globalManager.workerTasks.WithLabelValues(result).Inc()
}

// AddWorkersBusy moves the busy workers gauge by delta.
func AddWorkersBusy(delta int) {
	globalManager.workersBusy.Add(float64(delta))
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

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

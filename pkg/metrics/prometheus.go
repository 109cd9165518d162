// Package metrics provides Prometheus metrics for the victoria pipeline and its batch runner.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by the pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Pipeline
	runsTotal        *prometheus.CounterVec
	stageDuration    *prometheus.HistogramVec
	raschIterations  *prometheus.HistogramVec
	raschConverged   *prometheus.CounterVec
	datasetPersons   prometheus.Gauge
	datasetItems     prometheus.Gauge
	warningsTotal    *prometheus.CounterVec
	selectedClusters prometheus.Gauge
	silhouette       prometheus.Gauge

	// Batch runner
	queueSize      prometheus.Gauge
	queueCapacity  prometheus.Gauge
	jobsProcessed  *prometheus.CounterVec
	jobsDuplicate  prometheus.Counter
	jobLatency     prometheus.Histogram
	workerCount    prometheus.Gauge
	workerActive   prometheus.Gauge
	storeLatency   *prometheus.HistogramVec
	storedRunCount prometheus.Gauge

	// Ops HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var globalManager *Manager //nolint:gochecknoglobals // process-wide collectors behind the package helpers

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps Go runtime collectors out of /metrics

func init() { //nolint:gochecknoinits // global collectors registered once
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "victoria",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// Default returns the process-wide manager registered on GetRegistry.
func Default() *Manager { return globalManager }

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

	m.runsTotal = auto.NewCounterVec(m.counterOpts("runs_total", "Pipeline invocations by outcome"), []string{"status"})
	m.stageDuration = auto.NewHistogramVec(
		m.histogramOpts("stage_duration_milliseconds", "Duration of each pipeline stage in milliseconds", m.histogramBuckets),
		[]string{"stage"},
	)
	m.raschIterations = auto.NewHistogramVec(
		m.histogramOpts("rasch_iterations", "Iterations used by the Rasch estimator", []float64{1, 2, 5, 10, 20, 50, 100, 200, 500}),
		[]string{"strategy"},
	)
	m.raschConverged = auto.NewCounterVec(m.counterOpts("rasch_runs_total", "Rasch estimations by strategy and convergence"), []string{"strategy", "converged"})
	m.datasetPersons = auto.NewGauge(m.gaugeOpts("dataset_persons", "Persons in the most recent response matrix"))
	m.datasetItems = auto.NewGauge(m.gaugeOpts("dataset_items", "Items in the most recent response matrix"))
	m.warningsTotal = auto.NewCounterVec(m.counterOpts("warnings_total", "Data-quality warnings by code"), []string{"code"})
	m.selectedClusters = auto.NewGauge(m.gaugeOpts("selected_clusters", "Cluster count chosen by the most recent run"))
	m.silhouette = auto.NewGauge(m.gaugeOpts("silhouette_score", "Mean silhouette of the most recent clustering"))

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Jobs waiting in the batch queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Capacity of the batch queue"))
	m.jobsProcessed = auto.NewCounterVec(m.counterOpts("jobs_processed_total", "Batch jobs processed by outcome"), []string{"status"})
	m.jobsDuplicate = auto.NewCounter(m.counterOpts("jobs_duplicate_total", "Batch jobs skipped because their input was already processed"))
	m.jobLatency = auto.NewHistogram(m.histogramOpts("job_latency_milliseconds", "End-to-end batch job latency in milliseconds", m.histogramBuckets))
	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Configured batch workers"))
	m.workerActive = auto.NewGauge(m.gaugeOpts("worker_active_count", "Workers currently running a job"))
	m.storeLatency = auto.NewHistogramVec(
		m.histogramOpts("store_latency_milliseconds", "Result store operation latency in milliseconds", m.histogramBuckets),
		[]string{"op"},
	)
	m.storedRunCount = auto.NewGauge(m.gaugeOpts("stored_runs", "Runs held by the result store"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Ops HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "Ops HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

// RecordRun counts one pipeline invocation.
func (m *Manager) RecordRun(status string) {
	if m.enabled {
		m.runsTotal.WithLabelValues(status).Inc()
	}
}

// ObserveStage records the duration of a named stage.
func (m *Manager) ObserveStage(stage string, d time.Duration) {
	if m.enabled {
		m.stageDuration.WithLabelValues(stage).Observe(ms(d))
	}
}

// RecordRasch records the outcome of one estimation.
func (m *Manager) RecordRasch(strategy string, iterations int, converged bool) {
	if !m.enabled {
		return
	}
	m.raschIterations.WithLabelValues(strategy).Observe(float64(iterations))
	m.raschConverged.WithLabelValues(strategy, strconv.FormatBool(converged)).Inc()
}

// SetDatasetSize records the matrix dimensions of the latest run.
func (m *Manager) SetDatasetSize(persons, items int) {
	if !m.enabled {
		return
	}
	m.datasetPersons.Set(float64(persons))
	m.datasetItems.Set(float64(items))
}

// RecordWarning counts a data-quality warning.
func (m *Manager) RecordWarning(code string) {
	if m.enabled {
		m.warningsTotal.WithLabelValues(code).Inc()
	}
}

// RecordClusterSelection records the chosen k and its silhouette.
func (m *Manager) RecordClusterSelection(k int, silhouette float64) {
	if !m.enabled {
		return
	}
	m.selectedClusters.Set(float64(k))
	m.silhouette.Set(silhouette)
}

// UpdateQueue sets queue depth and capacity.
func (m *Manager) UpdateQueue(size, capacity int) {
	if !m.enabled {
		return
	}
	m.queueSize.Set(float64(size))
	m.queueCapacity.Set(float64(capacity))
}

// RecordJob records a finished batch job.
func (m *Manager) RecordJob(status string, latency time.Duration) {
	if !m.enabled {
		return
	}
	m.jobsProcessed.WithLabelValues(status).Inc()
	m.jobLatency.Observe(ms(latency))
}

// RecordJobDuplicate counts a job skipped by the dedupe window.
func (m *Manager) RecordJobDuplicate() {
	if m.enabled {
		m.jobsDuplicate.Inc()
	}
}

// UpdateWorkers sets configured and active worker counts.
func (m *Manager) UpdateWorkers(total, active int) {
	if !m.enabled {
		return
	}
	m.workerCount.Set(float64(total))
	m.workerActive.Set(float64(active))
}

// ObserveStore records a result store operation.
func (m *Manager) ObserveStore(op string, d time.Duration, stored int) {
	if !m.enabled {
		return
	}
	m.storeLatency.WithLabelValues(op).Observe(ms(d))
	if stored >= 0 {
		m.storedRunCount.Set(float64(stored))
	}
}

// RecordHTTPRequest records a request on the ops server.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, d time.Duration) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms(d))
}

// RecordHTTPRequest records a request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string, d time.Duration) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, d)
}

// RecordJob records a finished job on the global manager.
func RecordJob(status string, latency time.Duration) {
	globalManager.RecordJob(status, latency)
}

// UpdateQueue sets queue gauges on the global manager.
func UpdateQueue(size, capacity int) {
	globalManager.UpdateQueue(size, capacity)
}

// GetRegistry returns the custom Prometheus registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

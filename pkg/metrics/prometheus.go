// Package metrics provides Prometheus metrics for the evidence fusion
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the fusion pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Ingestion Metrics - Detector stream quality
	linesParsed  prometheus.Counter
	linesSkipped prometheus.Counter

	// Assessment Metrics - Evidence quality distribution
	assessmentsByFlag *prometheus.CounterVec

	// Matrix Metrics - Pipeline scale
	entitiesTotal  prometheus.Gauge
	detectorsTotal prometheus.Gauge

	// Correlation Metrics - Pairwise analysis outcomes
	pairsComputed  prometheus.Counter
	pairsOmitted   prometheus.Counter
	clustersFormed prometheus.Gauge

	// Fusion Metrics - Scoring throughput
	scoresFused   prometheus.Counter
	fusionLatency prometheus.Histogram

	// Artifact Metrics - Report generation
	artifactWrites      *prometheus.CounterVec
	artifactWriteErrors prometheus.Counter

	// Pipeline Metrics - End-to-end run timings
	stageLatency *prometheus.HistogramVec
	workerCount  prometheus.Gauge
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
		namespace:        "nexus",
		subsystem:        "fusion",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Ingestion Metrics - Detector stream quality
	m.linesParsed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "detector_lines_parsed_total",
		Help:      "Total number of detector output lines successfully parsed",
	})

	m.linesSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "detector_lines_skipped_total",
		Help:      "Total number of detector output lines skipped (malformed or no identifier)",
	})

	// Assessment Metrics - Evidence quality distribution
	m.assessmentsByFlag = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "assessments_total",
			Help:      "Total number of record assessments by data quality flag",
		},
		[]string{"flag"},
	)

	// Matrix Metrics - Pipeline scale
	m.entitiesTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "entities_total",
		Help:      "Number of distinct entities in the detection matrix",
	})

	m.detectorsTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "detectors_total",
		Help:      "Number of detectors in the detection matrix",
	})

	// Correlation Metrics - Pairwise analysis outcomes
	m.pairsComputed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "correlation_pairs_computed_total",
		Help:      "Total number of detector pairs with computed correlation statistics",
	})

	m.pairsOmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "correlation_pairs_omitted_total",
		Help:      "Total number of detector pairs omitted (undefined statistics)",
	})

	m.clustersFormed = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "correlation_clusters",
		Help:      "Number of detector clusters formed in the last analysis",
	})

	// Fusion Metrics - Scoring throughput
	m.scoresFused = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scores_fused_total",
		Help:      "Total number of entity confidence scores fused",
	})

	m.fusionLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fusion_latency_milliseconds",
		Help:      "Histogram of per-entity fusion latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// Artifact Metrics - Report generation
	m.artifactWrites = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "artifact_writes_total",
			Help:      "Total number of artifacts written by name",
		},
		[]string{"artifact"},
	)

	m.artifactWriteErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "artifact_write_errors_total",
		Help:      "Total number of artifact write failures",
	})

	// Pipeline Metrics - End-to-end run timings
	m.stageLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "stage_latency_milliseconds",
			Help:      "Pipeline stage latency in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"stage"},
	)

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Number of ingestion workers (processing capacity)",
	})
}

// RecordLineParsed increments the parsed lines counter.
func RecordLineParsed() {
	globalManager.linesParsed.Inc()
}

// RecordLineSkipped increments the skipped lines counter.
func RecordLineSkipped() {
	globalManager.linesSkipped.Inc()
}

// RecordAssessment increments the assessment counter for a quality flag.
func RecordAssessment(flag string) {
	globalManager.assessmentsByFlag.WithLabelValues(flag).Inc()
}

// UpdateEntitiesTotal sets the number of distinct entities in the matrix.
func UpdateEntitiesTotal(count int) {
	globalManager.entitiesTotal.Set(float64(count))
}

// UpdateDetectorsTotal sets the number of detectors in the matrix.
func UpdateDetectorsTotal(count int) {
	globalManager.detectorsTotal.Set(float64(count))
}

// RecordPairComputed increments the computed pairs counter.
func RecordPairComputed() {
	globalManager.pairsComputed.Inc()
}

// RecordPairOmitted increments the omitted pairs counter.
func RecordPairOmitted() {
	globalManager.pairsOmitted.Inc()
}

// UpdateClustersFormed sets the cluster count for the last analysis.
func UpdateClustersFormed(count int) {
	globalManager.clustersFormed.Set(float64(count))
}

// RecordScoreFused increments the fused scores counter.
func RecordScoreFused() {
	globalManager.scoresFused.Inc()
}

// RecordFusionLatency records per-entity fusion latency in milliseconds.
func RecordFusionLatency(latencyMs float64) {
	globalManager.fusionLatency.Observe(latencyMs)
}

// RecordArtifactWrite increments the artifact write counter for a named artifact.
func RecordArtifactWrite(artifact string) {
	globalManager.artifactWrites.WithLabelValues(artifact).Inc()
}

// RecordArtifactWriteError increments the artifact write error counter.
func RecordArtifactWriteError() {
	globalManager.artifactWriteErrors.Inc()
}

// RecordStageLatency records a pipeline stage latency in milliseconds.
func RecordStageLatency(stage string, latencyMs float64) {
	globalManager.stageLatency.WithLabelValues(stage).Observe(latencyMs)
}

// UpdateWorkerCount sets the current ingestion worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Copyright (C) 2025 Vrite AI
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides metrics and instrumentation for the editor.
//
// # Description
//
// This package implements Prometheus metrics for monitoring document patch
// operations. Metrics include:
//   - Batch counters (by mode and outcome)
//   - Rejection counters (by validation failure kind)
//   - Batch size histograms
//   - Legacy text-pair outcome counters
//
// # Integration
//
// Metrics are exposed via the /metrics endpoint. Use with Prometheus +
// Grafana for dashboards and alerting.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Metric Definitions
// =============================================================================

// Namespace for all metrics
const metricsNamespace = "vrite"

// Subsystem for editor metrics
const editorSubsystem = "editor"

// EditorMetrics holds all Prometheus metrics for document patch operations.
//
// # Description
//
// Provides counters and histograms for monitoring patch throughput and
// rejection causes. Initialize once at startup via InitMetrics().
//
// # Thread Safety
//
// All operations are thread-safe.
type EditorMetrics struct {
	// BatchesTotal counts operation batches by mode and outcome.
	// Labels: mode (patch, textdiff, command, format), status (applied, rejected, error)
	BatchesTotal *prometheus.CounterVec

	// RejectionsTotal counts validation rejections by failure kind.
	// Labels: kind (duplicate_id, unknown_anchor, unknown_block, ...)
	RejectionsTotal *prometheus.CounterVec

	// OperationsPerBatch measures the size of accepted batches.
	// Labels: mode (patch, command, format)
	OperationsPerBatch *prometheus.HistogramVec

	// TextPairsTotal counts legacy replacement pairs by outcome.
	// Labels: outcome (applied, text_not_found, ambiguous, invalid_pair)
	TextPairsTotal *prometheus.CounterVec

	// GenerationDurationSeconds measures end-to-end LLM generation latency.
	// Labels: mode (command, format, enhance)
	GenerationDurationSeconds *prometheus.HistogramVec
}

// DefaultMetrics is the singleton instance of EditorMetrics.
// Initialized by InitMetrics().
var DefaultMetrics *EditorMetrics

// InitMetrics initializes the default metrics instance.
//
// # Description
//
// Creates and registers all Prometheus metrics against the default
// registry. Call once at application startup.
//
// # Limitations
//
//   - Panics if called twice (duplicate registration).
func InitMetrics() *EditorMetrics {
	DefaultMetrics = NewMetrics(prometheus.DefaultRegisterer)
	return DefaultMetrics
}

// NewMetrics builds an EditorMetrics registered against reg. Tests use a
// private registry here to stay independent of the process-wide one.
func NewMetrics(reg prometheus.Registerer) *EditorMetrics {
	factory := promauto.With(reg)

	return &EditorMetrics{
		BatchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: editorSubsystem,
				Name:      "batches_total",
				Help:      "Total operation batches by mode and outcome",
			},
			[]string{"mode", "status"},
		),

		RejectionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: editorSubsystem,
				Name:      "rejections_total",
				Help:      "Total batch rejections by validation failure kind",
			},
			[]string{"kind"},
		),

		OperationsPerBatch: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: editorSubsystem,
				Name:      "operations_per_batch",
				Help:      "Number of operations in accepted batches",
				Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 200},
			},
			[]string{"mode"},
		),

		TextPairsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: editorSubsystem,
				Name:      "text_pairs_total",
				Help:      "Total legacy replacement pairs by outcome",
			},
			[]string{"outcome"},
		),

		GenerationDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: editorSubsystem,
				Name:      "generation_duration_seconds",
				Help:      "End-to-end LLM generation latency in seconds",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"mode"},
		),
	}
}

// =============================================================================
// Mode Names
// =============================================================================

// Mode labels the request mode for metrics.
type Mode string

const (
	// ModePatch is the structured-patch endpoint.
	ModePatch Mode = "patch"

	// ModeTextDiff is the legacy exact-text endpoint.
	ModeTextDiff Mode = "textdiff"

	// ModeCommand is the LLM instruction endpoint.
	ModeCommand Mode = "command"

	// ModeFormat is the whole-document reformat endpoint.
	ModeFormat Mode = "format"

	// ModeEnhance is the prose generation endpoint.
	ModeEnhance Mode = "enhance"
)

// =============================================================================
// Helper Methods
// =============================================================================

// RecordApplied records an accepted batch and its size.
func (m *EditorMetrics) RecordApplied(mode Mode, operations int) {
	m.BatchesTotal.WithLabelValues(string(mode), "applied").Inc()
	m.OperationsPerBatch.WithLabelValues(string(mode)).Observe(float64(operations))
}

// RecordRejected records a batch rejected by validation.
func (m *EditorMetrics) RecordRejected(mode Mode, kind string) {
	m.BatchesTotal.WithLabelValues(string(mode), "rejected").Inc()
	m.RejectionsTotal.WithLabelValues(kind).Inc()
}

// RecordError records a batch that failed outside validation, such as an
// LLM transport failure.
func (m *EditorMetrics) RecordError(mode Mode) {
	m.BatchesTotal.WithLabelValues(string(mode), "error").Inc()
}

// RecordTextPair records the outcome of a single legacy replacement pair.
// Outcome is "applied" or a skip reason string.
func (m *EditorMetrics) RecordTextPair(outcome string) {
	m.TextPairsTotal.WithLabelValues(outcome).Inc()
}

// ObserveGeneration records LLM generation latency in seconds.
func (m *EditorMetrics) ObserveGeneration(mode Mode, seconds float64) {
	m.GenerationDurationSeconds.WithLabelValues(string(mode)).Observe(seconds)
}

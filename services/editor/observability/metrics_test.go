// Copyright (C) 2025 Vrite AI
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// newTestMetrics creates an EditorMetrics instance with a private registry
// so tests do not collide with the global one.
func newTestMetrics(t *testing.T) *EditorMetrics {
	t.Helper()
	return NewMetrics(prometheus.NewRegistry())
}

func TestRecordApplied(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordApplied(ModePatch, 3)
	m.RecordApplied(ModePatch, 5)
	m.RecordApplied(ModeCommand, 1)

	got := testutil.ToFloat64(m.BatchesTotal.WithLabelValues("patch", "applied"))
	if got != 2 {
		t.Errorf("patch applied = %v, want 2", got)
	}
	got = testutil.ToFloat64(m.BatchesTotal.WithLabelValues("command", "applied"))
	if got != 1 {
		t.Errorf("command applied = %v, want 1", got)
	}
}

func TestRecordRejected(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordRejected(ModePatch, "unknown_anchor")
	m.RecordRejected(ModePatch, "unknown_anchor")
	m.RecordRejected(ModeCommand, "invalid_operation")

	got := testutil.ToFloat64(m.RejectionsTotal.WithLabelValues("unknown_anchor"))
	if got != 2 {
		t.Errorf("unknown_anchor rejections = %v, want 2", got)
	}
	got = testutil.ToFloat64(m.BatchesTotal.WithLabelValues("patch", "rejected"))
	if got != 2 {
		t.Errorf("patch rejected = %v, want 2", got)
	}
}

func TestRecordError(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordError(ModeEnhance)

	got := testutil.ToFloat64(m.BatchesTotal.WithLabelValues("enhance", "error"))
	if got != 1 {
		t.Errorf("enhance errors = %v, want 1", got)
	}
}

func TestRecordTextPair(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordTextPair("applied")
	m.RecordTextPair("applied")
	m.RecordTextPair("text_not_found")

	got := testutil.ToFloat64(m.TextPairsTotal.WithLabelValues("applied"))
	if got != 2 {
		t.Errorf("applied pairs = %v, want 2", got)
	}
	got = testutil.ToFloat64(m.TextPairsTotal.WithLabelValues("text_not_found"))
	if got != 1 {
		t.Errorf("text_not_found pairs = %v, want 1", got)
	}
}

func TestInitMetricsSetsDefault(t *testing.T) {
	// InitMetrics registers against the default registry; run once only.
	if DefaultMetrics == nil {
		InitMetrics()
	}
	if DefaultMetrics == nil {
		t.Fatal("DefaultMetrics not set")
	}
}

// metrics.go: pluggable metrics collection interface and implementations
//
// Trimmed from the teacher's MetricsCollector interface shape
// (observability.go/observability_impl.go), dropping the RPC-specific
// surface (per-transport latency, circuit breaker gauges, connection pool
// stats) that has no referent in an in-process container — see DESIGN.md.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package devserver

import (
	"sync"
)

// MetricsCollector is a sink for labelled counters, gauges, and durations
// (in seconds). Nothing in this package emits to it: the hook driver and
// the crawl-end finder neither take nor call a MetricsCollector.
//
// Example usage:
//
//	collector.IncrementCounter("hook_invocations_total",
//	    map[string]string{"hook": "resolveId", "plugin": "json"}, 1)
//	collector.RecordDuration("hook_duration_seconds",
//	    map[string]string{"hook": "transform"}, 0.012)
type MetricsCollector interface {
	IncrementCounter(name string, labels map[string]string, value int64)
	SetGauge(name string, labels map[string]string, value float64)
	RecordDuration(name string, labels map[string]string, value float64)
	GetMetrics() map[string]any
}

// NoOpMetricsCollector discards everything; used when no collector is
// configured.
type NoOpMetricsCollector struct{}

// NewNoOpMetricsCollector creates a no-op metrics collector.
func NewNoOpMetricsCollector() *NoOpMetricsCollector {
	return &NoOpMetricsCollector{}
}

func (NoOpMetricsCollector) IncrementCounter(name string, labels map[string]string, value int64) {}
func (NoOpMetricsCollector) SetGauge(name string, labels map[string]string, value float64)        {}
func (NoOpMetricsCollector) RecordDuration(name string, labels map[string]string, value float64)  {}
func (NoOpMetricsCollector) GetMetrics() map[string]any                                           { return map[string]any{} }

// InMemoryMetricsCollector is a simple thread-safe collector suitable for
// tests and small deployments.
type InMemoryMetricsCollector struct {
	mu        sync.Mutex
	counters  map[string]int64
	gauges    map[string]float64
	durations map[string][]float64
}

// NewInMemoryMetricsCollector creates an empty in-memory collector.
func NewInMemoryMetricsCollector() *InMemoryMetricsCollector {
	return &InMemoryMetricsCollector{
		counters:  make(map[string]int64),
		gauges:    make(map[string]float64),
		durations: make(map[string][]float64),
	}
}

func metricKey(name string, labels map[string]string) string {
	key := name
	for k, v := range labels {
		key += "|" + k + "=" + v
	}
	return key
}

// IncrementCounter adds value to the named counter.
func (m *InMemoryMetricsCollector) IncrementCounter(name string, labels map[string]string, value int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[metricKey(name, labels)] += value
}

// SetGauge sets the named gauge to value.
func (m *InMemoryMetricsCollector) SetGauge(name string, labels map[string]string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[metricKey(name, labels)] = value
}

// RecordDuration appends value (in seconds) to the named duration series.
func (m *InMemoryMetricsCollector) RecordDuration(name string, labels map[string]string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := metricKey(name, labels)
	m.durations[key] = append(m.durations[key], value)
}

// GetMetrics returns a snapshot of all recorded counters, gauges, and
// duration series.
func (m *InMemoryMetricsCollector) GetMetrics() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]any, len(m.counters)+len(m.gauges)+len(m.durations))
	for k, v := range m.counters {
		out["counter:"+k] = v
	}
	for k, v := range m.gauges {
		out["gauge:"+k] = v
	}
	for k, v := range m.durations {
		out["duration:"+k] = v
	}
	return out
}

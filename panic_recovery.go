// panic_recovery.go: Standardized panic recovery utilities with stack trace support
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package devserver

import (
	"runtime"
	"sync"
	"time"
)

// RecoveryHandler defines the signature for panic recovery handlers.
type RecoveryHandler func(recovered interface{}, stack []byte)

// withStackRecover returns a panic recovery function that logs panic details
// including full stack trace. This provides comprehensive debugging information
// when goroutines panic during parallel hook fan-out (buildStart, buildEnd,
// watchChange, closeBundle) or other async operations.
//
// Example usage:
//
//	go func() {
//	    defer withStackRecover(logger)()
//	    // potentially panicking code
//	}()
//
// The returned function should be called with defer to ensure proper recovery.
func withStackRecover(logger Logger) func() {
	return func() {
		if r := recover(); r != nil {
			// Capture stack trace with reasonable buffer size
			buf := make([]byte, 64<<10) // 64KB should be sufficient for most cases
			n := runtime.Stack(buf, false)

			// Log the panic with full context
			logger.Error("Panic recovered in goroutine",
				"panic", r,
				"stack", string(buf[:n]))
		}
	}
}

// withCustomRecoveryHandler returns a panic recovery function that calls
// a custom handler when a panic occurs. The container's hook fan-out uses
// this to route panicking plugin hooks into MetricsRecoveryHandler instead
// of just logging. With a nil handler the panic is recovered and discarded.
//
// Example usage:
//
//	handler := MetricsRecoveryHandler(logger, recoveryMetrics, "buildStart")
//
//	go func() {
//	    defer withCustomRecoveryHandler(handler)()
//	    // potentially panicking plugin hook
//	}()
func withCustomRecoveryHandler(handler RecoveryHandler) func() {
	return func() {
		if r := recover(); r != nil {
			// Capture stack trace
			buf := make([]byte, 64<<10)
			n := runtime.Stack(buf, false)

			// Call custom handler with panic details
			if handler != nil {
				handler(r, buf[:n])
			}
		}
	}
}

// SafeGo executes a function in a new goroutine with automatic panic recovery.
// This is a convenience function that combines goroutine creation with panic
// recovery, reducing boilerplate code.
//
// Example usage:
//
//	SafeGo(logger, func() {
//	    // potentially panicking code
//	})
//
// If the function panics, the panic will be logged and the goroutine will
// terminate gracefully without crashing the application.
func SafeGo(logger Logger, fn func()) {
	go func() {
		defer withStackRecover(logger)()
		fn()
	}()
}

// SafeGoWithHandler executes a function in a new goroutine with custom panic
// recovery. runParallel uses this for every concurrently scheduled hook
// invocation so a panicking plugin is recorded on the container's
// RecoveryMetrics instead of only logged.
//
// Example usage:
//
//	handler := MetricsRecoveryHandler(logger, recoveryMetrics, "watchChange")
//	SafeGoWithHandler(handler, func() {
//	    // potentially panicking plugin hook
//	})
func SafeGoWithHandler(handler RecoveryHandler, fn func()) {
	go func() {
		defer withCustomRecoveryHandler(handler)()
		fn()
	}()
}

// RecoveryMetrics tracks panic recovery counts per component (e.g.
// "buildStart", "watchChange") for a PluginContainer's hook fan-out. It is
// safe for concurrent use since every parallel hook tier recovers on its own
// goroutine.
type RecoveryMetrics struct {
	mu sync.Mutex

	TotalPanicsRecovered int64            `json:"total_panics_recovered"`
	LastPanicTime        int64            `json:"last_panic_time_unix"`
	PanicsByComponent    map[string]int64 `json:"panics_by_component"`
}

// Snapshot returns a copy of the current counts, safe to read without
// racing concurrent recoveries.
func (m *RecoveryMetrics) Snapshot() RecoveryMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	byComponent := make(map[string]int64, len(m.PanicsByComponent))
	for k, v := range m.PanicsByComponent {
		byComponent[k] = v
	}
	return RecoveryMetrics{
		TotalPanicsRecovered: m.TotalPanicsRecovered,
		LastPanicTime:        m.LastPanicTime,
		PanicsByComponent:    byComponent,
	}
}

// MetricsRecoveryHandler creates a recovery handler that tracks panic counts
// on metrics, keyed by component, and logs each recovered panic. The
// container's hook fan-out (container_parallel.go) uses this to turn a
// panicking buildStart/watchChange/buildEnd/closeBundle handler into both a
// logged diagnostic and a countable metric instead of a crashed goroutine.
func MetricsRecoveryHandler(logger Logger, metrics *RecoveryMetrics, component string) RecoveryHandler {
	return func(recovered interface{}, stack []byte) {
		metrics.mu.Lock()
		metrics.TotalPanicsRecovered++
		metrics.LastPanicTime = time.Now().Unix()
		if metrics.PanicsByComponent == nil {
			metrics.PanicsByComponent = make(map[string]int64)
		}
		metrics.PanicsByComponent[component]++
		total := metrics.TotalPanicsRecovered
		metrics.mu.Unlock()

		logger.Error("Panic recovered with metrics tracking",
			"panic", recovered,
			"component", component,
			"total_panics", total,
			"stack", string(stack))
	}
}

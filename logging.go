// logging.go: Pluggable logging system with automatic adapter detection
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package devserver

import (
	"sync"
)

// Logger defines the pluggable logging interface used by the plugin
// container and the dev environment it runs over: resolveId/load/transform
// failures, watch-change broadcasts, and crawl-end firings are all logged
// through this interface rather than a concrete logging package.
//
// This interface enables callers to integrate any logging framework (zap,
// logrus, zerolog, the standard library's slog, or a custom logger) without
// this module depending on any of them directly. Callers provide their own
// Logger implementation; devserver ships only NoOpLogger and TestLogger.
//
// Example usage:
//
//	// wrap an existing structured logger
//	logger := devserver.NewLogger(myZapAdapter)
//	env := devserver.NewDevEnvironment("client", config, devserver.Setup{Logger: logger})
//
//	// or go straight to a silent logger for a short-lived tool
//	env := devserver.NewDevEnvironment("client", config, devserver.Setup{})
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, args ...any)

	// Info logs an info message with optional key-value pairs
	Info(msg string, args ...any)

	// Warn logs a warning message with optional key-value pairs
	Warn(msg string, args ...any)

	// Error logs an error message with optional key-value pairs
	Error(msg string, args ...any)

	// With returns a new logger with persistent context key-value pairs
	// The returned logger should include all provided context in subsequent log calls
	With(args ...any) Logger
}

// NewLogger adapts a caller-supplied logger into the Logger interface.
//
// Supported types:
//   - Logger interface: used directly
//   - nil: returns NoOpLogger for silent operation
//   - anything else: panics with a descriptive message, since a container
//     misconfigured at construction time should fail loudly rather than
//     silently drop plugin diagnostics
func NewLogger(logger any) Logger {
	switch l := logger.(type) {
	case Logger:
		return l // Already implements our interface
	case nil:
		return NewNoOpLogger() // Silent logger
	default:
		panic("unsupported logger type: expected Logger interface or nil")
	}
}

// NoOpLogger discards everything; it is the default for a PluginContainer or
// DevEnvironment constructed without an explicit Logger.
type NoOpLogger struct{}

// NewNoOpLogger creates a new no-operation logger.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

// Debug implements Logger interface (no-op)
func (n *NoOpLogger) Debug(msg string, args ...any) {}

// Info implements Logger interface (no-op)
func (n *NoOpLogger) Info(msg string, args ...any) {}

// Warn implements Logger interface (no-op)
func (n *NoOpLogger) Warn(msg string, args ...any) {}

// Error implements Logger interface (no-op)
func (n *NoOpLogger) Error(msg string, args ...any) {}

// With implements Logger interface (no-op)
func (n *NoOpLogger) With(args ...any) Logger {
	return n // Return same instance since it's stateless
}

// TestLogger captures every log call in order, for asserting on plugin
// hook diagnostics (e.g. "resolveId failed" warnings) in container and
// environment tests.
type TestLogger struct {
	mu       sync.RWMutex     `json:"-"`
	Messages []TestLogMessage `json:"messages"`
}

// TestLogMessage represents a captured log message for testing.
type TestLogMessage struct {
	Level   string
	Message string
	Args    []any
}

// NewTestLogger creates a new test logger.
func NewTestLogger() *TestLogger {
	return &TestLogger{
		Messages: make([]TestLogMessage, 0),
	}
}

// Debug implements Logger interface (captures message)
func (t *TestLogger) Debug(msg string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Messages = append(t.Messages, TestLogMessage{
		Level:   "DEBUG",
		Message: msg,
		Args:    args,
	})
}

// Info implements Logger interface (captures message)
func (t *TestLogger) Info(msg string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Messages = append(t.Messages, TestLogMessage{
		Level:   "INFO",
		Message: msg,
		Args:    args,
	})
}

// Warn implements Logger interface (captures message)
func (t *TestLogger) Warn(msg string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Messages = append(t.Messages, TestLogMessage{
		Level:   "WARN",
		Message: msg,
		Args:    args,
	})
}

// Error implements Logger interface (captures message)
func (t *TestLogger) Error(msg string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Messages = append(t.Messages, TestLogMessage{
		Level:   "ERROR",
		Message: msg,
		Args:    args,
	})
}

// With implements Logger interface: it returns a new TestLogger holding a
// copy of the captured messages; args are not recorded.
func (t *TestLogger) With(args ...any) Logger {
	// For testing, we don't need to implement context chaining
	// Return a new instance to avoid sharing state
	t.mu.RLock()
	messages := make([]TestLogMessage, len(t.Messages))
	copy(messages, t.Messages)
	t.mu.RUnlock()

	return &TestLogger{Messages: messages}
}

// HasMessage checks if the logger captured a message at the given level
// whose text equals message exactly.
func (t *TestLogger) HasMessage(level, message string) bool {
	for _, msg := range t.Messages {
		if msg.Level == level && msg.Message == message {
			return true
		}
	}
	return false
}

// Clear removes all captured messages.
func (t *TestLogger) Clear() {
	t.Messages = t.Messages[:0]
}

// DefaultLogger creates the container's default logger: a NoOpLogger.
// Callers that want plugin diagnostics surfaced must supply their own
// Logger via ContainerConfig/Setup.
func DefaultLogger() Logger {
	return NewNoOpLogger()
}

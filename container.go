// container.go: PluginContainer construction and the options fold
//
// Structurally modeled on the teacher's one-file-per-concern Manager split
// (construction in manager.go, execution in manager_execution.go,
// lifecycle in manager_lifecycle.go); the logic itself is new — see
// DESIGN.md.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package devserver

import (
	"sync"
	"sync/atomic"
)

// ContainerConfig configures a PluginContainer at construction time.
type ContainerConfig struct {
	Plugins []*Plugin
	Root    string
	Graph   ModuleGraph
	Logger  Logger
	// Recoverable controls whether hooks invoked after Close() still run
	// (true) or raise ClosedServer (false) — spec.md §4.5.7/§7, Open
	// Question 1.
	Recoverable bool
}

// PluginContainer is the hook driver: it computes options once, runs
// buildStart in parallel, drives resolveId/load as first-non-null,
// transform as an accumulating pipeline, routes watchChange, and
// implements quiescent close.
type PluginContainer struct {
	plugins         []*Plugin
	root            string
	graph           ModuleGraph
	pluginLog       Logger
	formatter       *ErrorFormatter
	recoverable     bool
	recoveryMetrics *RecoveryMetrics

	options atomic.Pointer[any]

	closed atomic.Bool

	hookWG   sync.WaitGroup
	inFlight sync.Map // map[string]struct{}, diagnostics only

	watchMu    sync.Mutex
	watchFiles map[string]struct{}

	buildEndOnce    sync.Once
	closeBundleOnce sync.Once
}

// NewPluginContainer constructs a container and folds the options hook
// over an initial nil options value, per spec.md §4.5.1.
func NewPluginContainer(cfg ContainerConfig) *PluginContainer {
	logger := cfg.Logger
	if logger == nil {
		logger = DefaultLogger()
	}

	c := &PluginContainer{
		plugins:         cfg.Plugins,
		root:            cfg.Root,
		graph:           cfg.Graph,
		pluginLog:       logger,
		formatter:       NewErrorFormatter(),
		recoverable:     cfg.Recoverable,
		recoveryMetrics: &RecoveryMetrics{},
		watchFiles:      make(map[string]struct{}),
	}

	c.foldOptions()
	return c
}

func (c *PluginContainer) logger() Logger {
	return c.pluginLog
}

// foldOptions runs every options hook in sorted order, sequentially, each
// on a minimal context with no active plugin. A nil/falsy return keeps the
// previous value.
func (c *PluginContainer) foldOptions() {
	var current any

	for _, entry := range sortedOptionsHooks(c.plugins) {
		if c.closed.Load() {
			current = nil
			break
		}
		result := entry.hook.Fn(current)
		if result != nil {
			current = result
		}
	}

	c.options.Store(&current)
}

// Options returns the folded options value computed at construction.
func (c *PluginContainer) Options() any {
	ptr := c.options.Load()
	if ptr == nil {
		return nil
	}
	return *ptr
}

// parse runs no JS/TS parser: it returns a placeholder Program node
// holding opts["sourceType"] and the unparsed code, and never fails. The
// container has no AST parser of its own and accepts none from callers.
func (c *PluginContainer) parse(code string, opts map[string]any) (any, error) {
	return map[string]any{"type": "Program", "sourceType": opts["sourceType"], "code": code}, nil
}

// recordWatchFile appends id to the container-wide, append-only watch set.
func (c *PluginContainer) recordWatchFile(id string) {
	c.watchMu.Lock()
	c.watchFiles[id] = struct{}{}
	c.watchMu.Unlock()
}

// watchFilesSnapshot returns a copy of the watch set.
func (c *PluginContainer) watchFilesSnapshot() []string {
	c.watchMu.Lock()
	defer c.watchMu.Unlock()
	out := make([]string, 0, len(c.watchFiles))
	for id := range c.watchFiles {
		out = append(out, id)
	}
	return out
}

// trackHook registers one asynchronous hook invocation for close-time
// draining (§4.5.8) and returns a settle function to call when it
// completes.
func (c *PluginContainer) trackHook(label string) func() {
	c.hookWG.Add(1)
	c.inFlight.Store(label, struct{}{})
	return func() {
		c.inFlight.Delete(label)
		c.hookWG.Done()
	}
}

// isClosed reports whether Close has run.
func (c *PluginContainer) isClosed() bool {
	return c.closed.Load()
}

// RecoveryMetrics returns a snapshot of panic counts recorded across every
// parallel hook tier (buildStart, watchChange, buildEnd, closeBundle).
func (c *PluginContainer) RecoveryMetrics() RecoveryMetrics {
	return c.recoveryMetrics.Snapshot()
}

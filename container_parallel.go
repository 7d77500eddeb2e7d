// container_parallel.go: buildStart/buildEnd/watchChange/closeBundle fan-out
//
// Plain goroutines + sync.WaitGroup, matching the teacher's own preference
// for hand-rolled wait-group/mutex concurrency over adding a
// synchronization dependency — see DESIGN.md and SPEC_FULL.md §5.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package devserver

import (
	stderrors "errors"
	"runtime"
	"sync"
)

// runParallel drives a batch of handlers, each on its own goroutine,
// honoring Sequential barriers: a sequential handler awaits every
// previously scheduled handler, runs to completion, then the driver
// resumes scheduling the rest (§4.5.2). component labels panics recorded on
// metrics (e.g. "buildStart", "watchChange") so RecoveryMetrics can break
// panic counts down by hook tier.
func runParallel(logger Logger, metrics *RecoveryMetrics, component string, run func(emit func(sequential bool, fn func() error))) []error {
	var (
		mu      sync.Mutex
		errs    []error
		wg      sync.WaitGroup
		barrier sync.WaitGroup
	)

	emit := func(sequential bool, fn func() error) {
		if sequential {
			wg.Wait()
			barrier.Add(1)
			func() {
				defer barrier.Done()
				if err := runRecovered(logger, metrics, component, fn); err != nil {
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
				}
			}()
			return
		}

		barrier.Wait()
		wg.Add(1)
		handler := MetricsRecoveryHandler(logger, metrics, component)
		SafeGoWithHandler(handler, func() {
			defer wg.Done()
			if err := runRecovered(logger, metrics, component, fn); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		})
	}

	run(emit)
	wg.Wait()
	barrier.Wait()

	return errs
}

// runRecovered runs fn, converting a panic into a recorded metric plus a log
// line rather than letting it cross the caller's goroutine boundary. It is
// the inner recovery layer; SafeGoWithHandler above is the outer backstop in
// case a panic occurs before this defer is installed.
func runRecovered(logger Logger, metrics *RecoveryMetrics, component string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 64<<10)
			n := runtime.Stack(buf, false)
			MetricsRecoveryHandler(logger, metrics, component)(r, buf[:n])
		}
	}()
	return fn()
}

// buildStart runs buildStart in parallel across every plugin that defines
// it, per §4.5.2.
func (c *PluginContainer) buildStart() error {
	settle := c.trackHook("buildStart")
	defer settle()

	errs := runParallel(c.logger(), c.recoveryMetrics, "buildStart", func(emit func(sequential bool, fn func() error)) {
		for _, entry := range sortedBuildStartHooks(c.plugins) {
			entry := entry
			emit(entry.hook.Sequential, func() error {
				ctx := newPluginContext(c, entry.plugin)
				return entry.hook.Fn(ctx)
			})
		}
	})

	return stderrors.Join(errs...)
}

// watchChange runs watchChange in parallel on a single shared context; no
// result aggregation, exceptions propagate (§4.5.6).
func (c *PluginContainer) watchChange(id string, change ChangeEvent) error {
	settle := c.trackHook("watchChange:" + id)
	defer settle()

	shared := newPluginContext(c, nil)

	errs := runParallel(c.logger(), c.recoveryMetrics, "watchChange", func(emit func(sequential bool, fn func() error)) {
		for _, entry := range sortedWatchChangeHooks(c.plugins) {
			entry := entry
			emit(entry.hook.Sequential, func() error {
				return entry.hook.Fn(shared, id, change)
			})
		}
	})

	return stderrors.Join(errs...)
}

// runBuildEnd runs buildEnd in parallel exactly once per plugin that defines
// it, per §4.5.7/§8 invariant 7.
func (c *PluginContainer) runBuildEnd(buildErr error) error {
	var out error
	c.buildEndOnce.Do(func() {
		errs := runParallel(c.logger(), c.recoveryMetrics, "buildEnd", func(emit func(sequential bool, fn func() error)) {
			for _, entry := range sortedBuildEndHooks(c.plugins) {
				entry := entry
				emit(entry.hook.Sequential, func() error {
					ctx := newPluginContext(c, entry.plugin)
					return entry.hook.Fn(ctx, buildErr)
				})
			}
		})
		out = stderrors.Join(errs...)
	})
	return out
}

// runCloseBundle runs closeBundle in parallel exactly once per plugin that
// defines it, after buildEnd fully drains.
func (c *PluginContainer) runCloseBundle() error {
	var out error
	c.closeBundleOnce.Do(func() {
		errs := runParallel(c.logger(), c.recoveryMetrics, "closeBundle", func(emit func(sequential bool, fn func() error)) {
			for _, entry := range sortedCloseBundleHooks(c.plugins) {
				entry := entry
				emit(entry.hook.Sequential, func() error {
					ctx := newPluginContext(c, entry.plugin)
					return entry.hook.Fn(ctx)
				})
			}
		})
		out = stderrors.Join(errs...)
	})
	return out
}

// container_close.go: quiescent container close
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package devserver

import stderrors "errors"

// BuildStart runs buildStart in parallel across all plugins that define
// it. Called externally exactly once per build, per spec.md §4.5.2.
func (c *PluginContainer) BuildStart() error {
	return c.buildStart()
}

// ResolveID is the public entry point for resolveId, constructing a fresh
// top-level PluginContext (no active plugin) for re-entrant use outside of
// an existing hook chain.
func (c *PluginContainer) ResolveID(id, importer string, opts ResolveIDOptions) (*ResolveIDResult, error) {
	ctx := newPluginContext(c, nil)
	return c.resolveID(ctx, id, importer, opts)
}

// Load is the public entry point for load.
func (c *PluginContainer) Load(id string, opts LoadOptions) (*LoadResult, error) {
	ctx := newPluginContext(c, nil)
	return c.load(ctx, id, opts)
}

// Transform is the public entry point for the transform pipeline.
func (c *PluginContainer) Transform(code, id string, opts TransformOptions) (*TransformResult, error) {
	return c.transform(code, id, opts)
}

// WatchChange is the public entry point for watchChange.
func (c *PluginContainer) WatchChange(id string, change ChangeEvent) error {
	return c.watchChange(id, change)
}

// Close is idempotent: it sets the closed flag, awaits every in-flight
// hook invocation tracked via trackHook, then runs buildEnd followed by
// closeBundle, each phase fully draining before the next (§4.5.7). Both
// phases always run regardless of the other's outcome — a closeBundle
// plugin's finalizer is never skipped because an unrelated buildEnd
// plugin failed — and any errors from either phase are joined and
// surfaced to the caller rather than swallowed.
func (c *PluginContainer) Close(buildErr error) error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	c.hookWG.Wait()

	buildEndErr := c.runBuildEnd(buildErr)
	if buildEndErr != nil {
		c.logger().Error("buildEnd handler failed", "error", buildEndErr)
	}

	closeBundleErr := c.runCloseBundle()
	if closeBundleErr != nil {
		c.logger().Error("closeBundle handler failed", "error", closeBundleErr)
	}

	return stderrors.Join(buildEndErr, closeBundleErr)
}

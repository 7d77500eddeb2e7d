// container_load.go: load as first-non-null, with added-imports bookkeeping
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package devserver

// load iterates plugins in sorted order and returns the first non-nil
// result. Whether or not a plugin handled the load, the calling context's
// added imports (from addWatchFile) are recorded onto the module node so a
// subsequent transform inherits them, per spec.md §4.5.4.
func (c *PluginContainer) load(ctx *PluginContext, id string, opts LoadOptions) (*LoadResult, error) {
	if c.isClosed() && !c.recoverable {
		return nil, NewClosedServerError("load")
	}

	settle := c.trackHook("load:" + id)
	defer settle()

	hookCtx := newPluginContext(c, nil)

	var result *LoadResult
	for _, entry := range sortedLoadHooks(c.plugins) {
		hookCtx.activePlugin = entry.plugin
		r, err := entry.hook.Fn(hookCtx, id, opts)
		if err != nil {
			return nil, NewLoadFailedError(id, err)
		}
		if r == nil {
			continue
		}
		result = r
		break
	}

	c.recordLoadAddedImports(id, hookCtx)

	return result, nil
}

// recordLoadAddedImports implements _updateModuleLoadAddedImports: it
// copies the context's added-import set onto the corresponding module
// node regardless of whether a plugin actually handled the load.
func (c *PluginContainer) recordLoadAddedImports(id string, ctx *PluginContext) {
	if c.graph == nil {
		return
	}
	node := c.graph.GetModuleByID(id)
	if node == nil {
		return
	}
	for _, imp := range ctx.AddedImports() {
		node.RecordAddedImport(imp)
	}
}

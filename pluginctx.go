// pluginctx.go: per-invocation plugin context ("this" for hook handlers)
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package devserver

import (
	"sync"
)

// PluginContext is the value exposed to every hook invocation. A fresh
// PluginContext is constructed per hook call; none of its state is shared
// across concurrent hook chains, per spec.md §9's per-invocation-identity
// design note.
type PluginContext struct {
	container *PluginContainer

	activePlugin *Plugin
	activeID     string
	activeCode   string
	ssr          bool

	mu           sync.Mutex
	skip         map[string]bool
	addedImports map[string]struct{}
	watchFiles   map[string]struct{}

	// transformCtx is set when this PluginContext is the embedded base of a
	// TransformContext, letting ErrorFormatter.Format detect "a transform is
	// active" (§4.4 rule 4) without a type assertion on the embedding.
	transformCtx *TransformContext
}

// newPluginContext constructs a context scoped to one hook invocation for
// the given active plugin.
func newPluginContext(container *PluginContainer, active *Plugin) *PluginContext {
	return &PluginContext{
		container: container,
		activePlugin: active,
	}
}

func (c *PluginContext) pluginName() string {
	if c.activePlugin == nil {
		return ""
	}
	return c.activePlugin.Name
}

// Parse returns the container's placeholder parse result (see
// PluginContainer.parse); touches no plugin state.
func (c *PluginContext) Parse(code string, opts map[string]any) (any, error) {
	return c.container.parse(code, opts)
}

// Resolve re-enters the container's resolveId with a skip set that,
// unless skipSelf is explicitly false, includes the currently active
// plugin plus any previously accumulated skips — the skip-self recursion
// guard (§4.2, §8 invariant 4).
func (c *PluginContext) Resolve(id, importer string, opts ResolveIDOptions, skipSelf bool) (*ResolveIDResult, error) {
	c.mu.Lock()
	skip := make(map[string]bool, len(c.skip)+1)
	for k := range c.skip {
		skip[k] = true
	}
	if skipSelf && c.activePlugin != nil {
		skip[c.activePlugin.Name] = true
	}
	for k := range opts.Skip {
		skip[k] = true
	}
	c.mu.Unlock()

	opts.Skip = skip
	return c.container.resolveID(c, id, importer, opts)
}

// Load ensures the module is in the graph, calls the container's load
// hook, and — only if the load produced code — runs transform on the
// result, returning the guarded ModuleInfo view. Fails with
// ModuleInfoMissing if the graph cannot produce a node for id.
func (c *PluginContext) Load(id string, opts LoadOptions) (*ModuleInfo, error) {
	graph := c.container.graph
	if graph == nil {
		return nil, NewModuleInfoMissingError(id)
	}

	node, err := graph.EnsureEntryFromURL(id)
	if err != nil || node == nil {
		return nil, NewModuleInfoMissingError(id)
	}

	loadResult, err := c.container.load(c, id, opts)
	if err != nil {
		return nil, err
	}

	code := ""
	hadCode := false
	var meta map[string]any
	if loadResult != nil {
		if loadResult.Code != "" {
			code = loadResult.Code
			hadCode = true
		}
		meta = loadResult.Meta
	}
	node.MergeMeta(meta)

	for _, imp := range c.AddedImports() {
		node.RecordAddedImport(imp)
	}

	if hadCode {
		result, err := c.container.transform(code, id, TransformOptions{SSR: opts.SSR})
		if err != nil {
			return nil, err
		}
		if result.Code != nil {
			code = *result.Code
		}
	}

	info := &ModuleInfo{
		ID:   id,
		Code: stringPtr(code),
		Meta: node.Meta,
	}
	node.SetInfo(info)
	return info, nil
}

func stringPtr(s string) *string { return &s }

// GetModuleInfo returns the guarded module-info view or nil if absent.
func (c *PluginContext) GetModuleInfo(id string) *ModuleInfo {
	if c.container.graph == nil {
		return nil
	}
	node := c.container.graph.GetModuleByID(id)
	if node == nil {
		return nil
	}
	return node.Info
}

// GetModuleIds returns all known module ids; empty if no graph is
// attached.
func (c *PluginContext) GetModuleIds() []string {
	if c.container.graph == nil {
		return nil
	}
	return c.container.graph.IDs()
}

// AddWatchFile records id in both the container-wide watch set and this
// context's added-import set. It does not notify any file watcher.
func (c *PluginContext) AddWatchFile(id string) {
	c.mu.Lock()
	if c.addedImports == nil {
		c.addedImports = make(map[string]struct{})
	}
	c.addedImports[id] = struct{}{}
	c.mu.Unlock()

	c.container.recordWatchFile(id)
}

// AddedImports returns a snapshot of ids added via AddWatchFile on this
// context.
func (c *PluginContext) AddedImports() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.addedImports))
	for id := range c.addedImports {
		out = append(out, id)
	}
	return out
}

// GetWatchFiles returns a snapshot of the container-wide watch set.
func (c *PluginContext) GetWatchFiles() []string {
	return c.container.watchFilesSnapshot()
}

// EmitFile always surfaces a warning naming the active plugin and returns
// an empty id; production-build-only operations are unsupported in serve
// mode (§4.2, §1 non-goals).
func (c *PluginContext) EmitFile(_ map[string]any) string {
	c.warnUnsupported("emitFile")
	return ""
}

// SetAssetSource always surfaces a warning; unsupported in serve mode.
func (c *PluginContext) SetAssetSource(_ string, _ any) {
	c.warnUnsupported("setAssetSource")
}

// GetFileName always surfaces a warning and returns an empty id;
// unsupported in serve mode.
func (c *PluginContext) GetFileName(_ string) string {
	c.warnUnsupported("getFileName")
	return ""
}

func (c *PluginContext) warnUnsupported(method string) {
	err := NewUnsupportedContextMethodError(method, c.pluginName())
	c.container.logger().Warn(err.Error(), "plugin", c.pluginName(), "method", method)
}

// Warn formats e via the ErrorFormatter and emits a warning line; it never
// throws.
func (c *PluginContext) Warn(e any, pos *Position) {
	formatted := c.container.formatter.Format(c, e, pos)
	c.container.logger().Warn(formatted.Message, "plugin", formatted.Plugin, "id", formatted.ID)
}

// Error formats e via the ErrorFormatter and returns it as a PluginError
// whose context holds the plugin, the id, the code the active transform
// received ("pluginCode", when set) and, when a location was computed, the
// location ("loc") and code frame ("frame"); callers are expected to
// propagate it as the hook's fatal error.
func (c *PluginContext) Error(e any, pos *Position) error {
	formatted := c.container.formatter.Format(c, e, pos)
	perr := NewPluginError(formatted.Cause, formatted.Plugin, formatted.ID)
	if formatted.Code != "" {
		perr = perr.WithContext("pluginCode", formatted.Code)
	}
	if formatted.Loc != nil {
		perr = perr.WithContext("loc", *formatted.Loc).WithContext("frame", formatted.Loc.Frame)
	}
	return perr
}

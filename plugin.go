// plugin.go: Plugin record and hook field types
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package devserver

// Plugin is a user-supplied record of hooks driven by the container in the
// Rollup-compatible protocol. Every hook field is optional; a Plugin that
// sets none of them is valid but inert.
type Plugin struct {
	Name string

	Options     *OptionsHook
	BuildStart  *BuildStartHook
	ResolveID   *ResolveIDHook
	Load        *LoadHook
	Transform   *TransformHook
	WatchChange *WatchChangeHook
	BuildEnd    *BuildEndHook
	CloseBundle *CloseBundleHook
}

// OptionsHook folds an arbitrary options value through a plugin; a nil
// return means "keep the previous value" per the fold rule in §4.5.1.
type OptionsHook struct {
	Order HookOrder
	Fn    func(opts any) any
}

// BuildStartHook runs once per build in parallel across all plugins that
// define it.
type BuildStartHook struct {
	Order      HookOrder
	Sequential bool
	Fn         func(ctx *PluginContext) error
}

// ResolveIDHook resolves a raw import id; the container uses the first
// non-nil result in sorted order.
type ResolveIDHook struct {
	Order HookOrder
	Fn    func(ctx *PluginContext, id, importer string, opts ResolveIDOptions) (*ResolveIDResult, error)
}

// LoadHook loads a module's source; the container uses the first non-nil
// result in sorted order.
type LoadHook struct {
	Order HookOrder
	Fn    func(ctx *PluginContext, id string, opts LoadOptions) (*LoadResult, error)
}

// TransformHook participates in the accumulating transform pipeline: each
// plugin observes the previous plugin's code and may replace it.
type TransformHook struct {
	Order HookOrder
	Fn    func(ctx *TransformContext, code, id string, opts TransformOptions) (*TransformResult, error)
}

// WatchChangeHook is broadcast in parallel with no result aggregation.
type WatchChangeHook struct {
	Order      HookOrder
	Sequential bool
	Fn         func(ctx *PluginContext, id string, change ChangeEvent) error
}

// BuildEndHook runs once per build, in parallel, after the hook-promise set
// drains during close.
type BuildEndHook struct {
	Order      HookOrder
	Sequential bool
	Fn         func(ctx *PluginContext, buildErr error) error
}

// CloseBundleHook runs once per close, in parallel, after buildEnd fully
// drains.
type CloseBundleHook struct {
	Order      HookOrder
	Sequential bool
	Fn         func(ctx *PluginContext) error
}

// Transform is a constructor helper producing a default-order,
// non-sequential TransformHook from a bare function — the Go rendering of
// the bare-function hook-field form.
func Transform(fn func(ctx *TransformContext, code, id string, opts TransformOptions) (*TransformResult, error)) *TransformHook {
	return &TransformHook{Order: OrderDefault, Fn: fn}
}

// ResolveID is the bare-function constructor helper for a ResolveIDHook.
func ResolveID(fn func(ctx *PluginContext, id, importer string, opts ResolveIDOptions) (*ResolveIDResult, error)) *ResolveIDHook {
	return &ResolveIDHook{Order: OrderDefault, Fn: fn}
}

// Load is the bare-function constructor helper for a LoadHook.
func Load(fn func(ctx *PluginContext, id string, opts LoadOptions) (*LoadResult, error)) *LoadHook {
	return &LoadHook{Order: OrderDefault, Fn: fn}
}

// BuildStart is the bare-function constructor helper for a BuildStartHook.
func BuildStart(fn func(ctx *PluginContext) error) *BuildStartHook {
	return &BuildStartHook{Order: OrderDefault, Fn: fn}
}

// BuildEnd is the bare-function constructor helper for a BuildEndHook.
func BuildEnd(fn func(ctx *PluginContext, buildErr error) error) *BuildEndHook {
	return &BuildEndHook{Order: OrderDefault, Fn: fn}
}

// CloseBundle is the bare-function constructor helper for a
// CloseBundleHook.
func CloseBundle(fn func(ctx *PluginContext) error) *CloseBundleHook {
	return &CloseBundleHook{Order: OrderDefault, Fn: fn}
}

// WatchChange is the bare-function constructor helper for a
// WatchChangeHook.
func WatchChange(fn func(ctx *PluginContext, id string, change ChangeEvent) error) *WatchChangeHook {
	return &WatchChangeHook{Order: OrderDefault, Fn: fn}
}

// Pre marks a hook handler to run before the default tier. It accepts any
// of the pointer hook types and returns it with Order set to OrderPre.
func Pre[H interface{ setOrder(HookOrder) }](h H) H {
	h.setOrder(OrderPre)
	return h
}

// Post marks a hook handler to run after the default tier.
func Post[H interface{ setOrder(HookOrder) }](h H) H {
	h.setOrder(OrderPost)
	return h
}

func (h *OptionsHook) setOrder(o HookOrder)     { h.Order = o }
func (h *BuildStartHook) setOrder(o HookOrder)  { h.Order = o }
func (h *ResolveIDHook) setOrder(o HookOrder)   { h.Order = o }
func (h *LoadHook) setOrder(o HookOrder)        { h.Order = o }
func (h *TransformHook) setOrder(o HookOrder)   { h.Order = o }
func (h *WatchChangeHook) setOrder(o HookOrder) { h.Order = o }
func (h *BuildEndHook) setOrder(o HookOrder)    { h.Order = o }
func (h *CloseBundleHook) setOrder(o HookOrder) { h.Order = o }

// Sequential marks any parallel-hook handler so the container awaits all
// previously scheduled handlers before running it and blocks subsequent
// scheduling until it returns, per §4.5.2.
func Sequential[H interface{ setSequential(bool) }](h H) H {
	h.setSequential(true)
	return h
}

func (h *BuildStartHook) setSequential(v bool)  { h.Sequential = v }
func (h *WatchChangeHook) setSequential(v bool) { h.Sequential = v }
func (h *BuildEndHook) setSequential(v bool)    { h.Sequential = v }
func (h *CloseBundleHook) setSequential(v bool) { h.Sequential = v }

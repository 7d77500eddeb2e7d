// transformctx.go: TransformContext, the PluginContext extension active
// during a transform pipeline run
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package devserver

// TransformContext extends PluginContext with the fields specific to a
// transform invocation: the filename and original code being transformed,
// and the accumulating source-map chain (spec.md §4.2).
type TransformContext struct {
	*PluginContext

	Filename     string
	OriginalCode string

	sourcemapChain *SourceMapChain
}

// newTransformContext constructs a TransformContext for one transform
// call, inheriting any added-imports recorded by a prior load on the same
// module node (spec.md §9 "added-imports inheritance").
func newTransformContext(container *PluginContainer, id, code string, inherited []string) *TransformContext {
	base := newPluginContext(container, nil)
	tc := &TransformContext{
		PluginContext:  base,
		Filename:       id,
		OriginalCode:   code,
		sourcemapChain: NewSourceMapChain(id, code),
	}
	base.transformCtx = tc

	if len(inherited) > 0 {
		base.mu.Lock()
		base.addedImports = make(map[string]struct{}, len(inherited))
		for _, imp := range inherited {
			base.addedImports[imp] = struct{}{}
		}
		base.mu.Unlock()
	}

	return tc
}

// pushMap appends one plugin-produced intermediate source map onto the
// chain.
func (tc *TransformContext) pushMap(m *SourceMapDefinition) {
	tc.sourcemapChain.Push(m)
}

// GetCombinedSourcemap always returns a real map, synthesizing an identity
// map from the original code when the chain has collapsed to nothing
// meaningful (§4.3, §8 invariant 6).
func (tc *TransformContext) GetCombinedSourcemap() *SourceMapDefinition {
	return tc.sourcemapChain.GetCombinedSourcemap()
}

// combinedForReturn is used by the container when building the final
// TransformResult: unlike GetCombinedSourcemap, it returns the raw
// collapsed value (which may be the empty sentinel) per §4.5.5's "the
// final returned map may be the empty sentinel" rule.
func (tc *TransformContext) combinedForReturn() *SourceMapDefinition {
	return tc.sourcemapChain.Combine()
}

// remapLocation points loc at the original source: it replaces loc.File
// with the first source of the combined source map. loc.Line and
// loc.Column are not remapped; they stay as computed against the code the
// failing hook received. If the combined map is nil, the empty sentinel,
// or has no sources, loc is left unchanged.
func (tc *TransformContext) remapLocation(loc *Loc) {
	combined := tc.sourcemapChain.Combine()
	// Re-push what Combine consumed so a later GetCombinedSourcemap call
	// still sees the chain; Combine is destructive by contract (§4.3).
	if combined != nil {
		tc.sourcemapChain.Push(combined)
	}

	if combined == nil || combined.IsEmptySentinel() || len(combined.Sources) == 0 {
		return
	}

	// No mappings are decoded here; only the file is replaced.
	loc.File = combined.Sources[0]
}

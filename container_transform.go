// container_transform.go: transform as an accumulating pipeline
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package devserver

// transform constructs a TransformContext and runs every plugin's
// transform hook in sorted order, each observing the previous plugin's
// code, accumulating source maps onto the chain, per spec.md §4.5.5.
func (c *PluginContainer) transform(code, id string, opts TransformOptions) (*TransformResult, error) {
	if c.isClosed() && !c.recoverable {
		return nil, NewClosedServerError("transform")
	}

	settle := c.trackHook("transform:" + id)
	defer settle()

	var inherited []string
	if c.graph != nil {
		if node := c.graph.GetModuleByID(id); node != nil {
			inherited = node.AddedImports()
		}
	}

	tc := newTransformContext(c, id, code, inherited)
	meta := map[string]any{}

	for _, entry := range sortedTransformHooks(c.plugins) {
		tc.activePlugin = entry.plugin
		tc.activeID = id
		tc.activeCode = code
		tc.ssr = opts.SSR

		result, err := entry.hook.Fn(tc, code, id, opts)
		if err != nil {
			return nil, tc.Error(err, nil)
		}
		if result == nil {
			continue
		}
		if result.Code != nil {
			code = *result.Code
		}
		if result.Map != nil {
			tc.pushMap(result.Map)
		}
		for k, v := range result.Meta {
			meta[k] = v
		}
	}

	if c.graph != nil {
		if node := c.graph.GetModuleByID(id); node != nil {
			node.MergeMeta(meta)
		}
	}

	return &TransformResult{
		Code: &code,
		Map:  tc.combinedForReturn(),
		Meta: meta,
	}, nil
}

// container_resolve.go: resolveId as first-non-null, sorted, skip-aware
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package devserver

import (
	"net/url"
	"path"
)

// resolveID iterates plugins in sorted order, skipping any plugin named in
// opts.Skip, and returns the first non-nil result. Default importer is the
// project root joined with index.html per spec.md §4.5.3.
func (c *PluginContainer) resolveID(parentCtx *PluginContext, rawID, importer string, opts ResolveIDOptions) (*ResolveIDResult, error) {
	if c.isClosed() && !c.recoverable {
		return nil, NewClosedServerError("resolveId")
	}

	if importer == "" {
		importer = path.Join(c.root, "index.html")
	}

	settle := c.trackHook("resolveId:" + rawID)
	defer settle()

	for _, entry := range sortedResolveIDHooks(c.plugins) {
		if opts.Skip[entry.plugin.Name] {
			continue
		}

		ctx := newPluginContext(c, entry.plugin)
		result, err := entry.hook.Fn(ctx, rawID, importer, opts)
		if err != nil {
			return nil, NewResolveIDFailedError(rawID, importer, err)
		}
		if result == nil {
			continue
		}

		result.ID = normalizeResolvedID(result.ID, c.root)
		return result, nil
	}

	return nil, nil
}

// normalizeResolvedID keeps external URL schemes as-is and applies path
// normalization to everything else, per spec.md §4.5.3.
func normalizeResolvedID(id, root string) string {
	if u, err := url.Parse(id); err == nil && u.Scheme != "" {
		return id
	}
	if path.IsAbs(id) {
		return path.Clean(id)
	}
	return path.Clean(path.Join(root, id))
}

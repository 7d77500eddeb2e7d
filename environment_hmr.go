// environment_hmr.go: hmr-invalidate listener and the importer-update walk
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package devserver

// wireHMR subscribes to hmr-invalidate events on the environment's hot
// channel. For each event naming a self-accepting module with a positive
// last HMR timestamp that has not already received an invalidation for
// this wave, it marks the module invalidated and walks its importers
// (spec.md §4.6, scenario F).
func (e *DevEnvironment) wireHMR() {
	e.hotChannel.On("hmr-invalidate", func(payload any) {
		p, ok := asInvalidatePayload(payload)
		if !ok {
			return
		}
		e.handleInvalidate(p)
	})
}

func asInvalidatePayload(payload any) (InvalidatePayload, bool) {
	switch v := payload.(type) {
	case InvalidatePayload:
		return v, true
	case *InvalidatePayload:
		if v == nil {
			return InvalidatePayload{}, false
		}
		return *v, true
	default:
		return InvalidatePayload{}, false
	}
}

func (e *DevEnvironment) handleInvalidate(p InvalidatePayload) {
	node := e.graph.ModuleByURL(p.Path)
	if node == nil {
		return
	}
	if !node.IsSelfAccepting || node.LastHMRTimestamp <= 0 {
		return
	}
	if !node.MarkInvalidated() {
		return
	}

	e.logger().Warn("hmr invalidate", "path", p.Path, "message", p.Message)

	importers := make([]*ModuleNode, 0, len(node.Importers))
	for importer := range node.Importers {
		importers = append(importers, importer)
	}
	e.updateModules(importers, node.LastHMRTimestamp)
}

// updateModules is the importer-update routine referenced by spec.md
// §4.6: propagating an invalidation wave's timestamp to a module's
// importers. Building and sending the actual HMR update payload to
// connected clients is a runner concern out of scope per spec.md §1; this
// records the wave on each importer so a subsequent request observes it.
func (e *DevEnvironment) updateModules(importers []*ModuleNode, timestamp int64) {
	for _, importer := range importers {
		importer.LastHMRTimestamp = timestamp
	}
}

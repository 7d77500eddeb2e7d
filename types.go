// types.go: Common data types and structures for the plugin container
//
// This file contains the shared data type definitions used throughout the
// plugin container and the environment it runs over. The separation of
// these types from the interface and driver definitions improves code
// organization and maintainability.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package devserver

import (
	"sync"
)

// HookOrder controls where a plugin's hook handler runs relative to the
// default tier. Plugins with OrderPre run first, OrderDefault in the
// middle, OrderPost last; order is stable within a tier.
type HookOrder int

const (
	OrderDefault HookOrder = iota
	OrderPre
	OrderPost
)

// String returns a human-readable representation of the hook order.
func (o HookOrder) String() string {
	switch o {
	case OrderPre:
		return "pre"
	case OrderPost:
		return "post"
	default:
		return "default"
	}
}

// ResolveIDOptions carries the extra attributes passed alongside a raw id
// and importer into every resolveId handler.
type ResolveIDOptions struct {
	Attributes map[string]string
	Custom     map[string]any
	IsEntry    bool
	SSR        bool
	Scan       bool
	// Skip names plugins that must not be re-entered for this call, used to
	// implement the skip-self recursion guard described for PluginContext.resolve.
	Skip map[string]bool
}

// ResolveIDResult is the normalized outcome of a resolveId call: either nil
// (no plugin resolved the id) or a populated record.
type ResolveIDResult struct {
	ID             string
	External       bool
	Meta           map[string]any
	ModuleSideEffects any
}

// LoadOptions carries the extra attributes passed into a load handler.
type LoadOptions struct {
	SSR bool
}

// LoadResult is the normalized outcome of a load call.
type LoadResult struct {
	Code string
	Map  *SourceMapDefinition
	Meta map[string]any
}

// TransformOptions carries the extra attributes passed into a transform
// handler.
type TransformOptions struct {
	SSR bool
}

// TransformResult is the outcome of running the transform pipeline over a
// module's code: the final code and the collapsed source map, which may be
// the sentinel empty map or nil.
//
// Code is a pointer, mirroring ModuleInfo.Code, so a plugin can distinguish
// "left code unset" (nil, previous code carries forward) from "replaced code
// with the empty string" (non-nil, pointing at "") — spec.md §4.5.5.
type TransformResult struct {
	Code *string
	Map  *SourceMapDefinition
	Meta map[string]any
}

// SourceMapDefinition models a JSON source map, including the two
// non-map sentinel states the chain must distinguish: a nil pointer stands
// for "no map at all"; a non-nil value with Mappings == "" and no other
// field set stands for the deliberate "empty map" sentinel.
type SourceMapDefinition struct {
	Version        int      `json:"version,omitempty"`
	File           string   `json:"file,omitempty"`
	SourceRoot     string   `json:"sourceRoot,omitempty"`
	Sources        []string `json:"sources,omitempty"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names,omitempty"`
	Mappings       string   `json:"mappings"`
}

// IsEmptySentinel reports whether m is the deliberate "{mappings: ''}"
// sentinel rather than a real, if minimal, source map.
func (m *SourceMapDefinition) IsEmptySentinel() bool {
	if m == nil {
		return false
	}
	return m.Mappings == "" && m.Version == 0 && len(m.Sources) == 0 && len(m.Names) == 0
}

// EmptySourceMapSentinel constructs the "{mappings: ''}" sentinel value.
func EmptySourceMapSentinel() *SourceMapDefinition {
	return &SourceMapDefinition{Mappings: ""}
}

// ModuleNode is a single entry in the module graph, carrying the fields the
// container and environment read or mutate directly.
type ModuleNode struct {
	mu sync.Mutex

	URL  string
	ID   string
	File string

	Info *ModuleInfo
	Meta map[string]any

	IsSelfAccepting             bool
	LastHMRTimestamp            int64
	LastHMRInvalidationReceived bool

	Importers map[*ModuleNode]struct{}

	// addedImports carries watch-file/addWatchFile additions registered
	// during load so a subsequent transform on the same node inherits them.
	addedImports map[string]struct{}
}

// NewModuleNode creates an empty node for the given url/id pair.
func NewModuleNode(url, id string) *ModuleNode {
	return &ModuleNode{
		URL:       url,
		ID:        id,
		Importers: make(map[*ModuleNode]struct{}),
	}
}

// SetInfo installs the guarded ModuleInfo view under the node's lock.
func (n *ModuleNode) SetInfo(info *ModuleInfo) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Info = info
}

// MergeMeta merges additional metadata into the node's meta map.
func (n *ModuleNode) MergeMeta(meta map[string]any) {
	if len(meta) == 0 {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Meta == nil {
		n.Meta = make(map[string]any)
	}
	for k, v := range meta {
		n.Meta[k] = v
	}
}

// AddedImports returns a snapshot of the ids registered via addWatchFile
// during a load on this node.
func (n *ModuleNode) AddedImports() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.addedImports))
	for id := range n.addedImports {
		out = append(out, id)
	}
	return out
}

// RecordAddedImport appends id to the node's added-imports side table.
func (n *ModuleNode) RecordAddedImport(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.addedImports == nil {
		n.addedImports = make(map[string]struct{})
	}
	n.addedImports[id] = struct{}{}
}

// MarkInvalidated sets LastHMRInvalidationReceived, returning false if it
// was already set (the invalidate-guard invariant).
func (n *ModuleNode) MarkInvalidated() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.LastHMRInvalidationReceived {
		return false
	}
	n.LastHMRInvalidationReceived = true
	return true
}

// ModuleInfo is the guarded, closed view of a module node exposed to plugin
// hooks in place of the node itself. Only the fields below are readable;
// any other key access is a deliberate failure rather than a silent nil.
type ModuleInfo struct {
	ID           string
	Code         *string
	Meta         map[string]any
	IsEntry      bool
	IsExternal   bool
	ImportedIDs  []string
	ImporterIDs  []string
}

// Field implements the closed accessor described for ModuleInfo guarding:
// named keys resolve to a value and true; anything else resolves to
// (nil, false) rather than panicking or falling through to reflection.
func (m *ModuleInfo) Field(name string) (any, bool) {
	if m == nil {
		return nil, false
	}
	switch name {
	case "id":
		return m.ID, true
	case "code":
		return m.Code, true
	case "meta":
		return m.Meta, true
	case "isEntry":
		return m.IsEntry, true
	case "isExternal":
		return m.IsExternal, true
	case "importedIds":
		return m.ImportedIDs, true
	case "importerIds":
		return m.ImporterIDs, true
	default:
		return nil, false
	}
}

// PendingRequest tracks one in-flight transformRequest so close() can await
// and abort outstanding work.
type PendingRequest struct {
	Done      chan struct{}
	Timestamp int64
	Abort     func()

	once sync.Once
	err  error
}

// NewPendingRequest creates a pending request with its Done channel armed.
func NewPendingRequest(timestamp int64, abort func()) *PendingRequest {
	return &PendingRequest{
		Done:      make(chan struct{}),
		Timestamp: timestamp,
		Abort:     abort,
	}
}

// Settle closes Done exactly once, recording err for later inspection.
func (p *PendingRequest) Settle(err error) {
	p.once.Do(func() {
		p.err = err
		close(p.Done)
	})
}

// Err returns the error the request settled with, if any.
func (p *PendingRequest) Err() error {
	return p.err
}

// ChangeEvent describes one watcher-observed file change delivered to the
// watchChange hook.
type ChangeEvent struct {
	Path string
	Kind ChangeKind
}

// ChangeKind enumerates the watcher event kinds the container forwards.
type ChangeKind string

const (
	ChangeCreate ChangeKind = "create"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// InvalidatePayload is the payload carried by an hmr-invalidate hot-channel
// event.
type InvalidatePayload struct {
	Path    string
	Message string
}

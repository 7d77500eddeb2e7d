// depsoptimizer.go: DepsOptimizer interface and selection factory
//
// The switch-on-config selection shape is grounded on factory.go's
// UnifiedPluginFactory.CreatePlugin dispatch; here it dispatches on the
// spec.md §4.6 condition table instead of transport type — see DESIGN.md.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package devserver

import (
	"context"
	"sync"
)

// OptimizerMetadata describes the current state of a deps optimizer.
type OptimizerMetadata struct {
	Discovered []string
	Optimized  []string
}

// DepsOptimizer is the interface the environment consumes (spec.md §6).
type DepsOptimizer interface {
	Metadata() OptimizerMetadata
	RegisterMissingImport(id string)
	Close(ctx context.Context) error
}

// NoOptimizer is selected when discovery is disabled and no deps are
// explicitly included.
type NoOptimizer struct{}

func (NoOptimizer) Metadata() OptimizerMetadata       { return OptimizerMetadata{} }
func (NoOptimizer) RegisterMissingImport(id string)   {}
func (NoOptimizer) Close(ctx context.Context) error   { return nil }

// ExplicitOnlyOptimizer only tracks the explicitly configured include
// list; it never auto-discovers missing imports.
type ExplicitOnlyOptimizer struct {
	mu        sync.Mutex
	optimized map[string]struct{}
}

// NewExplicitOnlyOptimizer constructs an optimizer seeded with include.
func NewExplicitOnlyOptimizer(include []string) *ExplicitOnlyOptimizer {
	o := &ExplicitOnlyOptimizer{optimized: make(map[string]struct{}, len(include))}
	for _, id := range include {
		o.optimized[id] = struct{}{}
	}
	return o
}

func (o *ExplicitOnlyOptimizer) Metadata() OptimizerMetadata {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, 0, len(o.optimized))
	for id := range o.optimized {
		out = append(out, id)
	}
	return OptimizerMetadata{Optimized: out}
}

// RegisterMissingImport is a no-op: explicit-only optimizers never
// auto-discover.
func (o *ExplicitOnlyOptimizer) RegisterMissingImport(id string) {}

func (o *ExplicitOnlyOptimizer) Close(ctx context.Context) error { return nil }

// AutoDiscoveryOptimizer tracks both the explicitly configured include
// list and any import ids discovered at runtime via
// RegisterMissingImport.
type AutoDiscoveryOptimizer struct {
	mu          sync.Mutex
	optimized   map[string]struct{}
	discovered  map[string]struct{}
}

// NewAutoDiscoveryOptimizer constructs an optimizer seeded with include.
func NewAutoDiscoveryOptimizer(include []string) *AutoDiscoveryOptimizer {
	o := &AutoDiscoveryOptimizer{
		optimized:  make(map[string]struct{}, len(include)),
		discovered: make(map[string]struct{}),
	}
	for _, id := range include {
		o.optimized[id] = struct{}{}
	}
	return o
}

func (o *AutoDiscoveryOptimizer) Metadata() OptimizerMetadata {
	o.mu.Lock()
	defer o.mu.Unlock()

	optimized := make([]string, 0, len(o.optimized))
	for id := range o.optimized {
		optimized = append(optimized, id)
	}
	discovered := make([]string, 0, len(o.discovered))
	for id := range o.discovered {
		discovered = append(discovered, id)
	}
	return OptimizerMetadata{Optimized: optimized, Discovered: discovered}
}

// RegisterMissingImport records id as discovered, making it a candidate
// for a future re-optimization pass. A caller whose in-flight transform
// depends on an id the optimizer later invalidates should observe
// OutdatedOptimizedDep; this type only does the bookkeeping half of that
// contract.
func (o *AutoDiscoveryOptimizer) RegisterMissingImport(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.discovered[id] = struct{}{}
}

func (o *AutoDiscoveryOptimizer) Close(ctx context.Context) error { return nil }

// selectDepsOptimizer implements the condition table in spec.md §4.6:
// caller-provided optimizer wins outright; else no-discovery-and-empty-
// include means none; else a client environment with discovery enabled
// gets full auto-discovery; else explicit-only.
func selectDepsOptimizer(environmentName string, provided DepsOptimizer, opts OptimizeDepsOptions) DepsOptimizer {
	if provided != nil {
		return provided
	}
	if opts.NoDiscovery && len(opts.Include) == 0 {
		return NoOptimizer{}
	}
	if environmentName == "client" && !opts.NoDiscovery {
		return NewAutoDiscoveryOptimizer(opts.Include)
	}
	return NewExplicitOnlyOptimizer(opts.Include)
}

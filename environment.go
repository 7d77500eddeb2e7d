// environment.go: DevEnvironment construction and request-facing operations
//
// DevEnvironment plays the owner role the teacher gives its
// PluginRegistry in manager.go: it lazily builds the container, holds
// the long-lived collaborators (module graph, hot channel, deps
// optimizer, crawl-end finder), and exposes the request-facing
// operations above the container — see DESIGN.md.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package devserver

import (
	"sync"
	"sync/atomic"

	"github.com/agilira/go-timecache"
)

// Setup bundles the caller-supplied collaborators for a DevEnvironment:
// the hot channel (nil selects a noop channel), plugin list, logger, an
// optional externally-provided deps optimizer (spec.md §4.6), and a
// construction-time Recoverable override.
type Setup struct {
	Plugins       []*Plugin
	HotChannel    HotChannel
	Logger        Logger
	DepsOptimizer DepsOptimizer
	Recoverable   bool
}

// DevEnvironment is a named, independent execution scope binding a
// resolved configuration, a module graph, a hot channel, and the plugin
// container built over them.
type DevEnvironment struct {
	name   string
	config ResolvedConfig
	setup  Setup

	graph      ModuleGraph
	hotChannel HotChannel
	optimizer  DepsOptimizer
	crawlEnd   *CrawlEndFinder

	pending sync.Map // id -> *PendingRequest

	mu        sync.Mutex
	container *PluginContainer
	initOnce  sync.Once
	closing   atomic.Bool
}

// NewDevEnvironment constructs a DevEnvironment. Construction alone does
// not build the container; call Init for that (spec.md §4.6 describes
// init as idempotent and separate from construction).
func NewDevEnvironment(name string, config ResolvedConfig, setup Setup) *DevEnvironment {
	if name == "" {
		name = "client"
	}

	hotChannel := setup.HotChannel
	if hotChannel == nil {
		hotChannel = NewNoopHotChannel()
	}

	env := &DevEnvironment{
		name:       name,
		config:     config,
		setup:      setup,
		graph:      NewModuleGraph(),
		hotChannel: hotChannel,
		crawlEnd:   NewCrawlEndFinder(),
	}
	env.optimizer = selectDepsOptimizer(name, setup.DepsOptimizer, config.OptimizeDeps)
	env.wireHMR()
	return env
}

func (e *DevEnvironment) logger() Logger {
	if e.setup.Logger != nil {
		return e.setup.Logger
	}
	if e.config.Logger != nil {
		return e.config.Logger
	}
	return DefaultLogger()
}

// Init builds the plugin container over the environment's plugin list.
// Idempotent: the second and subsequent calls are no-ops.
func (e *DevEnvironment) Init() error {
	var initErr error
	e.initOnce.Do(func() {
		e.mu.Lock()
		defer e.mu.Unlock()

		e.container = NewPluginContainer(ContainerConfig{
			Plugins:     e.setup.Plugins,
			Root:        e.config.Root,
			Graph:       e.graph,
			Logger:      e.logger(),
			Recoverable: e.config.Dev.Recoverable || e.setup.Recoverable,
		})
		initErr = e.container.BuildStart()
	})
	return initErr
}

// FetchModule resolves and loads a module by id, delegating to the
// container's resolveId/load pair. importer may be empty.
func (e *DevEnvironment) FetchModule(id, importer string) (*LoadResult, error) {
	if err := e.Init(); err != nil {
		return nil, err
	}

	resolved, err := e.container.ResolveID(id, importer, ResolveIDOptions{})
	if err != nil {
		return nil, err
	}
	resolvedID := id
	if resolved != nil && resolved.ID != "" {
		resolvedID = resolved.ID
	}

	return e.container.Load(resolvedID, LoadOptions{})
}

// TransformRequest runs the full resolveId -> load -> transform pipeline
// for url, registering the request with the crawl-end finder so an
// initial wave of requests can be observed quiescing.
func (e *DevEnvironment) TransformRequest(url string) (*TransformResult, error) {
	if err := e.Init(); err != nil {
		return nil, err
	}
	if e.closing.Load() && !e.config.Dev.Recoverable {
		return nil, NewClosedServerError("transformRequest")
	}

	var result *TransformResult
	var resultErr error

	pending := NewPendingRequest(timecache.CachedTimeNano(), func() {})
	e.pending.Store(url, pending)

	run := func() error {
		defer func() {
			e.pending.Delete(url)
			pending.Settle(resultErr)
		}()

		node, err := e.graph.EnsureEntryFromURL(url)
		if err != nil {
			resultErr = err
			return err
		}

		resolved, err := e.container.ResolveID(url, "", ResolveIDOptions{IsEntry: true})
		if err != nil {
			resultErr = err
			return err
		}
		resolvedID := url
		if resolved != nil && resolved.ID != "" {
			resolvedID = resolved.ID
		}

		loaded, err := e.container.Load(resolvedID, LoadOptions{})
		if err != nil {
			resultErr = err
			return err
		}
		if loaded == nil {
			resultErr = NewModuleInfoMissingError(resolvedID)
			return resultErr
		}

		transformed, err := e.container.Transform(loaded.Code, resolvedID, TransformOptions{})
		if err != nil {
			resultErr = err
			return err
		}

		node.SetInfo(&ModuleInfo{ID: resolvedID, Code: transformed.Code})
		node.MergeMeta(transformed.Meta)
		node.LastHMRTimestamp = timecache.CachedTimeNano()

		result = transformed
		return nil
	}

	// The crawl-end finder registers each url only once, so the pipeline
	// runs here unconditionally and the finder only waits for it to settle.
	e.crawlEnd.RegisterRequestProcessing(url, func() error {
		<-pending.Done
		return nil
	})
	_ = run()
	return result, resultErr
}

// WarmupRequest is a best-effort TransformRequest: ClosedServer and
// OutdatedOptimizedDep are expected outcomes and are swallowed; every
// other error is logged but not re-thrown (spec.md §4.6, §7).
func (e *DevEnvironment) WarmupRequest(url string) {
	_, err := e.TransformRequest(url)
	if err == nil {
		return
	}
	if IsClosedServer(err) || IsOutdatedOptimizedDep(err) {
		return
	}
	e.logger().Warn("warmup request failed", "url", url, "error", err)
}

// WaitForRequestsIdle delegates to the crawl-end finder (spec.md §4.7).
func (e *DevEnvironment) WaitForRequestsIdle(ignoredID string) (CrawlEndResult, error) {
	return e.crawlEnd.WaitForRequestsIdle(ignoredID)
}

// ApplyDevOptions replaces the environment's DevOptions; DevOptionsWatcher
// calls it when the backing config file changes. See DevOptions for which
// of the fields take effect after Init.
func (e *DevEnvironment) ApplyDevOptions(opts DevOptions) {
	e.mu.Lock()
	e.config.Dev = opts
	e.mu.Unlock()
}

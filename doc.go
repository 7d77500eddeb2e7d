// Package devserver implements the per-environment plugin container at the
// heart of a development-mode build/serve tool: a coordinator that drives a
// sorted pipeline of user-supplied plugins through a Rollup-compatible hook
// protocol (options, buildStart, resolveId, load, transform, watchChange,
// buildEnd, closeBundle) and couples it with a crawl-idle detector that
// signals when the initial wave of transformed requests has quiesced.
//
// Key Features:
//   - Deterministic hook ordering (pre / default / post) with stable
//     first-non-null, accumulating, and parallel aggregation rules
//   - Per-invocation plugin context identity — no shared "current plugin"
//     state to race under concurrent hook chains
//   - Composable source-map chaining with sentinel-empty-map semantics
//   - Error enrichment with plugin attribution, source location, and code
//     frames, remapped through the source-map chain inside a transform
//   - Quiescent container close: drains in-flight hook work before running
//     buildEnd then closeBundle
//   - A crawl-end finder that debounces bursts of chained transforms before
//     declaring the initial crawl idle
//
// Basic Usage:
//
//	container := devserver.NewPluginContainer(devserver.ContainerConfig{
//		Plugins: []*devserver.Plugin{
//			{
//				Name: "json",
//				Transform: devserver.Transform(func(ctx *devserver.TransformContext, code, id string, opts devserver.TransformOptions) (*devserver.TransformResult, error) {
//					if !strings.HasSuffix(id, ".json") {
//						return nil, nil
//					}
//					wrapped := wrapJSON(code)
//					return &devserver.TransformResult{Code: &wrapped}, nil
//				}),
//			},
//		},
//		Root: "/srv/app",
//	})
//
//	env := devserver.NewDevEnvironment("client", config, setup)
//	if err := env.Init(); err != nil {
//		log.Fatal(err)
//	}
//	result, err := env.TransformRequest("/src/main.js")
//
// Configuration:
// Dev options can be loaded from a caller-supplied JSON or YAML file and
// reloaded when it changes via DevOptionsWatcher; see config.go and
// config_watcher.go.
//
// Copyright (c) 2025 AGILira - A. Giordano
// SPDX-License-Identifier: MPL-2.0
package devserver

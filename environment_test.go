// environment_test.go: DevEnvironment request pipeline and HMR invalidation
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package devserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEnvironment(t *testing.T, plugins []*Plugin) *DevEnvironment {
	t.Helper()
	config := DefaultResolvedConfig("/root")
	config.Logger = NewNoOpLogger()
	return NewDevEnvironment("client", config, Setup{Plugins: plugins, Logger: NewNoOpLogger()})
}

func TestDevEnvironment_TransformRequestRunsPipeline(t *testing.T) {
	plugin := &Plugin{
		Name: "echo",
		ResolveID: ResolveID(func(ctx *PluginContext, id, importer string, opts ResolveIDOptions) (*ResolveIDResult, error) {
			return &ResolveIDResult{ID: id}, nil
		}),
		Load: Load(func(ctx *PluginContext, id string, opts LoadOptions) (*LoadResult, error) {
			return &LoadResult{Code: "source"}, nil
		}),
		Transform: Transform(func(ctx *TransformContext, code, id string, opts TransformOptions) (*TransformResult, error) {
			transformed := code + "-transformed"
			return &TransformResult{Code: &transformed}, nil
		}),
	}

	env := newTestEnvironment(t, []*Plugin{plugin})
	result, err := env.TransformRequest("/entry.js")

	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotNil(t, result.Code)
	assert.Equal(t, "source-transformed", *result.Code)
}

func TestDevEnvironment_WarmupSwallowsClosedServer(t *testing.T) {
	env := newTestEnvironment(t, nil)
	require.NoError(t, env.Close(context.Background()))

	assert.NotPanics(t, func() {
		env.WarmupRequest("/entry.js")
	})
}

func TestDevEnvironment_InvalidateSelfAcceptingModule(t *testing.T) {
	hotChannel := NewLocalHotChannel()
	env := NewDevEnvironment("client", DefaultResolvedConfig("/root"), Setup{HotChannel: hotChannel, Logger: NewNoOpLogger()})

	node, err := env.graph.EnsureEntryFromURL("/m.js")
	require.NoError(t, err)
	node.IsSelfAccepting = true
	node.LastHMRTimestamp = 100

	importer, err := env.graph.EnsureEntryFromURL("/importer.js")
	require.NoError(t, err)
	env.graph.(*InMemoryModuleGraph).RegisterImporter(node, importer)

	require.NoError(t, hotChannel.Emit("hmr-invalidate", InvalidatePayload{Path: "/m.js"}))

	assert.True(t, node.LastHMRInvalidationReceived)
	assert.Equal(t, int64(100), importer.LastHMRTimestamp)

	// Second emit for the same wave is a no-op: timestamp stays unchanged.
	node.LastHMRTimestamp = 200
	require.NoError(t, hotChannel.Emit("hmr-invalidate", InvalidatePayload{Path: "/m.js"}))
	assert.Equal(t, int64(100), importer.LastHMRTimestamp)
}

func TestDevEnvironment_CloseIsIdempotent(t *testing.T) {
	env := newTestEnvironment(t, nil)
	require.NoError(t, env.Close(context.Background()))
	require.NoError(t, env.Close(context.Background()))
}

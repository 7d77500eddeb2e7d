// container_test.go: hook ordering, short-circuit, accumulation, and close
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package devserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContainer(t *testing.T, plugins []*Plugin) *PluginContainer {
	t.Helper()
	return NewPluginContainer(ContainerConfig{
		Plugins: plugins,
		Root:    "/root",
		Graph:   NewModuleGraph(),
		Logger:  NewNoOpLogger(),
	})
}

func TestContainer_HookOrdering(t *testing.T) {
	var order []string

	makePlugin := func(name string, order2 HookOrder) *Plugin {
		return &Plugin{
			Name: name,
			BuildStart: &BuildStartHook{
				Order: order2,
				// Non-sequential buildStart handlers run concurrently, so
				// only sequential ones have an observable invocation order.
				Sequential: true,
				Fn: func(ctx *PluginContext) error {
					order = append(order, name)
					return nil
				},
			},
		}
	}

	a := makePlugin("A", OrderPre)
	b := makePlugin("B", OrderDefault)
	c := makePlugin("C", OrderPost)

	container := newTestContainer(t, []*Plugin{c, a, b})
	require.NoError(t, container.BuildStart())

	assert.Equal(t, []string{"A", "B", "C"}, order)
}

func TestContainer_ResolveIDShortCircuit(t *testing.T) {
	var calledC bool

	p1 := &Plugin{
		Name: "p1",
		ResolveID: ResolveID(func(ctx *PluginContext, id, importer string, opts ResolveIDOptions) (*ResolveIDResult, error) {
			return nil, nil
		}),
	}
	p2 := &Plugin{
		Name: "p2",
		ResolveID: ResolveID(func(ctx *PluginContext, id, importer string, opts ResolveIDOptions) (*ResolveIDResult, error) {
			return &ResolveIDResult{ID: "/abs/a.js"}, nil
		}),
	}
	p3 := &Plugin{
		Name: "p3",
		ResolveID: ResolveID(func(ctx *PluginContext, id, importer string, opts ResolveIDOptions) (*ResolveIDResult, error) {
			calledC = true
			return &ResolveIDResult{ID: "/abs/b.js"}, nil
		}),
	}

	container := newTestContainer(t, []*Plugin{p1, p2, p3})
	result, err := container.ResolveID("a", "", ResolveIDOptions{})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "/abs/a.js", result.ID)
	assert.False(t, calledC, "p3.resolveId must not be invoked once p2 short-circuits")
}

func TestContainer_TransformAccumulates(t *testing.T) {
	var seenByP2 string

	p1 := &Plugin{
		Name: "p1",
		Transform: Transform(func(ctx *TransformContext, code, id string, opts TransformOptions) (*TransformResult, error) {
			return &TransformResult{Code: stringPtr("Y")}, nil
		}),
	}
	p2 := &Plugin{
		Name: "p2",
		Transform: Transform(func(ctx *TransformContext, code, id string, opts TransformOptions) (*TransformResult, error) {
			seenByP2 = code
			return &TransformResult{Code: stringPtr("Z")}, nil
		}),
	}

	container := newTestContainer(t, []*Plugin{p1, p2})
	result, err := container.Transform("X", "/f.js", TransformOptions{})

	require.NoError(t, err)
	assert.Equal(t, "Y", seenByP2)
	require.NotNil(t, result.Code)
	assert.Equal(t, "Z", *result.Code)
}

func TestContainer_TransformSourceMapSentinelFinal(t *testing.T) {
	p1 := &Plugin{
		Name: "p1",
		Transform: Transform(func(ctx *TransformContext, code, id string, opts TransformOptions) (*TransformResult, error) {
			return &TransformResult{Code: stringPtr(code), Map: nil}, nil
		}),
	}
	p2 := &Plugin{
		Name: "p2",
		Transform: Transform(func(ctx *TransformContext, code, id string, opts TransformOptions) (*TransformResult, error) {
			return &TransformResult{Code: stringPtr(code), Map: EmptySourceMapSentinel()}, nil
		}),
	}

	container := newTestContainer(t, []*Plugin{p1, p2})
	result, err := container.Transform("X", "/f.js", TransformOptions{})

	require.NoError(t, err)
	require.NotNil(t, result.Map)
	assert.True(t, result.Map.IsEmptySentinel())
}

func TestContainer_ClosedRejectsNewWork(t *testing.T) {
	container := newTestContainer(t, nil)
	require.NoError(t, container.Close(nil))

	_, err := container.ResolveID("a", "", ResolveIDOptions{})
	require.Error(t, err)
	assert.True(t, IsClosedServer(err))
}

func TestContainer_CloseRunsBuildEndAndCloseBundleExactlyOnce(t *testing.T) {
	var buildEndCalls, closeBundleCalls int

	p := &Plugin{
		Name: "p",
		BuildEnd: &BuildEndHook{
			Fn: func(ctx *PluginContext, buildErr error) error {
				buildEndCalls++
				return nil
			},
		},
		CloseBundle: &CloseBundleHook{
			Fn: func(ctx *PluginContext) error {
				closeBundleCalls++
				return nil
			},
		},
	}

	container := newTestContainer(t, []*Plugin{p})
	require.NoError(t, container.Close(nil))
	require.NoError(t, container.Close(nil))

	assert.Equal(t, 1, buildEndCalls)
	assert.Equal(t, 1, closeBundleCalls)
}

func TestContainer_RecoverableAllowsWorkAfterClose(t *testing.T) {
	container := NewPluginContainer(ContainerConfig{
		Root:        "/root",
		Graph:       NewModuleGraph(),
		Logger:      NewNoOpLogger(),
		Recoverable: true,
	})
	require.NoError(t, container.Close(nil))

	_, err := container.ResolveID("a", "", ResolveIDOptions{})
	assert.NoError(t, err)
}

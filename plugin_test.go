// plugin_test.go: hook-field constructors and order/sequential wrappers
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package devserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransform_DefaultsToOrderDefault(t *testing.T) {
	hook := Transform(func(ctx *TransformContext, code, id string, opts TransformOptions) (*TransformResult, error) {
		return nil, nil
	})
	assert.Equal(t, OrderDefault, hook.Order)
}

func TestPre_SetsOrderPre(t *testing.T) {
	hook := Pre(ResolveID(func(ctx *PluginContext, id, importer string, opts ResolveIDOptions) (*ResolveIDResult, error) {
		return nil, nil
	}))
	assert.Equal(t, OrderPre, hook.Order)
}

func TestPost_SetsOrderPost(t *testing.T) {
	hook := Post(Load(func(ctx *PluginContext, id string, opts LoadOptions) (*LoadResult, error) {
		return nil, nil
	}))
	assert.Equal(t, OrderPost, hook.Order)
}

func TestSequential_SetsSequentialTrueOnBuildStart(t *testing.T) {
	hook := Sequential(BuildStart(func(ctx *PluginContext) error { return nil }))
	assert.True(t, hook.Sequential)
}

func TestSequential_SetsSequentialTrueOnCloseBundle(t *testing.T) {
	hook := Sequential(CloseBundle(func(ctx *PluginContext) error { return nil }))
	assert.True(t, hook.Sequential)
}

func TestPreAndSequential_ComposeOnWatchChange(t *testing.T) {
	hook := Pre(Sequential(WatchChange(func(ctx *PluginContext, id string, change ChangeEvent) error {
		return nil
	})))
	assert.Equal(t, OrderPre, hook.Order)
	assert.True(t, hook.Sequential)
}

func TestBuildEnd_BareConstructorDefaultsOrder(t *testing.T) {
	hook := BuildEnd(func(ctx *PluginContext, buildErr error) error { return nil })
	assert.Equal(t, OrderDefault, hook.Order)
	assert.False(t, hook.Sequential)
}

// config_test.go: resolved configuration defaults and validation
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package devserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDevOptions_Has50msDebounce(t *testing.T) {
	opts := DefaultDevOptions()
	assert.Equal(t, 50*time.Millisecond, opts.CrawlEndDebounce)
	assert.Empty(t, opts.WarmupEntries)
}

func TestDevOptions_ValidateRejectsNegativeDebounce(t *testing.T) {
	opts := DevOptions{CrawlEndDebounce: -1}
	require.Error(t, opts.Validate())
}

func TestDevOptions_ValidateAcceptsZeroDebounce(t *testing.T) {
	opts := DevOptions{}
	require.NoError(t, opts.Validate())
}

func TestResolvedConfig_ValidateDefaultsModeToDev(t *testing.T) {
	cfg := ResolvedConfig{Root: "/project"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "dev", cfg.Mode)
}

func TestResolvedConfig_ValidateRejectsEmptyRoot(t *testing.T) {
	cfg := ResolvedConfig{}
	require.Error(t, cfg.Validate())
}

func TestDefaultResolvedConfig_WiresDefaultsTogether(t *testing.T) {
	cfg := DefaultResolvedConfig("/project")
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "/project", cfg.Root)
	assert.NotNil(t, cfg.Logger)
	assert.NotEmpty(t, cfg.Resolve.MainFields)
}

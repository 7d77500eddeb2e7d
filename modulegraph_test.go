// modulegraph_test.go: in-memory module graph
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

func TestModuleGraph_EnsureEntryFromURLIsIdempotent(t *testing.T) {
	graph := NewModuleGraph()

	first, err := graph.EnsureEntryFromURL("/a.js")
	require.NoError(t, err)

	second, err := graph.EnsureEntryFromURL("/a.js")
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestModuleGraph_RegisterImporterLinksNodes(t *testing.T) {
	graph := NewModuleGraph()

	node, err := graph.EnsureEntryFromURL("/m.js")
	require.NoError(t, err)
	importer, err := graph.EnsureEntryFromURL("/importer.js")
	require.NoError(t, err)

	graph.RegisterImporter(node, importer)

	_, ok := node.Importers[importer]
	assert.True(t, ok)
}

func TestModuleGraph_IDsReflectsCreatedNodes(t *testing.T) {
	graph := NewModuleGraph()
	_, _ = graph.EnsureEntryFromURL("/a.js")
	_, _ = graph.EnsureEntryFromURL("/b.js")

	ids := graph.IDs()
	assert.Len(t, ids, 2)
	assert.Contains(t, ids, "/a.js")
	assert.Contains(t, ids, "/b.js")
}

func TestModuleNode_MarkInvalidatedGuard(t *testing.T) {
	node := NewModuleNode("/m.js", "/m.js")

	assert.True(t, node.MarkInvalidated())
	assert.False(t, node.MarkInvalidated(), "a second invalidation for the same wave must be a no-op")
}

// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fragindex_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cogentcore.org/configurator/fragindex"
	"cogentcore.org/configurator/viewer"
	"cogentcore.org/configurator/viewer/memviewer"
	"cogentcore.org/configurator/viewer/memviewer/memtest"
)

func loadChair(t *testing.T) *memviewer.Model {
	t.Helper()
	v := memtest.NewViewer(t, memviewer.Options{Order: memviewer.OrderGeometryFirst})
	ready := make(chan struct{}, 1)
	v.AddEventListener(viewer.ObjectTreeCreated, func(e viewer.Event) { ready <- struct{}{} })
	m, err := v.LoadModel(context.Background(), "chair.yaml", viewer.LoadOptions{})
	require.NoError(t, err)
	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		t.Fatal("chair did not load")
	}
	return m.(*memviewer.Model)
}

func TestBuildResolve(t *testing.T) {
	m := loadChair(t)
	tree, _ := m.ObjectTree()
	ix := fragindex.Build(tree)
	assert.Equal(t, 7, ix.Len())
	assert.Equal(t, []string{"chair", "seat", "cushion", "back", "legs", "leg", "armrest"}, ix.Names())

	legs := ix.Resolve("LEG")
	require.Len(t, legs, 4)
	for i := 1; i < len(legs); i++ {
		assert.Less(t, legs[i-1], legs[i], "tree order")
	}
	assert.Equal(t, []viewer.NodeID{m.FindNode("Seat")}, ix.Resolve("seat"))
	assert.Nil(t, ix.Resolve("Ottoman"))
	assert.Same(t, tree, ix.Tree())
}

func TestExpandToFragments(t *testing.T) {
	m := loadChair(t)
	tree, _ := m.ObjectTree()
	ix := fragindex.Build(tree)
	seat := m.FindNode("Seat")
	cushion := m.FindNode("Cushion")

	assert.Equal(t, []viewer.FragmentID{0, 1}, ix.ExpandToFragments([]viewer.NodeID{seat}))
	assert.Equal(t, []viewer.FragmentID{0, 1}, ix.ExpandToFragments([]viewer.NodeID{seat, cushion}))
	assert.Len(t, ix.ResolveFragments("legs"), 4)
	assert.Len(t, ix.ResolveFragments("leg"), 4)
	assert.Len(t, ix.ResolveFragments("armrest"), 2)
	assert.Len(t, ix.ResolveFragments("chair"), 9)
	assert.Empty(t, ix.ResolveFragments("ottoman"))

	m.SetNodeOff(cushion, true)
	assert.Equal(t, []viewer.FragmentID{0}, ix.ExpandToFragments([]viewer.NodeID{seat}))

	// a hidden node's own fragments are skipped but its children are still visited
	m.SetNodeOff(cushion, false)
	m.SetNodeOff(seat, true)
	assert.Equal(t, []viewer.FragmentID{1}, ix.ExpandToFragments([]viewer.NodeID{seat}))
}

func TestSuggest(t *testing.T) {
	m := loadChair(t)
	tree, _ := m.ObjectTree()
	ix := fragindex.Build(tree)
	assert.Equal(t, "armrest", ix.Suggest("Armrst"))
	assert.Equal(t, "legs", ix.Suggest("lgs"))
	assert.Equal(t, "", ix.Suggest("xyzzy"))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "top panel", fragindex.Key("Top PANEL"))
}

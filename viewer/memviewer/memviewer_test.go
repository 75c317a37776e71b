// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memviewer_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cogentcore.org/configurator/math32"
	"cogentcore.org/configurator/viewer"
	"cogentcore.org/configurator/viewer/memviewer"
	"cogentcore.org/configurator/viewer/memviewer/memtest"
)

// recorder records load events in delivery order.
type recorder struct {
	mu     sync.Mutex
	events []viewer.Event
	ch     chan viewer.Event
}

func record(v viewer.Viewer) *recorder {
	r := &recorder{ch: make(chan viewer.Event, 64)}
	for _, typ := range []viewer.EventTypes{viewer.GeometryLoaded, viewer.ObjectTreeCreated, viewer.LoadFailed} {
		v.AddEventListener(typ, func(e viewer.Event) {
			r.mu.Lock()
			r.events = append(r.events, e)
			r.mu.Unlock()
			r.ch <- e
		})
	}
	return r
}

func (r *recorder) next(t *testing.T) viewer.Event {
	t.Helper()
	select {
	case e := <-r.ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for viewer event")
	}
	return viewer.Event{}
}

func load(t *testing.T, v *memviewer.Viewer, ref string, opts viewer.LoadOptions) *memviewer.Model {
	t.Helper()
	r := record(v)
	m, err := v.LoadModel(context.Background(), ref, opts)
	require.NoError(t, err)
	r.next(t)
	r.next(t)
	return m.(*memviewer.Model)
}

func TestLoadEventOrder(t *testing.T) {
	for _, tc := range []struct {
		order memviewer.EventOrders
		first viewer.EventTypes
	}{
		{memviewer.OrderGeometryFirst, viewer.GeometryLoaded},
		{memviewer.OrderTreeFirst, viewer.ObjectTreeCreated},
	} {
		v := memtest.NewViewer(t, memviewer.Options{Order: tc.order})
		r := record(v)
		_, err := v.LoadModel(context.Background(), "chair.yaml", viewer.LoadOptions{Key: "k1"})
		require.NoError(t, err)
		e1 := r.next(t)
		e2 := r.next(t)
		assert.Equal(t, tc.first, e1.Type)
		assert.NotEqual(t, e1.Type, e2.Type)
		assert.Equal(t, "k1", e1.Key)
		assert.Equal(t, "k1", e2.Key)
	}
}

func TestNotInitialized(t *testing.T) {
	v := memviewer.New(memtest.FS(), memviewer.Options{})
	assert.False(t, v.Initialized())
	_, err := v.LoadModel(context.Background(), "chair.yaml", viewer.LoadOptions{})
	assert.ErrorIs(t, err, viewer.ErrNotInitialized)
	_, err = v.Screenshot(10, 10)
	assert.ErrorIs(t, err, viewer.ErrNotInitialized)
}

func TestLoadFailed(t *testing.T) {
	v := memtest.NewViewer(t, memviewer.Options{})
	for _, ref := range []string{"missing.yaml", "broken.yaml", ""} {
		r := record(v)
		_, err := v.LoadModel(context.Background(), ref, viewer.LoadOptions{Key: ref})
		require.NoError(t, err)
		e := r.next(t)
		assert.Equal(t, viewer.LoadFailed, e.Type, ref)
		assert.Error(t, e.Err, ref)
	}
}

func TestHold(t *testing.T) {
	v := memtest.NewViewer(t, memviewer.Options{})
	release := v.Hold("table.yaml")
	r := record(v)
	m, err := v.LoadModel(context.Background(), "table.yaml", viewer.LoadOptions{})
	require.NoError(t, err)
	_, ok := m.ObjectTree()
	assert.False(t, ok)
	select {
	case <-r.ch:
		t.Fatal("load completed while held")
	case <-time.After(20 * time.Millisecond):
	}
	release()
	release()
	r.next(t)
	r.next(t)
	_, ok = m.ObjectTree()
	assert.True(t, ok)
}

func TestObjectTree(t *testing.T) {
	v := memtest.NewViewer(t, memviewer.Options{})
	m := load(t, v, "chair.yaml", viewer.LoadOptions{})
	tree, ok := m.ObjectTree()
	require.True(t, ok)
	root := tree.RootID()
	assert.Equal(t, "Chair", tree.Name(root))
	kids := tree.Children(root)
	require.Len(t, kids, 4)
	assert.Equal(t, "Seat", tree.Name(kids[0]))
	assert.Equal(t, "Armrest", tree.Name(kids[3]))
	assert.Len(t, tree.Fragments(kids[3]), 2)
	assert.Len(t, tree.Children(m.FindNode("Legs")), 4)
	assert.Equal(t, viewer.NodeID(0), m.FindNode("Ottoman"))
	assert.Equal(t, "", tree.Name(99))
	assert.Nil(t, tree.Children(99))
}

func TestBoundingBox(t *testing.T) {
	v := memtest.NewViewer(t, memviewer.Options{})
	m := load(t, v, "block.json", viewer.LoadOptions{Position: math32.Vec3(100, 0, 0)})
	bb, err := m.BoundingBox()
	require.NoError(t, err)
	assert.Equal(t, math32.B3(100, 0, 0, 110, 20, 30), bb)

	v.SetPlacement(m, math32.Vector3{}, 90)
	bb, err = m.BoundingBox()
	require.NoError(t, err)
	assert.InDelta(t, -20, bb.Min.X, 1e-4)
	assert.InDelta(t, 0, bb.Max.X, 1e-4)
	assert.InDelta(t, 0, bb.Min.Y, 1e-4)
	assert.InDelta(t, 10, bb.Max.Y, 1e-4)
	assert.InDelta(t, 30, bb.Max.Z, 1e-4)

	v.UnloadModel(m)
	assert.True(t, m.Unloaded())
	_, err = m.BoundingBox()
	assert.ErrorIs(t, err, memviewer.ErrUnloaded)
	assert.Empty(t, v.Models())
}

func TestNodesOff(t *testing.T) {
	v := memtest.NewViewer(t, memviewer.Options{})
	m := load(t, v, "chair.yaml", viewer.LoadOptions{})
	full, err := m.BoundingBox()
	require.NoError(t, err)
	assert.Equal(t, math32.B3(-40, 0, 0, 540, 500, 900), full)

	arm := m.FindNode("Armrest")
	m.SetNodeOff(arm, true)
	assert.True(t, m.NodeOff(arm))
	bb, _ := m.BoundingBox()
	assert.Equal(t, math32.B3(0, 0, 0, 500, 500, 900), bb)

	// an off parent hides its children
	m.SetNodeOff(m.FindNode("Legs"), true)
	bb, _ = m.BoundingBox()
	assert.Equal(t, float32(400), bb.Min.Z)

	m.ResetNodesOff()
	bb, _ = m.BoundingBox()
	assert.Equal(t, full, bb)
}

func TestMaterials(t *testing.T) {
	v := memtest.NewViewer(t, memviewer.Options{})
	m := load(t, v, "chair.yaml", viewer.LoadOptions{})
	seat := m.FindNode("Seat")
	tree, _ := m.ObjectTree()
	frs := tree.Fragments(seat)
	require.Len(t, frs, 1)
	mt, ok := m.FragmentMaterial(frs[0])
	require.True(t, ok)
	assert.Equal(t, "fabric", mt.Name)
	assert.Equal(t, uint8(0x33), mt.Color.R)
	assert.Equal(t, "double", mt.Attrs["side"])

	mats := v.MaterialRegistry()
	nm := viewer.NewMaterial("red")
	mats.Add("red", nm)
	mats.Add("red", nm)
	got, ok := v.Materials().Find("red")
	assert.True(t, ok)
	assert.Same(t, nm, got)
	assert.Equal(t, 2, mats.Registrations("red"))
	assert.Equal(t, 1, mats.Len())
	mats.Remove("red")
	_, ok = mats.Find("red")
	assert.False(t, ok)
}

func TestTexture(t *testing.T) {
	v := memtest.NewViewer(t, memviewer.Options{})
	ctx := context.Background()
	tx, err := v.LoadTexture(ctx, "file://textures/wood.png")
	require.NoError(t, err)
	assert.Equal(t, 4, tx.Image.Bounds().Dx())
	assert.False(t, tx.Transparent)
	tx2, err := v.LoadTexture(ctx, "file://textures/wood.png")
	require.NoError(t, err)
	assert.Same(t, tx, tx2)

	_, err = v.LoadTexture(ctx, "textures/notes.txt")
	assert.Error(t, err)
	_, err = v.LoadTexture(ctx, "textures/none.png")
	assert.Error(t, err)
}

func TestCameraRestore(t *testing.T) {
	v := memtest.NewViewer(t, memviewer.Options{})
	frame := make(chan struct{}, 1)
	v.AddEventListener(viewer.FinalFrameRendered, func(e viewer.Event) { frame <- struct{}{} })

	st := v.CameraState()
	st.Viewport.Eye = math32.Vec3(0, -1000, 500)
	st.Viewport.Target = math32.Vec3(0, 0, 0)
	st.Viewport.PivotPoint = math32.Vec3(1, 2, 3)
	require.NoError(t, v.RestoreState(st))
	select {
	case <-frame:
	case <-time.After(2 * time.Second):
		t.Fatal("no final frame")
	}
	assert.Equal(t, math32.Vec3(0, -1000, 500), v.Camera().Position)
	assert.Equal(t, math32.Vec3(1, 2, 3), v.Pivot())

	st.Viewport.Target = st.Viewport.Eye
	assert.Error(t, v.RestoreState(st))
}

func TestWorldToClient(t *testing.T) {
	v := memtest.NewViewer(t, memviewer.Options{Width: 200, Height: 100})
	v.SetCamera(viewer.Camera{Position: math32.Vec3(0, -10, 0), Up: math32.Vec3(0, 0, 1)})
	c := v.WorldToClient(math32.Vector3{})
	assert.InDelta(t, 100, c.X, 1e-3)
	assert.InDelta(t, 50, c.Y, 1e-3)
	above := v.WorldToClient(math32.Vec3(0, 0, 1))
	assert.Less(t, above.Y, c.Y)
	right := v.WorldToClient(math32.Vec3(1, 0, 0))
	assert.Greater(t, right.X, c.X)
}

func TestScreenshot(t *testing.T) {
	v := memtest.NewViewer(t, memviewer.Options{Width: 160, Height: 120})
	m := load(t, v, "table.yaml", viewer.LoadOptions{})
	v.FitToView()
	img, err := v.Screenshot(160, 120)
	require.NoError(t, err)
	assert.Equal(t, 160, img.Bounds().Dx())
	ctr := v.WorldToClient(math32.Vec3(600, 400, 720))
	r, g, b, _ := img.At(int(ctr.X), int(ctr.Y)).RGBA()
	assert.Equal(t, uint32(0xa0a0), r)
	assert.Equal(t, uint32(0x7070), g)
	assert.Equal(t, uint32(0x3c3c), b)

	img, err = v.Screenshot(80, 60)
	require.NoError(t, err)
	assert.Equal(t, 80, img.Bounds().Dx())
	assert.Equal(t, 60, img.Bounds().Dy())

	_, err = v.Screenshot(0, 10)
	assert.Error(t, err)

	v.HideModel(m)
	assert.True(t, m.Hidden())
	img, _ = v.Screenshot(160, 120)
	r, _, _, _ = img.At(int(ctr.X), int(ctr.Y)).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	v.ShowModel(m)
	assert.False(t, m.Hidden())
}

func TestOverlaysPlaceholders(t *testing.T) {
	v := memtest.NewViewer(t, memviewer.Options{})
	id := v.AddPlaceholder(math32.Vec3(1, 2, 3))
	assert.Len(t, v.Placeholders(), 1)
	v.RemovePlaceholder(id)
	assert.Empty(t, v.Placeholders())

	v.AddOverlay("fp", []viewer.Segment{{Start: math32.Vec3(0, 0, 0), End: math32.Vec3(1, 0, 0)}})
	ls, ok := v.Overlay("fp")
	assert.True(t, ok)
	assert.Len(t, ls, 1)
	v.RemoveOverlay("fp")
	_, ok = v.Overlay("fp")
	assert.False(t, ok)
}

// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package layout

import (
	"context"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cogentcore.org/configurator/colors"
	"cogentcore.org/configurator/math32"
	"cogentcore.org/configurator/overlay"
	"cogentcore.org/configurator/viewer"
	"cogentcore.org/configurator/viewer/memviewer"
	"cogentcore.org/configurator/viewer/memviewer/memtest"
)

func chair(pos math32.Vector3) Record {
	return Record{SubModelID: "chair", SourceRef: "chair.yaml", Position: pos, DisplayName: "Chair"}
}

func table() Record {
	return Record{SubModelID: "table", SourceRef: "table.yaml", Position: math32.Vec3(1000, 0, 0), DisplayName: "Table"}
}

func newTest(t *testing.T, opts memviewer.Options) (*memviewer.Viewer, *Reconciler) {
	t.Helper()
	v := memtest.NewViewer(t, opts)
	r := New(v, nil, Callbacks{})
	t.Cleanup(r.Close)
	return v, r
}

func TestNotInitialized(t *testing.T) {
	r := New(nil, nil, Callbacks{})
	_, err := r.Reconcile(context.Background(), []Record{chair(math32.Vector3{})})
	assert.ErrorIs(t, err, ErrNotInitialized)

	v := memviewer.New(memtest.FS(), memviewer.Options{})
	r = New(v, nil, Callbacks{})
	res, err := r.Reconcile(context.Background(), []Record{chair(math32.Vector3{})})
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.Nil(t, res)
	assert.Empty(t, v.Placeholders())
	assert.Equal(t, 0, v.Invalidations())
	assert.Equal(t, Unloaded, r.State("chair"))
}

func TestLoadAndPlace(t *testing.T) {
	for _, order := range []memviewer.EventOrders{memviewer.OrderGeometryFirst, memviewer.OrderTreeFirst, memviewer.OrderRandom} {
		v, r := newTest(t, memviewer.Options{Order: order})
		res, err := r.Reconcile(context.Background(), []Record{chair(math32.Vector3{}), table()})
		require.NoError(t, err)
		require.NoError(t, res.Err())
		assert.Equal(t, []string{"chair", "table"}, res.Loaded)
		assert.Equal(t, Placed, r.State("chair"))
		assert.Equal(t, Placed, r.State("table"))

		sms := r.SubModels()
		require.Len(t, sms, 2)
		assert.Equal(t, "chair", sms[0].ID)
		assert.Equal(t, "Table", sms[1].Label())

		assert.Equal(t, math32.B3(-40, 0, 0, 2200, 800, 900), res.BoundingBox)
		assert.Equal(t, res.BoundingBox.Center(), v.Pivot())
		assert.Positive(t, v.Invalidations())
		assert.Empty(t, v.Placeholders())

		bb, err := r.SubModelBoundingBox("table")
		require.NoError(t, err)
		assert.Equal(t, float32(1000), bb.Min.X)
		_, err = r.SubModelBoundingBox("sofa")
		assert.Error(t, err)
	}
}

func TestNoSpuriousReload(t *testing.T) {
	v, r := newTest(t, memviewer.Options{})
	ctx := context.Background()
	_, err := r.Reconcile(ctx, []Record{chair(math32.Vector3{}), table()})
	require.NoError(t, err)
	before, _ := r.SubModel("chair")
	tbl, _ := r.SubModel("table")

	rec := chair(math32.Vec3(0, 100, 0))
	rec.Rotation = 90
	rec.ItemColors = map[string]colors.RGB{"seat": {R: 255}}
	res, err := r.Reconcile(ctx, []Record{rec, table()})
	require.NoError(t, err)
	assert.Empty(t, res.Loaded)
	assert.Equal(t, []string{"chair", "table"}, res.Updated)

	after, _ := r.SubModel("chair")
	assert.Same(t, before, after)
	assert.Same(t, before.Model, after.Model)
	tbl2, _ := r.SubModel("table")
	assert.Same(t, tbl.Model, tbl2.Model)
	assert.Len(t, v.Models(), 2)

	pos, rot := after.Model.(*memviewer.Model).Placement()
	assert.Equal(t, math32.Vec3(0, 100, 0), pos)
	assert.Equal(t, float32(90), rot)
	assert.Equal(t, []viewer.FragmentID{0, 1}, after.Touched())
	mt, _ := after.Model.FragmentMaterial(0)
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, mt.Color)
}

func TestUnloadPurges(t *testing.T) {
	v, r := newTest(t, memviewer.Options{})
	ctx := context.Background()
	rec := chair(math32.Vector3{})
	rec.ItemColors = map[string]colors.RGB{"back": {G: 255}}
	rec.ItemMaterials = map[string]MaterialDescriptor{"legs": {ID: "steel", TextureURL: "textures/wood.png"}}
	_, err := r.Reconcile(ctx, []Record{rec, table()})
	require.NoError(t, err)
	sm, _ := r.SubModel("chair")
	assert.NotEmpty(t, r.Overlay().Registered("chair"))
	assert.Equal(t, 5, r.Overlay().Len("chair"))
	mats := v.MaterialRegistry().Len()

	res, err := r.Reconcile(ctx, []Record{table()})
	require.NoError(t, err)
	assert.Equal(t, []string{"chair"}, res.Unloaded)
	assert.Equal(t, Unloaded, r.State("chair"))
	_, ok := r.SubModel("chair")
	assert.False(t, ok)
	assert.True(t, sm.Removed())
	assert.True(t, sm.Model.(*memviewer.Model).Unloaded())
	assert.Equal(t, 0, r.Overlay().Len("chair"))
	assert.Empty(t, r.Overlay().Registered("chair"))
	assert.Less(t, v.MaterialRegistry().Len(), mats)
	assert.Len(t, v.Models(), 1)
	assert.Equal(t, math32.B3(1000, 0, 0, 2200, 800, 740), res.BoundingBox)
}

func TestVisibility(t *testing.T) {
	_, r := newTest(t, memviewer.Options{})
	rec := chair(math32.Vector3{})
	rec.HiddenItems = []string{"Armrest", "legs", "ottoman"}
	rec.VisibleItems = []string{"Legs"}
	_, err := r.Reconcile(context.Background(), []Record{rec})
	require.NoError(t, err)
	bb, err := r.SubModelBoundingBox("chair")
	require.NoError(t, err)
	assert.Equal(t, math32.B3(0, 0, 0, 500, 500, 900), bb)

	// visibility is recomputed from scratch on every pass
	rec.HiddenItems = nil
	_, err = r.Reconcile(context.Background(), []Record{rec})
	require.NoError(t, err)
	bb, _ = r.SubModelBoundingBox("chair")
	assert.Equal(t, float32(-40), bb.Min.X)
}

func TestFailedLoadIsolated(t *testing.T) {
	_, r := newTest(t, memviewer.Options{LoadDelay: 10 * time.Millisecond})
	a := Record{SubModelID: "A", SourceRef: "missing.yaml"}
	b := table()
	b.SubModelID = "B"
	res, err := r.Reconcile(context.Background(), []Record{a, b})
	require.NoError(t, err)
	assert.Error(t, res.Errors["A"])
	assert.NotContains(t, res.Errors, "B")
	assert.Equal(t, []string{"B"}, res.Loaded)
	assert.Equal(t, Unloaded, r.State("A"))
	assert.Equal(t, Placed, r.State("B"))
	assert.Error(t, res.Err())

	// a failed load is retried on the next pass
	a.SourceRef = "block.json"
	res, err = r.Reconcile(context.Background(), []Record{a, b})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, res.Loaded)
	assert.Equal(t, []string{"B"}, res.Updated)
}

func TestInvalidRecords(t *testing.T) {
	_, r := newTest(t, memviewer.Options{})
	res, err := r.Reconcile(context.Background(), []Record{
		{SourceRef: "chair.yaml"},
		{SubModelID: "x"},
		table(),
		table(),
	})
	require.NoError(t, err)
	assert.Contains(t, res.Errors, "#0")
	assert.Contains(t, res.Errors, "x")
	assert.Contains(t, res.Errors, "table")
	assert.Equal(t, Placed, r.State("table"))
}

func TestSupersededLoad(t *testing.T) {
	v, r := newTest(t, memviewer.Options{})
	ctx := context.Background()
	release := v.Hold("chair.yaml")

	var res1 *Result
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		var err error
		res1, err = r.Reconcile(ctx, []Record{chair(math32.Vector3{})})
		assert.NoError(t, err)
	}()
	require.Eventually(t, func() bool { return r.State("chair") == Loading }, time.Second, time.Millisecond)
	assert.Len(t, v.Placeholders(), 1)

	res2, err := r.Reconcile(ctx, []Record{table()})
	require.NoError(t, err)
	assert.Equal(t, []string{"chair"}, res2.Unloaded)
	assert.Equal(t, []string{"table"}, res2.Loaded)

	release()
	wg.Wait()
	assert.ErrorIs(t, res1.Errors["chair"], ErrSuperseded)
	require.Eventually(t, func() bool { return len(v.Models()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, "table.yaml", v.Models()[0].SourceRef())
	assert.Empty(t, v.Placeholders())
	assert.Equal(t, Unloaded, r.State("chair"))
}

func TestCancelledPassStillApplies(t *testing.T) {
	v, r := newTest(t, memviewer.Options{})
	release := v.Hold("chair.yaml")
	ctx, cancel := context.WithCancel(context.Background())

	rec := chair(math32.Vec3(0, 100, 0))
	rec.ItemColors = map[string]colors.RGB{"seat": {R: 255}}
	go func() {
		assert.Eventually(t, func() bool { return r.State("chair") == Loading }, time.Second, time.Millisecond)
		cancel()
	}()
	res, err := r.Reconcile(ctx, []Record{rec})
	require.NoError(t, err)
	assert.ErrorIs(t, res.Errors["chair"], context.Canceled)

	release()
	require.Eventually(t, func() bool {
		sm, ok := r.SubModel("chair")
		return ok && sm.Record().SubModelID == "chair"
	}, time.Second, time.Millisecond)
	assert.Equal(t, Placed, r.State("chair"))
	assert.Empty(t, v.Placeholders())
	sm, _ := r.SubModel("chair")
	assert.Equal(t, "Chair", sm.Label())
	assert.Equal(t, []viewer.FragmentID{0, 1}, sm.Touched())
	mt, _ := sm.Model.FragmentMaterial(0)
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, mt.Color)

	res, err = r.Reconcile(context.Background(), []Record{rec})
	require.NoError(t, err)
	assert.Equal(t, []string{"chair"}, res.Updated)
	assert.Len(t, v.Models(), 1)
}

func TestSourceChange(t *testing.T) {
	v, r := newTest(t, memviewer.Options{})
	ctx := context.Background()
	_, err := r.Reconcile(ctx, []Record{chair(math32.Vector3{})})
	require.NoError(t, err)
	old, _ := r.SubModel("chair")

	rec := chair(math32.Vector3{})
	rec.SourceRef = "block.json"
	res, err := r.Reconcile(ctx, []Record{rec})
	require.NoError(t, err)
	assert.Equal(t, []string{"chair"}, res.Loaded)
	sm, _ := r.SubModel("chair")
	assert.NotSame(t, old, sm)
	assert.True(t, old.Removed())
	assert.Equal(t, "block.json", sm.Model.SourceRef())
	assert.Len(t, v.Models(), 1)
}

func TestConcurrentPassesConverge(t *testing.T) {
	_, r := newTest(t, memviewer.Options{LoadDelay: 20 * time.Millisecond})
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Reconcile(ctx, []Record{chair(math32.Vec3(float32(i), 0, 0))})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	res, err := r.Reconcile(ctx, []Record{chair(math32.Vec3(7, 0, 0))})
	require.NoError(t, err)
	assert.Equal(t, []string{"chair"}, res.Updated)
	sm, _ := r.SubModel("chair")
	assert.Equal(t, float32(7), sm.Record().Position.X)
}

func TestCallbacks(t *testing.T) {
	v := memtest.NewViewer(t, memviewer.Options{})
	var mu sync.Mutex
	var started, ended []string
	var progress [][2]int
	r := New(v, overlay.New(v), Callbacks{
		OnLoadStart: func(id string) { mu.Lock(); started = append(started, id); mu.Unlock() },
		OnLoadEnd: func(id string, err error) {
			mu.Lock()
			if err == nil {
				ended = append(ended, id)
			}
			mu.Unlock()
		},
		OnProgress: func(settled, total int) { mu.Lock(); progress = append(progress, [2]int{settled, total}); mu.Unlock() },
	})
	defer r.Close()
	_, err := r.Reconcile(context.Background(), []Record{chair(math32.Vector3{}), table()})
	require.NoError(t, err)
	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"chair", "table"}, started)
	assert.ElementsMatch(t, []string{"chair", "table"}, ended)
	assert.Equal(t, [][2]int{{1, 2}, {2, 2}}, progress)
}

func TestStatesString(t *testing.T) {
	assert.Equal(t, "Placed", Placed.String())
	assert.Equal(t, "States(9)", States(9).String())
}

// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package camera

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cogentcore.org/configurator/math32"
	"cogentcore.org/configurator/viewer"
	"cogentcore.org/configurator/viewer/memviewer"
	"cogentcore.org/configurator/viewer/memviewer/memtest"
)

const snapshot = `{
  "seedURN": "urn:chair",
  "objectSet": [{"id": [], "idType": "lmv", "isolated": [], "hidden": [12], "explodeScale": 0}],
  "viewport": {
    "name": "",
    "eye": [0, 0, 10],
    "target": [0, 0, 0],
    "up": [0, 1, 0],
    "worldUpVector": [0, 0, 1],
    "pivotPoint": ["0", "0", "0"],
    "distanceToOrbit": 10,
    "aspectRatio": 1.5,
    "projection": "perspective",
    "isOrthographic": false,
    "fieldOfView": 45
  },
  "renderOptions": {"environment": "Boardwalk", "ambientOcclusion": {"enabled": true}, "toneMap": {"method": 1}, "appearance": {"ghostHidden": true}},
  "cutplanes": []
}`

func TestToViewerState(t *testing.T) {
	st, err := ToViewerState([]byte(snapshot), nil)
	require.NoError(t, err)
	assert.Equal(t, "urn:chair", st.SeedURN)
	assert.Equal(t, math32.Vec3(0, 0, 10), st.Viewport.Eye)
	assert.Equal(t, math32.Vec3(0, 1, 0), st.Viewport.Up)
	assert.Equal(t, math32.Vec3(0, 0, 1), st.Viewport.WorldUpVector)
	assert.Equal(t, float32(45), st.Viewport.FieldOfView)
	assert.Equal(t, "perspective", st.Viewport.Projection)
	assert.Equal(t, "Boardwalk", st.RenderOptions.Environment)
	assert.Equal(t, true, st.RenderOptions.Appearance["ghostHidden"])
	require.Len(t, st.ObjectSet, 1)
	assert.Equal(t, "lmv", st.ObjectSet[0].IDType)
	assert.Len(t, st.ObjectSet[0].Hidden, 1)
}

func TestOffset(t *testing.T) {
	off := math32.Vec3(5, 0, 0)
	st, err := ToViewerState([]byte(snapshot), &off)
	require.NoError(t, err)
	assert.Equal(t, math32.Vec3(5, 0, 10), st.Viewport.Eye)
	assert.Equal(t, math32.Vec3(5, 0, 0), st.Viewport.Target)
	assert.Equal(t, math32.Vec3(5, 0, 0), st.Viewport.PivotPoint)
	assert.Equal(t, math32.Vec3(0, 1, 0), st.Viewport.Up, "directions are not translated")
}

func TestToViewerStateErrors(t *testing.T) {
	for _, s := range []string{
		``,
		`{"viewport": {"target": [0,0,0]}}`,
		`{}`,
		`{"viewport": {"eye": [0, 0], "target": [0,0,0]}}`,
		`{"viewport": {"eye": [0, "x", 0], "target": [0,0,0]}}`,
		`{"viewport": {"eye": {"x": 1}, "target": [0,0,0]}}`,
	} {
		_, err := ToViewerState([]byte(s), nil)
		assert.Error(t, err, s)
	}
	_, err := ToViewerState([]byte(`{"viewport": {"eye": [1,2,3]}}`), nil)
	assert.ErrorIs(t, err, ErrNoViewport)

	st, err := ToViewerState([]byte(`{"viewport": {"eye": [1,2,3], "target": [4,5,6]}}`), nil)
	require.NoError(t, err)
	assert.Equal(t, math32.Vec3(4, 5, 6), st.Viewport.PivotPoint, "pivot defaults to target")
}

func TestSnapshotRoundTrip(t *testing.T) {
	st, err := ToViewerState([]byte(snapshot), nil)
	require.NoError(t, err)
	b, err := Snapshot(st)
	require.NoError(t, err)
	back, err := ToViewerState(b, nil)
	require.NoError(t, err)
	assert.Equal(t, st.Viewport, back.Viewport)
	assert.Equal(t, st.SeedURN, back.SeedURN)
	assert.Contains(t, string(b), `"eye":[0,0,10]`)
}

func TestRestore(t *testing.T) {
	v := memtest.NewViewer(t, memviewer.Options{FrameDelay: 5 * time.Millisecond})
	off := math32.Vec3(5, 0, 0)
	st, err := ToViewerState([]byte(snapshot), &off)
	require.NoError(t, err)
	require.NoError(t, Restore(context.Background(), v, st))
	assert.Equal(t, math32.Vec3(5, 0, 10), v.Camera().Position)
	assert.Equal(t, math32.Vec3(5, 0, 0), v.Camera().Target)
	assert.Equal(t, math32.Vec3(5, 0, 0), v.Pivot())

	bad := st
	bad.Viewport.Target = bad.Viewport.Eye
	assert.Error(t, Restore(context.Background(), v, bad))
}

func TestRestoreCanceled(t *testing.T) {
	v := memtest.NewViewer(t, memviewer.Options{FrameDelay: time.Second})
	st, err := ToViewerState([]byte(snapshot), nil)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, Restore(ctx, v, st), context.DeadlineExceeded)

	assert.ErrorIs(t, Restore(context.Background(), memviewer.New(memtest.FS(), memviewer.Options{}), st), viewer.ErrNotInitialized)
}

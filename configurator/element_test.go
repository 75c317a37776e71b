// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package configurator

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cogentcore.org/configurator/annotate"
	"cogentcore.org/configurator/base/iox/imagex"
	"cogentcore.org/configurator/layout"
	"cogentcore.org/configurator/math32"
	"cogentcore.org/configurator/viewer/memviewer"
	"cogentcore.org/configurator/viewer/memviewer/memtest"
)

const snapshot = `{
  "viewport": {"eye": [0, 0, 10], "target": [0, 0, 0], "up": [0, 1, 0], "projection": "perspective", "fieldOfView": 45}
}`

func records() []layout.Record {
	return []layout.Record{
		{SubModelID: "a", SourceRef: "block.json", Position: math32.Vec3(100, 0, 0), DisplayName: "Block", Title: "First"},
		{SubModelID: "b", SourceRef: "table.yaml", Position: math32.Vec3(0, 1000, 0), DisplayName: "Table", ThumbnailURL: "table.png"},
	}
}

func newElement(t *testing.T, settings Settings) (*memviewer.Viewer, *Element) {
	t.Helper()
	v := memtest.NewViewer(t, memviewer.Options{})
	e := New(v, settings)
	t.Cleanup(e.Close)
	res, err := e.Initialize(context.Background(), records(), Callbacks{})
	require.NoError(t, err)
	require.NoError(t, res.Err())
	return v, e
}

func TestNotInitialized(t *testing.T) {
	v := memviewer.New(memtest.FS(), memviewer.Options{})
	e := New(v, DefaultSettings())
	_, err := e.Initialize(context.Background(), records(), Callbacks{})
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.False(t, e.Initialized())

	_, err = e.Update(context.Background(), records())
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, e.ApplyCamera(context.Background(), []byte(snapshot), ""), ErrNotInitialized)
	assert.ErrorIs(t, e.EnableFootprint(), ErrNotInitialized)
	assert.ErrorIs(t, e.ToggleLabels(), ErrNotInitialized)
	assert.ErrorIs(t, e.Focus(), ErrNotInitialized)
	assert.ErrorIs(t, e.ClickLabel("a"), ErrNotInitialized)
	_, err = e.Screenshot(10, 10)
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.Empty(t, v.Models())
}

func TestInitialize(t *testing.T) {
	v := memtest.NewViewer(t, memviewer.Options{})
	e := New(v, DefaultSettings())
	defer e.Close()
	var mu sync.Mutex
	var started []string
	res, err := e.Initialize(context.Background(), records(), Callbacks{OnLoadStart: func(id string) {
		mu.Lock()
		started = append(started, id)
		mu.Unlock()
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, res.Loaded)
	assert.ElementsMatch(t, []string{"a", "b"}, started)
	assert.True(t, e.Initialized())
	sms, err := e.SubModels()
	require.NoError(t, err)
	assert.Len(t, sms, 2)

	_, err = e.Initialize(context.Background(), records(), Callbacks{})
	assert.Error(t, err)

	res, err = e.Update(context.Background(), records()[:1])
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, res.Unloaded)
	assert.Len(t, v.Models(), 1)
}

func TestFootprintFeature(t *testing.T) {
	s := DefaultSettings()
	s.Enable3DFootprint = true
	s.FootprintUnit = "cm"
	v, e := newElement(t, s)

	fp, lb := e.Features()
	assert.Equal(t, FeatureState{Enabled: true}, fp)
	assert.Equal(t, FeatureState{}, lb)

	require.NoError(t, e.ToggleFootprint())
	fp, _ = e.Features()
	assert.True(t, fp.Visible)
	_, ok := v.Overlay(annotate.FootprintOverlay)
	assert.True(t, ok)
	l, ok := e.Labels().Get(annotate.WidthLabel)
	require.True(t, ok)
	// table at y 1000 spans x 0..1200, block x 100..110
	assert.Equal(t, "~120.00 cm", l.Text)

	// footprint follows updates
	_, err := e.Update(context.Background(), records()[:1])
	require.NoError(t, err)
	l, _ = e.Labels().Get(annotate.WidthLabel)
	assert.Equal(t, "~1.00 cm", l.Text)

	require.NoError(t, e.DisableFootprint())
	fp, _ = e.Features()
	assert.Equal(t, FeatureState{}, fp)
	_, ok = v.Overlay(annotate.FootprintOverlay)
	assert.False(t, ok)
	assert.Equal(t, 0, e.Labels().Len())

	// toggling a disabled feature is ignored
	require.NoError(t, e.ToggleFootprint())
	fp, _ = e.Features()
	assert.False(t, fp.Visible)
}

func TestLabelsFeature(t *testing.T) {
	_, e := newElement(t, DefaultSettings())
	require.NoError(t, e.ToggleLabels())
	assert.Equal(t, 0, e.Labels().Len())

	require.NoError(t, e.EnableLabels())
	require.NoError(t, e.ToggleLabels())
	_, lb := e.Features()
	assert.Equal(t, FeatureState{Enabled: true, Visible: true}, lb)
	texts := []string{}
	for _, l := range e.Labels().All() {
		texts = append(texts, l.Text)
	}
	assert.Equal(t, []string{"Block", "Table"}, texts)

	var selected []string
	e.OnConfigurationSelected(func(id string) { selected = append(selected, id) })
	require.NoError(t, e.ClickLabel("b"))
	assert.Equal(t, []string{"b"}, selected)

	require.NoError(t, e.ToggleLabels())
	assert.Equal(t, 0, e.Labels().Len())
}

func TestApplyCamera(t *testing.T) {
	v, e := newElement(t, DefaultSettings())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, e.ApplyCamera(ctx, []byte(snapshot), "a"))
	cam := v.Camera()
	assert.Equal(t, math32.Vec3(100, 0, 10), cam.Position)
	assert.Equal(t, math32.Vec3(100, 0, 0), cam.Target)
	// pivot is recentered on the scene after the camera settles
	assert.Equal(t, math32.B3(0, 0, 0, 1200, 1800, 740).Center(), v.Pivot())

	require.NoError(t, e.ApplyCamera(ctx, []byte(snapshot), "sofa"))
	assert.Equal(t, math32.Vec3(0, 0, 10), v.Camera().Position)

	assert.Error(t, e.ApplyCamera(ctx, []byte("{}"), ""))

	snap, err := e.CameraSnapshot()
	require.NoError(t, err)
	require.NoError(t, e.ApplyCamera(ctx, snap, ""))
	assert.Equal(t, math32.Vec3(0, 0, 10), v.Camera().Position)
}

func TestApplyCameraOverlapping(t *testing.T) {
	const delay = 50 * time.Millisecond
	v := memtest.NewViewer(t, memviewer.Options{FrameDelay: delay})
	e := New(v, DefaultSettings())
	t.Cleanup(e.Close)
	_, err := e.Initialize(context.Background(), records(), Callbacks{})
	require.NoError(t, err)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, e.ApplyCamera(ctx, []byte(snapshot), ""))
	}()
	time.Sleep(delay / 2)
	start := time.Now()
	require.NoError(t, e.ApplyCamera(ctx, []byte(snapshot), "a"))
	// the second apply waits for its own frame, not the first one's
	assert.GreaterOrEqual(t, time.Since(start), delay)
	wg.Wait()
	assert.Equal(t, math32.Vec3(100, 0, 10), v.Camera().Position)
	assert.Equal(t, math32.B3(0, 0, 0, 1200, 1800, 740).Center(), v.Pivot())
}

func TestFocus(t *testing.T) {
	v, e := newElement(t, DefaultSettings())
	require.NoError(t, e.Focus())
	bb := math32.B3(0, 0, 0, 1200, 1800, 740)
	assert.Equal(t, bb.Center(), v.Camera().Target)
}

func TestScreenshot(t *testing.T) {
	_, e := newElement(t, DefaultSettings())
	uri, err := e.Screenshot(0, 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
	img, f, err := imagex.FromDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, imagex.PNG, f)
	assert.Equal(t, image.Pt(1024, 768), img.Bounds().Size())

	uri, err = e.Screenshot(40, 30)
	require.NoError(t, err)
	img, _, err = imagex.FromDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(40, 30), img.Bounds().Size())
}

func TestOverview(t *testing.T) {
	_, e := newElement(t, DefaultSettings())
	items := e.Overview()
	require.Len(t, items, 2)
	assert.Equal(t, "First", items[0].Title)
	assert.True(t, items[0].Selected)
	assert.Equal(t, "Table", items[1].Title)
	assert.Equal(t, "table.png", items[1].ImageURL)

	e.SelectConfiguration("b")
	items = e.Overview()
	assert.False(t, items[0].Selected)
	assert.True(t, items[1].Selected)

	var selected []string
	e.OnConfigurationSelected(func(id string) { selected = append(selected, id) })
	require.NoError(t, e.ClickOverview("a"))
	assert.Equal(t, []string{"a"}, selected)
	assert.True(t, e.Overview()[0].Selected)
	assert.Error(t, e.ClickOverview("z"))

	e.SetOverview([]OverviewEntry{{ConfigurationID: "a", Title: "Only"}})
	assert.Empty(t, e.Overview())
}

func TestSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, "mm", s.FootprintUnit)
	assert.Equal(t, Duration(250*time.Millisecond), s.LabelRetryDelay)
	assert.Equal(t, 1024, s.ScreenshotWidth)
	assert.True(t, s.OverviewFromLayout)
	assert.False(t, s.Enable3DFootprint)

	fn := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(fn, []byte(`
enable3dLabel = true
footprintUnit = "inch"
labelRetryDelay = "1s"
`), 0666))
	s, err := OpenSettings(fn)
	require.NoError(t, err)
	assert.True(t, s.Enable3DLabel)
	assert.Equal(t, "inch", s.FootprintUnit)
	assert.Equal(t, Duration(time.Second), s.LabelRetryDelay)
	assert.Equal(t, 768, s.ScreenshotHeight)

	_, err = OpenSettings(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

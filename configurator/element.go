// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package configurator provides the host-facing [Element] of the
// configurator 3D viewer. It maps layout records from the configurator
// host onto an injected [viewer.Viewer], and manages the camera,
// footprint and name label annotations, screenshots, and the
// configuration overview.
package configurator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cogentcore.org/configurator/annotate"
	"cogentcore.org/configurator/base/iox/imagex"
	"cogentcore.org/configurator/camera"
	"cogentcore.org/configurator/layout"
	"cogentcore.org/configurator/math32"
	"cogentcore.org/configurator/overlay"
	"cogentcore.org/configurator/viewer"
)

// ErrNotInitialized is returned by [Element] operations called
// before [Element.Initialize] has completed.
var ErrNotInitialized = viewer.ErrNotInitialized

// Callbacks are the load progress callbacks of [Element.Initialize].
type Callbacks = layout.Callbacks

// Element is the configurator 3D viewer element. It is safe for
// concurrent use.
type Element struct {
	v        viewer.Viewer
	settings Settings
	labels   *annotate.Labels
	overview *Overview

	cameraMu sync.Mutex // one camera restore at a time

	mu               sync.Mutex
	initialized      bool
	rec              *layout.Reconciler
	footprint        *annotate.Footprint
	names            *annotate.NameLabels
	footprintEnabled bool
	labelsEnabled    bool
	removers         []func()
	onSelected       []func(id string)
}

// New returns a new element over the viewer with the given settings.
func New(v viewer.Viewer, settings Settings) *Element {
	e := &Element{v: v, settings: settings, labels: annotate.NewLabels()}
	e.overview = newOverview(e.selected)
	return e
}

// Settings returns the settings of the element.
func (e *Element) Settings() Settings {
	return e.settings
}

// Labels returns the annotation labels shown over the viewer canvas.
func (e *Element) Labels() *annotate.Labels {
	return e.labels
}

// Initialized returns whether [Element.Initialize] has completed.
func (e *Element) Initialized() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initialized
}

// Initialize sets up the element over its viewer, enables the features
// of the settings, and places the given layout.
func (e *Element) Initialize(ctx context.Context, records []layout.Record, cb Callbacks) (*layout.Result, error) {
	if e.v == nil || !e.v.Initialized() {
		return nil, ErrNotInitialized
	}
	e.mu.Lock()
	if e.initialized {
		e.mu.Unlock()
		return nil, fmt.Errorf("configurator: element already initialized")
	}
	e.rec = layout.New(e.v, overlay.New(e.v), cb)
	e.footprint = annotate.NewFootprint(e.v, e.labels, e.rec.BoundingBox, e.settings.FootprintUnit)
	e.names = annotate.NewNameLabels(e.v, e.labels, e.rec, time.Duration(e.settings.LabelRetryDelay))
	e.names.OnSelect(e.selected)
	e.removers = append(e.removers, e.footprint.Listen(), e.names.Listen())
	e.footprintEnabled = e.settings.Enable3DFootprint
	e.labelsEnabled = e.settings.Enable3DLabel
	e.initialized = true
	e.mu.Unlock()
	return e.Update(ctx, records)
}

// Close removes the viewer listeners of the element
// and hides its annotations.
func (e *Element) Close() {
	e.mu.Lock()
	removers := e.removers
	e.removers = nil
	rec, fp, names := e.rec, e.footprint, e.names
	e.mu.Unlock()
	for _, rm := range removers {
		rm()
	}
	if names != nil {
		names.Hide()
		fp.Hide()
		rec.Close()
	}
}

// parts returns the parts created on initialization,
// or [ErrNotInitialized].
func (e *Element) parts() (*layout.Reconciler, *annotate.Footprint, *annotate.NameLabels, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return nil, nil, nil, ErrNotInitialized
	}
	return e.rec, e.footprint, e.names, nil
}

// Update reconciles the viewer with the given layout, and refreshes
// the annotations. Per sub-model errors are reported in the result.
func (e *Element) Update(ctx context.Context, records []layout.Record) (*layout.Result, error) {
	rec, fp, names, err := e.parts()
	if err != nil {
		slog.Error("configurator: viewer is not yet initialized")
		return nil, err
	}
	res, err := rec.Reconcile(ctx, records)
	if err != nil {
		return nil, err
	}
	if e.settings.OverviewFromLayout {
		e.overview.Set(OverviewFromRecords(records))
	}
	fp.Refresh()
	names.Sync()
	return res, nil
}

// SubModels returns the placed sub-models in layout order.
func (e *Element) SubModels() ([]*layout.SubModel, error) {
	rec, _, _, err := e.parts()
	if err != nil {
		return nil, err
	}
	return rec.SubModels(), nil
}

// ApplyCamera restores the camera of the given snapshot. A camera saved
// relative to a sub-model is translated by the position of the given
// sub-model id, if placed. Once the viewer has rendered its final frame,
// the pivot is recentered on the scene.
func (e *Element) ApplyCamera(ctx context.Context, snapshot []byte, subModelID string) error {
	rec, _, _, err := e.parts()
	if err != nil {
		return err
	}
	var offset *math32.Vector3
	if subModelID != "" {
		if sm, ok := rec.SubModel(subModelID); ok {
			pos := sm.Record().Position
			offset = &pos
		} else {
			slog.Debug("configurator: camera sub-model is not placed, not offsetting", "id", subModelID)
		}
	}
	st, err := camera.ToViewerState(snapshot, offset)
	if err != nil {
		return err
	}
	e.cameraMu.Lock()
	defer e.cameraMu.Unlock()
	if err := camera.Restore(ctx, e.v, st); err != nil {
		return err
	}
	if bb := rec.BoundingBox(); !bb.IsEmpty() {
		e.v.SetPivot(bb.Center())
	}
	e.v.Invalidate()
	return nil
}

// CameraSnapshot returns the current camera state as a snapshot
// that can be passed to [Element.ApplyCamera].
func (e *Element) CameraSnapshot() ([]byte, error) {
	if _, _, _, err := e.parts(); err != nil {
		return nil, err
	}
	return camera.Snapshot(e.v.CameraState())
}

// Focus fits the camera to all visible sub-models.
func (e *Element) Focus() error {
	if _, _, _, err := e.parts(); err != nil {
		return err
	}
	e.v.FitToView()
	return nil
}

// Screenshot renders the current view and returns it as a PNG data URI.
// A width or height <= 0 uses the size of the settings.
func (e *Element) Screenshot(width, height int) (string, error) {
	if _, _, _, err := e.parts(); err != nil {
		return "", err
	}
	if width <= 0 {
		width = e.settings.ScreenshotWidth
	}
	if height <= 0 {
		height = e.settings.ScreenshotHeight
	}
	img, err := e.v.Screenshot(width, height)
	if err != nil {
		return "", fmt.Errorf("configurator: screenshot: %w", err)
	}
	return imagex.DataURI(img, imagex.PNG)
}

// OnConfigurationSelected adds a function called with the configuration
// id selected by clicking a name label or an overview entry.
func (e *Element) OnConfigurationSelected(fn func(id string)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onSelected = append(e.onSelected, fn)
}

func (e *Element) selected(id string) {
	e.mu.Lock()
	fns := e.onSelected
	e.mu.Unlock()
	for _, fn := range fns {
		fn(id)
	}
}

// ClickLabel handles a click on the named label.
func (e *Element) ClickLabel(name string) error {
	_, _, names, err := e.parts()
	if err != nil {
		return err
	}
	return names.Click(name)
}

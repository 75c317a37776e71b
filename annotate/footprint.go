// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package annotate

import (
	"log/slog"
	"sync"

	"cogentcore.org/configurator/math32"
	"cogentcore.org/configurator/viewer"
)

// FootprintOverlay is the name of the footprint wireframe overlay.
const FootprintOverlay = "footprint"

// Footprint dimension label names, for the x, y and z extents.
const (
	WidthLabel  = "footprint-width"
	HeightLabel = "footprint-height"
	DepthLabel  = "footprint-depth"
)

var dimensionLabels = [3]string{WidthLabel, HeightLabel, DepthLabel}

// Footprint shows the bounding box of the scene as a wireframe with
// labels for its width, height and depth. Each label is placed at the
// edge midpoint nearest to the camera.
type Footprint struct {
	v      viewer.Viewer
	labels *Labels
	box    func() math32.Box3

	mu      sync.Mutex
	unit    string
	visible bool
}

// NewFootprint returns a new hidden footprint over the labels, using box
// for the current scene bounding box. An unknown unit falls back to mm.
func NewFootprint(v viewer.Viewer, labels *Labels, box func() math32.Box3, unit string) *Footprint {
	fp := &Footprint{v: v, labels: labels, box: box}
	fp.SetUnit(unit)
	return fp
}

// SetUnit sets the display unit. An unknown unit falls back to mm
// with a warning.
func (fp *Footprint) SetUnit(unit string) {
	if unit == "" {
		unit = DefaultUnit
	}
	if !ValidUnit(unit) {
		slog.Warn("annotate: footprint unit has no conversion, reverting to mm", "unit", unit)
		unit = DefaultUnit
	}
	fp.mu.Lock()
	fp.unit = unit
	fp.mu.Unlock()
}

// Unit returns the display unit.
func (fp *Footprint) Unit() string {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return fp.unit
}

// Visible returns whether the footprint is shown.
func (fp *Footprint) Visible() bool {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return fp.visible
}

// Show draws the footprint and adds its labels.
func (fp *Footprint) Show() {
	fp.mu.Lock()
	fp.visible = true
	fp.mu.Unlock()
	for _, name := range dimensionLabels {
		fp.labels.Add(name, "")
	}
	fp.Refresh()
}

// Hide removes the footprint and its labels.
func (fp *Footprint) Hide() {
	fp.mu.Lock()
	fp.visible = false
	fp.mu.Unlock()
	fp.v.RemoveOverlay(FootprintOverlay)
	fp.v.Invalidate()
	for _, name := range dimensionLabels {
		fp.labels.Remove(name)
	}
}

// Toggle shows a hidden footprint and hides a shown one.
func (fp *Footprint) Toggle() {
	if fp.Visible() {
		fp.Hide()
	} else {
		fp.Show()
	}
}

// Refresh recomputes the wireframe, label texts and label positions
// from the current scene box and camera. It does nothing when hidden.
func (fp *Footprint) Refresh() {
	fp.mu.Lock()
	visible, unit := fp.visible, fp.unit
	fp.mu.Unlock()
	if !visible {
		return
	}
	bb := fp.box()
	if bb.IsEmpty() {
		fp.v.RemoveOverlay(FootprintOverlay)
		return
	}
	fp.v.AddOverlay(FootprintOverlay, Wireframe(bb))
	fp.v.Invalidate()
	size := bb.Size()
	cam := fp.v.Camera().Position
	for d, name := range dimensionLabels {
		val, _ := Convert(float64(size.Dim(math32.Dims(d))), unit)
		mids := bb.EdgeMidpoints(math32.Dims(d))
		pos := cam.Nearest(mids[:]...)
		// labels may be removed concurrently by Hide
		if err := fp.labels.SetText(name, DimensionText(val, unit)); err != nil {
			return
		}
		if err := fp.labels.SetPosition(name, fp.v.WorldToClient(pos)); err != nil {
			return
		}
	}
}

// Listen refreshes the footprint on every camera change,
// until the returned function is called.
func (fp *Footprint) Listen() (remove func()) {
	return fp.v.AddEventListener(viewer.CameraChange, func(viewer.Event) { fp.Refresh() })
}

// Wireframe returns the line segments of the box outline: the floor
// and top rectangles and the two side rectangles at min and max y.
func Wireframe(bb math32.Box3) []viewer.Segment {
	lo, hi := bb.Min, bb.Max
	p := func(x, y, z float32) math32.Vector3 { return math32.Vec3(x, y, z) }
	rect := func(a, b, c, d math32.Vector3) []viewer.Segment {
		return []viewer.Segment{{Start: a, End: b}, {Start: b, End: c}, {Start: c, End: d}, {Start: d, End: a}}
	}
	var segs []viewer.Segment
	segs = append(segs, rect(p(lo.X, lo.Y, lo.Z), p(hi.X, lo.Y, lo.Z), p(hi.X, hi.Y, lo.Z), p(lo.X, hi.Y, lo.Z))...)
	segs = append(segs, rect(p(hi.X, lo.Y, hi.Z), p(hi.X, hi.Y, hi.Z), p(lo.X, hi.Y, hi.Z), p(lo.X, lo.Y, hi.Z))...)
	segs = append(segs, rect(p(hi.X, lo.Y, lo.Z), p(lo.X, lo.Y, lo.Z), p(lo.X, lo.Y, hi.Z), p(hi.X, lo.Y, hi.Z))...)
	segs = append(segs, rect(p(hi.X, hi.Y, lo.Z), p(lo.X, hi.Y, lo.Z), p(lo.X, hi.Y, hi.Z), p(hi.X, hi.Y, hi.Z))...)
	return segs
}

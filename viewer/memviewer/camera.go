// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memviewer

import (
	"fmt"
	"time"

	"cogentcore.org/configurator/math32"
	"cogentcore.org/configurator/viewer"
)

func (v *Viewer) Camera() viewer.Camera {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.camera
}

func (v *Viewer) CameraState() viewer.CameraState {
	v.mu.Lock()
	defer v.mu.Unlock()
	st := v.state
	st.Viewport.Eye = v.camera.Position
	st.Viewport.Target = v.camera.Target
	st.Viewport.Up = v.camera.Up
	st.Viewport.PivotPoint = v.pivot
	st.Viewport.FieldOfView = v.opts.FieldOfView
	st.Viewport.AspectRatio = float32(v.opts.Width) / float32(v.opts.Height)
	if st.Viewport.Projection == "" {
		st.Viewport.Projection = "perspective"
	}
	return st
}

func (v *Viewer) RestoreState(state viewer.CameraState) error {
	vp := state.Viewport
	if vp.Eye == vp.Target {
		return fmt.Errorf("memviewer: camera eye and target are both at %v", vp.Eye)
	}
	v.mu.Lock()
	if !v.initialized {
		v.mu.Unlock()
		return viewer.ErrNotInitialized
	}
	v.state = state
	v.camera.Position = vp.Eye
	v.camera.Target = vp.Target
	if !vp.Up.IsNil() {
		v.camera.Up = vp.Up
	}
	v.pivot = vp.PivotPoint
	v.mu.Unlock()

	go func() {
		v.emit(viewer.Event{Type: viewer.CameraChange})
		if v.opts.FrameDelay > 0 {
			time.Sleep(v.opts.FrameDelay)
		}
		v.emit(viewer.Event{Type: viewer.FinalFrameRendered})
	}()
	return nil
}

// SetCamera moves the camera directly and sends a camera change event.
func (v *Viewer) SetCamera(cam viewer.Camera) {
	v.mu.Lock()
	v.camera = cam
	v.mu.Unlock()
	v.emit(viewer.Event{Type: viewer.CameraChange})
}

func (v *Viewer) FitToView() {
	bb := v.sceneBox()
	if bb.IsEmpty() {
		return
	}
	ctr := bb.Center()
	dist := bb.Diagonal()*1.2 + 1
	dir := math32.Vec3(1, -1, 1).MulScalar(1 / math32.Sqrt(3))
	v.SetCamera(viewer.Camera{
		Position: ctr.Add(dir.MulScalar(dist)),
		Target:   ctr,
		Up:       math32.Vec3(0, 0, 1),
	})
	v.SetPivot(ctr)
}

// basis returns the camera forward, right and up unit vectors.
func basis(cam viewer.Camera) (fwd, right, up math32.Vector3) {
	fwd = normalize(cam.Target.Sub(cam.Position))
	right = normalize(cross(fwd, cam.Up))
	if right.IsNil() {
		right = math32.Vec3(1, 0, 0)
	}
	up = cross(right, fwd)
	return
}

func cross(a, b math32.Vector3) math32.Vector3 {
	return math32.Vec3(a.Y*b.Z-a.Z*b.Y, a.Z*b.X-a.X*b.Z, a.X*b.Y-a.Y*b.X)
}

func normalize(a math32.Vector3) math32.Vector3 {
	l := a.Length()
	if l == 0 {
		return a
	}
	return a.MulScalar(1 / l)
}

// project returns the client position and view depth of the point.
func (v *Viewer) project(cam viewer.Camera, p math32.Vector3) (math32.Vector2, float32) {
	fwd, right, up := basis(cam)
	d := p.Sub(cam.Position)
	z := d.Dot(fwd)
	if z < 1e-3 {
		z = 1e-3
	}
	hw := float32(v.opts.Width) / 2
	hh := float32(v.opts.Height) / 2
	f := hh / math32.Sin(math32.DegToRad(v.opts.FieldOfView/2)) * math32.Cos(math32.DegToRad(v.opts.FieldOfView/2))
	return math32.Vec2(hw+d.Dot(right)/z*f, hh-d.Dot(up)/z*f), z
}

func (v *Viewer) WorldToClient(p math32.Vector3) math32.Vector2 {
	v.mu.Lock()
	cam := v.camera
	v.mu.Unlock()
	pt, _ := v.project(cam, p)
	return pt
}

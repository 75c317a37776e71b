// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package camera maps serialized viewer camera snapshots to
// restorable viewer states, and restores them.
package camera

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"cogentcore.org/configurator/math32"
	"cogentcore.org/configurator/viewer"
)

// ErrNoViewport is returned for a snapshot without a camera eye and target.
var ErrNoViewport = errors.New("camera: snapshot has no viewport eye and target")

// vec3 is a vector serialized as a JSON array of three numbers.
// Numbers may also be given as strings.
type vec3 []float32

func (v *vec3) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*v = nil
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("camera: vector must be an array: %w", err)
	}
	if len(raw) != 3 {
		return fmt.Errorf("camera: vector must have 3 components, not %d", len(raw))
	}
	out := make(vec3, 3)
	for i, r := range raw {
		var f float64
		if err := json.Unmarshal(r, &f); err != nil {
			var s string
			if err := json.Unmarshal(r, &s); err != nil {
				return fmt.Errorf("camera: vector component %d: %w", i, err)
			}
			if f, err = strconv.ParseFloat(s, 32); err != nil {
				return fmt.Errorf("camera: vector component %d: %w", i, err)
			}
		}
		out[i] = float32(f)
	}
	*v = out
	return nil
}

func (v vec3) vector() math32.Vector3 {
	if len(v) != 3 {
		return math32.Vector3{}
	}
	return math32.Vector3FromSlice(v)
}

func fromVector(p math32.Vector3) vec3 {
	return vec3(p.Slice())
}

// wire types of the viewer-state JSON.
type (
	wireState struct {
		SeedURN       string            `json:"seedURN"`
		ObjectSet     []wireObjectSet   `json:"objectSet"`
		Viewport      *wireViewport     `json:"viewport"`
		RenderOptions wireRenderOptions `json:"renderOptions"`
		Cutplanes     [][]float32       `json:"cutplanes"`
	}

	wireObjectSet struct {
		ID           []any   `json:"id"`
		IDType       string  `json:"idType"`
		Isolated     []any   `json:"isolated"`
		Hidden       []any   `json:"hidden"`
		ExplodeScale float32 `json:"explodeScale"`
	}

	wireViewport struct {
		Name            string  `json:"name"`
		Eye             vec3    `json:"eye"`
		Target          vec3    `json:"target"`
		Up              vec3    `json:"up"`
		WorldUpVector   vec3    `json:"worldUpVector"`
		PivotPoint      vec3    `json:"pivotPoint"`
		DistanceToOrbit float32 `json:"distanceToOrbit"`
		AspectRatio     float32 `json:"aspectRatio"`
		Projection      string  `json:"projection"`
		IsOrthographic  bool    `json:"isOrthographic"`
		FieldOfView     float32 `json:"fieldOfView"`
	}

	wireRenderOptions struct {
		Environment      string         `json:"environment"`
		AmbientOcclusion map[string]any `json:"ambientOcclusion,omitempty"`
		ToneMap          map[string]any `json:"toneMap,omitempty"`
		Appearance       map[string]any `json:"appearance,omitempty"`
	}
)

// ToViewerState decodes a serialized camera snapshot into a viewer state.
// If offset is non-nil, the eye, target and pivot point are translated
// by it, so that a camera saved relative to the local origin of a
// sub-model views the sub-model at its world placement.
func ToViewerState(snapshot []byte, offset *math32.Vector3) (viewer.CameraState, error) {
	var ws wireState
	if err := json.Unmarshal(snapshot, &ws); err != nil {
		return viewer.CameraState{}, fmt.Errorf("camera: decoding snapshot: %w", err)
	}
	if ws.Viewport == nil || ws.Viewport.Eye == nil || ws.Viewport.Target == nil {
		return viewer.CameraState{}, ErrNoViewport
	}
	wv := ws.Viewport
	st := viewer.CameraState{
		SeedURN: ws.SeedURN,
		Viewport: viewer.Viewport{
			Name:            wv.Name,
			Eye:             wv.Eye.vector(),
			Target:          wv.Target.vector(),
			Up:              wv.Up.vector(),
			WorldUpVector:   wv.WorldUpVector.vector(),
			PivotPoint:      wv.PivotPoint.vector(),
			DistanceToOrbit: wv.DistanceToOrbit,
			AspectRatio:     wv.AspectRatio,
			Projection:      wv.Projection,
			IsOrthographic:  wv.IsOrthographic,
			FieldOfView:     wv.FieldOfView,
		},
		RenderOptions: viewer.RenderOptions(ws.RenderOptions),
		Cutplanes:     ws.Cutplanes,
	}
	for _, set := range ws.ObjectSet {
		st.ObjectSet = append(st.ObjectSet, viewer.ObjectSet(set))
	}
	if wv.PivotPoint == nil {
		st.Viewport.PivotPoint = st.Viewport.Target
	}
	if offset != nil {
		st.Viewport.Eye.SetAdd(*offset)
		st.Viewport.Target.SetAdd(*offset)
		st.Viewport.PivotPoint.SetAdd(*offset)
	}
	return st, nil
}

// Snapshot encodes the viewer state in the serialized snapshot form.
func Snapshot(st viewer.CameraState) ([]byte, error) {
	vp := st.Viewport
	ws := wireState{
		SeedURN: st.SeedURN,
		Viewport: &wireViewport{
			Name:            vp.Name,
			Eye:             fromVector(vp.Eye),
			Target:          fromVector(vp.Target),
			Up:              fromVector(vp.Up),
			WorldUpVector:   fromVector(vp.WorldUpVector),
			PivotPoint:      fromVector(vp.PivotPoint),
			DistanceToOrbit: vp.DistanceToOrbit,
			AspectRatio:     vp.AspectRatio,
			Projection:      vp.Projection,
			IsOrthographic:  vp.IsOrthographic,
			FieldOfView:     vp.FieldOfView,
		},
		RenderOptions: wireRenderOptions(st.RenderOptions),
		Cutplanes:     st.Cutplanes,
		ObjectSet:     []wireObjectSet{},
	}
	for _, set := range st.ObjectSet {
		ws.ObjectSet = append(ws.ObjectSet, wireObjectSet(set))
	}
	if ws.Cutplanes == nil {
		ws.Cutplanes = [][]float32{}
	}
	return json.Marshal(ws)
}

// Restore starts restoring the state in the viewer and waits until the
// viewer reports its final frame rendered, or the context is done.
// Operations that depend on the settled camera must wait for it.
// Frames reported before the restore starts are ignored; callers that
// restore concurrently on one viewer must serialize their calls.
func Restore(ctx context.Context, v viewer.Viewer, st viewer.CameraState) error {
	if v == nil || !v.Initialized() {
		return viewer.ErrNotInitialized
	}
	frame := make(chan struct{}, 1)
	remove := v.AddEventListener(viewer.FinalFrameRendered, func(e viewer.Event) {
		select {
		case frame <- struct{}{}:
		default:
		}
	})
	defer remove()
	select {
	case <-frame:
	default:
	}
	if err := v.RestoreState(st); err != nil {
		return fmt.Errorf("camera: restoring state: %w", err)
	}
	select {
	case <-frame:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

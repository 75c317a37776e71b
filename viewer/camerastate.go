// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package viewer

import "cogentcore.org/configurator/math32"

// CameraState is a restorable viewer state: the camera viewport
// plus the render appearance options and object visibility sets.
type CameraState struct {

	// SeedURN is the source of the model the state was captured for.
	SeedURN string

	// Viewport is the camera viewport.
	Viewport Viewport

	// RenderOptions are the render appearance flags.
	RenderOptions RenderOptions

	// ObjectSet are the object visibility sets, kept verbatim.
	ObjectSet []ObjectSet

	// Cutplanes are the section planes, kept verbatim.
	Cutplanes [][]float32
}

// Viewport is the camera part of a [CameraState].
type Viewport struct {
	Name            string
	Eye             math32.Vector3
	Target          math32.Vector3
	Up              math32.Vector3
	WorldUpVector   math32.Vector3
	PivotPoint      math32.Vector3
	DistanceToOrbit float32
	AspectRatio     float32
	Projection      string
	IsOrthographic  bool
	FieldOfView     float32
}

// RenderOptions are the appearance flags of a [CameraState].
// Values other than the environment are opaque to the configurator.
type RenderOptions struct {
	Environment      string
	AmbientOcclusion map[string]any
	ToneMap          map[string]any
	Appearance       map[string]any
}

// ObjectSet is an object visibility set of a [CameraState].
type ObjectSet struct {
	ID           []any
	IDType       string
	Isolated     []any
	Hidden       []any
	ExplodeScale float32
}

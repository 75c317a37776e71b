// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package viewer defines the capabilities the configurator needs from
// an external 3D scene-graph viewer: model loading and visibility,
// node and fragment access, material registration, camera state,
// and event notification. Viewer implementations are injected, so
// that the orchestration code can run against any scene-graph viewer
// or a test double such as [cogentcore.org/configurator/viewer/memviewer].
package viewer

import (
	"context"
	"errors"
	"image"

	"cogentcore.org/configurator/math32"
)

// ErrNotInitialized is returned by operations that require
// a viewer that has completed its own initialization.
var ErrNotInitialized = errors.New("viewer: not initialized")

// NodeID is the viewer scene-graph identifier for a named logical part
// (a dbId in Forge terms).
type NodeID int32

// FragmentID is the identifier of a renderable unit of geometry.
// One node may map to multiple fragments.
type FragmentID int32

// PlaceholderID identifies a loading placeholder shown while
// a model is being loaded.
type PlaceholderID string

// LoadOptions are the options for [Viewer.LoadModel].
type LoadOptions struct {

	// Key is an opaque key that is copied onto every load event for
	// this model, so that listeners can match completion signals
	// to their request even if the events arrive before LoadModel returns.
	Key string

	// Position is the initial placement offset in world space.
	Position math32.Vector3

	// Rotation is the initial yaw angle about the world Z (up) axis, in degrees.
	Rotation float32
}

// Viewer is the injected capability interface for an external 3D viewer.
// All methods must be safe for concurrent use.
type Viewer interface {

	// Initialized returns whether the viewer is ready for use.
	Initialized() bool

	// LoadModel starts loading the geometry located by sourceRef.
	// It returns the model handle immediately; completion is signaled by
	// the [GeometryLoaded] and [ObjectTreeCreated] events (in either order),
	// and failure by the [LoadFailed] event. An error is returned only
	// when the load cannot be started at all.
	LoadModel(ctx context.Context, sourceRef string, opts LoadOptions) (Model, error)

	// UnloadModel removes the model from the viewer, releasing its resources.
	UnloadModel(m Model)

	// ShowModel makes a hidden model visible again.
	ShowModel(m Model)

	// HideModel hides the model without unloading it.
	HideModel(m Model)

	// SetPlacement places the model at the given world position
	// with the given yaw angle in degrees about the world Z axis.
	SetPlacement(m Model, position math32.Vector3, rotation float32)

	// AddEventListener registers fn to be called for events of the given type.
	// It returns a function that removes the listener. Listeners may be
	// called from any goroutine.
	AddEventListener(typ EventTypes, fn func(e Event)) (remove func())

	// Materials returns the material registry of the viewer.
	Materials() MaterialManager

	// LoadTexture loads the texture image at the given url.
	LoadTexture(ctx context.Context, url string) (*Texture, error)

	// Camera returns the current camera.
	Camera() Camera

	// CameraState returns the current restorable camera state.
	CameraState() CameraState

	// RestoreState starts restoring the given camera state. Completion is
	// signaled by a [FinalFrameRendered] event once the camera has settled.
	RestoreState(state CameraState) error

	// SetPivot sets the orbit pivot point of the camera.
	SetPivot(p math32.Vector3)

	// FitToView moves the camera so that all visible models are in view.
	FitToView()

	// Invalidate requests a re-render of the scene.
	Invalidate()

	// WorldToClient projects a world-space point to client (canvas) coordinates.
	WorldToClient(p math32.Vector3) math32.Vector2

	// AddPlaceholder shows a loading placeholder at the given position.
	AddPlaceholder(position math32.Vector3) PlaceholderID

	// RemovePlaceholder removes a loading placeholder.
	RemovePlaceholder(id PlaceholderID)

	// AddOverlay adds a named line overlay, replacing any with the same name.
	AddOverlay(name string, lines []Segment)

	// RemoveOverlay removes the named line overlay.
	RemoveOverlay(name string)

	// Select selects the given nodes of the model, replacing any selection.
	Select(m Model, ids ...NodeID)

	// ClearSelection clears the current selection.
	ClearSelection()

	// Screenshot renders the current view into an image of the given size.
	Screenshot(width, height int) (image.Image, error)
}

// Model is a handle to a model loaded (or being loaded) by a [Viewer].
type Model interface {

	// ID returns the viewer assigned model id.
	ID() int

	// SourceRef returns the geometry locator the model was loaded from.
	SourceRef() string

	// ObjectTree returns the scene-graph of the model, or false if
	// the object tree has not yet been created.
	ObjectTree() (ObjectTree, bool)

	// BoundingBox returns the world-space bounding box of the visible
	// fragments of the model. It returns an error if the model is no
	// longer loaded.
	BoundingBox() (math32.Box3, error)

	// FragmentMaterial returns the material currently assigned to the fragment.
	FragmentMaterial(f FragmentID) (*Material, bool)

	// SetFragmentMaterial assigns the material to the fragment.
	SetFragmentMaterial(f FragmentID, m *Material)

	// SetNodeOff sets the visibility off flag of the node.
	SetNodeOff(id NodeID, off bool)

	// ResetNodesOff turns all nodes of the model back on.
	ResetNodesOff()
}

// ObjectTree is the scene-graph of a loaded model.
type ObjectTree interface {

	// RootID returns the root node id.
	RootID() NodeID

	// Name returns the name of the node.
	Name(id NodeID) string

	// Children returns the child node ids of the node, in order.
	Children(id NodeID) []NodeID

	// Fragments returns the fragment ids directly owned by the node.
	Fragments(id NodeID) []FragmentID

	// IsHidden returns whether the node itself is hidden (switched off).
	IsHidden(id NodeID) bool

	// NodeBox returns the world-space bounding box of all fragments at or below the node.
	NodeBox(id NodeID) math32.Box3
}

// Camera is the current camera of the viewer.
type Camera struct {

	// Position is the eye position of the camera.
	Position math32.Vector3

	// Target is the point the camera looks at.
	Target math32.Vector3

	// Up is the up direction of the camera.
	Up math32.Vector3
}

// Segment is one line segment of an overlay.
type Segment struct {
	Start math32.Vector3
	End   math32.Vector3
}

// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package viewer

import "fmt"

// EventTypes are the types of viewer events.
type EventTypes int32

const (
	// GeometryLoaded is sent once all geometry of a model has loaded.
	GeometryLoaded EventTypes = iota

	// ObjectTreeCreated is sent once the scene-graph of a model is available.
	ObjectTreeCreated

	// LoadFailed is sent when loading a model fails.
	LoadFailed

	// CameraChange is sent whenever the camera moves.
	CameraChange

	// FinalFrameRendered is sent when the final (non-progressive)
	// frame has been rendered after a change.
	FinalFrameRendered
)

var eventTypeNames = [...]string{"GeometryLoaded", "ObjectTreeCreated", "LoadFailed", "CameraChange", "FinalFrameRendered"}

func (e EventTypes) String() string {
	if e >= 0 && int(e) < len(eventTypeNames) {
		return eventTypeNames[e]
	}
	return fmt.Sprintf("EventTypes(%d)", int32(e))
}

// Event is a viewer event notification.
type Event struct {

	// Type is the type of the event.
	Type EventTypes

	// Key is the [LoadOptions.Key] of the model for load events.
	Key string

	// Model is the model for load events.
	Model Model

	// Err is the failure for [LoadFailed] events.
	Err error
}

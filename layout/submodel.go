// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package layout

import (
	"fmt"
	"sync"

	"cogentcore.org/configurator/fragindex"
	"cogentcore.org/configurator/math32"
	"cogentcore.org/configurator/viewer"
)

// States are the reconciliation states of a sub-model.
type States int32

const (
	// Unloaded is a sub-model that is not (or no longer) in the viewer.
	Unloaded States = iota

	// Loading is a sub-model whose load has started but not settled.
	Loading

	// Placed is a loaded sub-model with its layout applied.
	Placed
)

var stateNames = [...]string{"Unloaded", "Loading", "Placed"}

func (s States) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("States(%d)", int32(s))
}

// SubModel is a loaded sub-model: the viewer model handle, its
// fragment index, and the last applied record.
type SubModel struct {

	// ID is the sub-model id.
	ID string

	// Model is the viewer model.
	Model viewer.Model

	// Index is the fragment index of the model.
	Index *fragindex.Index

	mu      sync.Mutex
	record  Record
	applied int // revision of record
	touched []viewer.FragmentID
	removed bool
	pending *ticket // load whose placeholder is still shown
}

// Record returns the last applied record.
func (sm *SubModel) Record() Record {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.record
}

func (sm *SubModel) appliedRev() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.applied
}

// Label returns the display name of the sub-model.
func (sm *SubModel) Label() string {
	rec := sm.Record()
	if rec.SubModelID == "" {
		return sm.ID
	}
	return rec.Label()
}

// Touched returns the fragments with material overrides.
func (sm *SubModel) Touched() []viewer.FragmentID {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return append([]viewer.FragmentID(nil), sm.touched...)
}

// Removed returns whether the sub-model has been unloaded.
func (sm *SubModel) Removed() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.removed
}

// BoundingBox returns the world bounding box of the visible parts.
func (sm *SubModel) BoundingBox() (math32.Box3, error) {
	return sm.Model.BoundingBox()
}

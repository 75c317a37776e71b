// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package annotate

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cogentcore.org/configurator/layout"
	"cogentcore.org/configurator/math32"
	"cogentcore.org/configurator/viewer"
)

// DefaultRetryDelay is the delay before name labels are rebuilt
// after a positioning failure.
const DefaultRetryDelay = 250 * time.Millisecond

// SubModelLister lists the placed sub-models, in layout order.
// It is implemented by [layout.Reconciler].
type SubModelLister interface {
	SubModels() []*layout.SubModel
}

// nameLabel is the state of one name label.
type nameLabel struct {
	id    string
	name  string
	order int
	dup   bool
}

func (nl *nameLabel) text() string {
	if nl.dup {
		return fmt.Sprintf("%s (%d)", nl.name, nl.order)
	}
	return nl.name
}

// NameLabels shows one clickable label with the display name of each
// placed sub-model, above its bounding box. Duplicate names are
// numbered in the order the labels were added.
type NameLabels struct {
	v          viewer.Viewer
	labels     *Labels
	src        SubModelLister
	retryDelay time.Duration

	mu       sync.Mutex
	visible  bool
	names    []*nameLabel
	retry    *time.Timer
	onSelect func(id string)
}

// NewNameLabels returns new hidden name labels for the sub-models of src.
// A retryDelay <= 0 uses [DefaultRetryDelay].
func NewNameLabels(v viewer.Viewer, labels *Labels, src SubModelLister, retryDelay time.Duration) *NameLabels {
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	return &NameLabels{v: v, labels: labels, src: src, retryDelay: retryDelay}
}

// OnSelect sets the function called with the sub-model id of a clicked label.
func (n *NameLabels) OnSelect(fn func(id string)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onSelect = fn
}

// Visible returns whether the name labels are shown.
func (n *NameLabels) Visible() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.visible
}

// Show adds a label for every placed sub-model and positions them.
func (n *NameLabels) Show() {
	sms := n.src.SubModels()
	n.mu.Lock()
	n.visible = true
	n.clear()
	for _, sm := range sms {
		n.add(sm.ID, sm.Label())
	}
	n.mu.Unlock()
	n.Refresh()
}

// add adds the label and renumbers the labels with the same name.
// Must be called with the lock held.
func (n *NameLabels) add(id, name string) {
	n.names = append(n.names, &nameLabel{id: id, name: name})
	n.labels.Add(id, id)
	var dups []*nameLabel
	for _, nl := range n.names {
		if nl.name == name {
			dups = append(dups, nl)
		}
	}
	for i, nl := range dups {
		nl.order = i + 1
		nl.dup = len(dups) > 1
		n.labels.SetText(nl.id, nl.text())
	}
}

// clear removes the labels. Must be called with the lock held.
func (n *NameLabels) clear() {
	for _, nl := range n.names {
		n.labels.Remove(nl.id)
	}
	n.names = nil
}

// Hide removes the name labels.
func (n *NameLabels) Hide() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.visible = false
	n.clear()
	if n.retry != nil {
		n.retry.Stop()
		n.retry = nil
	}
}

// Toggle shows hidden labels and hides shown ones.
func (n *NameLabels) Toggle() {
	if n.Visible() {
		n.Hide()
	} else {
		n.Show()
	}
}

// Sync rebuilds shown labels for the current set of sub-models.
func (n *NameLabels) Sync() {
	if n.Visible() {
		n.Show()
	}
}

// Texts returns the displayed label texts in order.
func (n *NameLabels) Texts() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	texts := make([]string, len(n.names))
	for i, nl := range n.names {
		texts[i] = nl.text()
	}
	return texts
}

// Refresh repositions the labels for the current camera. A failure,
// such as a sub-model unloaded in the meantime, schedules a rebuild of
// all labels after the retry delay instead of reporting an error.
func (n *NameLabels) Refresh() {
	n.mu.Lock()
	if !n.visible {
		n.mu.Unlock()
		return
	}
	ids := make([]string, len(n.names))
	for i, nl := range n.names {
		ids[i] = nl.id
	}
	n.mu.Unlock()

	placed := map[string]*layout.SubModel{}
	for _, sm := range n.src.SubModels() {
		placed[sm.ID] = sm
	}
	up := n.v.Camera().Up
	for _, id := range ids {
		if err := n.position(placed[id], id, up); err != nil {
			slog.Debug("annotate: name label positioning failed, rebuilding", "id", id, "error", err)
			n.scheduleRetry()
			return
		}
	}
}

func (n *NameLabels) position(sm *layout.SubModel, id string, up math32.Vector3) error {
	if sm == nil || sm.Removed() {
		return fmt.Errorf("sub-model %q is not placed", id)
	}
	bb, err := sm.BoundingBox()
	if err != nil {
		return err
	}
	return n.labels.SetPosition(id, n.v.WorldToClient(LabelPosition(bb, up)))
}

// scheduleRetry hides and shows the labels after the retry delay,
// unless a retry is already pending.
func (n *NameLabels) scheduleRetry() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.retry != nil || !n.visible {
		return
	}
	n.retry = time.AfterFunc(n.retryDelay, func() {
		n.mu.Lock()
		n.retry = nil
		n.mu.Unlock()
		n.Hide()
		n.Show()
	})
}

// Click selects the root of the sub-model of the clicked label in the
// viewer and notifies the selection function.
func (n *NameLabels) Click(id string) error {
	l, ok := n.labels.Get(id)
	if !ok || l.ConfigurationID == "" {
		return fmt.Errorf("%w %q", ErrUnknownLabel, id)
	}
	n.v.ClearSelection()
	for _, sm := range n.src.SubModels() {
		if sm.ID != l.ConfigurationID {
			continue
		}
		if tree, ok := sm.Model.ObjectTree(); ok {
			n.v.Select(sm.Model, tree.RootID())
		}
	}
	n.mu.Lock()
	fn := n.onSelect
	n.mu.Unlock()
	if fn != nil {
		fn(l.ConfigurationID)
	}
	return nil
}

// Listen repositions the labels on every camera change,
// until the returned function is called.
func (n *NameLabels) Listen() (remove func()) {
	return n.v.AddEventListener(viewer.CameraChange, func(viewer.Event) { n.Refresh() })
}

// LabelPosition returns the anchor of a name label for the box: the box
// center moved along the world axis the up vector most strongly aligns
// with, by one and a half times the box extent on that axis. If no axis
// strictly dominates, the center is returned.
func LabelPosition(bb math32.Box3, up math32.Vector3) math32.Vector3 {
	mid := bb.Center()
	dim, sign, ok := up.DominantAxis()
	if !ok {
		return mid
	}
	ext := bb.Size().Dim(dim) * sign * 3
	mid.SetDim(dim, mid.Dim(dim)+ext*0.5)
	return mid
}

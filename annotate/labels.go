// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package annotate manages the screen-anchored annotations of the
// scene: the footprint dimension labels and wireframe, and the name
// labels of the placed sub-models. Label positions are derived from
// the current bounding geometry and camera, and are rendered by the host.
package annotate

import (
	"errors"
	"fmt"
	"sync"

	"cogentcore.org/configurator/base/keylist"
	"cogentcore.org/configurator/math32"
)

// ErrUnknownLabel is returned when updating a label that does not exist.
var ErrUnknownLabel = errors.New("annotate: unknown label")

// Label is a text label anchored at a client (canvas) position.
type Label struct {

	// Name is the unique key of the label.
	Name string `json:"name"`

	// Text is the displayed text.
	Text string `json:"text"`

	// Position is the client position of the label center, in pixels.
	Position math32.Vector2 `json:"position"`

	// ConfigurationID is the configuration selected by clicking
	// the label, or "" if the label is not clickable.
	ConfigurationID string `json:"configurationId,omitempty"`
}

// Labels is the set of labels shown over the viewer canvas.
// It is safe for concurrent use.
type Labels struct {
	mu       sync.Mutex
	list     keylist.List[string, *Label]
	onChange []func()
}

// NewLabels returns a new empty label set.
func NewLabels() *Labels {
	return &Labels{}
}

// OnChange adds a function called after every change of the set.
func (ls *Labels) OnChange(fn func()) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.onChange = append(ls.onChange, fn)
}

func (ls *Labels) changed() {
	ls.mu.Lock()
	fns := ls.onChange
	ls.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Add adds a label with the given name, replacing any existing one.
// A non-empty configuration id makes the label clickable.
func (ls *Labels) Add(name, configurationID string) {
	ls.mu.Lock()
	ls.list.Set(name, &Label{Name: name, ConfigurationID: configurationID})
	ls.mu.Unlock()
	ls.changed()
}

// Remove removes the named label, if present.
func (ls *Labels) Remove(name string) {
	ls.mu.Lock()
	ok := ls.list.DeleteByKey(name)
	ls.mu.Unlock()
	if ok {
		ls.changed()
	}
}

// RemoveAll removes all labels.
func (ls *Labels) RemoveAll() {
	ls.mu.Lock()
	n := ls.list.Len()
	ls.list.Reset()
	ls.mu.Unlock()
	if n > 0 {
		ls.changed()
	}
}

// Has returns whether the named label exists.
func (ls *Labels) Has(name string) bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.list.Has(name)
}

// Get returns a copy of the named label.
func (ls *Labels) Get(name string) (Label, bool) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	l, ok := ls.list.AtTry(name)
	if !ok {
		return Label{}, false
	}
	return *l, true
}

// update calls fn on the named label under the lock.
func (ls *Labels) update(name string, fn func(l *Label)) error {
	ls.mu.Lock()
	l, ok := ls.list.AtTry(name)
	if ok {
		fn(l)
	}
	ls.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownLabel, name)
	}
	ls.changed()
	return nil
}

// SetText sets the text of the named label.
func (ls *Labels) SetText(name, text string) error {
	return ls.update(name, func(l *Label) { l.Text = text })
}

// SetPosition sets the client position of the named label.
func (ls *Labels) SetPosition(name string, pos math32.Vector2) error {
	return ls.update(name, func(l *Label) { l.Position = pos.RoundXY() })
}

// Len returns the number of labels.
func (ls *Labels) Len() int {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.list.Len()
}

// All returns copies of all labels in the order they were added.
func (ls *Labels) All() []Label {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	all := make([]Label, 0, ls.list.Len())
	for _, l := range ls.list.All() {
		all = append(all, *l)
	}
	return all
}

// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package overlay derives per-fragment material overrides (colors,
// textures and surface properties) without mutating the shared
// original materials of a model, and restores the originals on reset.
//
// Each touched fragment has a layered entry: the original material,
// captured once on first touch, plus an ordered stack of overrides.
// The fragment always shows the top of its stack, or the original
// when the stack is empty, so a reset is a truncation.
package overlay

import (
	"fmt"
	"image/color"
	"log/slog"
	"slices"
	"sync"

	"cogentcore.org/configurator/base/errors"
	"cogentcore.org/configurator/colors"
	"cogentcore.org/configurator/viewer"
)

// AuxAttrs are the auxiliary shading attributes that are carried over
// from the original material to a derived one, when they can be copied.
var AuxAttrs = []string{"envMap", "side", "polygonOffset", "polygonOffsetFactor", "polygonOffsetUnits", "depthWrite", "flatShading"}

// key identifies a fragment of a sub-model.
type key struct {
	sub  string
	frag viewer.FragmentID
}

// entry is the layered material state of one fragment.
type entry struct {
	model viewer.Model
	base  *viewer.Material
	stack []*viewer.Material
}

// top returns the material the fragment should show.
func (e *entry) top() *viewer.Material {
	if n := len(e.stack); n > 0 {
		return e.stack[n-1]
	}
	return e.base
}

// Overlay manages the material overrides of all sub-models of a viewer.
// It is safe for concurrent use.
type Overlay struct {
	v viewer.Viewer

	mu         sync.Mutex
	entries    map[key]*entry
	registered map[string]map[string]bool // sub-model -> registered material names
	textures   map[string]*textureLoad
}

// New returns a new material overlay for the given viewer.
func New(v viewer.Viewer) *Overlay {
	return &Overlay{
		v:          v,
		entries:    map[key]*entry{},
		registered: map[string]map[string]bool{},
		textures:   map[string]*textureLoad{},
	}
}

// ColorName returns the registered material name of a color override.
func ColorName(sub string, frag viewer.FragmentID, c color.RGBA) string {
	return fmt.Sprintf("%s/%d/color/%s", sub, frag, colors.AsHex(c))
}

// capture returns the entry of the fragment, capturing its original
// material on first touch. Must be called with the lock held.
func (o *Overlay) capture(sub string, m viewer.Model, f viewer.FragmentID) (*entry, bool) {
	k := key{sub, f}
	if e, ok := o.entries[k]; ok && e.model == m {
		return e, true
	}
	base, ok := m.FragmentMaterial(f)
	if !ok {
		return nil, false
	}
	e := &entry{model: m, base: base}
	o.entries[k] = e
	return e, true
}

// register returns the material registered under name, calling create
// to create and register it only if it is absent. Must be called with
// the lock held.
func (o *Overlay) register(sub, name string, create func() (*viewer.Material, error)) (*viewer.Material, error) {
	mgr := o.v.Materials()
	if mt, ok := mgr.Find(name); ok {
		return mt, nil
	}
	mt, err := create()
	if err != nil {
		return nil, err
	}
	mt.Name = name
	mgr.Add(name, mt)
	if o.registered[sub] == nil {
		o.registered[sub] = map[string]bool{}
	}
	o.registered[sub][name] = true
	return mt, nil
}

// push makes mt the top override of the entry and assigns it.
// Must be called with the lock held.
func (o *Overlay) push(e *entry, f viewer.FragmentID, mt *viewer.Material) {
	if e.top() != mt {
		e.stack = append(e.stack, mt)
	}
	e.model.SetFragmentMaterial(f, mt)
}

// derive clones the original material and copies the auxiliary
// attributes over, best effort.
func derive(base *viewer.Material) (*viewer.Material, error) {
	mt, err := base.Clone()
	if err != nil {
		return nil, err
	}
	for _, a := range AuxAttrs {
		if err := mt.CopyAttr(base, a); err != nil {
			slog.Debug("overlay: not copying material attribute", "material", base.Name, "attr", a, "error", err)
		}
	}
	return mt, nil
}

// ApplyColor overrides the color of the given fragments of the sub-model.
// Repeated calls with the same inputs reuse the same registered material.
// Fragments unknown to the model are skipped.
func (o *Overlay) ApplyColor(sub string, m viewer.Model, frags []viewer.FragmentID, c color.RGBA) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	var errs []error
	for _, f := range frags {
		e, ok := o.capture(sub, m, f)
		if !ok {
			continue
		}
		mt, err := o.register(sub, ColorName(sub, f, c), func() (*viewer.Material, error) {
			mt, err := derive(e.base)
			if err != nil {
				return nil, err
			}
			mt.Color = c
			return mt, nil
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		o.push(e, f, mt)
	}
	return errors.Join(errs...)
}

// Reset restores the original materials of the given fragments.
func (o *Overlay) Reset(sub string, frags []viewer.FragmentID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, f := range frags {
		e, ok := o.entries[key{sub, f}]
		if !ok {
			continue
		}
		e.stack = e.stack[:0]
		e.model.SetFragmentMaterial(f, e.base)
	}
}

// Forget purges all entries of the sub-model and unregisters the
// materials registered for it. It is used when the sub-model unloads.
func (o *Overlay) Forget(sub string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for k := range o.entries {
		if k.sub == sub {
			delete(o.entries, k)
		}
	}
	mgr := o.v.Materials()
	for name := range o.registered[sub] {
		mgr.Remove(name)
	}
	delete(o.registered, sub)
}

// Original returns the captured original material of the fragment.
func (o *Overlay) Original(sub string, f viewer.FragmentID) (*viewer.Material, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	e, ok := o.entries[key{sub, f}]
	if !ok {
		return nil, false
	}
	return e.base, true
}

// Depth returns the number of overrides stacked on the fragment.
func (o *Overlay) Depth(sub string, f viewer.FragmentID) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	if e, ok := o.entries[key{sub, f}]; ok {
		return len(e.stack)
	}
	return 0
}

// Len returns the number of fragments of the sub-model with an entry.
func (o *Overlay) Len(sub string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for k := range o.entries {
		if k.sub == sub {
			n++
		}
	}
	return n
}

// Registered returns the sorted names of the materials registered for the sub-model.
func (o *Overlay) Registered(sub string) []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	names := make([]string, 0, len(o.registered[sub]))
	for n := range o.registered[sub] {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package memviewer provides an in-memory, headless implementation of
// [viewer.Viewer]. Models are read from model description files
// (YAML or JSON) in an [fs.FS], loads complete asynchronously with the
// two completion events in a configurable order, and screenshots are
// rendered as flat box projections. It is used as the viewer backend of
// the configview command and as the viewer test double.
package memviewer

import (
	"context"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"cogentcore.org/configurator/math32"
	"cogentcore.org/configurator/viewer"
)

// EventOrders determine the order of the two load completion events.
type EventOrders int32

const (
	// OrderRandom sends the two load completion events in random order.
	OrderRandom EventOrders = iota

	// OrderGeometryFirst sends [viewer.GeometryLoaded] first.
	OrderGeometryFirst

	// OrderTreeFirst sends [viewer.ObjectTreeCreated] first.
	OrderTreeFirst
)

// Options are the options for a memory [Viewer].
type Options struct {

	// Order is the order of the load completion events.
	Order EventOrders

	// LoadDelay is an artificial delay before a load completes.
	LoadDelay time.Duration

	// FrameDelay is an artificial delay before the final frame
	// is reported after a camera state restore.
	FrameDelay time.Duration

	// Width and Height are the size of the canvas in pixels (default 800x600).
	Width, Height int

	// FieldOfView is the vertical field of view in degrees (default 45).
	FieldOfView float32
}

// Viewer is an in-memory [viewer.Viewer].
type Viewer struct {
	opts Options
	fsys fs.FS

	mu           sync.Mutex
	initialized  bool
	nextModel    int
	models       map[int]*Model
	listeners    map[viewer.EventTypes]map[int]func(viewer.Event)
	nextListener int
	holds        map[string]chan struct{}
	camera       viewer.Camera
	state        viewer.CameraState
	pivot        math32.Vector3
	placeholders map[viewer.PlaceholderID]math32.Vector3
	overlays     map[string][]viewer.Segment
	selection    map[int][]viewer.NodeID
	invalidated  int
	materials    *Materials
	textures     map[string]*viewer.Texture

	events chan viewer.Event
	done   chan struct{}
}

var _ viewer.Viewer = (*Viewer)(nil)

// New returns a new memory viewer reading models and textures from fsys.
// The viewer must be started with [Viewer.Start] before use.
func New(fsys fs.FS, opts Options) *Viewer {
	if opts.Width <= 0 {
		opts.Width = 800
	}
	if opts.Height <= 0 {
		opts.Height = 600
	}
	if opts.FieldOfView <= 0 {
		opts.FieldOfView = 45
	}
	v := &Viewer{
		opts:         opts,
		fsys:         fsys,
		models:       map[int]*Model{},
		listeners:    map[viewer.EventTypes]map[int]func(viewer.Event){},
		holds:        map[string]chan struct{}{},
		placeholders: map[viewer.PlaceholderID]math32.Vector3{},
		overlays:     map[string][]viewer.Segment{},
		selection:    map[int][]viewer.NodeID{},
		materials:    NewMaterials(),
		textures:     map[string]*viewer.Texture{},
	}
	v.camera = viewer.Camera{
		Position: math32.Vec3(10, -10, 10),
		Up:       math32.Vec3(0, 0, 1),
	}
	return v
}

// Start starts the event dispatcher and marks the viewer initialized.
func (v *Viewer) Start() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.initialized {
		return
	}
	v.events = make(chan viewer.Event, 1024)
	v.done = make(chan struct{})
	v.initialized = true
	go v.dispatch(v.events, v.done)
}

// Close stops the event dispatcher. Pending events are dropped.
func (v *Viewer) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.initialized {
		return
	}
	v.initialized = false
	close(v.done)
}

func (v *Viewer) Initialized() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.initialized
}

// dispatch delivers events to listeners sequentially, in the order sent.
func (v *Viewer) dispatch(events chan viewer.Event, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case e := <-events:
			v.mu.Lock()
			var fns []func(viewer.Event)
			for _, fn := range v.listeners[e.Type] {
				fns = append(fns, fn)
			}
			v.mu.Unlock()
			for _, fn := range fns {
				fn(e)
			}
		}
	}
}

// emit queues the event for delivery. It is a no-op on a closed viewer.
func (v *Viewer) emit(e viewer.Event) {
	v.mu.Lock()
	events, done := v.events, v.done
	v.mu.Unlock()
	if events == nil {
		return
	}
	select {
	case events <- e:
	case <-done:
	}
}

func (v *Viewer) AddEventListener(typ viewer.EventTypes, fn func(e viewer.Event)) (remove func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.nextListener++
	id := v.nextListener
	if v.listeners[typ] == nil {
		v.listeners[typ] = map[int]func(viewer.Event){}
	}
	v.listeners[typ][id] = fn
	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		delete(v.listeners[typ], id)
	}
}

// Hold makes loads of the given source ref wait until the returned
// release function is called.
func (v *Viewer) Hold(sourceRef string) (release func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	ch := make(chan struct{})
	v.holds[sourceRef] = ch
	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			if v.holds[sourceRef] == ch {
				delete(v.holds, sourceRef)
			}
			v.mu.Unlock()
			close(ch)
		})
	}
}

func (v *Viewer) LoadModel(ctx context.Context, sourceRef string, opts viewer.LoadOptions) (viewer.Model, error) {
	v.mu.Lock()
	if !v.initialized {
		v.mu.Unlock()
		return nil, viewer.ErrNotInitialized
	}
	v.nextModel++
	m := newModel(v, v.nextModel, sourceRef, opts.Position, opts.Rotation)
	v.models[m.id] = m
	hold := v.holds[sourceRef]
	v.mu.Unlock()

	go v.load(m, opts.Key, hold)
	return m, nil
}

// load reads and parses the model file and sends the completion events.
func (v *Viewer) load(m *Model, key string, hold chan struct{}) {
	if hold != nil {
		<-hold
	}
	if v.opts.LoadDelay > 0 {
		time.Sleep(v.opts.LoadDelay)
	}
	desc, err := readModel(v.fsys, m.sourceRef)
	if err != nil {
		slog.Debug("memviewer: load failed", "sourceRef", m.sourceRef, "error", err)
		v.emit(viewer.Event{Type: viewer.LoadFailed, Key: key, Model: m, Err: err})
		return
	}
	m.build(desc)

	order := v.opts.Order
	if order == OrderRandom {
		order = OrderGeometryFirst + EventOrders(rand.IntN(2))
	}
	geom := func() {
		m.setGeometryLoaded()
		v.emit(viewer.Event{Type: viewer.GeometryLoaded, Key: key, Model: m})
	}
	tree := func() {
		m.setTreeReady()
		v.emit(viewer.Event{Type: viewer.ObjectTreeCreated, Key: key, Model: m})
	}
	if order == OrderTreeFirst {
		tree()
		geom()
	} else {
		geom()
		tree()
	}
}

func (v *Viewer) UnloadModel(m viewer.Model) {
	mm, ok := m.(*Model)
	if !ok {
		return
	}
	v.mu.Lock()
	delete(v.models, mm.id)
	delete(v.selection, mm.id)
	v.mu.Unlock()
	mm.setUnloaded()
}

func (v *Viewer) ShowModel(m viewer.Model) {
	if mm, ok := m.(*Model); ok {
		mm.setHidden(false)
	}
}

func (v *Viewer) HideModel(m viewer.Model) {
	if mm, ok := m.(*Model); ok {
		mm.setHidden(true)
	}
}

func (v *Viewer) SetPlacement(m viewer.Model, position math32.Vector3, rotation float32) {
	if mm, ok := m.(*Model); ok {
		mm.setPlacement(position, rotation)
	}
}

// Models returns the currently loaded models, in load order.
func (v *Viewer) Models() []*Model {
	v.mu.Lock()
	defer v.mu.Unlock()
	ms := make([]*Model, 0, len(v.models))
	for i := 1; i <= v.nextModel; i++ {
		if m, ok := v.models[i]; ok {
			ms = append(ms, m)
		}
	}
	return ms
}

// sceneBox returns the union of the boxes of all shown models.
func (v *Viewer) sceneBox() math32.Box3 {
	bb := math32.B3Empty()
	for _, m := range v.Models() {
		if m.Hidden() {
			continue
		}
		if b, err := m.BoundingBox(); err == nil {
			bb.ExpandByBox(b)
		}
	}
	return bb
}

func (v *Viewer) Materials() viewer.MaterialManager {
	return v.materials
}

// MaterialRegistry returns the concrete material registry, for inspection.
func (v *Viewer) MaterialRegistry() *Materials {
	return v.materials
}

func (v *Viewer) SetPivot(p math32.Vector3) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pivot = p
	v.state.Viewport.PivotPoint = p
}

// Pivot returns the current orbit pivot point.
func (v *Viewer) Pivot() math32.Vector3 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pivot
}

func (v *Viewer) Invalidate() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.invalidated++
}

// Invalidations returns the number of re-render requests so far.
func (v *Viewer) Invalidations() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.invalidated
}

func (v *Viewer) AddPlaceholder(position math32.Vector3) viewer.PlaceholderID {
	v.mu.Lock()
	defer v.mu.Unlock()
	id := viewer.PlaceholderID(uuid.NewString())
	v.placeholders[id] = position
	return id
}

func (v *Viewer) RemovePlaceholder(id viewer.PlaceholderID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.placeholders, id)
}

// Placeholders returns the positions of the current loading placeholders.
func (v *Viewer) Placeholders() []math32.Vector3 {
	v.mu.Lock()
	defer v.mu.Unlock()
	ps := make([]math32.Vector3, 0, len(v.placeholders))
	for _, p := range v.placeholders {
		ps = append(ps, p)
	}
	return ps
}

func (v *Viewer) AddOverlay(name string, lines []viewer.Segment) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.overlays[name] = lines
}

func (v *Viewer) RemoveOverlay(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.overlays, name)
}

// Overlay returns the named overlay lines, and whether it exists.
func (v *Viewer) Overlay(name string) ([]viewer.Segment, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	ls, ok := v.overlays[name]
	return ls, ok
}

func (v *Viewer) Select(m viewer.Model, ids ...viewer.NodeID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	clear(v.selection)
	v.selection[m.ID()] = ids
}

func (v *Viewer) ClearSelection() {
	v.mu.Lock()
	defer v.mu.Unlock()
	clear(v.selection)
}

// Selection returns the selected node ids of the given model.
func (v *Viewer) Selection(m viewer.Model) []viewer.NodeID {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selection[m.ID()]
}

// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package layout reconciles a desired set of layout records with the
// sub-models loaded in a viewer: loading, placing, updating in place
// and unloading sub-models as the configuration changes.
package layout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"cogentcore.org/configurator/base/join"
	"cogentcore.org/configurator/base/plan"
	"cogentcore.org/configurator/fragindex"
	"cogentcore.org/configurator/math32"
	"cogentcore.org/configurator/overlay"
	"cogentcore.org/configurator/viewer"
)

var (
	// ErrNotInitialized is returned when reconciling without an initialized viewer.
	ErrNotInitialized = viewer.ErrNotInitialized

	// ErrSuperseded is returned for a load whose sub-model was removed,
	// or requested from a different source, before the load settled.
	// The model is unloaded when it arrives.
	ErrSuperseded = errors.New("layout: load superseded")
)

// completion signal names of a load
const (
	signalGeometry = "geometry"
	signalTree     = "tree"
)

// Callbacks are optional notifications of load progress.
type Callbacks struct {

	// OnLoadStart is called when the load of a sub-model starts.
	OnLoadStart func(id string)

	// OnLoadEnd is called when the load of a sub-model settles,
	// with a nil error on success.
	OnLoadEnd func(id string, err error)

	// OnProgress is called after each sub-model of a pass settles,
	// with the number settled so far and the total of the pass.
	OnProgress func(settled, total int)
}

// ticket is a pending load.
type ticket struct {
	key         string
	sourceRef   string
	join        *join.Join
	placeholder viewer.PlaceholderID
	done        chan struct{}
	err         error
	applyErr    error // of the record applied by the load itself
	unplace     sync.Once
}

// entry is the reconciliation state of one desired sub-model id.
type entry struct {
	id     string
	state  States
	rec    Record // latest desired record
	rev    int    // incremented on every change of rec
	ticket *ticket
	sub    *SubModel
}

func (e *entry) PlanName() string { return e.id }

// task is the work of one pass for one sub-model.
type task struct {
	e      *entry
	t      *ticket
	loaded bool
}

// Result is the outcome of a reconciliation pass.
type Result struct {

	// Loaded are the ids newly loaded and placed by the pass.
	Loaded []string

	// Updated are the ids that were already placed and re-applied in place.
	Updated []string

	// Unloaded are the ids unloaded by the pass.
	Unloaded []string

	// Errors are the failures by sub-model id. A failure of one
	// sub-model does not affect the others.
	Errors map[string]error

	// BoundingBox is the union bounding box of all placed sub-models.
	BoundingBox math32.Box3
}

// Err returns the errors of the pass joined in id order, or nil.
func (r *Result) Err() error {
	var errs []error
	for _, id := range sortedKeys(r.Errors) {
		errs = append(errs, fmt.Errorf("%s: %w", id, r.Errors[id]))
	}
	return errors.Join(errs...)
}

// Reconciler keeps the sub-models loaded in a viewer consistent with
// the records of the latest reconciliation pass. It is safe for
// concurrent use; concurrent passes converge on the latest records.
type Reconciler struct {
	v  viewer.Viewer
	ov *overlay.Overlay
	cb Callbacks

	mu        sync.Mutex
	entries   []*entry
	tickets   map[string]*ticket
	seq       int
	listeners []func()
}

// New returns a new reconciler for the given viewer, which may be nil.
// If ov is nil, a new overlay is made for the viewer.
func New(v viewer.Viewer, ov *overlay.Overlay, cb Callbacks) *Reconciler {
	if ov == nil && v != nil {
		ov = overlay.New(v)
	}
	return &Reconciler{v: v, ov: ov, cb: cb, tickets: map[string]*ticket{}}
}

// Overlay returns the material overlay.
func (r *Reconciler) Overlay() *overlay.Overlay {
	return r.ov
}

// Close removes the viewer event listeners of the reconciler.
func (r *Reconciler) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rm := range r.listeners {
		rm()
	}
	r.listeners = nil
}

// listen registers the load event listeners once.
// Must be called with the lock held.
func (r *Reconciler) listen() {
	if r.listeners != nil {
		return
	}
	for _, typ := range []viewer.EventTypes{viewer.GeometryLoaded, viewer.ObjectTreeCreated, viewer.LoadFailed} {
		r.listeners = append(r.listeners, r.v.AddEventListener(typ, r.onEvent))
	}
}

// onEvent routes a load event to its ticket by key.
func (r *Reconciler) onEvent(e viewer.Event) {
	r.mu.Lock()
	t := r.tickets[e.Key]
	r.mu.Unlock()
	if t == nil {
		return
	}
	switch e.Type {
	case viewer.GeometryLoaded:
		t.join.Signal(signalGeometry)
	case viewer.ObjectTreeCreated:
		t.join.Signal(signalTree)
	case viewer.LoadFailed:
		err := e.Err
		if err == nil {
			err = errors.New("load failed")
		}
		t.join.Fail(err)
	}
}

// Reconcile brings the viewer to the state of the given records, and
// returns what it did. It returns [ErrNotInitialized] without side effects
// if the viewer is missing or not initialized. Otherwise failures are
// reported per sub-model in [Result.Errors].
func (r *Reconciler) Reconcile(ctx context.Context, records []Record) (*Result, error) {
	if r.v == nil || !r.v.Initialized() {
		return nil, ErrNotInitialized
	}
	res := &Result{Errors: map[string]error{}}
	desired := make([]Record, 0, len(records))
	seen := map[string]bool{}
	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			key := rec.SubModelID
			if key == "" {
				key = fmt.Sprintf("#%d", i)
			}
			res.Errors[key] = err
			continue
		}
		if seen[rec.SubModelID] {
			res.Errors[rec.SubModelID] = fmt.Errorf("layout: duplicate sub-model id %q", rec.SubModelID)
			continue
		}
		seen[rec.SubModelID] = true
		desired = append(desired, rec)
	}

	var tasks []task
	var removed []*SubModel
	r.mu.Lock()
	r.listen()
	r.entries, _ = plan.Update(r.entries, len(desired),
		func(i int) string { return desired[i].SubModelID },
		func(id string, i int) *entry {
			e := &entry{id: id, rec: desired[i], rev: 1}
			tasks = append(tasks, task{e: e, t: r.startLoad(ctx, e), loaded: true})
			return e
		},
		func(e *entry) {
			if sm := r.detach(e); sm != nil {
				removed = append(removed, sm)
			}
			res.Unloaded = append(res.Unloaded, e.id)
		},
		func(e *entry, i int) {
			rec := desired[i]
			e.rec = rec
			e.rev++
			switch {
			case e.state == Placed && e.sub.Model.SourceRef() != rec.SourceRef:
				removed = append(removed, r.detach(e))
				tasks = append(tasks, task{e: e, t: r.startLoad(ctx, e), loaded: true})
			case e.state == Loading && e.ticket.sourceRef != rec.SourceRef:
				r.detach(e)
				tasks = append(tasks, task{e: e, t: r.startLoad(ctx, e), loaded: true})
			case e.state == Loading:
				tasks = append(tasks, task{e: e, t: e.ticket, loaded: true})
			case e.state == Unloaded:
				tasks = append(tasks, task{e: e, t: r.startLoad(ctx, e), loaded: true})
			default:
				tasks = append(tasks, task{e: e})
			}
		})
	r.mu.Unlock()

	for _, sm := range removed {
		r.unload(sm)
	}

	var wg sync.WaitGroup
	var rmu sync.Mutex
	settled := 0
	for _, tk := range tasks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := r.settle(ctx, tk)
			rmu.Lock()
			defer rmu.Unlock()
			switch {
			case err != nil:
				res.Errors[tk.e.id] = err
			case tk.loaded:
				res.Loaded = append(res.Loaded, tk.e.id)
			default:
				res.Updated = append(res.Updated, tk.e.id)
			}
			settled++
			if r.cb.OnProgress != nil {
				r.cb.OnProgress(settled, len(tasks))
			}
		}()
	}
	wg.Wait()
	order := func(ids []string) {
		slices.SortStableFunc(ids, func(a, b string) int {
			return slices.IndexFunc(desired, func(d Record) bool { return d.SubModelID == a }) -
				slices.IndexFunc(desired, func(d Record) bool { return d.SubModelID == b })
		})
	}
	order(res.Loaded)
	order(res.Updated)

	res.BoundingBox = r.BoundingBox()
	if !res.BoundingBox.IsEmpty() {
		r.v.SetPivot(res.BoundingBox.Center())
	}
	r.v.Invalidate()
	if len(res.Errors) > 0 {
		slog.Warn("layout: reconciliation finished with errors", "errors", len(res.Errors), "placed", len(r.SubModels()))
	}
	return res, nil
}

// startLoad starts loading the latest record of the entry, showing a
// placeholder at its position. Must be called with the lock held.
func (r *Reconciler) startLoad(ctx context.Context, e *entry) *ticket {
	r.seq++
	rec := e.rec
	t := &ticket{
		key:       fmt.Sprintf("%s#%d", e.id, r.seq),
		sourceRef: rec.SourceRef,
		join:      join.Pair(signalGeometry, signalTree),
		done:      make(chan struct{}),
	}
	t.placeholder = r.v.AddPlaceholder(rec.Position)
	r.tickets[t.key] = t
	e.ticket = t
	e.state = Loading
	go r.load(context.WithoutCancel(ctx), e, t, rec)
	return t
}

// load runs a load until both completion signals have arrived or it
// failed, then places the sub-model and applies the latest record of the
// entry unless the load was superseded. It applies the record itself so a
// sub-model is never left placed without it once the pass that started
// the load has stopped waiting.
func (r *Reconciler) load(ctx context.Context, e *entry, t *ticket, rec Record) {
	if r.cb.OnLoadStart != nil {
		r.cb.OnLoadStart(e.id)
	}
	m, err := r.v.LoadModel(ctx, rec.SourceRef, viewer.LoadOptions{Key: t.key, Position: rec.Position, Rotation: rec.Rotation})
	if err != nil {
		t.join.Fail(err)
	}
	err = t.join.Wait(ctx)

	r.mu.Lock()
	delete(r.tickets, t.key)
	superseded := e.ticket != t
	var sm *SubModel
	if !superseded {
		e.ticket = nil
		e.state = Unloaded
		if err == nil {
			if tree, ok := m.ObjectTree(); ok {
				sm = &SubModel{ID: e.id, Model: m, Index: fragindex.Build(tree), pending: t}
				e.sub = sm
				e.state = Placed
			} else {
				err = errors.New("object tree is not available")
			}
		}
	}
	r.mu.Unlock()

	switch {
	case superseded:
		err = ErrSuperseded
		slog.Debug("layout: discarding superseded load", "id", e.id, "sourceRef", rec.SourceRef)
	case err != nil:
		err = fmt.Errorf("layout: loading %q from %q: %w", e.id, rec.SourceRef, err)
		slog.Warn("layout: load failed", "id", e.id, "error", err)
	}
	if err != nil {
		if m != nil {
			r.v.UnloadModel(m)
		}
		t.removePlaceholder(r.v)
	} else {
		t.applyErr = r.applyLatest(ctx, e, sm)
	}
	t.err = err
	close(t.done)
	if r.cb.OnLoadEnd != nil {
		r.cb.OnLoadEnd(e.id, err)
	}
}

func (t *ticket) removePlaceholder(v viewer.Viewer) {
	t.unplace.Do(func() { v.RemovePlaceholder(t.placeholder) })
}

// detach removes the entry from the viewer state: a pending load is
// superseded and a placed sub-model is returned for unloading.
// Must be called with the lock held.
func (r *Reconciler) detach(e *entry) *SubModel {
	sm := e.sub
	e.sub = nil
	e.ticket = nil
	e.state = Unloaded
	return sm
}

// unload hides and unloads the sub-model and purges its overlay entries.
func (r *Reconciler) unload(sm *SubModel) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.removed {
		return
	}
	sm.removed = true
	r.v.HideModel(sm.Model)
	r.v.UnloadModel(sm.Model)
	r.ov.Forget(sm.ID)
	sm.touched = nil
	if sm.pending != nil {
		sm.pending.removePlaceholder(r.v)
		sm.pending = nil
	}
}

// settle waits for the pending load of the task, if any,
// and then applies the latest record of the entry unless the
// load already applied it.
func (r *Reconciler) settle(ctx context.Context, tk task) error {
	if tk.t != nil {
		select {
		case <-tk.t.done:
		case <-ctx.Done():
			return ctx.Err()
		}
		if tk.t.err != nil {
			return tk.t.err
		}
	}
	r.mu.Lock()
	sm, rec, rev := tk.e.sub, tk.e.rec, tk.e.rev
	r.mu.Unlock()
	if sm == nil {
		return ErrSuperseded
	}
	if tk.t != nil && sm.appliedRev() >= rev {
		return tk.t.applyErr
	}
	return r.apply(ctx, sm, rec, rev)
}

// applyLatest applies the latest record of the entry to the sub-model.
func (r *Reconciler) applyLatest(ctx context.Context, e *entry, sm *SubModel) error {
	r.mu.Lock()
	rec, rev := e.rec, e.rev
	r.mu.Unlock()
	return r.apply(ctx, sm, rec, rev)
}

// apply applies revision rev of the record to the sub-model: placement,
// visibility, then colors and materials after resetting previous
// overrides. An older revision than the one applied is ignored.
func (r *Reconciler) apply(ctx context.Context, sm *SubModel, rec Record, rev int) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.removed {
		return ErrSuperseded
	}
	if rev < sm.applied {
		return nil
	}
	m, ix := sm.Model, sm.Index
	r.v.SetPlacement(m, rec.Position, rec.Rotation)

	m.ResetNodesOff()
	for _, name := range rec.HiddenItems {
		for _, id := range r.resolve(sm, name) {
			m.SetNodeOff(id, true)
		}
	}
	for _, name := range rec.VisibleItems {
		for _, id := range r.resolve(sm, name) {
			m.SetNodeOff(id, false)
		}
	}
	r.v.ShowModel(m)

	r.ov.Reset(sm.ID, sm.touched)
	sm.touched = sm.touched[:0]
	var errs []error
	for _, name := range sortedKeys(rec.ItemColors) {
		frags := ix.ExpandToFragments(r.resolve(sm, name))
		if len(frags) == 0 {
			continue
		}
		if err := r.ov.ApplyColor(sm.ID, m, frags, rec.ItemColors[name].RGBA()); err != nil {
			errs = append(errs, err)
		}
		sm.touched = append(sm.touched, frags...)
	}
	for _, name := range sortedKeys(rec.ItemMaterials) {
		for _, id := range r.resolve(sm, name) {
			frags, err := r.ov.ApplyMaterial(ctx, sm.ID, m, id, rec.ItemMaterials[name])
			if err != nil {
				errs = append(errs, err)
			}
			sm.touched = append(sm.touched, frags...)
		}
	}
	slices.Sort(sm.touched)
	sm.touched = slices.Compact(sm.touched)
	sm.record = rec
	sm.applied = rev
	if sm.pending != nil {
		sm.pending.removePlaceholder(r.v)
		sm.pending = nil
	}
	return errors.Join(errs...)
}

// resolve returns the nodes of the named item, logging unknown names.
func (r *Reconciler) resolve(sm *SubModel, name string) []viewer.NodeID {
	ids := sm.Index.Resolve(name)
	if len(ids) == 0 {
		slog.Debug("layout: unknown item", "id", sm.ID, "item", name, "suggestion", sm.Index.Suggest(name))
	}
	return ids
}

// SubModel returns the placed sub-model with the given id.
func (r *Reconciler) SubModel(id string) (*SubModel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.id == id && e.state == Placed {
			return e.sub, true
		}
	}
	return nil, false
}

// SubModels returns the placed sub-models in layout order.
func (r *Reconciler) SubModels() []*SubModel {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sms []*SubModel
	for _, e := range r.entries {
		if e.state == Placed {
			sms = append(sms, e.sub)
		}
	}
	return sms
}

// State returns the reconciliation state of the sub-model id.
func (r *Reconciler) State(id string) States {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.id == id {
			return e.state
		}
	}
	return Unloaded
}

// BoundingBox returns the union world bounding box of all placed
// sub-models. Sub-models that fail to report a box are skipped.
func (r *Reconciler) BoundingBox() math32.Box3 {
	bb := math32.B3Empty()
	for _, sm := range r.SubModels() {
		if b, err := sm.BoundingBox(); err == nil {
			bb.ExpandByBox(b)
		}
	}
	return bb
}

// SubModelBoundingBox returns the world bounding box of the placed sub-model.
func (r *Reconciler) SubModelBoundingBox(id string) (math32.Box3, error) {
	sm, ok := r.SubModel(id)
	if !ok {
		return math32.B3Empty(), fmt.Errorf("layout: sub-model %q is not placed", id)
	}
	return sm.BoundingBox()
}

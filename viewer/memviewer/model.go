// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memviewer

import (
	"errors"
	"fmt"
	"sync"

	"cogentcore.org/configurator/math32"
	"cogentcore.org/configurator/viewer"
)

// ErrUnloaded is returned for geometry queries on an unloaded model.
var ErrUnloaded = errors.New("memviewer: model is unloaded")

// node is one scene-graph node of a model.
type node struct {
	name      string
	parent    viewer.NodeID
	children  []viewer.NodeID
	fragments []viewer.FragmentID
	off       bool
}

// fragment is one renderable box of a model, in model-local space.
type fragment struct {
	node viewer.NodeID
	box  math32.Box3
}

// Model is a model of a memory [Viewer]. It implements both
// [viewer.Model] and [viewer.ObjectTree].
type Model struct {
	v         *Viewer
	id        int
	sourceRef string

	mu        sync.Mutex
	nodes     []node // indexed by NodeID; index 0 is unused
	fragments []fragment
	materials map[viewer.FragmentID]*viewer.Material
	position  math32.Vector3
	rotation  float32
	geometry  bool
	tree      bool
	hidden    bool
	unloaded  bool
}

var (
	_ viewer.Model      = (*Model)(nil)
	_ viewer.ObjectTree = (*Model)(nil)
)

func newModel(v *Viewer, id int, sourceRef string, pos math32.Vector3, rot float32) *Model {
	return &Model{v: v, id: id, sourceRef: sourceRef, position: pos, rotation: rot}
}

func (m *Model) ID() int { return m.id }

func (m *Model) SourceRef() string { return m.sourceRef }

// build creates the nodes, fragments and materials from the description.
func (m *Model) build(desc *ModelDesc) {
	mats := map[string]*viewer.Material{}
	for name, md := range desc.Materials {
		mats[name] = md.material(name)
	}
	deflt := viewer.NewMaterial(m.sourceRef + ":default")

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes = []node{{}}
	m.fragments = nil
	m.materials = map[viewer.FragmentID]*viewer.Material{}
	var add func(nd *NodeDesc, parent viewer.NodeID)
	add = func(nd *NodeDesc, parent viewer.NodeID) {
		id := viewer.NodeID(len(m.nodes))
		m.nodes = append(m.nodes, node{name: nd.Name, parent: parent})
		if parent != 0 {
			m.nodes[parent].children = append(m.nodes[parent].children, id)
		}
		boxes := nd.Boxes
		if len(nd.Box) == 6 {
			boxes = append([][]float32{nd.Box}, boxes...)
		}
		for _, b := range boxes {
			if len(b) != 6 {
				continue
			}
			fid := viewer.FragmentID(len(m.fragments))
			m.fragments = append(m.fragments, fragment{node: id, box: math32.B3(b[0], b[1], b[2], b[3], b[4], b[5])})
			m.nodes[id].fragments = append(m.nodes[id].fragments, fid)
			mat, ok := mats[nd.Material]
			if !ok {
				mat = deflt
			}
			m.materials[fid] = mat
		}
		for i := range nd.Children {
			add(&nd.Children[i], id)
		}
	}
	add(&desc.Root, 0)
}

func (m *Model) setGeometryLoaded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.geometry = true
}

func (m *Model) setTreeReady() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tree = true
}

func (m *Model) setUnloaded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unloaded = true
}

func (m *Model) setHidden(hidden bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hidden = hidden
}

func (m *Model) setPlacement(pos math32.Vector3, rot float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = pos
	m.rotation = rot
}

// Hidden returns whether the model has been hidden with [Viewer.HideModel].
func (m *Model) Hidden() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hidden
}

// Unloaded returns whether the model has been unloaded.
func (m *Model) Unloaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unloaded
}

// Placement returns the current world position and yaw rotation in degrees.
func (m *Model) Placement() (math32.Vector3, float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position, m.rotation
}

func (m *Model) ObjectTree() (viewer.ObjectTree, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.tree {
		return nil, false
	}
	return m, true
}

// worldBox returns the world-space box of a fragment. Must be called with the lock held.
func (m *Model) worldBox(f viewer.FragmentID) math32.Box3 {
	return m.fragments[f].box.RotateZ(math32.DegToRad(m.rotation)).Translate(m.position)
}

// visible returns whether the node and all its ancestors are on.
// Must be called with the lock held.
func (m *Model) visible(id viewer.NodeID) bool {
	for id != 0 {
		if m.nodes[id].off {
			return false
		}
		id = m.nodes[id].parent
	}
	return true
}

func (m *Model) BoundingBox() (math32.Box3, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unloaded {
		return math32.B3Empty(), fmt.Errorf("bounding box of %q: %w", m.sourceRef, ErrUnloaded)
	}
	bb := math32.B3Empty()
	if !m.geometry {
		return bb, nil
	}
	for i, fr := range m.fragments {
		if m.visible(fr.node) {
			bb.ExpandByBox(m.worldBox(viewer.FragmentID(i)))
		}
	}
	return bb, nil
}

func (m *Model) FragmentMaterial(f viewer.FragmentID) (*viewer.Material, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mt, ok := m.materials[f]
	return mt, ok
}

func (m *Model) SetFragmentMaterial(f viewer.FragmentID, mt *viewer.Material) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if int(f) < 0 || int(f) >= len(m.fragments) {
		return
	}
	m.materials[f] = mt
}

func (m *Model) SetNodeOff(id viewer.NodeID, off bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.validNode(id) {
		m.nodes[id].off = off
	}
}

func (m *Model) ResetNodesOff() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.nodes {
		m.nodes[i].off = false
	}
}

// validNode must be called with the lock held.
func (m *Model) validNode(id viewer.NodeID) bool {
	return id > 0 && int(id) < len(m.nodes)
}

// ObjectTree methods

func (m *Model) RootID() viewer.NodeID {
	return 1
}

func (m *Model) Name(id viewer.NodeID) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.validNode(id) {
		return ""
	}
	return m.nodes[id].name
}

func (m *Model) Children(id viewer.NodeID) []viewer.NodeID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.validNode(id) {
		return nil
	}
	return append([]viewer.NodeID(nil), m.nodes[id].children...)
}

func (m *Model) Fragments(id viewer.NodeID) []viewer.FragmentID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.validNode(id) {
		return nil
	}
	return append([]viewer.FragmentID(nil), m.nodes[id].fragments...)
}

func (m *Model) IsHidden(id viewer.NodeID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.validNode(id) && m.nodes[id].off
}

func (m *Model) NodeBox(id viewer.NodeID) math32.Box3 {
	m.mu.Lock()
	defer m.mu.Unlock()
	bb := math32.B3Empty()
	if !m.validNode(id) {
		return bb
	}
	stack := []viewer.NodeID{id}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, f := range m.nodes[n].fragments {
			bb.ExpandByBox(m.worldBox(f))
		}
		stack = append(stack, m.nodes[n].children...)
	}
	return bb
}

// NodeOff returns the off flag of the node.
func (m *Model) NodeOff(id viewer.NodeID) bool {
	return m.IsHidden(id)
}

// FindNode returns the first node with the given exact name, or 0.
func (m *Model) FindNode(name string) viewer.NodeID {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 1; i < len(m.nodes); i++ {
		if m.nodes[i].name == name {
			return viewer.NodeID(i)
		}
	}
	return 0
}

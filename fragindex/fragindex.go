// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fragindex provides a case-insensitive index from the item
// names of a loaded model to its scene-graph nodes, and the expansion
// of nodes to the renderable fragments below them.
package fragindex

import (
	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"cogentcore.org/configurator/base/keylist"
	"cogentcore.org/configurator/viewer"
)

// SuggestThreshold is the minimum similarity for [Index.Suggest].
var SuggestThreshold = 0.5

var lower = cases.Lower(language.Und)

// Key returns the index key of the given item name.
func Key(name string) string {
	return lower.String(name)
}

// Index maps lower-cased item names to the node ids with that name,
// in tree order. It is built once per loaded model and is read-only
// afterwards, so it is safe for concurrent use.
type Index struct {
	tree  viewer.ObjectTree
	names keylist.List[string, []viewer.NodeID]
}

// Build scans the object tree once, depth first from the root, and
// returns the name index. Names are not unique: all matching nodes are
// collected in insertion order.
func Build(tree viewer.ObjectTree) *Index {
	ix := &Index{tree: tree}
	stack := []viewer.NodeID{tree.RootID()}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if name := tree.Name(id); name != "" {
			key := Key(name)
			ids, _ := ix.names.AtTry(key)
			ix.names.Set(key, append(ids, id))
		}
		kids := tree.Children(id)
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return ix
}

// Tree returns the object tree the index was built from.
func (ix *Index) Tree() viewer.ObjectTree {
	return ix.tree
}

// Resolve returns the node ids with the given name, ignoring case.
// An unknown name returns nil, which callers treat as a no-op.
func (ix *Index) Resolve(name string) []viewer.NodeID {
	ids, _ := ix.names.AtTry(Key(name))
	return ids
}

// Len returns the number of distinct names.
func (ix *Index) Len() int {
	return ix.names.Len()
}

// Names returns the distinct lower-cased names in first-seen order.
func (ix *Index) Names() []string {
	return append([]string(nil), ix.names.Keys...)
}

// ExpandToFragments returns the fragments of the given nodes and all
// their descendants, skipping the fragments of hidden nodes. Each node
// is visited at most once, so overlapping ids are not duplicated.
func (ix *Index) ExpandToFragments(ids []viewer.NodeID) []viewer.FragmentID {
	var frags []viewer.FragmentID
	seen := map[viewer.NodeID]bool{}
	stack := make([]viewer.NodeID, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		stack = append(stack, ids[i])
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		if !ix.tree.IsHidden(id) {
			frags = append(frags, ix.tree.Fragments(id)...)
		}
		kids := ix.tree.Children(id)
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return frags
}

// ResolveFragments is shorthand for expanding the nodes with the given name.
func (ix *Index) ResolveFragments(name string) []viewer.FragmentID {
	return ix.ExpandToFragments(ix.Resolve(name))
}

// Suggest returns the known name most similar to the given one, or ""
// if none reaches [SuggestThreshold]. It is used for diagnostics when
// a layout names an item that the model does not have.
func (ix *Index) Suggest(name string) string {
	key := Key(name)
	lev := metrics.NewLevenshtein()
	best, bestSim := "", SuggestThreshold
	for _, n := range ix.names.Keys {
		if sim := strutil.Similarity(key, n, lev); sim >= bestSim && (best == "" || sim > bestSim) {
			best, bestSim = n, sim
		}
	}
	return best
}

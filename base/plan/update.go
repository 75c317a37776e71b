// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package plan provides an efficient mechanism for updating a slice
// to contain a target list of elements, generating minimal edits to
// modify the current slice contents to match the target.
// The mechanism depends on the use of unique name string identifiers
// (for example sub-model ids) to determine whether an element is
// currently present, so that present elements are kept in place
// rather than being destroyed and recreated.
package plan

import (
	"log/slog"
	"slices"
)

// Namer is an interface that types can implement to specify their name in a plan context.
type Namer interface {

	// PlanName returns the name of the object in a plan context.
	PlanName() string
}

// Update ensures that the elements of the slice contain
// the elements according to the plan, specified by unique
// element names, with n = total number of items in the target slice.
// If a new item is needed then new is called to create it,
// for given name at given index position.
// If destroy is not-nil, then it is called on any element
// that is being deleted from the slice.
// If keep is not-nil, then it is called on any existing element
// that remains in the slice, with its target index.
// It returns the updated slice and whether any changes were made.
func Update[T Namer](s []T, n int, name func(i int) string, new func(name string, i int) T, destroy func(e T), keep func(e T, i int)) (r []T, mods bool) {
	names := make([]string, n)
	nmap := make(map[string]int, n)
	for i := range n {
		nm := name(i)
		if _, has := nmap[nm]; has {
			slog.Error("plan.Update: duplicate name", "name", nm)
			continue
		}
		names[i] = nm
		nmap[nm] = i
	}
	// first remove anything we don't want
	r = s
	for i := len(r) - 1; i >= 0; i-- {
		nm := r[i].PlanName()
		if _, ok := nmap[nm]; !ok {
			mods = true
			if destroy != nil {
				destroy(r[i])
			}
			r = slices.Delete(r, i, i+1)
		}
	}
	// next add and move items as needed; in order so guaranteed
	ti := 0
	for _, tn := range names {
		if tn == "" {
			continue
		}
		ci := slices.IndexFunc(r, func(e T) bool { return e.PlanName() == tn })
		if ci < 0 { // item not currently on the list
			mods = true
			ne := new(tn, ti)
			r = slices.Insert(r, ti, ne)
		} else {
			if ci != ti {
				mods = true
				e := r[ci]
				r = slices.Delete(r, ci, ci+1)
				r = slices.Insert(r, ti, e)
			}
			if keep != nil {
				keep(r[ti], ti)
			}
		}
		ti++
	}
	return
}

// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memviewer

import (
	"sync"

	"cogentcore.org/configurator/base/keylist"
	"cogentcore.org/configurator/viewer"
)

// Materials is the material registry of a memory [Viewer].
// It counts registrations so that callers can verify that
// materials are not registered more than once.
type Materials struct {
	mu     sync.Mutex
	list   keylist.List[string, *viewer.Material]
	counts map[string]int
}

var _ viewer.MaterialManager = (*Materials)(nil)

// NewMaterials returns a new empty material registry.
func NewMaterials() *Materials {
	return &Materials{counts: map[string]int{}}
}

func (ms *Materials) Find(name string) (*viewer.Material, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.list.AtTry(name)
}

func (ms *Materials) Add(name string, m *viewer.Material) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.list.Set(name, m)
	ms.counts[name]++
}

func (ms *Materials) Remove(name string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.list.DeleteByKey(name)
}

// Len returns the number of registered materials.
func (ms *Materials) Len() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.list.Len()
}

// Names returns the registered material names, in registration order.
func (ms *Materials) Names() []string {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return append([]string(nil), ms.list.Keys...)
}

// Registrations returns the number of times a material
// has been registered under the given name.
func (ms *Materials) Registrations(name string) int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.counts[name]
}

// TotalRegistrations returns the total number of registrations.
func (ms *Materials) TotalRegistrations() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	n := 0
	for _, c := range ms.counts {
		n += c
	}
	return n
}

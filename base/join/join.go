// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package join provides a small join primitive that completes once
// a fixed set of independent signals have all arrived, in any order.
package join

import (
	"context"
	"sync"
)

// Join waits for a fixed number of distinct signals.
// The first failure completes the join early with that error.
// The zero value is not usable; use [New] or [Pair].
type Join struct {
	mu      sync.Mutex
	pending map[string]bool
	err     error
	done    chan struct{}
	closed  bool
}

// New returns a [Join] that completes once every one of the given
// signal names has been marked with [Join.Signal].
func New(signals ...string) *Join {
	j := &Join{pending: make(map[string]bool, len(signals)), done: make(chan struct{})}
	for _, s := range signals {
		j.pending[s] = true
	}
	if len(j.pending) == 0 {
		j.finish(nil)
	}
	return j
}

// Pair returns a two-of-two [Join] over the given signal names.
func Pair(a, b string) *Join {
	return New(a, b)
}

// Signal marks the named signal as arrived. Repeated or unknown
// signals are ignored. It returns true if this signal completed the join.
func (j *Join) Signal(name string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed || !j.pending[name] {
		return false
	}
	delete(j.pending, name)
	if len(j.pending) == 0 {
		j.finish(nil)
		return true
	}
	return false
}

// Fail completes the join with the given error, if not already complete.
func (j *Join) Fail(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.finish(err)
}

// finish must be called with the lock held.
func (j *Join) finish(err error) {
	if j.closed {
		return
	}
	j.closed = true
	j.err = err
	close(j.done)
}

// Done returns a channel that is closed when the join completes.
func (j *Join) Done() <-chan struct{} {
	return j.done
}

// Pending returns whether the named signal has not yet arrived.
func (j *Join) Pending(name string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.pending[name]
}

// Wait blocks until the join completes or the context is done,
// returning the failure error or the context error.
func (j *Join) Wait(ctx context.Context) error {
	select {
	case <-j.done:
		j.mu.Lock()
		defer j.mu.Unlock()
		return j.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

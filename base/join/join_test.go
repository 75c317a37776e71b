// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package join

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairAnyOrder(t *testing.T) {
	for _, order := range [][2]string{{"geometry", "tree"}, {"tree", "geometry"}} {
		j := Pair("geometry", "tree")
		assert.False(t, j.Signal(order[0]))
		assert.False(t, j.Signal(order[0]), "repeated signal is ignored")
		select {
		case <-j.Done():
			t.Fatal("join completed after one signal")
		default:
		}
		assert.True(t, j.Signal(order[1]))
		require.NoError(t, j.Wait(context.Background()))
	}
}

func TestFail(t *testing.T) {
	j := Pair("geometry", "tree")
	j.Signal("tree")
	boom := errors.New("boom")
	j.Fail(boom)
	assert.ErrorIs(t, j.Wait(context.Background()), boom)
	assert.False(t, j.Signal("geometry"))
	j.Fail(errors.New("ignored"))
	assert.ErrorIs(t, j.Wait(context.Background()), boom)
}

func TestWaitContext(t *testing.T) {
	j := Pair("geometry", "tree")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, j.Wait(ctx), context.DeadlineExceeded)
	assert.True(t, j.Pending("geometry"))
}

func TestEmpty(t *testing.T) {
	j := New()
	assert.NoError(t, j.Wait(context.Background()))
}

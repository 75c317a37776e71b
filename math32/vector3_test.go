// Copyright 2024 Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package math32

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVector3Nearest(t *testing.T) {
	cam := Vec3(0, 0, 10)
	a := Vec3(0, 0, 5)
	b := Vec3(0, 0, 15)
	// exact tie: first one wins
	assert.Equal(t, a, cam.Nearest(a, b))
	assert.Equal(t, b, cam.Nearest(b, a))
	assert.Equal(t, b, cam.Nearest(Vec3(100, 0, 0), b))
	assert.Equal(t, cam, cam.Nearest())
}

func TestVector3DominantAxis(t *testing.T) {
	dim, sign, ok := Vec3(0, 0, 1).DominantAxis()
	assert.True(t, ok)
	assert.Equal(t, Z, dim)
	assert.Equal(t, float32(1), sign)

	dim, sign, ok = Vec3(0.1, -0.9, 0.2).DominantAxis()
	assert.True(t, ok)
	assert.Equal(t, Y, dim)
	assert.Equal(t, float32(-1), sign)

	_, _, ok = Vec3(1, 1, 0).DominantAxis()
	assert.False(t, ok)
	_, _, ok = Vector3{}.DominantAxis()
	assert.False(t, ok)
}

func TestVector3FromSlice(t *testing.T) {
	assert.Equal(t, Vec3(1, 2, 3), Vector3FromSlice([]float32{1, 2, 3, 4}))
	assert.Equal(t, Vec3(1, 0, 0), Vector3FromSlice([]float32{1}))
	assert.Equal(t, []float32{1, 2, 3}, Vec3(1, 2, 3).Slice())
}

func TestFormatFixed(t *testing.T) {
	assert.Equal(t, "0.39", FormatFixed(0.39370078, 2))
	assert.Equal(t, "1.00", FormatFixed(1, 2))
	assert.Equal(t, "1.18", FormatFixed(1.1811024, 2))
}

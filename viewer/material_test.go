// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package viewer

import (
	"errors"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cogentcore.org/configurator/math32"
)

type envMap struct{ name string }

func (e *envMap) CloneAttr() (any, error) { return &envMap{name: e.name}, nil }

type sharedBuffer struct{}

type brokenAttr struct{}

func (brokenAttr) CloneAttr() (any, error) { return nil, errors.New("in use") }

func TestMaterialClone(t *testing.T) {
	mt := NewMaterial("oak")
	mt.Color = color.RGBA{10, 20, 30, 255}
	mt.Texture = &Texture{Name: "wood.png"}
	mt.Tiling.Repeat = math32.Vec2(2, 3)
	mt.Attrs = map[string]any{"side": "double"}

	nm, err := mt.Clone()
	require.NoError(t, err)
	assert.NotSame(t, mt, nm)
	assert.Equal(t, "oak", nm.Name)
	assert.Equal(t, mt.Color, nm.Color)
	assert.Equal(t, mt.Tiling, nm.Tiling)
	assert.Same(t, mt.Texture, nm.Texture)
	assert.Nil(t, nm.Attrs)

	nm.Tiling.Repeat.X = 5
	assert.Equal(t, float32(2), mt.Tiling.Repeat.X)
}

func TestMaterialCopyAttr(t *testing.T) {
	from := NewMaterial("src")
	env := &envMap{name: "studio"}
	from.Attrs = map[string]any{
		"side":   "double",
		"envMap": env,
		"buffer": &sharedBuffer{},
		"broken": brokenAttr{},
		"none":   nil,
	}
	to := NewMaterial("dst")
	require.NoError(t, to.CopyAttr(from, "side"))
	require.NoError(t, to.CopyAttr(from, "envMap"))
	require.NoError(t, to.CopyAttr(from, "none"))
	require.NoError(t, to.CopyAttr(from, "missing"))
	assert.Error(t, to.CopyAttr(from, "buffer"))
	assert.Error(t, to.CopyAttr(from, "broken"))

	assert.Equal(t, "double", to.Attrs["side"])
	assert.NotSame(t, env, to.Attrs["envMap"])
	assert.Equal(t, "studio", to.Attrs["envMap"].(*envMap).name)
	assert.Contains(t, to.Attrs, "none")
	assert.NotContains(t, to.Attrs, "missing")
	assert.NotContains(t, to.Attrs, "buffer")
}

func TestMaterialTransparent(t *testing.T) {
	mt := NewMaterial("glass")
	assert.False(t, mt.IsTransparent())
	mt.Opacity = 0.5
	assert.True(t, mt.IsTransparent())
	mt.Opacity = 1
	mt.Texture = &Texture{Transparent: true}
	assert.True(t, mt.IsTransparent())
}

func TestEventTypesString(t *testing.T) {
	assert.Equal(t, "ObjectTreeCreated", ObjectTreeCreated.String())
	assert.Equal(t, "EventTypes(42)", EventTypes(42).String())
}

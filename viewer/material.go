// Copyright (c) 2019, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package viewer

import (
	"fmt"
	"image"
	"image/color"

	"github.com/jinzhu/copier"

	"cogentcore.org/configurator/math32"
)

// Tiling are the texture tiling parameters
type Tiling struct {

	// how often to repeat the texture in each direction
	Repeat math32.Vector2

	// offset for when to start the texure in each direction
	Off math32.Vector2
}

// Defaults sets default tiling params if not yet initialized
func (tl *Tiling) Defaults() {
	if tl.Repeat == (math32.Vector2{}) {
		tl.Repeat = math32.Vec2(1, 1)
	}
}

// Material describes the surface properties of a fragment.
// Materials are registered with the viewer by name through the
// [MaterialManager] and shared between fragments, so they must not be
// modified in place unless they were created for a single fragment.
type Material struct {

	// Name is the registered name of the material.
	Name string

	// Color is the main (diffuse) color of the surface.
	Color color.RGBA

	// Opacity is the overall opacity, 1 = fully opaque.
	Opacity float32

	// Transparent indicates that the material needs transparency sorting.
	Transparent bool

	// Roughness is the physical roughness of the surface, 0..1.
	Roughness float32

	// Metalness is the physical metalness of the surface, 0..1.
	Metalness float32

	// Texture is the color texture, if any.
	Texture *Texture `copier:"-"`

	// Tiling is the texture tiling parameters: repeat and offset.
	Tiling Tiling

	// Attrs are auxiliary shading attributes (environment maps,
	// side flags, polygon offsets, etc) keyed by name. Values may be
	// shared resources that cannot be deep copied.
	Attrs map[string]any `copier:"-"`
}

// NewMaterial returns a new material with default values.
func NewMaterial(name string) *Material {
	mt := &Material{Name: name}
	mt.Defaults()
	return mt
}

// Defaults sets default surface parameters
func (mt *Material) Defaults() {
	mt.Color = color.RGBA{128, 128, 128, 255}
	mt.Opacity = 1
	mt.Roughness = 0.5
	mt.Tiling.Defaults()
}

// Clone returns a copy of the material. The texture is shared
// and the attributes are not copied; see [Material.CopyAttr].
func (mt *Material) Clone() (*Material, error) {
	nm := &Material{}
	if err := copier.CopyWithOption(nm, mt, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("viewer.Material.Clone %q: %w", mt.Name, err)
	}
	nm.Texture = mt.Texture
	return nm, nil
}

// CopyAttr deep copies the named auxiliary attribute from the given
// material, if it has it. It returns an error if the value cannot be copied.
func (mt *Material) CopyAttr(from *Material, name string) error {
	v, ok := from.Attrs[name]
	if !ok {
		return nil
	}
	if mt.Attrs == nil {
		mt.Attrs = map[string]any{}
	}
	if v == nil {
		mt.Attrs[name] = nil
		return nil
	}
	if c, ok := v.(interface{ CloneAttr() (any, error) }); ok {
		cv, err := c.CloneAttr()
		if err != nil {
			return fmt.Errorf("viewer.Material.CopyAttr %q: %w", name, err)
		}
		mt.Attrs[name] = cv
		return nil
	}
	switch v.(type) {
	case bool, string, int, int32, int64, float32, float64, color.RGBA:
		mt.Attrs[name] = v
		return nil
	}
	return fmt.Errorf("viewer.Material.CopyAttr %q: value of type %T is not cloneable", name, v)
}

// IsTransparent returns true if the texture says it is, or if opacity < 1
func (mt *Material) IsTransparent() bool {
	if mt.Texture != nil && mt.Texture.Transparent {
		return true
	}
	return mt.Transparent || mt.Opacity < 1
}

// MaterialManager is the registry of named materials of a viewer.
type MaterialManager interface {

	// Find returns the material registered under the given name.
	Find(name string) (*Material, bool)

	// Add registers the material under the given name, replacing any existing one.
	Add(name string, m *Material)

	// Remove removes the material registered under the given name.
	Remove(name string)
}

// Texture is a loaded texture image.
type Texture struct {

	// Name is the url or name the texture was loaded from.
	Name string

	// Transparent is whether the texture has transparency.
	Transparent bool

	// Image is the texture image.
	Image image.Image
}

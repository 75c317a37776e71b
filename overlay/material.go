// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package overlay

import (
	"context"
	"errors"
	"fmt"

	"cogentcore.org/configurator/colors"
	"cogentcore.org/configurator/math32"
	"cogentcore.org/configurator/viewer"
)

// DefaultTextureSize is the world size covered by one texture tile
// when a [Descriptor] does not specify one.
var DefaultTextureSize float32 = 1000

// Descriptor describes a material to apply to an item.
type Descriptor struct {

	// ID is the stable external identifier of the material.
	ID string `json:"id" yaml:"id" toml:"id"`

	// Color is the diffuse color, if any.
	Color *colors.RGB `json:"color,omitempty" yaml:"color,omitempty" toml:"color,omitempty"`

	// TextureURL is the url of the color texture, if any.
	TextureURL string `json:"textureUrl,omitempty" yaml:"textureUrl,omitempty" toml:"textureUrl,omitempty"`

	// TextureSize is the world size covered by a single texture tile.
	TextureSize float32 `json:"textureSize,omitempty" yaml:"textureSize,omitempty" toml:"textureSize,omitempty"`

	// Opacity is the overall opacity, if set.
	Opacity *float32 `json:"opacity,omitempty" yaml:"opacity,omitempty" toml:"opacity,omitempty"`

	// Roughness is the surface roughness, if set.
	Roughness *float32 `json:"roughness,omitempty" yaml:"roughness,omitempty" toml:"roughness,omitempty"`

	// Metalness is the surface metalness, if set.
	Metalness *float32 `json:"metalness,omitempty" yaml:"metalness,omitempty" toml:"metalness,omitempty"`
}

// MaterialName returns the registered material name of a descriptor
// applied to a node of a sub-model. Tiling depends on the node size,
// so the name is scoped to the node.
func MaterialName(sub string, node viewer.NodeID, id string) string {
	return fmt.Sprintf("%s/%d/material/%s", sub, node, id)
}

// apply sets the descriptor properties on the material, with texture
// tiling normalized by the given world-space bounding diagonal.
func (d *Descriptor) apply(mt *viewer.Material, tx *viewer.Texture, diag float32) {
	if d.Color != nil {
		mt.Color = d.Color.RGBA()
	}
	if d.Opacity != nil {
		mt.Opacity = *d.Opacity
		mt.Transparent = mt.Opacity < 1
	}
	if d.Roughness != nil {
		mt.Roughness = *d.Roughness
	}
	if d.Metalness != nil {
		mt.Metalness = *d.Metalness
	}
	if tx != nil {
		mt.Texture = tx
		size := d.TextureSize
		if size <= 0 {
			size = DefaultTextureSize
		}
		rep := diag / size
		if rep <= 0 {
			rep = 1
		}
		mt.Tiling.Repeat = math32.Vec2(rep, rep)
		mt.Tiling.Off = math32.Vector2{}
	}
}

// textureLoad is a texture load shared by all users of the same url.
type textureLoad struct {
	done chan struct{}
	tx   *viewer.Texture
	err  error
}

// texture loads the texture at url through the viewer, once per url.
// Failed loads are not cached.
func (o *Overlay) texture(ctx context.Context, url string) (*viewer.Texture, error) {
	o.mu.Lock()
	tl, ok := o.textures[url]
	if !ok {
		tl = &textureLoad{done: make(chan struct{})}
		o.textures[url] = tl
	}
	o.mu.Unlock()
	if !ok {
		tl.tx, tl.err = o.v.LoadTexture(ctx, url)
		if tl.err != nil {
			o.mu.Lock()
			if o.textures[url] == tl {
				delete(o.textures, url)
			}
			o.mu.Unlock()
		}
		close(tl.done)
	}
	select {
	case <-tl.done:
		return tl.tx, tl.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// VisibleFragments returns the fragments of the node and its descendants,
// skipping every subtree rooted at a hidden node.
func VisibleFragments(tree viewer.ObjectTree, node viewer.NodeID) []viewer.FragmentID {
	var frags []viewer.FragmentID
	stack := []viewer.NodeID{node}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if tree.IsHidden(id) {
			continue
		}
		frags = append(frags, tree.Fragments(id)...)
		kids := tree.Children(id)
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return frags
}

// ApplyMaterial applies the descriptor to all visible fragments at or
// below the node of the sub-model. The texture, if any, is loaded once
// per url. The material is looked up by its name first and only
// registered if absent. It returns the fragments that were touched.
func (o *Overlay) ApplyMaterial(ctx context.Context, sub string, m viewer.Model, node viewer.NodeID, d Descriptor) ([]viewer.FragmentID, error) {
	if d.ID == "" {
		return nil, errors.New("overlay.ApplyMaterial: material descriptor has no id")
	}
	tree, ok := m.ObjectTree()
	if !ok {
		return nil, fmt.Errorf("overlay.ApplyMaterial %q: object tree is not ready", sub)
	}
	frags := VisibleFragments(tree, node)
	if len(frags) == 0 {
		return nil, nil
	}
	var tx *viewer.Texture
	if d.TextureURL != "" {
		var err error
		tx, err = o.texture(ctx, d.TextureURL)
		if err != nil {
			return nil, fmt.Errorf("overlay.ApplyMaterial %q: loading texture: %w", d.ID, err)
		}
	}
	diag := tree.NodeBox(node).Diagonal()
	name := MaterialName(sub, node, d.ID)

	o.mu.Lock()
	defer o.mu.Unlock()
	var touched []viewer.FragmentID
	for _, f := range frags {
		e, ok := o.capture(sub, m, f)
		if !ok {
			continue
		}
		mt, err := o.register(sub, name, func() (*viewer.Material, error) {
			mt, err := derive(e.base)
			if err != nil {
				return nil, err
			}
			d.apply(mt, tx, diag)
			return mt, nil
		})
		if err != nil {
			return touched, err
		}
		o.push(e, f, mt)
		touched = append(touched, f)
	}
	return touched, nil
}

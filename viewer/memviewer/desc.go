// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memviewer

import (
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"cogentcore.org/configurator/colors"
	"cogentcore.org/configurator/viewer"
)

// ModelDesc is the file format of a memory viewer model. JSON files
// are read with the same decoder, as JSON is a subset of YAML.
//
//	materials:
//	  oak: {color: "#a0703c", roughness: 0.8}
//	root:
//	  name: Table
//	  children:
//	    - name: Top
//	      box: [0, 0, 700, 1200, 800, 740]
//	      material: oak
type ModelDesc struct {

	// Materials are the named materials of the model.
	Materials map[string]MaterialDesc `yaml:"materials"`

	// Root is the root node of the model.
	Root NodeDesc `yaml:"root"`
}

// NodeDesc is a node of a [ModelDesc].
type NodeDesc struct {

	// Name is the name of the node.
	Name string `yaml:"name"`

	// Box is a single fragment box: min x, y, z, max x, y, z.
	Box []float32 `yaml:"box,flow"`

	// Boxes are additional fragment boxes.
	Boxes [][]float32 `yaml:"boxes"`

	// Material is the name of the material of the fragments.
	Material string `yaml:"material"`

	// Children are the child nodes.
	Children []NodeDesc `yaml:"children"`
}

// MaterialDesc is a material of a [ModelDesc].
type MaterialDesc struct {
	Color     colors.RGB     `yaml:"color"`
	Opacity   *float32       `yaml:"opacity"`
	Roughness *float32       `yaml:"roughness"`
	Metalness *float32       `yaml:"metalness"`
	Attrs     map[string]any `yaml:"attrs"`
}

func (md *MaterialDesc) material(name string) *viewer.Material {
	mt := viewer.NewMaterial(name)
	mt.Color = md.Color.RGBA()
	if md.Opacity != nil {
		mt.Opacity = *md.Opacity
	}
	if md.Roughness != nil {
		mt.Roughness = *md.Roughness
	}
	if md.Metalness != nil {
		mt.Metalness = *md.Metalness
	}
	mt.Transparent = mt.Opacity < 1
	if len(md.Attrs) > 0 {
		mt.Attrs = md.Attrs
	}
	return mt
}

// readModel reads the model description at the given path.
func readModel(fsys fs.FS, path string) (*ModelDesc, error) {
	if path == "" {
		return nil, fmt.Errorf("memviewer: empty source ref")
	}
	b, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("memviewer: reading model: %w", err)
	}
	desc := &ModelDesc{}
	if err := yaml.Unmarshal(b, desc); err != nil {
		return nil, fmt.Errorf("memviewer: parsing model %q: %w", path, err)
	}
	if desc.Root.Name == "" && len(desc.Root.Children) == 0 {
		return nil, fmt.Errorf("memviewer: model %q has no root node", path)
	}
	return desc, nil
}

// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memviewer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"slices"

	"github.com/anthonynsimon/bild/transform"

	"cogentcore.org/configurator/colors"
	"cogentcore.org/configurator/math32"
	"cogentcore.org/configurator/viewer"
)

// Background is the background color of screenshots.
var Background = color.RGBA{255, 255, 255, 255}

// shape is one projected fragment of a screenshot.
type shape struct {
	rect  image.Rectangle
	depth float32
	color color.NRGBA
}

// Screenshot renders every visible fragment of the shown models as
// the screen rectangle spanned by its projected box, far to near,
// and scales the canvas to the requested size.
func (v *Viewer) Screenshot(width, height int) (image.Image, error) {
	if !v.Initialized() {
		return nil, viewer.ErrNotInitialized
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("memviewer.Screenshot: invalid size %dx%d", width, height)
	}
	cam := v.Camera()
	var shapes []shape
	for _, m := range v.Models() {
		if m.Hidden() {
			continue
		}
		shapes = append(shapes, v.modelShapes(m, cam)...)
	}
	slices.SortStableFunc(shapes, func(a, b shape) int {
		switch {
		case a.depth > b.depth:
			return -1
		case a.depth < b.depth:
			return 1
		}
		return 0
	})
	canvas := image.NewRGBA(image.Rect(0, 0, v.opts.Width, v.opts.Height))
	draw.Draw(canvas, canvas.Bounds(), colors.Uniform(Background), image.Point{}, draw.Src)
	for _, s := range shapes {
		draw.Draw(canvas, s.rect, colors.Uniform(s.color), image.Point{}, draw.Over)
	}
	if width == v.opts.Width && height == v.opts.Height {
		return canvas, nil
	}
	return transform.Resize(canvas, width, height, transform.Linear), nil
}

func (v *Viewer) modelShapes(m *Model, cam viewer.Camera) []shape {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unloaded || !m.geometry {
		return nil
	}
	var shapes []shape
	for i, fr := range m.fragments {
		if !m.visible(fr.node) {
			continue
		}
		fid := viewer.FragmentID(i)
		wb := m.worldBox(fid)
		r := image.Rectangle{Min: image.Pt(1<<30, 1<<30), Max: image.Pt(-1<<30, -1<<30)}
		for _, c := range wb.Corners() {
			p, _ := v.project(cam, c)
			p = p.RoundXY()
			r.Min.X = min(r.Min.X, int(p.X))
			r.Min.Y = min(r.Min.Y, int(p.Y))
			r.Max.X = max(r.Max.X, int(p.X))
			r.Max.Y = max(r.Max.Y, int(p.Y))
		}
		_, depth := v.project(cam, wb.Center())
		clr := color.NRGBA{128, 128, 128, 255}
		if mt := m.materials[fid]; mt != nil {
			a := uint8(math32.Max(0, math32.Min(1, mt.Opacity)) * 255)
			clr = color.NRGBA{mt.Color.R, mt.Color.G, mt.Color.B, a}
		}
		shapes = append(shapes, shape{rect: r, depth: depth, color: clr})
	}
	return shapes
}

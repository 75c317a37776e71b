// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package memtest provides model fixtures and helpers for testing
// against a [memviewer.Viewer].
package memtest

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"

	"cogentcore.org/configurator/viewer/memviewer"
)

// Chair is a chair model with duplicate leg names and nested nodes.
const Chair = `
materials:
  fabric: {color: "#336699", roughness: 0.9, attrs: {side: double, envMap: studio}}
  steel: {color: "#cccccc", metalness: 1, roughness: 0.2}
root:
  name: Chair
  children:
    - name: Seat
      box: [0, 0, 400, 500, 500, 450]
      material: fabric
      children:
        - name: Cushion
          box: [20, 20, 450, 480, 480, 480]
          material: fabric
    - name: Back
      box: [0, 450, 450, 500, 500, 900]
      material: fabric
    - name: Legs
      children:
        - {name: Leg, box: [0, 0, 0, 40, 40, 400], material: steel}
        - {name: Leg, box: [460, 0, 0, 500, 40, 400], material: steel}
        - {name: Leg, box: [0, 460, 0, 40, 500, 400], material: steel}
        - {name: Leg, box: [460, 460, 0, 500, 500, 400], material: steel}
    - name: Armrest
      boxes:
        - [-40, 0, 450, 0, 450, 600]
        - [500, 0, 450, 540, 450, 600]
      material: steel
`

// Table is a table model.
const Table = `
materials:
  oak: {color: "#a0703c", roughness: 0.8}
root:
  name: Table
  children:
    - {name: Top, box: [0, 0, 700, 1200, 800, 740], material: oak}
    - {name: Leg, box: [0, 0, 0, 50, 50, 700], material: oak}
    - {name: Leg, box: [1150, 750, 0, 1200, 800, 700], material: oak}
`

// Block is a 10 x 20 x 30 box in JSON form.
const Block = `{"materials": {"paint": {"color": "#ffffff"}},
 "root": {"name": "Block", "box": [0, 0, 0, 10, 20, 30], "material": "paint"}}`

// Broken is an invalid model file.
const Broken = "root: [unterminated"

// TexturePNG returns a small opaque 4x4 PNG texture.
func TexturePNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := range 4 {
		for x := range 4 {
			img.Set(x, y, color.RGBA{uint8(x * 60), uint8(y * 60), 100, 255})
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

// FS returns a file system with the fixture models at
// chair.yaml, table.yaml, block.json and broken.yaml, and a texture
// at textures/wood.png plus a non-image at textures/notes.txt.
func FS() fstest.MapFS {
	return fstest.MapFS{
		"chair.yaml":         {Data: []byte(Chair)},
		"table.yaml":         {Data: []byte(Table)},
		"block.json":         {Data: []byte(Block)},
		"broken.yaml":        {Data: []byte(Broken)},
		"textures/wood.png":  {Data: TexturePNG()},
		"textures/notes.txt": {Data: []byte("not an image")},
	}
}

// NewViewer returns a started memory viewer over [FS] that is closed
// when the test finishes.
func NewViewer(t testing.TB, opts memviewer.Options) *memviewer.Viewer {
	t.Helper()
	v := memviewer.New(FS(), opts)
	v.Start()
	t.Cleanup(v.Close)
	return v
}

// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package colors

import (
	"image"
	"image/color"
)

// Uniform returns a new [image.Uniform] filled completely with the given color.
// See [ToUniform] for a converse.
func Uniform(c color.Color) image.Image {
	return image.NewUniform(c)
}

// ToUniform converts the given image to a uniform [color.RGBA] color.
// See [Uniform] for a converse. The image must be non-nil.
func ToUniform(img image.Image) color.RGBA {
	return color.RGBAModel.Convert(img.At(0, 0)).(color.RGBA)
}

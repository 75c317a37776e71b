// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package colors provides the opaque RGB color type used for
// configurator color overrides, with hex string parsing and formatting.
package colors

import (
	"fmt"
	"image/color"
	"strings"
)

// FromRGB makes a new fully opaque RGBA color from the given
// RGB uint8 values, using 255 for A.
func FromRGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}

// FromHex parses the given hex color string
// and returns the resulting fully opaque color.
// It accepts #rgb, #rrggbb and the same without the leading #.
func FromHex(hex string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	var r, g, b uint8
	var err error
	switch len(h) {
	case 3:
		_, err = fmt.Sscanf(h, "%1x%1x%1x", &r, &g, &b)
		r *= 17
		g *= 17
		b *= 17
	case 6:
		_, err = fmt.Sscanf(h, "%2x%2x%2x", &r, &g, &b)
	default:
		err = fmt.Errorf("invalid length %d", len(h))
	}
	if err != nil {
		return color.RGBA{}, fmt.Errorf("colors.FromHex: could not process %q: %w", hex, err)
	}
	return FromRGB(r, g, b), nil
}

// AsHex returns the color as a standard 7-character #rrggbb hex string.
func AsHex(c color.Color) string {
	if c == nil {
		return ""
	}
	r := color.RGBAModel.Convert(c).(color.RGBA)
	return fmt.Sprintf("#%02x%02x%02x", r.R, r.G, r.B)
}

// RGB is an opaque color that marshals to and from a #rrggbb hex string.
type RGB struct {
	R, G, B uint8
}

// RGBA returns the color as a fully opaque [color.RGBA].
func (c RGB) RGBA() color.RGBA {
	return FromRGB(c.R, c.G, c.B)
}

func (c RGB) String() string {
	return AsHex(c.RGBA())
}

func (c RGB) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *RGB) UnmarshalText(text []byte) error {
	rgba, err := FromHex(string(text))
	if err != nil {
		return err
	}
	*c = RGB{rgba.R, rgba.G, rgba.B}
	return nil
}

// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package configurator

import (
	"fmt"
	"time"

	"cogentcore.org/configurator/base/errors"
	"cogentcore.org/configurator/base/iox/tomlx"
	"cogentcore.org/configurator/base/reflectx"
)

// Duration is a [time.Duration] that is read and written
// as text, such as "250ms".
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Settings are the feature settings of an [Element].
type Settings struct {

	// Enable3DFootprint makes the footprint available on initialization.
	Enable3DFootprint bool `toml:"enable3dFootprint"`

	// Enable3DLabel makes the name labels available on initialization.
	Enable3DLabel bool `toml:"enable3dLabel"`

	// FootprintUnit is the unit of the footprint dimension labels:
	// mm, cm, m, inch, or feet.
	FootprintUnit string `toml:"footprintUnit" default:"mm"`

	// LabelRetryDelay is the delay before name labels are rebuilt
	// after a positioning failure.
	LabelRetryDelay Duration `toml:"labelRetryDelay" default:"250ms"`

	// ScreenshotWidth is the default screenshot width in pixels.
	ScreenshotWidth int `toml:"screenshotWidth" default:"1024"`

	// ScreenshotHeight is the default screenshot height in pixels.
	ScreenshotHeight int `toml:"screenshotHeight" default:"768"`

	// OverviewFromLayout sets the configuration overview from the
	// titles and thumbnails of the layout records on every update.
	OverviewFromLayout bool `toml:"overviewFromLayout" default:"true"`
}

// Defaults sets the settings to their default values.
func (s *Settings) Defaults() {
	errors.Log(reflectx.SetFromDefaultTags(s))
}

// DefaultSettings returns new settings with default values.
func DefaultSettings() Settings {
	s := Settings{}
	s.Defaults()
	return s
}

// OpenSettings returns the default settings overridden by
// the values in the given TOML files, in order.
func OpenSettings(filenames ...string) (Settings, error) {
	s := DefaultSettings()
	if err := tomlx.OpenFiles(&s, filenames...); err != nil {
		return s, fmt.Errorf("configurator: opening settings: %w", err)
	}
	return s, nil
}

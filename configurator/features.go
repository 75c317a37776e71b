// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package configurator

import "log/slog"

// toggler is a feature that can be shown and hidden.
type toggler interface {
	Toggle()
	Hide()
	Visible() bool
}

// setEnabled sets the enabled flag of a feature, hiding it when disabled.
func (e *Element) setEnabled(flag *bool, t func() toggler, on bool) error {
	e.mu.Lock()
	if !e.initialized {
		e.mu.Unlock()
		return ErrNotInitialized
	}
	*flag = on
	f := t()
	e.mu.Unlock()
	if !on {
		f.Hide()
	}
	return nil
}

// toggle toggles a feature, logging and ignoring the request
// if the feature is not enabled.
func (e *Element) toggle(name string, flag *bool, t func() toggler) error {
	e.mu.Lock()
	if !e.initialized {
		e.mu.Unlock()
		return ErrNotInitialized
	}
	on := *flag
	f := t()
	e.mu.Unlock()
	if !on {
		slog.Error("configurator: feature is not enabled", "feature", name)
		return nil
	}
	f.Toggle()
	return nil
}

func (e *Element) footprintFeature() toggler { return e.footprint }

func (e *Element) labelsFeature() toggler { return e.names }

// EnableFootprint makes the footprint available for toggling.
func (e *Element) EnableFootprint() error {
	return e.setEnabled(&e.footprintEnabled, e.footprintFeature, true)
}

// DisableFootprint hides the footprint and makes it unavailable.
func (e *Element) DisableFootprint() error {
	return e.setEnabled(&e.footprintEnabled, e.footprintFeature, false)
}

// ToggleFootprint shows or hides the footprint.
func (e *Element) ToggleFootprint() error {
	return e.toggle("footprint", &e.footprintEnabled, e.footprintFeature)
}

// EnableLabels makes the name labels available for toggling.
func (e *Element) EnableLabels() error {
	return e.setEnabled(&e.labelsEnabled, e.labelsFeature, true)
}

// DisableLabels hides the name labels and makes them unavailable.
func (e *Element) DisableLabels() error {
	return e.setEnabled(&e.labelsEnabled, e.labelsFeature, false)
}

// ToggleLabels shows or hides the name labels.
func (e *Element) ToggleLabels() error {
	return e.toggle("labels", &e.labelsEnabled, e.labelsFeature)
}

// FeatureState is the state of a toggleable feature.
type FeatureState struct {
	Enabled bool `json:"enabled"`
	Visible bool `json:"visible"`
}

// Features returns the state of the footprint and the name labels.
func (e *Element) Features() (footprint, labels FeatureState) {
	e.mu.Lock()
	if !e.initialized {
		e.mu.Unlock()
		return
	}
	footprint.Enabled, labels.Enabled = e.footprintEnabled, e.labelsEnabled
	fp, names := e.footprint, e.names
	e.mu.Unlock()
	footprint.Visible, labels.Visible = fp.Visible(), names.Visible()
	return
}

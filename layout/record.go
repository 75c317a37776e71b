// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package layout

import (
	"errors"
	"slices"

	"cogentcore.org/configurator/colors"
	"cogentcore.org/configurator/math32"
	"cogentcore.org/configurator/overlay"
)

// MaterialDescriptor describes a material applied to a named item.
type MaterialDescriptor = overlay.Descriptor

// Record is the desired state of one sub-model.
type Record struct {

	// SubModelID is the unique key of the sub-model.
	SubModelID string `json:"subModelId" yaml:"subModelId" toml:"subModelId"`

	// SourceRef is the opaque geometry locator passed to the viewer.
	SourceRef string `json:"sourceRef" yaml:"sourceRef" toml:"sourceRef"`

	// Position is the world placement offset.
	Position math32.Vector3 `json:"position" yaml:"position" toml:"position"`

	// Rotation is the yaw angle in degrees about the world up (Z) axis.
	Rotation float32 `json:"rotation" yaml:"rotation" toml:"rotation"`

	// VisibleItems are the names of items to show.
	VisibleItems []string `json:"visibleItems,omitempty" yaml:"visibleItems,omitempty" toml:"visibleItems,omitempty"`

	// HiddenItems are the names of items to hide.
	// An item in both sets is visible.
	HiddenItems []string `json:"hiddenItems,omitempty" yaml:"hiddenItems,omitempty" toml:"hiddenItems,omitempty"`

	// ItemColors are color overrides by item name.
	ItemColors map[string]colors.RGB `json:"itemColors,omitempty" yaml:"itemColors,omitempty" toml:"itemColors,omitempty"`

	// ItemMaterials are material overrides by item name.
	ItemMaterials map[string]MaterialDescriptor `json:"itemMaterials,omitempty" yaml:"itemMaterials,omitempty" toml:"itemMaterials,omitempty"`

	// DisplayName is the name shown in the name label of the sub-model.
	DisplayName string `json:"displayName,omitempty" yaml:"displayName,omitempty" toml:"displayName,omitempty"`

	// Title is the title of the configuration, for overviews.
	Title string `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`

	// ThumbnailURL is the url of the configuration thumbnail, for overviews.
	ThumbnailURL string `json:"thumbnailUrl,omitempty" yaml:"thumbnailUrl,omitempty" toml:"thumbnailUrl,omitempty"`
}

// Validate returns an error if the record cannot be reconciled.
func (r *Record) Validate() error {
	if r.SubModelID == "" {
		return errors.New("layout: record has no sub-model id")
	}
	if r.SourceRef == "" {
		return errors.New("layout: record " + r.SubModelID + " has no source ref")
	}
	return nil
}

// Label returns the display name, or the sub-model id if it has none.
func (r *Record) Label() string {
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return r.SubModelID
}

// sortedKeys returns the keys of the map in sorted order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

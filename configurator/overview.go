// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package configurator

import (
	"fmt"
	"sync"

	"cogentcore.org/configurator/layout"
)

// OverviewEntry is one linked configuration of the overview.
type OverviewEntry struct {
	ConfigurationID string `json:"configurationId"`
	Title           string `json:"title"`
	ImageURL        string `json:"imageUrl,omitempty"`
}

// OverviewItem is an overview entry with its selection state.
type OverviewItem struct {
	OverviewEntry
	Selected bool `json:"selected"`
}

// Overview is the selection list of the linked configurations.
type Overview struct {
	mu       sync.Mutex
	entries  []OverviewEntry
	selected string
	onSelect func(id string)
}

func newOverview(onSelect func(id string)) *Overview {
	return &Overview{onSelect: onSelect}
}

// OverviewFromRecords returns the overview entries of the layout records,
// titled by their title or display name.
func OverviewFromRecords(records []layout.Record) []OverviewEntry {
	entries := make([]OverviewEntry, 0, len(records))
	for _, r := range records {
		title := r.Title
		if title == "" {
			title = r.Label()
		}
		entries = append(entries, OverviewEntry{ConfigurationID: r.SubModelID, Title: title, ImageURL: r.ThumbnailURL})
	}
	return entries
}

// Set sets the entries.
func (ov *Overview) Set(entries []OverviewEntry) {
	ov.mu.Lock()
	defer ov.mu.Unlock()
	ov.entries = entries
}

// Select selects the configuration id, without notification.
func (ov *Overview) Select(id string) {
	ov.mu.Lock()
	defer ov.mu.Unlock()
	ov.selected = id
}

// Items returns the entries with their selection state. The first entry
// is selected if the selected id is not an entry. There are no items
// unless there is more than one entry.
func (ov *Overview) Items() []OverviewItem {
	ov.mu.Lock()
	defer ov.mu.Unlock()
	if len(ov.entries) <= 1 {
		return nil
	}
	if !ov.has(ov.selected) {
		ov.selected = ov.entries[0].ConfigurationID
	}
	items := make([]OverviewItem, len(ov.entries))
	for i, en := range ov.entries {
		items[i] = OverviewItem{OverviewEntry: en, Selected: en.ConfigurationID == ov.selected}
	}
	return items
}

func (ov *Overview) has(id string) bool {
	for _, en := range ov.entries {
		if en.ConfigurationID == id {
			return true
		}
	}
	return false
}

// Click selects the configuration id and notifies the selection.
func (ov *Overview) Click(id string) error {
	ov.mu.Lock()
	if !ov.has(id) {
		ov.mu.Unlock()
		return fmt.Errorf("configurator: configuration %q is not in the overview", id)
	}
	ov.selected = id
	fn := ov.onSelect
	ov.mu.Unlock()
	if fn != nil {
		fn(id)
	}
	return nil
}

// SetOverview sets the linked configurations of the overview.
func (e *Element) SetOverview(entries []OverviewEntry) {
	e.overview.Set(entries)
}

// SelectConfiguration marks the configuration id as selected
// in the overview.
func (e *Element) SelectConfiguration(id string) {
	e.overview.Select(id)
}

// Overview returns the overview items, see [Overview.Items].
func (e *Element) Overview() []OverviewItem {
	return e.overview.Items()
}

// ClickOverview handles a click on the overview entry of the
// configuration id, firing the configuration selected notification.
func (e *Element) ClickOverview(id string) error {
	return e.overview.Click(id)
}

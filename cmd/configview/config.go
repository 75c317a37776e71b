// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"cogentcore.org/configurator/configurator"
)

// Config is the configuration of configview.
type Config struct {

	// Includes are config files to include, which are overwritten
	// by the including file.
	Includes []string `flag:"-"`

	// Addr is the address to serve the host bridge on.
	Addr string `default:"localhost:8090" desc:"address to serve the host bridge on"`

	// Models is the directory the layout source refs are resolved in.
	Models string `default:"." desc:"directory of the model and texture files (~ expands to home)"`

	// Layout is the layout file (YAML, JSON or TOML).
	Layout string `default:"layout.yaml" desc:"layout file to show (yaml, json or toml)"`

	// Watch reloads the layout file when it changes.
	Watch bool `default:"true" desc:"update the viewer when the layout file changes"`

	// Screenshot writes a screenshot of the initial layout to the
	// given PNG file and exits, instead of serving.
	Screenshot string `desc:"write a screenshot of the layout to this file and exit"`

	// VeryVerbose shows debug messages.
	VeryVerbose bool `flag:"vv" desc:"show debug messages"`

	// Verbose shows info messages.
	Verbose bool `flag:"v" desc:"show info messages"`

	// Quiet only shows error messages.
	Quiet bool `flag:"q" desc:"only show errors"`

	// Element are the element settings.
	Element configurator.Settings
}

func (c *Config) IncludesPtr() *[]string { return &c.Includes }

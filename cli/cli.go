// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cli loads command configuration structs from `default:`
// struct tags, TOML config files with includes, and command line flags.
package cli

import (
	"flag"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"unicode"

	"cogentcore.org/configurator/base/errors"
	"cogentcore.org/configurator/base/fsx"
	"cogentcore.org/configurator/base/iox/tomlx"
	"cogentcore.org/configurator/base/reflectx"
)

// SetFromDefaults sets the values of the given config object
// from `default:` struct field tag values. Errors are automatically
// logged in addition to being returned.
func SetFromDefaults(cfg any) error {
	return errors.Log(reflectx.SetFromDefaultTags(cfg))
}

// Includer is a config that includes other config files. The
// included files are opened first, so that includers overwrite
// included settings.
type Includer interface {
	IncludesPtr() *[]string
}

// Open reads the config struct from the given config file, looking
// for it and its includes on the given paths. It returns an error
// if the file or any of its includes cannot be found.
func Open(cfg any, file string, paths ...string) error {
	files := fsx.FindFilesOnPaths(paths, file)
	if len(files) == 0 {
		return fmt.Errorf("cli.Open: no files found for %q", file)
	}
	inc, ok := cfg.(Includer)
	if !ok {
		return tomlx.OpenFiles(cfg, files...)
	}
	incs, err := includeStack(cfg, inc, paths, files, nil)
	if err != nil {
		return err
	}
	for _, f := range slices.Backward(incs) {
		if err := tomlx.OpenFiles(cfg, fsx.FindFilesOnPaths(paths, f)...); err != nil {
			return err
		}
	}
	// reopen original
	if err := tomlx.OpenFiles(cfg, files...); err != nil {
		return err
	}
	*inc.IncludesPtr() = incs
	return nil
}

// includeStack returns the transitive includes of the given files,
// nearest first.
func includeStack(cfg any, inc Includer, paths, files, seen []string) ([]string, error) {
	*inc.IncludesPtr() = nil
	if err := tomlx.OpenFiles(cfg, files...); err != nil {
		return nil, err
	}
	direct := slices.Clone(*inc.IncludesPtr())
	var stack []string
	for _, f := range direct {
		if slices.Contains(seen, f) {
			return nil, fmt.Errorf("cli.Open: include cycle through %q", f)
		}
		found := fsx.FindFilesOnPaths(paths, f)
		if len(found) == 0 {
			return nil, fmt.Errorf("cli.Open: no files found for include %q", f)
		}
		stack = append(stack, f)
		sub, err := includeStack(cfg, inc, paths, found, append(seen, f))
		if err != nil {
			return nil, err
		}
		stack = append(stack, sub...)
	}
	return stack, nil
}

// FlagName returns the flag name of a config field: its `flag:` tag,
// or the field name with a lowercase first letter.
func FlagName(f reflect.StructField) string {
	if name, ok := f.Tag.Lookup("flag"); ok {
		return name
	}
	r := []rune(f.Name)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// AddFlags adds a flag for each exported field of the given pointer to
// a config struct, with the `desc:` tag as usage. Fields with a `flag:"-"`
// tag and struct fields are skipped. Flags set the fields directly, so
// they should be parsed after the config file is opened.
func AddFlags(fs *flag.FlagSet, cfg any) {
	val := reflectx.NonPointerValue(reflect.ValueOf(cfg))
	typ := val.Type()
	for i := range typ.NumField() {
		f := typ.Field(i)
		name := FlagName(f)
		if !f.IsExported() || name == "-" || f.Type.Kind() == reflect.Struct {
			continue
		}
		fv := val.Field(i)
		usage := f.Tag.Get("desc")
		if f.Type.Kind() == reflect.Bool {
			fs.BoolFunc(name, usage, func(s string) error {
				return reflectx.SetString(fv, s)
			})
			continue
		}
		if def := f.Tag.Get("default"); def != "" {
			usage = strings.TrimSpace(usage + " (default " + def + ")")
		}
		fs.Func(name, usage, func(s string) error {
			return reflectx.SetString(fv, s)
		})
	}
}

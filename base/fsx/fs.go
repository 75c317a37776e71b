// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fsx provides file system path helpers.
package fsx

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// ExpandHome expands a leading ~ in the path to the home directory
// of the user.
func ExpandHome(path string) (string, error) {
	return homedir.Expand(path)
}

// FileExists checks whether given file exists, returning true if so,
// false if not, and error if there is an error in accessing the file.
func FileExists(filePath string) (bool, error) {
	fileInfo, err := os.Stat(filePath)
	if err == nil {
		return !fileInfo.IsDir(), nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// FindFilesOnPaths attempts to locate given file(s) on given list of paths,
// returning the full Abs path to each file found (nil if none).
// A file with an absolute path is returned as is if it exists.
// Paths may start with ~ for the home directory.
func FindFilesOnPaths(paths []string, files ...string) []string {
	var res []string
	for _, fn := range files {
		fn, err := ExpandHome(fn)
		if err != nil {
			continue
		}
		if filepath.IsAbs(fn) {
			if ok, _ := FileExists(fn); ok {
				res = append(res, fn)
			}
			continue
		}
		for _, path := range paths {
			path, err := ExpandHome(path)
			if err != nil {
				continue
			}
			fp := filepath.Join(path, fn)
			if ok, _ := FileExists(fp); ok {
				if abs, err := filepath.Abs(fp); err == nil {
					res = append(res, abs)
				}
			}
		}
	}
	return res
}

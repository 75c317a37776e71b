// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDelay is the quiet time after a layout file change before it is
// reloaded, so that the several events of one save cause one reload.
const watchDelay = 100 * time.Millisecond

// watch calls changed after the file is written or replaced, until
// the context is done. The directory is watched, so that files
// replaced by editors are followed.
func watch(ctx context.Context, file string, delay time.Duration, changed func()) error {
	abs, err := filepath.Abs(file)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	timer := time.NewTimer(delay)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			slog.Debug("configview: layout file changed", "file", abs, "op", event.Op)
			timer.Reset(delay)
		case <-timer.C:
			changed()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("configview: layout watcher error", "error", err)
		}
	}
}

// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command configview serves a configurator element over a headless
// viewer of the models in a directory. It shows the layout of a layout
// file, follows changes of that file, and serves the host bridge.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"cogentcore.org/configurator/base/errors"
	"cogentcore.org/configurator/base/fsx"
	"cogentcore.org/configurator/base/iox/imagex"
	"cogentcore.org/configurator/cli"
	"cogentcore.org/configurator/configurator"
	"cogentcore.org/configurator/hostbridge"
	"cogentcore.org/configurator/layout"
	"cogentcore.org/configurator/logx"
	"cogentcore.org/configurator/viewer/memviewer"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

// loadConfig returns the config from the defaults, the optional
// -config file, and the flags.
func loadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cli.SetFromDefaults(cfg)
	fs := flag.NewFlagSet("configview", flag.ContinueOnError)
	file := fs.String("config", "", "TOML config file (looked up in the current and ~/.config/configview directories)")
	cli.AddFlags(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *file != "" {
		if err := cli.Open(cfg, *file, ".", "~/.config/configview"); err != nil {
			return nil, err
		}
		// flags take precedence over the file
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
	}
	var err error
	if cfg.Models, err = fsx.ExpandHome(cfg.Models); err != nil {
		return nil, err
	}
	if cfg.Layout, err = fsx.ExpandHome(cfg.Layout); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	logx.UserLevel = logx.LevelFromFlags(cfg.VeryVerbose, cfg.Verbose, cfg.Quiet)
	logx.SetDefaultLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	v := memviewer.New(os.DirFS(cfg.Models), memviewer.Options{})
	v.Start()
	defer v.Close()
	el := configurator.New(v, cfg.Element)
	defer el.Close()
	srv := hostbridge.New(el, version)

	recs, err := layout.Open(cfg.Layout)
	if err != nil {
		return err
	}
	res, err := el.Initialize(ctx, recs, srv.Callbacks())
	if err != nil {
		return err
	}
	errors.Log(res.Err())
	v.FitToView()

	if cfg.Screenshot != "" {
		return screenshot(el, cfg)
	}
	if cfg.Watch {
		go func() {
			errors.Log(watch(ctx, cfg.Layout, watchDelay, func() { reload(ctx, el, cfg.Layout) }))
		}()
	}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		errors.Log(srv.Shutdown(sctx))
	}()
	return srv.Start(cfg.Addr)
}

// reload updates the element from the layout file.
func reload(ctx context.Context, el *configurator.Element, path string) {
	recs, err := layout.Open(path)
	if err != nil {
		slog.Error("configview: reading layout", "file", path, "error", err)
		return
	}
	res, err := el.Update(ctx, recs)
	if err != nil {
		slog.Error("configview: updating layout", "error", err)
		return
	}
	slog.Info("configview: layout updated", "loaded", res.Loaded, "updated", res.Updated, "unloaded", res.Unloaded)
	errors.Log(res.Err())
}

// screenshot writes the element screenshot to the configured file,
// in the format of its extension or PNG.
func screenshot(el *configurator.Element, cfg *Config) error {
	uri, err := el.Screenshot(cfg.Element.ScreenshotWidth, cfg.Element.ScreenshotHeight)
	if err != nil {
		return err
	}
	img, _, err := imagex.FromDataURI(uri)
	if err != nil {
		return err
	}
	format, err := imagex.ExtToFormat(filepath.Ext(cfg.Screenshot))
	if err != nil {
		format = imagex.PNG
	}
	f, err := os.Create(cfg.Screenshot)
	if err != nil {
		return err
	}
	if err := imagex.Write(img, f, format); err != nil {
		f.Close()
		return fmt.Errorf("configview: writing screenshot: %w", err)
	}
	return f.Close()
}

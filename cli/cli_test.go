// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type config struct {
	Includes []string      `flag:"-"`
	Addr     string        `default:":8080" desc:"address to serve on"`
	Unit     string        `default:"mm"`
	Delay    time.Duration `default:"250ms"`
	Verbose  bool          `flag:"v"`
	Watch    bool          `default:"true"`
}

func (c *config) IncludesPtr() *[]string { return &c.Includes }

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0666))
}

func TestOpenIncludes(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "base.toml", `Addr = ":1"`+"\n"+`Unit = "cm"`)
	write(t, dir, "mid.toml", `Includes = ["base.toml"]`+"\n"+`Unit = "inch"`)
	write(t, dir, "top.toml", `Includes = ["mid.toml"]`+"\n"+`Watch = false`)

	cfg := &config{}
	require.NoError(t, SetFromDefaults(cfg))
	require.NoError(t, Open(cfg, "top.toml", dir))
	assert.Equal(t, ":1", cfg.Addr)
	assert.Equal(t, "inch", cfg.Unit)
	assert.False(t, cfg.Watch)
	assert.Equal(t, 250*time.Millisecond, cfg.Delay)
	assert.Equal(t, []string{"mid.toml", "base.toml"}, cfg.Includes)

	assert.Error(t, Open(cfg, "none.toml", dir))
	write(t, dir, "loop.toml", `Includes = ["loop.toml"]`)
	assert.Error(t, Open(&config{}, "loop.toml", dir))
	write(t, dir, "missing.toml", `Includes = ["gone.toml"]`)
	assert.Error(t, Open(&config{}, "missing.toml", dir))
}

func TestAddFlags(t *testing.T) {
	cfg := &config{}
	require.NoError(t, SetFromDefaults(cfg))
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	AddFlags(fs, cfg)
	assert.Nil(t, fs.Lookup("includes"))
	assert.Contains(t, fs.Lookup("addr").Usage, "(default :8080)")

	require.NoError(t, fs.Parse([]string{"-addr", ":9", "-delay", "1s", "-v", "-watch=false", "extra"}))
	assert.Equal(t, ":9", cfg.Addr)
	assert.Equal(t, time.Second, cfg.Delay)
	assert.True(t, cfg.Verbose)
	assert.False(t, cfg.Watch)
	assert.Equal(t, []string{"extra"}, fs.Args())

	assert.Error(t, fs.Parse([]string{"-delay", "soon"}))
}

// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logx

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandler(t *testing.T) {
	var buf bytes.Buffer
	lg := slog.New(NewHandler(&buf, slog.LevelInfo))
	lg.Debug("this is debug")
	lg.Info("this is info", "unit", "cm")
	lg.With("subModel", "A").Warn("this is warn")

	out := buf.String()
	assert.NotContains(t, out, "this is debug")
	assert.Contains(t, out, "this is info")
	assert.Contains(t, out, "unit=cm")
	assert.Contains(t, out, "subModel=A")
	assert.Contains(t, out, "WARN")
}

func TestLevelFromFlags(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LevelFromFlags(true, false, true))
	assert.Equal(t, slog.LevelInfo, LevelFromFlags(false, true, false))
	assert.Equal(t, slog.LevelError, LevelFromFlags(false, false, true))
	assert.Equal(t, slog.LevelWarn, LevelFromFlags(false, false, false))
}

func TestDefaultLogger(t *testing.T) {
	UserLevel = slog.LevelDebug
	SetDefaultLogger()

	slog.Debug("this is debug")
	slog.Info("this is info")
	slog.Warn("this is warn")
}

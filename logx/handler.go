// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logx

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/muesli/termenv"
)

// SetDefaultLogger sets the default logger to a [Handler] writing
// to os.Stderr with the current [UserLevel].
func SetDefaultLogger() {
	slog.SetDefault(slog.New(NewHandler(os.Stderr, UserLevel)))
}

// Handler is a [slog.Handler] that writes text records, with the level
// colored according to the terminal capabilities of the output.
type Handler struct {
	level  slog.Leveler
	out    *termenv.Output
	mu     *sync.Mutex
	text   slog.Handler
	prefix []slog.Attr
}

// NewHandler returns a new [Handler] writing to w at the given level.
func NewHandler(w io.Writer, level slog.Leveler) *Handler {
	h := &Handler{
		level: level,
		out:   termenv.NewOutput(w),
		mu:    &sync.Mutex{},
	}
	h.text = slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.LevelKey {
				lv, ok := a.Value.Any().(slog.Level)
				if ok {
					a.Value = slog.StringValue(h.colorLevel(lv))
				}
			}
			return a
		},
	})
	return h
}

// colorLevel returns the level name styled for the output profile.
func (h *Handler) colorLevel(lv slog.Level) string {
	st := h.out.String(lv.String())
	switch {
	case lv >= slog.LevelError:
		st = st.Foreground(h.out.Color("1")).Bold()
	case lv >= slog.LevelWarn:
		st = st.Foreground(h.out.Color("3"))
	case lv >= slog.LevelInfo:
		st = st.Foreground(h.out.Color("4"))
	default:
		st = st.Faint()
	}
	return st.String()
}

func (h *Handler) Enabled(ctx context.Context, lv slog.Level) bool {
	return lv >= h.level.Level()
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.text.Handle(ctx, r)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.text = h.text.WithAttrs(attrs)
	return &nh
}

func (h *Handler) WithGroup(name string) slog.Handler {
	nh := *h
	nh.text = h.text.WithGroup(name)
	return &nh
}

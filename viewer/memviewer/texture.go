// Copyright (c) 2019, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memviewer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io/fs"
	"strings"

	"github.com/h2non/filetype"

	"cogentcore.org/configurator/base/iox/imagex"
	"cogentcore.org/configurator/viewer"
)

// LoadTexture reads the texture at the given url, which is a path
// in the viewer file system (an optional file:// prefix is removed).
// The content type is sniffed, and must be one of the [imagex.Formats].
func (v *Viewer) LoadTexture(ctx context.Context, url string) (*viewer.Texture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v.mu.Lock()
	tx, ok := v.textures[url]
	v.mu.Unlock()
	if ok {
		return tx, nil
	}
	b, err := fs.ReadFile(v.fsys, strings.TrimPrefix(url, "file://"))
	if err != nil {
		return nil, fmt.Errorf("memviewer.LoadTexture: %w", err)
	}
	kind, err := filetype.Match(b)
	if err != nil {
		return nil, fmt.Errorf("memviewer.LoadTexture %q: %w", url, err)
	}
	if _, err := imagex.FromMIME(kind.MIME.Value); err != nil {
		return nil, fmt.Errorf("memviewer.LoadTexture %q: unsupported texture type %q", url, kind.MIME.Value)
	}
	img, _, err := imagex.Read(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("memviewer.LoadTexture %q: %w", url, err)
	}
	tx = &viewer.Texture{Name: url, Image: img, Transparent: !isOpaque(img)}
	v.mu.Lock()
	v.textures[url] = tx
	v.mu.Unlock()
	return tx, nil
}

func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return true
}

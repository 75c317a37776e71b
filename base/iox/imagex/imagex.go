// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package imagex provides image decoding and encoding for the
// texture and screenshot formats.
package imagex

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Formats are the supported image encoding / decoding formats
type Formats int32

// The supported image encoding formats
const (
	None Formats = iota
	PNG
	JPEG
	GIF
	TIFF
	BMP
	WebP
)

var formatNames = [...]string{"None", "PNG", "JPEG", "GIF", "TIFF", "BMP", "WebP"}

func (f Formats) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return fmt.Sprintf("Formats(%d)", int32(f))
	}
	return formatNames[f]
}

var mimeTypes = map[Formats]string{
	PNG:  "image/png",
	JPEG: "image/jpeg",
	GIF:  "image/gif",
	TIFF: "image/tiff",
	BMP:  "image/bmp",
	WebP: "image/webp",
}

// MIME returns the MIME type of the format, or "" for [None].
func (f Formats) MIME() string {
	return mimeTypes[f]
}

// FromMIME returns the format with the given MIME type,
// or [None] and an error if it is not supported.
func FromMIME(mime string) (Formats, error) {
	for f, m := range mimeTypes {
		if m == mime {
			return f, nil
		}
	}
	return None, fmt.Errorf("imagex.FromMIME: type %q not supported", mime)
}

// ExtToFormat returns a Format based on a filename extension,
// which can start with a . or not
func ExtToFormat(ext string) (Formats, error) {
	if len(ext) == 0 {
		return None, errors.New("ExtToFormat: ext is empty")
	}
	if ext[0] == '.' {
		ext = ext[1:]
	}
	ext = strings.ToLower(ext)
	switch ext {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "gif":
		return GIF, nil
	case "tif", "tiff":
		return TIFF, nil
	case "bmp":
		return BMP, nil
	case "webp":
		return WebP, nil
	}
	return None, fmt.Errorf("ExtToFormat: extension %q not recognized", ext)
}

// OpenFS opens an image from the given filename
// using the given [fs.FS] filesystem.
// The format is inferred automatically,
// and is returned using the Formats enum.
func OpenFS(fsys fs.FS, filename string) (image.Image, Formats, error) {
	file, err := fsys.Open(filename)
	if err != nil {
		return nil, None, err
	}
	defer file.Close()
	return Read(file)
}

// Read reads an image from the given reader.
// The format is inferred automatically,
// and is returned using the Formats enum.
// png, jpeg, gif, tiff, bmp, and webp are supported.
func Read(r io.Reader) (image.Image, Formats, error) {
	im, ext, err := image.Decode(r)
	if err != nil {
		return im, None, err
	}
	f, err := ExtToFormat(ext)
	return im, f, err
}

// Write writes the image to the given writer using the given format.
// png, jpeg, gif, tiff, and bmp are supported.
func Write(im image.Image, w io.Writer, f Formats) error {
	switch f {
	case PNG:
		return png.Encode(w, im)
	case JPEG:
		return jpeg.Encode(w, im, &jpeg.Options{Quality: 90})
	case GIF:
		return gif.Encode(w, im, nil)
	case TIFF:
		return tiff.Encode(w, im, nil)
	case BMP:
		return bmp.Encode(w, im)
	default:
		return fmt.Errorf("imagex.Write: format %q not valid", f)
	}
}

// DataURI returns the image encoded in the given format
// as a base64 data URI, such as "data:image/png;base64,...".
func DataURI(im image.Image, f Formats) (string, error) {
	var buf bytes.Buffer
	if err := Write(im, &buf, f); err != nil {
		return "", err
	}
	return "data:" + f.MIME() + ";base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// FromDataURI decodes an image from a base64 data URI.
func FromDataURI(uri string) (image.Image, Formats, error) {
	_, data, ok := strings.Cut(uri, ";base64,")
	if !ok || !strings.HasPrefix(uri, "data:") {
		return nil, None, errors.New("imagex.FromDataURI: not a base64 data URI")
	}
	b, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, None, fmt.Errorf("imagex.FromDataURI: %w", err)
	}
	return Read(bytes.NewReader(b))
}

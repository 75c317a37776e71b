// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tomlx provides helpers for reading and writing TOML files.
package tomlx

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Read reads the given object from the given reader.
func Read(v any, reader io.Reader) error {
	return toml.NewDecoder(reader).Decode(v)
}

// ReadBytes reads the given object from the given bytes.
func ReadBytes(v any, data []byte) error {
	return Read(v, bytes.NewReader(data))
}

// Open reads the given object from the given filename.
func Open(v any, filename string) error {
	fp, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer fp.Close()
	return Read(v, fp)
}

// OpenFS reads the given object from the given filename in the given file system.
func OpenFS(v any, fsys fs.FS, filename string) error {
	b, err := fs.ReadFile(fsys, filename)
	if err != nil {
		return err
	}
	return ReadBytes(v, b)
}

// OpenFiles reads the given object from the given filenames in order,
// so that later files overwrite the values of earlier ones.
func OpenFiles(v any, filenames ...string) error {
	var errs []error
	for _, file := range filenames {
		if err := Open(v, file); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Write writes the given object to the given writer.
func Write(v any, writer io.Writer) error {
	return toml.NewEncoder(writer).Encode(v)
}

// WriteBytes writes the given object, returning bytes of the encoding.
func WriteBytes(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(v, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes the given object to the given filename.
func Save(v any, filename string) error {
	b, err := WriteBytes(v)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, b, 0666)
}

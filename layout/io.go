// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"cogentcore.org/configurator/base/iox/tomlx"
)

// File is the layout file format: a list of records. YAML and JSON
// files may also contain the bare list.
type File struct {
	Records []Record `json:"records" yaml:"records" toml:"records"`
}

// Formats are layout file formats.
type Formats int32

const (
	YAML Formats = iota
	JSON
	TOML
)

// FormatFromPath returns the file format implied by the extension.
func FormatFromPath(path string) (Formats, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".json":
		return JSON, nil
	case ".toml":
		return TOML, nil
	}
	return YAML, fmt.Errorf("layout: unsupported layout file extension %q", filepath.Ext(path))
}

// Open reads the layout records from the given YAML, JSON or TOML file.
func Open(path string) ([]Record, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	recs, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("layout: reading %q: %w", path, err)
	}
	return recs, nil
}

// Read reads the layout records from the reader in the given format.
// JSON is read with the YAML decoder, as it is a subset of YAML.
func Read(r io.Reader, format Formats) ([]Record, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if format == TOML {
		var lf File
		if err := tomlx.ReadBytes(&lf, b); err != nil {
			return nil, err
		}
		return lf.Records, nil
	}
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 {
		return nil, nil
	}
	var node yaml.Node
	if err := yaml.Unmarshal(trimmed, &node); err != nil {
		return nil, err
	}
	if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
		var recs []Record
		err := node.Decode(&recs)
		return recs, err
	}
	var lf File
	err = node.Decode(&lf)
	return lf.Records, err
}

// Write writes the layout records to the writer in the given format.
func Write(w io.Writer, recs []Record, format Formats) error {
	lf := File{Records: recs}
	switch format {
	case TOML:
		return tomlx.Write(lf, w)
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(lf)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(lf); err != nil {
		return err
	}
	return enc.Close()
}

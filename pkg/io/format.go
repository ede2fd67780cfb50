package io

import (
	"path/filepath"
	"strings"

	"github.com/matzehuels/archdraw/pkg/errors"
)

// Format is a record file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Formats lists the supported record formats.
var Formats = []Format{FormatJSON, FormatTOML, FormatYAML}

// ParseFormat resolves a format name. "yml" is accepted for YAML.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "json":
		return FormatJSON, nil
	case "toml":
		return FormatTOML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported record format %q (use json, toml, or yaml)", name)
}

// FormatFromPath picks the record format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", errors.New(errors.ErrCodeInvalidFormat, "cannot infer record format of %s", path)
	}
	return ParseFormat(ext)
}

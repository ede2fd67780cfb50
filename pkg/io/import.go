package io

import (
	"encoding/json"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/archdraw/pkg/arch"
	"github.com/matzehuels/archdraw/pkg/drawio"
	"github.com/matzehuels/archdraw/pkg/errors"
)

// ReadRecords decodes a record set from r.
//
// ReadRecords returns an INVALID_RECORDS error when the input is not a
// well-formed record set in the given format. It does not close r.
func ReadRecords(r io.Reader, format Format) (*arch.Diagram, error) {
	var d arch.Diagram
	var err error

	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&d)
	case FormatTOML:
		_, err = toml.NewDecoder(r).Decode(&d)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&d)
		if err == io.EOF {
			err = nil
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported record format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRecords, err, "decode %s records", format)
	}
	return &d, nil
}

// ImportRecords reads the record file at path, choosing the format from
// its extension.
func ImportRecords(path string) (*arch.Diagram, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRecords(f, format)
}

// ImportDocument reads a draw.io file, compressed or not.
func ImportDocument(path string) (*drawio.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, openError(path, err)
	}
	doc, err := drawio.Unmarshal(data)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "read %s", path)
	}
	return doc, nil
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, openError(path, err)
	}
	return f, nil
}

func openError(path string, err error) error {
	if os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "file not found: %s", path)
	}
	return errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
}

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

// WriteRecords encodes d in the given format and writes it to w.
// The output can be re-imported with [ReadRecords].
func WriteRecords(d *arch.Diagram, w io.Writer, format Format) error {
	var err error
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(d)
	case FormatTOML:
		err = toml.NewEncoder(w).Encode(d)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(d); err == nil {
			err = enc.Close()
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported record format %q", format)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode %s records", format)
	}
	return nil
}

// ExportRecords writes d to path, choosing the format from its extension.
func ExportRecords(d *arch.Diagram, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "create %s", path)
	}
	defer f.Close()
	return WriteRecords(d, f, format)
}

// ExportDocument writes doc to path, compressing the diagram payload when
// compressed is set.
func ExportDocument(doc *drawio.Document, path string, compressed bool) error {
	marshal := drawio.Marshal
	if compressed {
		marshal = drawio.MarshalCompressed
	}
	data, err := marshal(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "write %s", path)
	}
	return nil
}

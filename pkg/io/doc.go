// Package io reads and writes architecture record sets and draw.io files.
//
// # Record Formats
//
// A record set has the same shape in every format: a config table and
// the layer, box, component, and connection lists.
//
//	{
//	  "config": {"title": "Shop", "width": 1400, "height": 900},
//	  "layers": [
//	    {"id": "L1", "name": "Frontend", "fill": "sky", "height_percent": 30},
//	    {"id": "L2", "name": "Backend", "fill": "lime", "height_percent": 70}
//	  ],
//	  "boxes": [
//	    {"id": "B1", "name": "Web", "parent_id": "L1", "row": 1},
//	    {"id": "B2", "name": "Services", "parent_id": "L2", "row": 1}
//	  ],
//	  "components": [
//	    {"id": "C1", "name": "Orders", "parent_id": "B2", "shape": "service"}
//	  ],
//	  "connections": [
//	    {"from": "B1", "to": "C1", "kind": "dataflow", "label": "REST"}
//	  ]
//	}
//
// JSON, TOML, and YAML are supported; [FormatFromPath] picks the format
// from the file extension. Font sizes may be numbers or size names
// ("small", "medium", "large", "xlarge").
//
// # Import
//
// Use [ImportRecords] to read a record file, or [ReadRecords] to read from
// any io.Reader. Decoding does not validate references; pass the result to
// [arch.Validate] for warnings and to [arch.Build] to resolve it.
//
// # Export
//
// [ExportRecords] and [WriteRecords] write a record set, which makes the
// output of [reconstruct.Reconstruct] editable again.
//
// # Documents
//
// [ImportDocument] and [ExportDocument] read and write draw.io files.
//
// [arch.Validate]: github.com/matzehuels/archdraw/pkg/arch.Validate
// [arch.Build]: github.com/matzehuels/archdraw/pkg/arch.Build
// [reconstruct.Reconstruct]: github.com/matzehuels/archdraw/pkg/reconstruct.Reconstruct
package io

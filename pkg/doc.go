// Package pkg provides the core libraries for archdraw architecture diagrams.
//
// # Overview
//
// Archdraw turns declarative records (layers, boxes, components, and
// connections) into positioned draw.io documents, and reads existing
// documents back into records. The pkg directory is organized into three
// areas:
//
//  1. Core: pure functions over records, rectangles, and documents
//  2. Infrastructure: caching, storage, observability
//  3. [pipeline]: orchestration shared by the CLI and HTTP server
//
// # Architecture
//
// The typical data flow:
//
//	Record file (JSON / TOML / YAML)
//	         ↓
//	    [io] package (decode records)
//	         ↓
//	    [arch] package (containment forest + warnings)
//	         ↓
//	    [layout] package (absolute rectangles, crossing estimate)
//	         ↓
//	    [drawio] package (synthesize + encode)
//	         ↓
//	    .drawio document
//
// [reconstruct] runs the other direction, from a decoded document back to
// records.
//
// # Quick Start
//
//	d, _ := io.ImportRecords("shop.yaml")
//	f, _ := arch.Build(*d)
//	rects, _ := layout.Compute(f, f.Width, f.Height)
//	doc := drawio.Synthesize(f, rects)
//	data, _ := drawio.Marshal(doc)
//
// # Main Packages
//
// ## Core
//
// [geom] - Rectangles, points, and the two placement rules (percentage and
// row-slot) that resolve a child rectangle inside its parent.
//
// [arch] - Record types, style token tables, the containment forest, and
// record validation.
//
// [layout] - The layout engine: layer stacking, row grouping, and the
// connection crossing estimate.
//
// [drawio] - The draw.io document model, the synthesizer, the merger, and the
// XML codec with optional deflate compression.
//
// [reconstruct] - Recovers layers, boxes, components, and connections from
// an arbitrary document.
//
// [io] - Record file import and export.
//
// ## Infrastructure
//
// [cache] - Layout and document cache with file, memory, Redis, and null
// backends.
//
// [storage] - Saved diagrams with memory, file, and MongoDB backends.
//
// [preview] - Graphviz rendering of the containment hierarchy.
//
// [observability] - Pipeline, cache, and server hooks, no-op by default.
//
// [errors] - Structured errors with machine-readable codes.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/layout/...   # Specific package
//	go test -run Example       # Examples only
//
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/archdraw/pkg/pipeline
// [io]: https://pkg.go.dev/github.com/matzehuels/archdraw/pkg/io
// [arch]: https://pkg.go.dev/github.com/matzehuels/archdraw/pkg/arch
// [layout]: https://pkg.go.dev/github.com/matzehuels/archdraw/pkg/layout
// [drawio]: https://pkg.go.dev/github.com/matzehuels/archdraw/pkg/drawio
// [reconstruct]: https://pkg.go.dev/github.com/matzehuels/archdraw/pkg/reconstruct
// [geom]: https://pkg.go.dev/github.com/matzehuels/archdraw/pkg/geom
// [cache]: https://pkg.go.dev/github.com/matzehuels/archdraw/pkg/cache
// [storage]: https://pkg.go.dev/github.com/matzehuels/archdraw/pkg/storage
// [preview]: https://pkg.go.dev/github.com/matzehuels/archdraw/pkg/preview
// [observability]: https://pkg.go.dev/github.com/matzehuels/archdraw/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/archdraw/pkg/errors
package pkg

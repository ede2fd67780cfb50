// Package arch defines the declarative architecture records consumed by the
// layout engine and synthesizer, and resolves them into a containment forest.
//
// # Records
//
// A [Diagram] is the validated record set produced by ingestion: a [Config],
// ordered [Layer] records, [Box] and [Component] records that reference a
// parent id, and [Connection] records between node ids. Optional fields are
// pointers; [Build] applies the documented defaults once.
//
// # Forest
//
// [Build] converts a Diagram into a [Forest]. It detects the document's
// placement variant (percentage or row) from which fields are present and
// rejects record sets that mix them with an UNSUPPORTED_INPUT error. It also
// rejects containment cycles with a STRUCTURAL error. Every other anomaly,
// such as a parent id that resolves nowhere, is kept and degrades gracefully
// downstream.
//
// # Styles
//
// Fill, border, shape, connection-kind, and line-style tokens resolve against
// fixed tables (see [FillColor], [BorderColor], [ShapeStyle],
// [ConnectionStyle], [LineStyle]). Unknown tokens fall back to defaults and
// never fail. [FillToken] and [BorderToken] perform the reverse lookup used
// when reconstructing records from a document.
package arch

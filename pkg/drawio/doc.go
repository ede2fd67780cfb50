// Package drawio models, writes, and reads draw.io (mxGraph) diagram
// documents.
//
// # Document Model
//
// A [Document] is a flat list of vertex cells ([Document.Nodes]) and edge
// cells ([Document.Edges]) on a fixed canvas. Every cell produced by this
// package has parent "1"; nesting is expressed by absolute geometry, not
// by cell containment. The ids "0" and "1" are reserved for the canvas
// root and the default layer and are written by [Marshal] automatically.
//
// # Synthesis
//
// [Synthesize] turns a resolved forest and its computed rectangles into a
// document: two cells per layer (background plus centered header), two
// per box with children (background plus top label), one per childless
// box and per component, and one per connection whose endpoints were both
// drawn. Ids are assigned from 2 in traversal order.
//
// # Merge
//
// [Merge] places one document beside another, renumbering the addition so
// that no id collides with the base.
//
// # Wire Format
//
// [Marshal] writes the uncompressed mxfile form. [Unmarshal] reads both the
// uncompressed form and the compressed form saved by the desktop editor
// (base64 of raw deflate of URL-encoded XML), as well as a bare
// mxGraphModel root.
package drawio

// Package layout computes absolute rectangles for an architecture forest.
//
// # Overview
//
// [Compute] turns the relative placement rules of an [arch.Forest] into
// a map from node id to [geom.Rect] on a fixed canvas:
//
//   - Layers stack top to bottom in order, each spanning the full canvas
//     width with a height taken from its height percentage.
//   - Boxes and components resolve their rule against the parent's
//     rectangle. Parentless nodes resolve against the canvas.
//   - In row mode, the horizontal span of each node is derived from its
//     row: items in a row share the width left after margins and gaps.
//
// The engine is total. Nodes whose parent never resolves get a zero
// rectangle and degenerate rectangles are stored as computed.
//
// # Crossings
//
// [EstimateCrossings] approximates each connection by the segment between
// the origins of its endpoint rectangles and counts intersecting pairs.
// It ignores routing entirely; treat the result as a readability hint.
//
// [arch.Forest]: github.com/matzehuels/archdraw/pkg/arch.Forest
// [geom.Rect]: github.com/matzehuels/archdraw/pkg/geom.Rect
package layout

// Package geom provides the value types shared by the layout, synthesis, and
// reconstruction stages: absolute rectangles and the relative placement rules
// that resolve into them.
//
// # Rectangles
//
// A [Rect] is an absolute axis-aligned rectangle in canvas units. Rectangles
// are produced by the layout engine and consumed read-only everywhere else.
// Degenerate rectangles (zero or negative size) are legal values; they model
// collapsed placeholders and never cause an error.
//
// # Placement rules
//
// A [Rule] describes a node's position relative to its parent's rectangle. It
// is a tagged union with two variants:
//
//   - [RulePercent]: explicit x%, y%, width%, height%
//   - [RuleRow]: a row number plus y% and height%; x% and width% are filled in
//     by the layout engine from the node's siblings in the same row
//
// Once a row rule has had its horizontal span assigned, both variants resolve
// identically via [Rule.Resolve].
package geom

// Package reconstruct recovers an architecture record set from a draw.io
// document.
//
// [Reconstruct] is the inverse of synthesis. It is heuristic: layers are
// recognized by width, nesting by geometric containment, rows by vertical
// position, and style tokens by reverse color and style lookups. Documents
// produced by this module's synthesizer come back with the same layers and
// boxes; arbitrary third-party documents come back as a best effort.
//
// Reconstruct never fails. Cells it cannot classify are treated as boxes
// and connections with an unresolved endpoint are dropped.
package reconstruct

// Package preview renders the containment structure of a record set as a
// Graphviz diagram.
//
// # Overview
//
// The preview is a quick look at what a record set declares, independent
// of the computed geometry: layers and boxes with children become nested
// clusters, leaves become nodes, and connections become edges styled by
// kind and line. It helps spot a box hung under the wrong parent before
// opening the draw.io output.
//
// # Usage
//
//	dot := preview.ToDOT(forest, preview.Options{})
//	svg, err := preview.RenderSVG(ctx, dot)
//
// # DOT Format
//
// The generated DOT uses top-to-bottom layout (rankdir=TB) with
// compound=true so that edges touching a container clip at its cluster
// border. Each cluster carries an invisible anchor node named after the
// container id.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is required.
package preview

package preview

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/archdraw/pkg/arch"
)

// Options configures preview generation.
type Options struct {
	// Detailed adds the node kind and shape to labels.
	Detailed bool
	// HideConnections omits connection edges.
	HideConnections bool
}

var dotShapes = map[string]string{
	arch.ShapeBox:      `shape=box`,
	arch.ShapeCluster:  `shape=box, style="filled,dashed"`,
	arch.ShapeService:  `shape=box, style="rounded,filled"`,
	arch.ShapeDatabase: `shape=cylinder`,
	arch.ShapeStorage:  `shape=folder`,
	arch.ShapeDocument: `shape=note`,
}

// ToDOT converts a forest to Graphviz DOT. Nodes under a dangling parent
// are unreachable and left out, as are connections touching them.
func ToDOT(f *arch.Forest, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", f.Title)
	buf.WriteString("  node [shape=box, style=filled, fillcolor=white, fontsize=12];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.3;\n")

	w := &writer{f: f, buf: &buf, opts: opts, clusters: make(map[string]bool)}
	for _, r := range f.Roots() {
		w.node(r, 1)
	}

	if !opts.HideConnections {
		buf.WriteString("\n")
		for _, c := range f.Connections {
			w.edge(c)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

type writer struct {
	f    *arch.Forest
	buf  *bytes.Buffer
	opts Options
	// clusters holds drawn container ids; leaves map to false.
	clusters map[string]bool
}

func (w *writer) node(n *arch.Node, depth int) {
	if _, seen := w.clusters[n.ID]; seen {
		return
	}
	indent := strings.Repeat("  ", depth)
	label := w.label(n)

	if n.Kind == arch.KindLayer || w.f.HasChildren(n.ID) {
		w.clusters[n.ID] = true
		fmt.Fprintf(w.buf, "%ssubgraph %q {\n", indent, "cluster_"+n.ID)
		fmt.Fprintf(w.buf, "%s  label=%q;\n", indent, label)
		fmt.Fprintf(w.buf, "%s  style=filled;\n", indent)
		fmt.Fprintf(w.buf, "%s  fillcolor=%q;\n", indent, arch.FillColor(n.Fill))
		fmt.Fprintf(w.buf, "%s  color=%q;\n", indent, arch.BorderColor(n.Border))
		fmt.Fprintf(w.buf, "%s  %q [shape=point, style=invis, width=0.01];\n", indent, n.ID)
		for _, c := range w.f.Children(n.ID) {
			w.node(c, depth+1)
		}
		fmt.Fprintf(w.buf, "%s}\n", indent)
		return
	}

	w.clusters[n.ID] = false
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.Kind == arch.KindComponent {
		attrs = append(attrs, dotShapes[arch.CanonicalShape(n.Shape)])
	}
	attrs = append(attrs,
		fmt.Sprintf("fillcolor=%q", arch.FillColor(n.Fill)),
		fmt.Sprintf("color=%q", arch.BorderColor(n.Border)),
	)
	fmt.Fprintf(w.buf, "%s%q [%s];\n", indent, n.ID, strings.Join(attrs, ", "))
}

func (w *writer) label(n *arch.Node) string {
	if !w.opts.Detailed {
		return n.Name
	}
	detail := n.Kind.String()
	if n.Kind == arch.KindComponent {
		detail += ": " + arch.CanonicalShape(n.Shape)
	}
	return n.Name + "\n(" + detail + ")"
}

func (w *writer) edge(c arch.Connection) {
	fromCluster, okFrom := w.clusters[c.From]
	toCluster, okTo := w.clusters[c.To]
	if !okFrom || !okTo {
		return
	}
	c = c.WithDefaults()

	var attrs []string
	if c.Label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", c.Label))
	}
	if fromCluster {
		attrs = append(attrs, fmt.Sprintf("ltail=%q", "cluster_"+c.From))
	}
	if toCluster {
		attrs = append(attrs, fmt.Sprintf("lhead=%q", "cluster_"+c.To))
	}
	attrs = append(attrs, edgeAttrs(c)...)

	if len(attrs) == 0 {
		fmt.Fprintf(w.buf, "  %q -> %q;\n", c.From, c.To)
		return
	}
	fmt.Fprintf(w.buf, "  %q -> %q [%s];\n", c.From, c.To, strings.Join(attrs, ", "))
}

func edgeAttrs(c arch.Connection) []string {
	var attrs []string
	switch strings.ToLower(strings.TrimSpace(c.Kind)) {
	case arch.ConnBidirectional:
		attrs = append(attrs, "dir=both")
	case arch.ConnStream:
		attrs = append(attrs, "penwidth=3")
	case arch.ConnBatch:
		attrs = append(attrs, "style=dashed")
	}
	switch strings.ToLower(strings.TrimSpace(c.Line)) {
	case arch.LineDotted:
		attrs = append(attrs, "style=dotted")
	case arch.LineBold:
		attrs = append(attrs, "penwidth=3")
	case arch.LineDouble:
		attrs = append(attrs, `color="black:invis:black"`)
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a
// pixel-sized one anchored at the origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

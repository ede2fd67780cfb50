package drawio

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/archdraw/pkg/arch"
	"github.com/matzehuels/archdraw/pkg/buildinfo"
	"github.com/matzehuels/archdraw/pkg/geom"
)

// Style fragments shared by synthesized cells.
const (
	// ContainerStyle is the base of layer and box backgrounds.
	ContainerStyle = "rounded=0;whiteSpace=wrap;html=1;"
	// TextStyle is the base of header labels.
	TextStyle = "text;html=1;strokeColor=none;fillColor=none;align=center;verticalAlign=middle;whiteSpace=wrap;rounded=0;"
)

// Header label geometry.
const (
	LayerHeaderWidth  = 300.0
	LayerHeaderHeight = 20.0
	LayerHeaderTop    = 3.0
	LayerFontSize     = 12

	BoxHeaderInset  = 5.0
	BoxHeaderTop    = 3.0
	BoxHeaderHeight = 25.0
)

// Option configures [Synthesize].
type Option func(*synth)

// WithDiagramID sets the diagram page id. The default is a random UUID.
func WithDiagramID(id string) Option { return func(s *synth) { s.doc.ID = id } }

// WithModified sets the modification timestamp written on the file.
func WithModified(t time.Time) Option { return func(s *synth) { s.doc.Modified = t } }

// WithAgent sets the agent string written on the file.
func WithAgent(agent string) Option { return func(s *synth) { s.doc.Agent = agent } }

// WithPageSize overrides the page size taken from the forest.
func WithPageSize(width, height float64) Option {
	return func(s *synth) { s.doc.Width, s.doc.Height = width, height }
}

type synth struct {
	doc   *Document
	next  int
	cells map[string]string
}

// Synthesize emits a document for f using the rectangles computed by the
// layout engine. Nodes missing from rects are drawn with a zero rectangle.
// Connections are drawn only when both endpoints were drawn; nodes under a
// dangling parent are never reached and so drop their connections too.
func Synthesize(f *arch.Forest, rects map[string]geom.Rect, opts ...Option) *Document {
	s := &synth{
		doc: &Document{
			Title:  f.Title,
			ID:     uuid.NewString(),
			Width:  f.Width,
			Height: f.Height,
			Agent:  "archdraw/" + buildinfo.Version,
		},
		next:  2,
		cells: make(map[string]string, f.Len()),
	}
	for _, opt := range opts {
		opt(s)
	}

	f.Walk(func(n *arch.Node) bool {
		r := rects[n.ID]
		switch n.Kind {
		case arch.KindLayer:
			s.layer(n, r)
		case arch.KindBox:
			s.box(n, r, f.HasChildren(n.ID))
		default:
			s.component(n, r)
		}
		return true
	})

	for _, c := range f.Connections {
		s.connection(c)
	}
	return s.doc
}

func (s *synth) id() string {
	id := strconv.Itoa(s.next)
	s.next++
	return id
}

func (s *synth) vertex(value, style string, r geom.Rect) string {
	id := s.id()
	s.doc.Nodes = append(s.doc.Nodes, Cell{
		ID:       id,
		Value:    value,
		Style:    style,
		Parent:   LayerID,
		Vertex:   true,
		Geometry: r,
	})
	return id
}

func (s *synth) layer(n *arch.Node, r geom.Rect) {
	bg := fmt.Sprintf("%sfillColor=%s;strokeColor=none;", ContainerStyle, arch.FillColor(n.Fill))
	s.cells[n.ID] = s.vertex("", bg, r)

	header := geom.Rect{
		X:      r.X + r.Width/2 - LayerHeaderWidth/2,
		Y:      r.Y + LayerHeaderTop,
		Width:  LayerHeaderWidth,
		Height: LayerHeaderHeight,
	}
	s.vertex(n.Name, labelStyle(LayerFontSize), header)
}

func (s *synth) box(n *arch.Node, r geom.Rect, hasChildren bool) {
	bg := fmt.Sprintf("%sfillColor=%s;strokeColor=%s;", ContainerStyle,
		arch.FillColor(n.Fill), arch.BorderColor(n.Border))

	if !hasChildren {
		style := fmt.Sprintf("%sfontSize=%d;fontStyle=1;align=center;verticalAlign=middle;", bg, n.FontSize)
		s.cells[n.ID] = s.vertex(n.Name, style, r)
		return
	}

	s.cells[n.ID] = s.vertex("", bg, r)
	header := geom.Rect{
		X:      r.X + BoxHeaderInset,
		Y:      r.Y + BoxHeaderTop,
		Width:  r.Width - 2*BoxHeaderInset,
		Height: BoxHeaderHeight,
	}
	s.vertex(n.Name, labelStyle(n.FontSize), header)
}

func (s *synth) component(n *arch.Node, r geom.Rect) {
	style := fmt.Sprintf("%sfillColor=%s;strokeColor=%s;fontSize=%d;fontStyle=0;align=center;verticalAlign=middle;",
		arch.ShapeStyle(n.Shape), arch.FallbackFill, arch.BorderColor(n.Border), n.FontSize)
	s.cells[n.ID] = s.vertex(n.Name, style, r)
}

func (s *synth) connection(c arch.Connection) {
	src, ok := s.cells[c.From]
	if !ok {
		return
	}
	dst, ok := s.cells[c.To]
	if !ok {
		return
	}
	s.doc.Edges = append(s.doc.Edges, Cell{
		ID:     s.id(),
		Value:  c.Label,
		Style:  EdgeStyle(c.Kind, c.Line),
		Parent: LayerID,
		Edge:   true,
		Source: src,
		Target: dst,
	})
}

// EdgeStyle returns the full style string for a connection kind and line
// style token.
func EdgeStyle(kind, line string) string {
	es := arch.ConnectionStyle(kind)
	style := es.Style + arch.LineStyle(line) + "endArrow=" + es.EndArrow + ";"
	if es.StartArrow != "none" {
		style += "startArrow=" + es.StartArrow + ";"
	}
	return style
}

func labelStyle(fontSize int) string {
	return fmt.Sprintf("%sfontSize=%d;fontStyle=1;", TextStyle, fontSize)
}

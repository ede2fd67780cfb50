package drawio

import (
	"strconv"
	"time"

	"github.com/matzehuels/archdraw/pkg/geom"
)

// Reserved cell ids.
const (
	RootID  = "0"
	LayerID = "1"
)

// Document is a single-page draw.io diagram.
type Document struct {
	Title    string
	ID       string
	Width    float64
	Height   float64
	Modified time.Time
	Agent    string

	// Nodes are vertex cells in drawing order.
	Nodes []Cell
	// Edges are edge cells in drawing order.
	Edges []Cell
}

// Cell is a vertex or an edge. Geometry is meaningful for vertices only.
type Cell struct {
	ID       string
	Value    string
	Style    string
	Parent   string
	Vertex   bool
	Edge     bool
	Source   string
	Target   string
	Geometry geom.Rect
}

// IsEmpty reports whether d has no user cells.
func (d *Document) IsEmpty() bool {
	return d == nil || len(d.Nodes)+len(d.Edges) == 0
}

// Len returns the number of user cells.
func (d *Document) Len() int {
	return len(d.Nodes) + len(d.Edges)
}

// Node returns the vertex with the given id.
func (d *Document) Node(id string) (Cell, bool) {
	for _, c := range d.Nodes {
		if c.ID == id {
			return c, true
		}
	}
	return Cell{}, false
}

// MaxID returns the largest numeric id among the reserved and user cells.
// Non-numeric ids are ignored.
func (d *Document) MaxID() int {
	top := 1
	for _, cells := range [][]Cell{d.Nodes, d.Edges} {
		for _, c := range cells {
			if n, err := strconv.Atoi(c.ID); err == nil && n > top {
				top = n
			}
		}
	}
	return top
}

// Bounds returns the bounding box of all vertices, or a zero rect when
// there are none.
func (d *Document) Bounds() geom.Rect {
	if len(d.Nodes) == 0 {
		return geom.Rect{}
	}
	first := d.Nodes[0].Geometry
	minX, minY, maxX, maxY := first.X, first.Y, first.Right(), first.Bottom()
	for _, c := range d.Nodes[1:] {
		g := c.Geometry
		minX, minY = min(minX, g.X), min(minY, g.Y)
		maxX, maxY = max(maxX, g.Right()), max(maxY, g.Bottom())
	}
	return geom.Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

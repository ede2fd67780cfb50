package drawio

import (
	"slices"
	"strconv"
)

// MergeGap is the horizontal space left between the base and the addition
// when no offset is given.
const MergeGap = 100.0

// MergeOption configures [Merge].
type MergeOption func(*merger)

// WithOffset places the addition at an explicit offset instead of to the
// right of the base.
func WithOffset(dx, dy float64) MergeOption {
	return func(m *merger) {
		m.dx, m.dy = dx, dy
		m.explicit = true
	}
}

type merger struct {
	dx, dy   float64
	explicit bool
}

// Merge returns a document holding the cells of base followed by the
// cells of addition, renumbered from base.MaxID()+1 and translated by the
// offset. Base ids, page size, and metadata are kept unchanged.
//
// A base without user cells yields addition as is. Addition cells whose
// parent is not part of the addition are attached to the default layer;
// addition edges with an endpoint outside the addition are dropped. Only
// cells attached to the root or the default layer are translated. Addition
// cells that reuse a reserved id get fresh ids like any other cell.
func Merge(base, addition *Document, opts ...MergeOption) *Document {
	if base.IsEmpty() {
		return addition
	}

	out := *base
	out.Nodes = slices.Clone(base.Nodes)
	out.Edges = slices.Clone(base.Edges)
	if addition.IsEmpty() {
		return &out
	}

	m := merger{}
	for _, opt := range opts {
		opt(&m)
	}
	if !m.explicit {
		m.dx, m.dy = rightEdge(base)+MergeGap, 0
	}

	// Reserved ids keep their meaning. A user cell that reuses one is
	// renumbered through its own table so references to the reserved
	// cells stay on the reserved cells.
	ids := map[string]string{RootID: RootID, LayerID: LayerID}
	reused := make(map[string]string)
	next := base.MaxID() + 1
	for _, cells := range [][]Cell{addition.Nodes, addition.Edges} {
		for _, c := range cells {
			fresh := strconv.Itoa(next)
			next++
			if isReserved(c.ID) {
				reused[c.ID] = fresh
				continue
			}
			ids[c.ID] = fresh
		}
	}
	newID := func(id string) string {
		if fresh, ok := reused[id]; ok {
			return fresh
		}
		return ids[id]
	}

	for _, c := range addition.Nodes {
		c.ID = newID(c.ID)
		c.Parent = remapParent(ids, c.Parent)
		// Geometry of a nested cell is relative to its parent, which moves.
		if isRootChild(c.Parent) {
			c.Geometry = c.Geometry.Translate(m.dx, m.dy)
		}
		out.Nodes = append(out.Nodes, c)
	}
	for _, c := range addition.Edges {
		src, ok := ids[c.Source]
		if !ok {
			continue
		}
		dst, ok := ids[c.Target]
		if !ok {
			continue
		}
		c.ID = newID(c.ID)
		c.Parent = remapParent(ids, c.Parent)
		c.Source, c.Target = src, dst
		out.Edges = append(out.Edges, c)
	}
	return &out
}

func isReserved(id string) bool { return id == RootID || id == LayerID }

func isRootChild(parent string) bool { return parent == "" || isReserved(parent) }

func remapParent(ids map[string]string, parent string) string {
	if p, ok := ids[parent]; ok {
		return p
	}
	return LayerID
}

// rightEdge is the largest x+width over the vertices of d.
func rightEdge(d *Document) float64 {
	edge := 0.0
	for i, c := range d.Nodes {
		if r := c.Geometry.Right(); i == 0 || r > edge {
			edge = r
		}
	}
	return edge
}

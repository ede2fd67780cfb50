package arch

import (
	"slices"

	"github.com/matzehuels/archdraw/pkg/errors"
	"github.com/matzehuels/archdraw/pkg/geom"
)

// Kind classifies a node in the forest.
type Kind int

const (
	KindLayer Kind = iota
	KindBox
	KindComponent
)

// String returns "layer", "box", or "component".
func (k Kind) String() string {
	switch k {
	case KindLayer:
		return "layer"
	case KindBox:
		return "box"
	default:
		return "component"
	}
}

// Node is a resolved container with its defaults applied.
type Node struct {
	ID       string
	ParentID string
	Name     string
	Kind     Kind

	// Layers only.
	Order         int
	HeightPercent float64

	// Boxes and components.
	Rule geom.Rule

	Fill     string
	Border   string
	FontSize int
	Shape    string
}

// Forest is the containment tree resolved from a [Diagram].
type Forest struct {
	Title  string
	Width  float64
	Height float64

	// Mode is the placement variant used by every non-layer node.
	Mode geom.RuleKind

	// Layers in ascending order; ties keep declaration order.
	Layers []*Node
	// Nodes holds boxes then components in declaration order.
	Nodes       []*Node
	Connections []Connection

	index    map[string]*Node
	children map[string][]*Node
}

// Build resolves a record set into a forest.
//
// It returns an UNSUPPORTED_INPUT error if the record set mixes percentage and
// row placement, and a STRUCTURAL error if parent references form a cycle.
// Duplicate ids keep the first declaration.
func Build(d Diagram) (*Forest, error) {
	mode, err := detectMode(d)
	if err != nil {
		return nil, err
	}

	cfg := d.Config.WithDefaults()
	f := &Forest{
		Title:    cfg.Title,
		Width:    cfg.Width,
		Height:   cfg.Height,
		Mode:     mode,
		index:    make(map[string]*Node),
		children: make(map[string][]*Node),
	}

	defaultHeight := 0.0
	if len(d.Layers) > 0 {
		defaultHeight = 100 / float64(len(d.Layers))
	}
	for i, l := range d.Layers {
		f.add(&Node{
			ID:            l.ID,
			Name:          l.Name,
			Kind:          KindLayer,
			Order:         intOr(l.Order, i+1),
			HeightPercent: floatOr(l.HeightPercent, defaultHeight),
			Fill:          stringOr(l.Fill, DefaultFill),
		})
	}
	slices.SortStableFunc(f.Layers, func(a, b *Node) int { return a.Order - b.Order })

	for _, b := range d.Boxes {
		f.add(&Node{
			ID:       b.ID,
			ParentID: b.ParentID,
			Name:     b.Name,
			Kind:     KindBox,
			Rule:     b.Placement.rule(mode),
			Fill:     stringOr(b.Fill, DefaultFill),
			Border:   stringOr(b.Border, DefaultBorder),
			FontSize: sizeOr(b.FontSize, DefaultBoxFontSize),
		})
	}
	for _, c := range d.Components {
		f.add(&Node{
			ID:       c.ID,
			ParentID: c.ParentID,
			Name:     c.Name,
			Kind:     KindComponent,
			Rule:     c.Placement.rule(mode),
			Fill:     DefaultFill,
			Border:   stringOr(c.Border, DefaultComponentBorder),
			FontSize: sizeOr(c.FontSize, DefaultComponentFontSize),
			Shape:    CanonicalShape(c.Shape),
		})
	}

	for _, c := range d.Connections {
		f.Connections = append(f.Connections, c.WithDefaults())
	}

	if err := f.checkCycles(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Forest) add(n *Node) {
	if _, dup := f.index[n.ID]; dup {
		return
	}
	f.index[n.ID] = n
	if n.Kind == KindLayer {
		f.Layers = append(f.Layers, n)
		return
	}
	f.Nodes = append(f.Nodes, n)
	if n.ParentID != "" {
		f.children[n.ParentID] = append(f.children[n.ParentID], n)
	}
}

// detectMode picks the placement variant from which fields are present.
func detectMode(d Diagram) (geom.RuleKind, error) {
	var rowNodes, pctNodes []string
	check := func(id string, p Placement) error {
		if p.hasRow() && p.hasPercent() {
			return errors.New(errors.ErrCodeUnsupportedInput,
				"node %s sets both a row and an x/width percentage", id)
		}
		if p.hasRow() {
			rowNodes = append(rowNodes, id)
		}
		if p.hasPercent() {
			pctNodes = append(pctNodes, id)
		}
		return nil
	}
	for _, b := range d.Boxes {
		if err := check(b.ID, b.Placement); err != nil {
			return 0, err
		}
	}
	for _, c := range d.Components {
		if err := check(c.ID, c.Placement); err != nil {
			return 0, err
		}
	}

	switch {
	case len(rowNodes) > 0 && len(pctNodes) > 0:
		return 0, errors.New(errors.ErrCodeUnsupportedInput,
			"record set mixes row placement (%s) and percentage placement (%s)", rowNodes[0], pctNodes[0])
	case len(pctNodes) > 0:
		return geom.RulePercent, nil
	default:
		return geom.RuleRow, nil
	}
}

// checkCycles walks parent chains with white/gray/black coloring. A gray node
// reached again closes a cycle.
func (f *Forest) checkCycles() error {
	return CheckCycles(f.Nodes, func(id string) (*Node, bool) {
		n, ok := f.index[id]
		return n, ok
	})
}

// CheckCycles reports a STRUCTURAL error if following ParentID from any of
// nodes revisits a node on the current chain. lookup resolves parent ids;
// unresolvable parents end a chain.
func CheckCycles(nodes []*Node, lookup func(id string) (*Node, bool)) error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(nodes))
	for _, start := range nodes {
		if color[start.ID] != white {
			continue
		}
		var chain []string
		n := start
		for n != nil {
			switch color[n.ID] {
			case gray:
				return errors.New(errors.ErrCodeStructural,
					"containment cycle through %s", n.ID)
			case black:
				n = nil
				continue
			}
			color[n.ID] = gray
			chain = append(chain, n.ID)
			if n.ParentID == "" {
				break
			}
			parent, ok := lookup(n.ParentID)
			if !ok {
				break
			}
			n = parent
		}
		for _, id := range chain {
			color[id] = black
		}
	}
	return nil
}

// Node returns the node with the given id.
func (f *Forest) Node(id string) (*Node, bool) {
	n, ok := f.index[id]
	return n, ok
}

// Children returns the direct children of id in declaration order.
func (f *Forest) Children(id string) []*Node {
	return f.children[id]
}

// HasChildren reports whether any node names id as its parent.
func (f *Forest) HasChildren(id string) bool {
	return len(f.children[id]) > 0
}

// Roots returns layers in order followed by parentless boxes and components.
func (f *Forest) Roots() []*Node {
	roots := slices.Clone(f.Layers)
	for _, n := range f.Nodes {
		if n.ParentID == "" {
			roots = append(roots, n)
		}
	}
	return roots
}

// Walk visits every node reachable from [Forest.Roots] parent-before-child,
// children in declaration order. Nodes under a dangling parent id are not
// visited. Returning false from fn skips that node's subtree.
func (f *Forest) Walk(fn func(n *Node) bool) {
	seen := make(map[string]bool, len(f.index))
	var visit func(n *Node)
	visit = func(n *Node) {
		if seen[n.ID] {
			return
		}
		seen[n.ID] = true
		if !fn(n) {
			return
		}
		for _, c := range f.children[n.ID] {
			visit(c)
		}
	}
	for _, r := range f.Roots() {
		visit(r)
	}
}

// Len returns the number of distinct nodes, layers included.
func (f *Forest) Len() int {
	return len(f.index)
}

package layout

import (
	"github.com/matzehuels/archdraw/pkg/arch"
	"github.com/matzehuels/archdraw/pkg/geom"
)

// Row distribution defaults, in percent of the parent width.
const (
	DefaultMargin = 5.0
	DefaultGap    = 2.0
)

// Option configures [Compute].
type Option func(*engine)

type engine struct {
	left, right float64
	gap         float64
}

// WithMargins sets the left and right row margins in percent.
func WithMargins(left, right float64) Option {
	return func(e *engine) { e.left, e.right = left, right }
}

// WithGap sets the gap between items of a row in percent.
func WithGap(gap float64) Option { return func(e *engine) { e.gap = gap } }

// Compute returns the absolute rectangle of every node in f on a canvas of
// the given size. Every layer, box, and component gets an entry.
//
// It returns a STRUCTURAL error if parent references form a cycle, which
// can only happen for forests that were not produced by [arch.Build].
func Compute(f *arch.Forest, width, height float64, opts ...Option) (map[string]geom.Rect, error) {
	e := engine{left: DefaultMargin, right: DefaultMargin, gap: DefaultGap}
	for _, opt := range opts {
		opt(&e)
	}

	if err := arch.CheckCycles(f.Nodes, f.Node); err != nil {
		return nil, err
	}

	rects := make(map[string]geom.Rect, f.Len())

	offset := 0.0
	for _, l := range f.Layers {
		h := height * l.HeightPercent / 100
		rects[l.ID] = geom.Rect{X: 0, Y: offset, Width: width, Height: h}
		offset += h
	}

	rules := e.rules(f)
	canvas := geom.Rect{Width: width, Height: height}

	pending := f.Nodes
	for len(pending) > 0 {
		var next []*arch.Node
		for _, n := range pending {
			parent, ok := canvas, true
			if n.ParentID != "" {
				parent, ok = rects[n.ParentID]
			}
			if !ok {
				next = append(next, n)
				continue
			}
			rects[n.ID] = rules[n.ID].Resolve(parent)
		}
		if len(next) == len(pending) {
			for _, n := range next {
				rects[n.ID] = geom.Rect{}
			}
			break
		}
		pending = next
	}

	return rects, nil
}

// rules returns the effective rule of every non-layer node. Percent rules
// pass through; row rules get their horizontal span from their row.
func (e engine) rules(f *arch.Forest) map[string]geom.Rule {
	rules := make(map[string]geom.Rule, len(f.Nodes))

	type rowKey struct {
		parent string
		row    int
	}
	var order []rowKey
	rows := make(map[rowKey][]*arch.Node)

	for _, n := range f.Nodes {
		if n.Rule.Kind != geom.RuleRow {
			rules[n.ID] = n.Rule
			continue
		}
		k := rowKey{n.ParentID, n.Rule.Row}
		if _, ok := rows[k]; !ok {
			order = append(order, k)
		}
		rows[k] = append(rows[k], n)
	}

	for _, k := range order {
		items := rows[k]
		w := e.itemWidth(len(items))
		for i, n := range items {
			rules[n.ID] = n.Rule.WithSpan(e.left+float64(i)*(w+e.gap), w)
		}
	}
	return rules
}

// itemWidth is the width percentage of each of n items sharing a row.
func (e engine) itemWidth(n int) float64 {
	return (100 - e.left - e.right - e.gap*float64(n-1)) / float64(n)
}

package layout

import (
	"fmt"
	"math"
	"testing"

	"github.com/matzehuels/archdraw/pkg/arch"
	"github.com/matzehuels/archdraw/pkg/errors"
	"github.com/matzehuels/archdraw/pkg/geom"
)

func near(a, b geom.Rect) bool {
	const eps = 1e-9
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps &&
		math.Abs(a.Width-b.Width) < eps && math.Abs(a.Height-b.Height) < eps
}

func build(t *testing.T, d arch.Diagram) *arch.Forest {
	t.Helper()
	f, err := arch.Build(d)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return f
}

func TestComputeLayersStack(t *testing.T) {
	f := build(t, arch.Diagram{Layers: []arch.Layer{
		{ID: "top", HeightPercent: arch.Float(20)},
		{ID: "bottom", HeightPercent: arch.Float(80)},
	}})

	rects, err := Compute(f, 1000, 1000)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}

	want := map[string]geom.Rect{
		"top":    {X: 0, Y: 0, Width: 1000, Height: 200},
		"bottom": {X: 0, Y: 200, Width: 1000, Height: 800},
	}
	for id, w := range want {
		if got := rects[id]; !near(got, w) {
			t.Errorf("rects[%s] = %v, want %v", id, got, w)
		}
	}
}

func TestComputeLayerOrder(t *testing.T) {
	f := build(t, arch.Diagram{Layers: []arch.Layer{
		{ID: "second", Order: arch.Int(2)},
		{ID: "first", Order: arch.Int(1)},
	}})

	rects, err := Compute(f, 100, 100)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if rects["first"].Y != 0 || rects["second"].Y != 50 {
		t.Errorf("first.Y = %v, second.Y = %v, want 0 and 50", rects["first"].Y, rects["second"].Y)
	}
}

func TestComputeRowDistribution(t *testing.T) {
	f := build(t, arch.Diagram{
		Layers: []arch.Layer{{ID: "L1"}},
		Boxes: []arch.Box{
			{ID: "A", ParentID: "L1", Placement: arch.Placement{Row: arch.Int(1)}},
			{ID: "B", ParentID: "L1", Placement: arch.Placement{Row: arch.Int(1)}},
			{ID: "C", ParentID: "L1", Placement: arch.Placement{Row: arch.Int(1)}},
			{ID: "D", ParentID: "L1", Placement: arch.Placement{Row: arch.Int(2), YPercent: arch.Float(50), HeightPercent: arch.Float(40)}},
		},
	})

	rects, err := Compute(f, 900, 500)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}

	itemW := (100 - 5 - 5 - 2*2) / 3.0
	for i, id := range []string{"A", "B", "C"} {
		x := 5 + float64(i)*(itemW+2)
		want := geom.Rect{X: 900 * x / 100, Y: 0, Width: 900 * itemW / 100, Height: 500}
		if got := rects[id]; !near(got, want) {
			t.Errorf("rects[%s] = %v, want %v", id, got, want)
		}
	}

	// A row of one spans the full width between the margins.
	want := geom.Rect{X: 45, Y: 250, Width: 810, Height: 200}
	if got := rects["D"]; !near(got, want) {
		t.Errorf("rects[D] = %v, want %v", got, want)
	}
}

func TestComputeOptions(t *testing.T) {
	f := build(t, arch.Diagram{
		Layers: []arch.Layer{{ID: "L1"}},
		Boxes: []arch.Box{
			{ID: "A", ParentID: "L1"},
			{ID: "B", ParentID: "L1"},
		},
	})

	rects, err := Compute(f, 100, 100, WithMargins(0, 0), WithGap(0))
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if got, want := rects["B"], (geom.Rect{X: 50, Y: 0, Width: 50, Height: 100}); !near(got, want) {
		t.Errorf("rects[B] = %v, want %v", got, want)
	}
}

func TestComputePercentNesting(t *testing.T) {
	f := build(t, arch.Diagram{
		Layers: []arch.Layer{{ID: "L1", HeightPercent: arch.Float(50)}, {ID: "L2", HeightPercent: arch.Float(50)}},
		// Children are declared before their parents to force deferral.
		Components: []arch.Component{
			{ID: "C1", ParentID: "B1", Placement: arch.Placement{
				XPercent: arch.Float(50), WidthPercent: arch.Float(50),
				YPercent: arch.Float(50), HeightPercent: arch.Float(50),
			}},
		},
		Boxes: []arch.Box{
			{ID: "B1", ParentID: "L2", Placement: arch.Placement{XPercent: arch.Float(10), WidthPercent: arch.Float(40)}},
			{ID: "FREE", Placement: arch.Placement{XPercent: arch.Float(25), WidthPercent: arch.Float(50), HeightPercent: arch.Float(10)}},
		},
	})

	rects, err := Compute(f, 1000, 800)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}

	want := map[string]geom.Rect{
		"B1":   {X: 100, Y: 400, Width: 400, Height: 400},
		"C1":   {X: 300, Y: 600, Width: 200, Height: 200},
		"FREE": {X: 250, Y: 0, Width: 500, Height: 80},
	}
	for id, w := range want {
		if got := rects[id]; !near(got, w) {
			t.Errorf("rects[%s] = %v, want %v", id, got, w)
		}
	}
}

func TestComputeUnresolvedParents(t *testing.T) {
	f := build(t, arch.Diagram{
		Layers: []arch.Layer{{ID: "L1", HeightPercent: arch.Float(0)}},
		Boxes: []arch.Box{
			{ID: "orphan", ParentID: "missing"},
			{ID: "grandchild", ParentID: "orphan"},
			{ID: "flat", ParentID: "L1"},
			{ID: "flatchild", ParentID: "flat"},
		},
	})

	rects, err := Compute(f, 1000, 1000)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}

	for _, id := range []string{"orphan", "grandchild"} {
		r, ok := rects[id]
		if !ok || !r.IsZero() {
			t.Errorf("rects[%s] = %v (present %v), want zero rect", id, r, ok)
		}
	}

	// A zero-height parent yields zero-height children, not an error.
	if h := rects["flatchild"].Height; h != 0 {
		t.Errorf("flatchild height = %v, want 0", h)
	}
	if len(rects) != f.Len() {
		t.Errorf("len(rects) = %d, want %d", len(rects), f.Len())
	}
}

func TestComputeCycle(t *testing.T) {
	f := build(t, arch.Diagram{Boxes: []arch.Box{{ID: "A"}, {ID: "B", ParentID: "A"}}})
	a, _ := f.Node("A")
	a.ParentID = "B"

	if _, err := Compute(f, 100, 100); !errors.IsStructural(err) {
		t.Errorf("Compute() error = %v, want STRUCTURAL", err)
	}
}

// within reports whether inner lies inside outer up to floating-point error.
func within(outer, inner geom.Rect) bool {
	const eps = 1e-9
	return inner.X >= outer.X-eps && inner.Y >= outer.Y-eps &&
		inner.Right() <= outer.Right()+eps && inner.Bottom() <= outer.Bottom()+eps
}

func pct(x, y, w, h float64) arch.Placement {
	return arch.Placement{XPercent: arch.Float(x), YPercent: arch.Float(y), WidthPercent: arch.Float(w), HeightPercent: arch.Float(h)}
}

func TestComputePercentContainment(t *testing.T) {
	tests := []struct {
		name string
		d    arch.Diagram
	}{
		{
			name: "siblings tile the layer",
			d: arch.Diagram{
				Layers: []arch.Layer{{ID: "L1", HeightPercent: arch.Float(40)}, {ID: "L2", HeightPercent: arch.Float(60)}},
				Boxes: []arch.Box{
					{ID: "a", ParentID: "L2", Placement: pct(0, 0, 30, 100)},
					{ID: "b", ParentID: "L2", Placement: pct(30, 0, 40, 100)},
					{ID: "c", ParentID: "L2", Placement: pct(70, 0, 30, 100)},
				},
			},
		},
		{
			name: "three levels deep",
			d: arch.Diagram{
				Layers: []arch.Layer{{ID: "L1"}},
				Boxes: []arch.Box{
					{ID: "outer", ParentID: "L1", Placement: pct(10, 10, 80, 80)},
					{ID: "left", ParentID: "outer", Placement: pct(0, 20, 50, 80)},
					{ID: "right", ParentID: "outer", Placement: pct(50, 20, 50, 80)},
				},
				Components: []arch.Component{
					{ID: "c1", ParentID: "left", Placement: pct(0, 0, 50, 100)},
					{ID: "c2", ParentID: "left", Placement: pct(50, 0, 50, 100)},
					{ID: "c3", ParentID: "right", Placement: pct(0, 50, 100, 50)},
				},
			},
		},
		{
			name: "children declared before parents",
			d: arch.Diagram{
				Layers: []arch.Layer{{ID: "L1", HeightPercent: arch.Float(100)}},
				Boxes: []arch.Box{
					{ID: "leaf1", ParentID: "mid", Placement: pct(0, 0, 25, 100)},
					{ID: "leaf2", ParentID: "mid", Placement: pct(25, 0, 75, 100)},
					{ID: "mid", ParentID: "top", Placement: pct(5, 5, 90, 90)},
					{ID: "top", ParentID: "L1", Placement: pct(0, 50, 100, 50)},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := build(t, tt.d)
			rects, err := Compute(f, 1234, 987)
			if err != nil {
				t.Fatalf("Compute() error: %v", err)
			}
			for _, n := range f.Nodes {
				if n.ParentID == "" {
					continue
				}
				parent, child := rects[n.ParentID], rects[n.ID]
				if !within(parent, child) {
					t.Errorf("%s = %v escapes parent %s = %v", n.ID, child, n.ParentID, parent)
				}
			}
		})
	}
}

func TestComputeRowSpan(t *testing.T) {
	const parentWidth = 900.0

	for n := 1; n <= 6; n++ {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			d := arch.Diagram{Layers: []arch.Layer{{ID: "L1"}}}
			for i := range n {
				d.Boxes = append(d.Boxes, arch.Box{
					ID:        fmt.Sprintf("b%d", i),
					ParentID:  "L1",
					Placement: arch.Placement{Row: arch.Int(1)},
				})
			}
			f := build(t, d)
			rects, err := Compute(f, parentWidth, 300)
			if err != nil {
				t.Fatalf("Compute() error: %v", err)
			}

			first := rects["b0"]
			sum := 0.0
			for i := range n {
				r := rects[fmt.Sprintf("b%d", i)]
				if math.Abs(r.Width-first.Width) > 1e-9 {
					t.Errorf("b%d width = %v, want %v", i, r.Width, first.Width)
				}
				sum += r.Width
			}

			gaps := float64(n-1) * parentWidth * DefaultGap / 100
			if want := parentWidth * 0.9; math.Abs(sum+gaps-want) > 1e-9 {
				t.Errorf("widths + gaps = %v, want %v", sum+gaps, want)
			}
			last := rects[fmt.Sprintf("b%d", n-1)]
			if math.Abs(first.X-45) > 1e-9 || math.Abs(last.Right()-855) > 1e-9 {
				t.Errorf("row spans %v..%v, want 45..855", first.X, last.Right())
			}
		})
	}
}

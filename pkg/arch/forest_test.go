package arch

import (
	"testing"

	"github.com/matzehuels/archdraw/pkg/errors"
	"github.com/matzehuels/archdraw/pkg/geom"
)

func rowDiagram() Diagram {
	return Diagram{
		Layers: []Layer{
			{ID: "L2", Name: "Data", Order: Int(2)},
			{ID: "L1", Name: "Presentation", Order: Int(1)},
		},
		Boxes: []Box{
			{ID: "B1", Name: "Web", ParentID: "L1", Placement: Placement{Row: Int(1)}},
			{ID: "B2", Name: "Store", ParentID: "L2"},
		},
		Components: []Component{
			{ID: "C1", Name: "DB", ParentID: "B2", Shape: "database"},
		},
		Connections: []Connection{{From: "B1", To: "C1"}},
	}
}

func TestBuildDefaults(t *testing.T) {
	f, err := Build(rowDiagram())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if f.Title != DefaultTitle || f.Width != DefaultWidth || f.Height != DefaultHeight {
		t.Errorf("config = %q %vx%v, want defaults", f.Title, f.Width, f.Height)
	}
	if f.Mode != geom.RuleRow {
		t.Errorf("Mode = %v, want row", f.Mode)
	}
	if f.Layers[0].ID != "L1" || f.Layers[1].ID != "L2" {
		t.Errorf("layer order = %s,%s, want L1,L2", f.Layers[0].ID, f.Layers[1].ID)
	}
	if f.Layers[0].HeightPercent != 50 {
		t.Errorf("default layer height = %v, want 50", f.Layers[0].HeightPercent)
	}

	b2, _ := f.Node("B2")
	if b2.Rule != geom.Row(1, 0, 100) {
		t.Errorf("B2 rule = %+v, want row 1 y0 h100", b2.Rule)
	}
	if b2.Fill != "white" || b2.Border != "gray" || b2.FontSize != 11 {
		t.Errorf("B2 style = %s/%s/%d", b2.Fill, b2.Border, b2.FontSize)
	}

	c1, _ := f.Node("C1")
	if c1.Shape != ShapeDatabase || c1.Border != "dimgray" || c1.FontSize != 10 {
		t.Errorf("C1 = %s/%s/%d", c1.Shape, c1.Border, c1.FontSize)
	}

	if got := f.Connections[0]; got.Kind != ConnDataflow || got.Line != LineSolid {
		t.Errorf("connection defaults = %s/%s", got.Kind, got.Line)
	}
}

func TestBuildPercentMode(t *testing.T) {
	d := Diagram{
		Layers: []Layer{{ID: "L1"}},
		Boxes: []Box{
			{ID: "B1", ParentID: "L1", Placement: Placement{XPercent: Float(10), WidthPercent: Float(30)}},
			{ID: "B2", ParentID: "L1"},
		},
	}
	f, err := Build(d)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if f.Mode != geom.RulePercent {
		t.Fatalf("Mode = %v, want percent", f.Mode)
	}
	b2, _ := f.Node("B2")
	if b2.Rule != geom.Percent(0, 0, 100, 100) {
		t.Errorf("B2 rule = %+v, want full percent rule", b2.Rule)
	}
}

func TestBuildMixedPlacement(t *testing.T) {
	tests := []struct {
		name  string
		boxes []Box
	}{
		{
			name: "across nodes",
			boxes: []Box{
				{ID: "B1", Placement: Placement{Row: Int(1)}},
				{ID: "B2", Placement: Placement{WidthPercent: Float(50)}},
			},
		},
		{
			name:  "single node",
			boxes: []Box{{ID: "B1", Placement: Placement{Row: Int(1), XPercent: Float(5)}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(Diagram{Boxes: tt.boxes})
			if !errors.IsUnsupportedInput(err) {
				t.Errorf("Build() error = %v, want UNSUPPORTED_INPUT", err)
			}
		})
	}
}

func TestBuildCycle(t *testing.T) {
	tests := []struct {
		name  string
		boxes []Box
	}{
		{"self", []Box{{ID: "A", ParentID: "A"}}},
		{"pair", []Box{{ID: "A", ParentID: "B"}, {ID: "B", ParentID: "A"}}},
		{"long", []Box{{ID: "A", ParentID: "C"}, {ID: "B", ParentID: "A"}, {ID: "C", ParentID: "B"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(Diagram{Boxes: tt.boxes})
			if !errors.IsStructural(err) {
				t.Errorf("Build() error = %v, want STRUCTURAL", err)
			}
		})
	}
}

func TestBuildDanglingParentIsNotAnError(t *testing.T) {
	f, err := Build(Diagram{Boxes: []Box{{ID: "A", ParentID: "missing"}, {ID: "B", ParentID: "A"}}})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	var visited []string
	f.Walk(func(n *Node) bool {
		visited = append(visited, n.ID)
		return true
	})
	if len(visited) != 0 {
		t.Errorf("Walk visited %v, want nothing under a dangling parent", visited)
	}
}

func TestBuildDuplicateKeepsFirst(t *testing.T) {
	f, err := Build(Diagram{Boxes: []Box{{ID: "A", Name: "first"}, {ID: "A", Name: "second"}}})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	n, _ := f.Node("A")
	if n.Name != "first" || len(f.Nodes) != 1 {
		t.Errorf("duplicate handling: name=%s nodes=%d", n.Name, len(f.Nodes))
	}
}

func TestWalkOrder(t *testing.T) {
	d := Diagram{
		Layers: []Layer{{ID: "L1"}, {ID: "L2"}},
		Boxes: []Box{
			{ID: "B3", ParentID: "L2"},
			{ID: "B1", ParentID: "L1"},
			{ID: "B2", ParentID: "B1"},
			{ID: "FREE"},
		},
	}
	f, err := Build(d)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	var got []string
	f.Walk(func(n *Node) bool {
		got = append(got, n.ID)
		return true
	})
	want := []string{"L1", "B1", "B2", "L2", "B3", "FREE"}
	if len(got) != len(want) {
		t.Fatalf("Walk = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Walk[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	if !f.HasChildren("B1") || f.HasChildren("B2") {
		t.Error("HasChildren mismatch for B1/B2")
	}
	if f.Len() != 6 {
		t.Errorf("Len() = %d, want 6", f.Len())
	}
}

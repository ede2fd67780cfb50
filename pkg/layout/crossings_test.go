package layout

import (
	"testing"

	"github.com/matzehuels/archdraw/pkg/arch"
	"github.com/matzehuels/archdraw/pkg/geom"
)

func TestEstimateCrossings(t *testing.T) {
	rects := map[string]geom.Rect{
		"A": {X: 0, Y: 0},
		"B": {X: 10, Y: 10},
		"C": {X: 0, Y: 10},
		"D": {X: 10, Y: 0},
		"E": {X: 0, Y: 20},
		"F": {X: 10, Y: 30},
	}

	tests := []struct {
		name  string
		conns []arch.Connection
		want  int
	}{
		{"x pattern", []arch.Connection{{From: "A", To: "B"}, {From: "C", To: "D"}}, 1},
		{"parallel", []arch.Connection{{From: "A", To: "D"}, {From: "E", To: "F"}}, 0},
		{"missing endpoint", []arch.Connection{{From: "A", To: "B"}, {From: "C", To: "ghost"}}, 0},
		{"three way", []arch.Connection{{From: "A", To: "B"}, {From: "C", To: "D"}, {From: "E", To: "D"}}, 2},
		{"none", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateCrossings(rects, tt.conns); got != tt.want {
				t.Errorf("EstimateCrossings() = %d, want %d", got, tt.want)
			}
		})
	}
}

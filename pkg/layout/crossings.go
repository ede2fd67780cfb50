package layout

import (
	"github.com/matzehuels/archdraw/pkg/arch"
	"github.com/matzehuels/archdraw/pkg/geom"
)

// EstimateCrossings counts pairs of connections whose straight segments,
// drawn between the origins of their endpoint rectangles, intersect.
// Connections with an endpoint missing from rects are skipped.
func EstimateCrossings(rects map[string]geom.Rect, conns []arch.Connection) int {
	type segment struct{ a, b geom.Point }

	segs := make([]segment, 0, len(conns))
	for _, c := range conns {
		from, ok := rects[c.From]
		if !ok {
			continue
		}
		to, ok := rects[c.To]
		if !ok {
			continue
		}
		segs = append(segs, segment{from.Origin(), to.Origin()})
	}

	crossings := 0
	for i := range segs {
		for j := i + 1; j < len(segs); j++ {
			if intersects(segs[i].a, segs[i].b, segs[j].a, segs[j].b) {
				crossings++
			}
		}
	}
	return crossings
}

// intersects reports whether segments ab and cd cross, using orientation
// tests. Collinear and touching segments are not counted reliably.
func intersects(a, b, c, d geom.Point) bool {
	return ccw(a, c, d) != ccw(b, c, d) && ccw(a, b, c) != ccw(a, b, d)
}

func ccw(a, b, c geom.Point) bool {
	return (c.Y-a.Y)*(b.X-a.X) > (b.Y-a.Y)*(c.X-a.X)
}

package reconstruct

import (
	"cmp"
	"fmt"
	"html"
	"math"
	"regexp"
	"slices"
	"strings"

	"github.com/matzehuels/archdraw/pkg/arch"
	"github.com/matzehuels/archdraw/pkg/drawio"
	"github.com/matzehuels/archdraw/pkg/geom"
)

// Heuristic thresholds.
const (
	// LayerWidthRatio is the fraction of the canvas width a root cell must
	// span to be read as a layer.
	LayerWidthRatio = 0.8
	// RowThreshold is the y% distance that starts a new row.
	RowThreshold = 5.0
	// DefaultFontSize is used when a cell style has no fontSize.
	DefaultFontSize = 11

	// containTolerance absorbs the integer truncation of written geometry.
	containTolerance = 1.0
)

var (
	breakTags = regexp.MustCompile(`(?i)<br\s*/?>`)
	htmlTags  = regexp.MustCompile(`<[^>]*>`)
)

// shape is a vertex cell with any folded header label applied.
type shape struct {
	cell     drawio.Cell
	style    drawio.Style
	name     string
	fontSize int
	named    bool
}

// node is a reconstructed layer, box, or component.
type node struct {
	id   string
	rect geom.Rect
}

// Reconstruct returns the record set described by doc.
func Reconstruct(doc *drawio.Document) *arch.Diagram {
	d := &arch.Diagram{}
	if doc == nil {
		return d
	}

	width, height := canvas(doc)
	d.Config = arch.Config{Title: doc.Title, Width: width, Height: height}
	if d.Config.Title == "" {
		d.Config.Title = arch.DefaultTitle
	}

	shapes, aliases := fold(doc.Nodes)
	ids := make(map[string]string, len(shapes))

	layers, rest := detectLayers(shapes, width)
	var containers []node
	total := 0.0
	for _, s := range layers {
		total += s.cell.Geometry.Height
	}
	if total == 0 {
		total = height
	}
	for i, s := range layers {
		id := fmt.Sprintf("L%d", i+1)
		name := s.name
		if name == "" {
			name = fmt.Sprintf("Layer %d", i+1)
		}
		d.Layers = append(d.Layers, arch.Layer{
			ID:            id,
			Name:          name,
			Order:         arch.Int(i + 1),
			Fill:          fill(s.style),
			HeightPercent: arch.Float(round1(s.cell.Geometry.Height / total * 100)),
		})
		ids[s.cell.ID] = id
		containers = append(containers, node{id: id, rect: s.cell.Geometry})
	}

	pageRect := geom.Rect{Width: width, Height: height}
	var order []string
	parents := make(map[string]string)

	for _, s := range rest {
		r := s.cell.Geometry
		parentID, parentRect := "", pageRect
		if p, ok := smallestContainer(containers, r); ok {
			parentID, parentRect = p.id, p.rect
		} else if len(d.Layers) > 0 {
			// Layers are the first containers.
			parentID, parentRect = containers[0].id, containers[0].rect
		}

		p := arch.Placement{
			YPercent:      arch.Float(round1(percent(r.Y-parentRect.Y, parentRect.Height))),
			HeightPercent: arch.Float(round1(percent(r.Height, parentRect.Height))),
		}

		var id string
		if isComponent(s.style) {
			id = fmt.Sprintf("C%d", len(d.Components)+1)
			d.Components = append(d.Components, arch.Component{
				ID:        id,
				Name:      nameOr(s.name, "Component", len(d.Components)+1),
				ParentID:  parentID,
				Placement: p,
				Shape:     shapeToken(s.style),
				Border:    border(s.style),
				FontSize:  arch.Size(s.fontSize),
			})
		} else {
			id = fmt.Sprintf("B%d", len(d.Boxes)+1)
			d.Boxes = append(d.Boxes, arch.Box{
				ID:        id,
				Name:      nameOr(s.name, "Box", len(d.Boxes)+1),
				ParentID:  parentID,
				Placement: p,
				Fill:      fill(s.style),
				Border:    border(s.style),
				FontSize:  arch.Size(s.fontSize),
			})
			containers = append(containers, node{id: id, rect: r})
		}
		ids[s.cell.ID] = id
		parents[id] = parentID
		order = append(order, id)
	}

	placements := make(map[string]*arch.Placement, len(order))
	for i := range d.Boxes {
		placements[d.Boxes[i].ID] = &d.Boxes[i].Placement
	}
	for i := range d.Components {
		placements[d.Components[i].ID] = &d.Components[i].Placement
	}
	assignRows(order, parents, placements)

	for label, target := range aliases {
		if id, ok := ids[target]; ok {
			ids[label] = id
		}
	}
	d.Connections = connections(doc.Edges, ids)
	return d
}

// canvas returns the page size, falling back to the vertex bounds and then
// to the record defaults.
func canvas(doc *drawio.Document) (float64, float64) {
	w, h := doc.Width, doc.Height
	b := doc.Bounds()
	if w <= 0 {
		w = b.Right()
	}
	if h <= 0 {
		h = b.Bottom()
	}
	if w <= 0 {
		w = arch.DefaultWidth
	}
	if h <= 0 {
		h = arch.DefaultHeight
	}
	return w, h
}

// fold merges text-only cells into the shape they label. A label goes to
// the nearest preceding unnamed shape holding the label's origin, or else
// to the smallest unnamed shape containing it. Labels that fit no shape are kept
// as shapes. The returned aliases map folded label ids to their shape ids.
func fold(cells []drawio.Cell) ([]*shape, map[string]string) {
	var shapes []*shape
	var labels []drawio.Cell
	index := make(map[string]int)

	for _, c := range cells {
		if drawio.IsLabel(c.Style) {
			labels = append(labels, c)
			continue
		}
		st := drawio.ParseStyle(c.Style)
		name := cleanLabel(c.Value)
		index[c.ID] = len(shapes)
		shapes = append(shapes, &shape{
			cell:     c,
			style:    st,
			name:     name,
			named:    name != "",
			fontSize: st.Int("fontSize", DefaultFontSize),
		})
	}

	aliases := make(map[string]string)
	for _, l := range labels {
		target := labelTarget(shapes, cells, index, l)
		st := drawio.ParseStyle(l.Style)
		if target == nil {
			name := cleanLabel(l.Value)
			shapes = append(shapes, &shape{cell: l, style: st, name: name, named: name != "",
				fontSize: st.Int("fontSize", DefaultFontSize)})
			continue
		}
		target.name = cleanLabel(l.Value)
		target.named = true
		if !target.style.Has("fontSize") {
			target.fontSize = st.Int("fontSize", DefaultFontSize)
		}
		aliases[l.ID] = target.cell.ID
	}

	// Keep document order so that parents precede children.
	pos := make(map[string]int, len(cells))
	for i, c := range cells {
		pos[c.ID] = i
	}
	slices.SortStableFunc(shapes, func(a, b *shape) int { return cmp.Compare(pos[a.cell.ID], pos[b.cell.ID]) })
	return shapes, aliases
}

func labelTarget(shapes []*shape, cells []drawio.Cell, index map[string]int, l drawio.Cell) *shape {
	// Nearest preceding cell in document order. Headers overhang shapes
	// shorter than the header strip, so only the origin has to fit.
	at := slices.IndexFunc(cells, func(c drawio.Cell) bool { return c.ID == l.ID })
	origin := geom.Rect{X: l.Geometry.X, Y: l.Geometry.Y}
	for i := at - 1; i >= 0; i-- {
		c := cells[i]
		if drawio.IsLabel(c.Style) {
			continue
		}
		s := shapes[index[c.ID]]
		if !s.named && contains(c.Geometry, origin) {
			return s
		}
	}

	var best *shape
	for _, s := range shapes {
		if s.named || !contains(s.cell.Geometry, l.Geometry) {
			continue
		}
		if best == nil || s.cell.Geometry.Area() < best.cell.Geometry.Area() {
			best = s
		}
	}
	return best
}

// detectLayers splits shapes into layers, ordered by y, and the rest in
// document order. A wide root cell that sits inside a larger wide root
// cell is a box, not a layer.
func detectLayers(shapes []*shape, width float64) (layers, rest []*shape) {
	var candidates []*shape
	for _, s := range shapes {
		if isRootChild(s.cell.Parent) && s.cell.Geometry.Width >= width*LayerWidthRatio {
			candidates = append(candidates, s)
		}
	}

	isLayer := make(map[*shape]bool)
	for i, c := range candidates {
		nested := false
		for j, o := range candidates {
			if i == j || !contains(o.cell.Geometry, c.cell.Geometry) {
				continue
			}
			oa, ca := o.cell.Geometry.Area(), c.cell.Geometry.Area()
			if oa > ca || (oa == ca && j < i) {
				nested = true
				break
			}
		}
		if !nested {
			isLayer[c] = true
		}
	}

	for _, s := range shapes {
		if isLayer[s] {
			layers = append(layers, s)
		} else {
			rest = append(rest, s)
		}
	}
	slices.SortStableFunc(layers, func(a, b *shape) int {
		return cmp.Compare(a.cell.Geometry.Y, b.cell.Geometry.Y)
	})
	return layers, rest
}

func isRootChild(parent string) bool {
	return parent == "" || parent == drawio.LayerID
}

// smallestContainer returns the smallest container fully holding r. Ties
// keep the earliest container.
func smallestContainer(containers []node, r geom.Rect) (node, bool) {
	var best node
	found := false
	for _, c := range containers {
		if !contains(c.rect, r) {
			continue
		}
		if !found || c.rect.Area() < best.rect.Area() {
			best, found = c, true
		}
	}
	return best, found
}

// assignRows numbers rows per parent. Children are sorted by y% and a gap
// larger than [RowThreshold] from the previous child starts a new row.
func assignRows(order []string, parents map[string]string, placements map[string]*arch.Placement) {
	var parentOrder []string
	byParent := make(map[string][]string)
	for _, id := range order {
		p := parents[id]
		if _, ok := byParent[p]; !ok {
			parentOrder = append(parentOrder, p)
		}
		byParent[p] = append(byParent[p], id)
	}

	for _, p := range parentOrder {
		children := slices.Clone(byParent[p])
		slices.SortStableFunc(children, func(a, b string) int {
			return cmp.Compare(*placements[a].YPercent, *placements[b].YPercent)
		})
		row := 1
		prev := *placements[children[0]].YPercent
		for _, id := range children {
			y := *placements[id].YPercent
			if math.Abs(y-prev) > RowThreshold {
				row++
			}
			placements[id].Row = arch.Int(row)
			prev = y
		}
	}
}

func connections(edges []drawio.Cell, ids map[string]string) []arch.Connection {
	var out []arch.Connection
	for _, e := range edges {
		from, ok := ids[e.Source]
		if !ok {
			continue
		}
		to, ok := ids[e.Target]
		if !ok {
			continue
		}
		kind, line := edgeTokens(drawio.ParseStyle(e.Style))
		out = append(out, arch.Connection{
			From:  from,
			To:    to,
			Kind:  kind,
			Label: cleanLabel(e.Value),
			Line:  line,
		})
	}
	return out
}

func edgeTokens(st drawio.Style) (kind, line string) {
	switch {
	case st.Int("strokeWidth", 1) == 3:
		return arch.ConnStream, arch.LineBold
	case st.Is("dashed", "1"):
		return arch.ConnBatch, arch.LineDotted
	case st.Has("startArrow") && !st.Is("startArrow", "none"):
		return arch.ConnBidirectional, arch.LineSolid
	default:
		return arch.ConnDataflow, arch.LineSolid
	}
}

// isComponent recognizes the component shape styles and the regular
// weight label that components are written with.
func isComponent(st drawio.Style) bool {
	switch v, _ := st.Get("shape"); v {
	case "cylinder3", "cylinder", "folder", "note":
		return true
	}
	return st.Is("rounded", "1") || st.Has("arcSize") || st.Is("fontStyle", "0")
}

func shapeToken(st drawio.Style) string {
	switch v, _ := st.Get("shape"); v {
	case "cylinder3", "cylinder":
		return arch.ShapeDatabase
	case "folder":
		return arch.ShapeStorage
	case "note":
		return arch.ShapeDocument
	}
	switch {
	case st.Is("rounded", "1") || st.Has("arcSize"):
		return arch.ShapeService
	case st.Is("dashed", "1"):
		return arch.ShapeCluster
	default:
		return arch.ShapeBox
	}
}

func fill(st drawio.Style) string {
	v, _ := st.Get("fillColor")
	return arch.FillToken(v)
}

func border(st drawio.Style) string {
	v, _ := st.Get("strokeColor")
	return arch.BorderToken(v)
}

func contains(outer, inner geom.Rect) bool {
	return outer.X-containTolerance <= inner.X &&
		outer.Y-containTolerance <= inner.Y &&
		inner.Right() <= outer.Right()+containTolerance &&
		inner.Bottom() <= outer.Bottom()+containTolerance
}

func percent(v, total float64) float64 {
	if total == 0 {
		return 0
	}
	return v / total * 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func nameOr(name, kind string, n int) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("%s %d", kind, n)
}

// cleanLabel strips the HTML markup the editor stores in labels.
func cleanLabel(v string) string {
	v = breakTags.ReplaceAllString(v, " ")
	v = htmlTags.ReplaceAllString(v, "")
	return strings.Join(strings.Fields(html.UnescapeString(v)), " ")
}

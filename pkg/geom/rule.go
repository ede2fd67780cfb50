package geom

import "fmt"

// RuleKind selects the variant of a [Rule].
type RuleKind int

const (
	// RulePercent positions a node with explicit x%, y%, width%, height%.
	RulePercent RuleKind = iota
	// RuleRow positions a node by row; the horizontal span is computed.
	RuleRow
)

// String returns "percent" or "row".
func (k RuleKind) String() string {
	switch k {
	case RulePercent:
		return "percent"
	case RuleRow:
		return "row"
	default:
		return fmt.Sprintf("RuleKind(%d)", int(k))
	}
}

// Rule is a placement relative to a parent rectangle, in percent of the
// parent's size. For RuleRow, X and Width are zero until the layout engine
// distributes the row.
type Rule struct {
	Kind   RuleKind `json:"kind"`
	Row    int      `json:"row,omitempty"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
}

// Percent returns a percentage rule.
func Percent(x, y, width, height float64) Rule {
	return Rule{Kind: RulePercent, X: x, Y: y, Width: width, Height: height}
}

// Row returns a row rule for the given row number with vertical placement
// y% and height%.
func Row(row int, y, height float64) Rule {
	return Rule{Kind: RuleRow, Row: row, Y: y, Height: height}
}

// WithSpan returns a copy of the rule with its horizontal span set.
func (r Rule) WithSpan(x, width float64) Rule {
	r.X = x
	r.Width = width
	return r
}

// Resolve converts the rule to an absolute rectangle inside parent.
func (r Rule) Resolve(parent Rect) Rect {
	return Rect{
		X:      parent.X + parent.Width*r.X/100,
		Y:      parent.Y + parent.Height*r.Y/100,
		Width:  parent.Width * r.Width / 100,
		Height: parent.Height * r.Height / 100,
	}
}

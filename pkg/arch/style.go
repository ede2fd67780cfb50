package arch

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mazznoer/csscolorparser"
)

// =============================================================================
// Color Tables
// =============================================================================

// Fallback colors for unknown tokens.
const (
	FallbackFill   = "#FFFFFF"
	FallbackBorder = "#999999"
)

var fillColors = map[string]string{
	"sky":       "#E3F2FD",
	"lime":      "#E8F5E9",
	"orange":    "#FFE0B2",
	"gray":      "#E0E0E0",
	"lightgray": "#F5F5F5",
	"white":     "#FFFFFF",
	"yellow":    "#FFF9C4",
	"pink":      "#FCE4EC",
	"purple":    "#EDE7F6",
	"blue":      "#BBDEFB",
	"green":     "#C8E6C9",
}

var borderColors = map[string]string{
	"darkblue":   "#1976D2",
	"darkgreen":  "#388E3C",
	"darkorange": "#F57C00",
	"darkgray":   "#616161",
	"dimgray":    "#666666",
	"gray":       "#999999",
	"darkred":    "#D32F2F",
	"darkpurple": "#7B1FA2",
	"black":      "#000000",
}

// Korean tokens used by the spreadsheet record sets.
var fillAliases = map[string]string{
	"하늘색": "sky",
	"연두색": "lime",
	"주황색": "orange",
	"회색":  "gray",
	"연회색": "lightgray",
	"흰색":  "white",
	"노란색": "yellow",
	"분홍색": "pink",
	"보라색": "purple",
	"파란색": "blue",
	"녹색":  "green",
}

var borderAliases = map[string]string{
	"진한파랑": "darkblue",
	"진한녹색": "darkgreen",
	"진한주황": "darkorange",
	"진한회색": "darkgray",
	"진회색":  "dimgray",
	"회색":   "gray",
	"진한빨강": "darkred",
	"진한보라": "darkpurple",
	"검정":   "black",
}

var (
	fillTokens   = invert(fillColors)
	borderTokens = invert(borderColors)
)

func invert(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// FillColor resolves a fill token to a hex color. Raw colors ("#e3f2fd",
// "rgb(227,242,253)") are accepted and normalized. Unknown tokens return
// [FallbackFill].
func FillColor(token string) string {
	return lookupColor(token, fillColors, fillAliases, FallbackFill)
}

// BorderColor resolves a border token to a hex color. Unknown tokens return
// [FallbackBorder].
func BorderColor(token string) string {
	return lookupColor(token, borderColors, borderAliases, FallbackBorder)
}

func lookupColor(token string, table, aliases map[string]string, fallback string) string {
	key := strings.ToLower(strings.TrimSpace(token))
	if alias, ok := aliases[key]; ok {
		key = alias
	}
	if hex, ok := table[key]; ok {
		return hex
	}
	if strings.HasPrefix(key, "#") || strings.Contains(key, "(") {
		if hex, ok := NormalizeColor(key); ok {
			return hex
		}
	}
	return fallback
}

// FillToken maps a color back to its fill token, or "white" when the color is
// not in the table.
func FillToken(color string) string {
	if hex, ok := NormalizeColor(color); ok {
		if t, ok := fillTokens[hex]; ok {
			return t
		}
	}
	return DefaultFill
}

// BorderToken maps a color back to its border token, or "gray" when the color
// is not in the table.
func BorderToken(color string) string {
	if hex, ok := NormalizeColor(color); ok {
		if t, ok := borderTokens[hex]; ok {
			return t
		}
	}
	return DefaultBorder
}

// NormalizeColor parses any CSS color (including bare six-digit hex as
// written by some editors) and returns it as uppercase #RRGGBB.
func NormalizeColor(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return "", false
	}
	if isBareHex(s) {
		s = "#" + s
	}
	c, err := csscolorparser.Parse(s)
	if err != nil {
		return "", false
	}
	return strings.ToUpper(colorful.Color{R: c.R, G: c.G, B: c.B}.Clamped().Hex()), true
}

func isBareHex(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}

// =============================================================================
// Shapes
// =============================================================================

// Component shape tokens.
const (
	ShapeBox      = "box"
	ShapeCluster  = "cluster"
	ShapeService  = "service"
	ShapeDatabase = "database"
	ShapeStorage  = "storage"
	ShapeDocument = "document"
)

var shapeStyles = map[string]string{
	ShapeBox:      "rounded=0;whiteSpace=wrap;html=1;",
	ShapeCluster:  "rounded=0;whiteSpace=wrap;html=1;dashed=1;dashPattern=5 5;",
	ShapeService:  "rounded=1;whiteSpace=wrap;html=1;arcSize=10;",
	ShapeDatabase: "shape=cylinder3;whiteSpace=wrap;html=1;boundedLbl=1;",
	ShapeStorage:  "shape=folder;whiteSpace=wrap;html=1;",
	ShapeDocument: "shape=note;whiteSpace=wrap;html=1;",
}

var shapeAliases = map[string]string{
	"단일박스":   ShapeBox,
	"클러스터":   ShapeCluster,
	"서비스":    ShapeService,
	"데이터베이스": ShapeDatabase,
	"저장소":    ShapeStorage,
	"문서":     ShapeDocument,
}

// ShapeStyle returns the style prefix for a shape token. Unknown tokens use
// the plain box style.
func ShapeStyle(shape string) string {
	return shapeStyles[CanonicalShape(shape)]
}

// CanonicalShape resolves aliases and unknown shapes to a known shape token.
func CanonicalShape(shape string) string {
	key := strings.ToLower(strings.TrimSpace(shape))
	if alias, ok := shapeAliases[key]; ok {
		return alias
	}
	if _, ok := shapeStyles[key]; ok {
		return key
	}
	return ShapeBox
}

// =============================================================================
// Connections
// =============================================================================

// Connection kind tokens.
const (
	ConnDataflow      = "dataflow"
	ConnBidirectional = "bidirectional"
	ConnStream        = "stream"
	ConnBatch         = "batch"
)

// Line style tokens.
const (
	LineSolid  = "solid"
	LineDotted = "dotted"
	LineBold   = "bold"
	LineDouble = "double"
)

// EdgeBase is the style shared by every connection kind.
const EdgeBase = "edgeStyle=orthogonalEdgeStyle;curved=1;orthogonalLoop=1;jettySize=auto;html=1;"

// EdgeStyle is the resolved visual style of a connection kind.
type EdgeStyle struct {
	Style      string
	EndArrow   string
	StartArrow string
}

var edgeStyles = map[string]EdgeStyle{
	ConnDataflow:      {Style: EdgeBase, EndArrow: "classic", StartArrow: "none"},
	ConnBidirectional: {Style: EdgeBase, EndArrow: "classic", StartArrow: "classic"},
	ConnStream:        {Style: EdgeBase + "strokeWidth=3;", EndArrow: "block", StartArrow: "none"},
	ConnBatch:         {Style: EdgeBase + "dashed=1;dashPattern=3 3;", EndArrow: "classic", StartArrow: "none"},
}

var kindAliases = map[string]string{
	"데이터흐름": ConnDataflow,
	"양방향":   ConnBidirectional,
	"스트림":   ConnStream,
	"배치":    ConnBatch,
}

var lineStyles = map[string]string{
	LineSolid:  "",
	LineDotted: "dashed=1;dashPattern=3 3;",
	LineBold:   "strokeWidth=3;",
	LineDouble: "strokeWidth=1;",
}

var lineAliases = map[string]string{
	"실선":   LineSolid,
	"점선":   LineDotted,
	"굵은실선": LineBold,
	"이중선":  LineDouble,
}

// ConnectionStyle resolves a kind token. Unknown kinds use dataflow.
func ConnectionStyle(kind string) EdgeStyle {
	key := strings.ToLower(strings.TrimSpace(kind))
	if alias, ok := kindAliases[key]; ok {
		key = alias
	}
	if s, ok := edgeStyles[key]; ok {
		return s
	}
	return edgeStyles[ConnDataflow]
}

// LineStyle resolves a line-style token to the style fragment appended after
// the kind style. Solid and unknown tokens return "".
func LineStyle(line string) string {
	key := strings.ToLower(strings.TrimSpace(line))
	if alias, ok := lineAliases[key]; ok {
		key = alias
	}
	return lineStyles[key]
}

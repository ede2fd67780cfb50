package arch

import (
	"encoding/json"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// FontSize is a point size. Record files may give it as a number or as a
// size name (small, medium, large, xlarge). Unknown names decode to 0,
// which [Build] replaces with the node default.
type FontSize int

// textSizes maps size names to points.
var textSizes = map[string]int{
	"small":  10,
	"medium": 12,
	"large":  14,
	"xlarge": 16,

	"작음":  10,
	"중간":  12,
	"큼":   14,
	"아주큼": 16,
}

// TextSize resolves a size name to points.
func TextSize(name string) (int, bool) {
	v, ok := textSizes[strings.ToLower(strings.TrimSpace(name))]
	return v, ok
}

func parseFontSize(s string) FontSize {
	s = strings.TrimSpace(s)
	if v, ok := TextSize(s); ok {
		return FontSize(v)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return FontSize(int(f))
	}
	return 0
}

// UnmarshalJSON accepts numbers and size names.
func (s *FontSize) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = parseFontSize(str)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*s = parseFontSize(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// UnmarshalTOML accepts integers, floats, and size names.
func (s *FontSize) UnmarshalTOML(v any) error {
	switch t := v.(type) {
	case int64:
		*s = parseFontSize(strconv.FormatInt(t, 10))
	case float64:
		*s = parseFontSize(strconv.FormatFloat(t, 'f', -1, 64))
	case string:
		*s = parseFontSize(t)
	default:
		*s = 0
	}
	return nil
}

// UnmarshalYAML accepts scalar numbers and size names.
func (s *FontSize) UnmarshalYAML(n *yaml.Node) error {
	*s = parseFontSize(n.Value)
	return nil
}

func sizeOr(p *FontSize, def int) int {
	if p == nil || *p <= 0 {
		return def
	}
	return int(*p)
}

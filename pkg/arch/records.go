package arch

import "github.com/matzehuels/archdraw/pkg/geom"

// Defaults applied to records by [Build].
const (
	DefaultTitle  = "System Architecture"
	DefaultWidth  = 1400.0
	DefaultHeight = 900.0

	DefaultFill            = "white"
	DefaultBorder          = "gray"
	DefaultComponentBorder = "dimgray"
	DefaultShape           = ShapeBox
	DefaultConnKind        = ConnDataflow
	DefaultLine            = LineSolid

	DefaultBoxFontSize       = 11
	DefaultComponentFontSize = 10
)

// Diagram is a complete record set.
type Diagram struct {
	Config      Config       `json:"config" toml:"config" yaml:"config"`
	Layers      []Layer      `json:"layers" toml:"layers" yaml:"layers"`
	Boxes       []Box        `json:"boxes,omitempty" toml:"boxes,omitempty" yaml:"boxes,omitempty"`
	Components  []Component  `json:"components,omitempty" toml:"components,omitempty" yaml:"components,omitempty"`
	Connections []Connection `json:"connections,omitempty" toml:"connections,omitempty" yaml:"connections,omitempty"`
}

// Config holds document-level settings. Zero values take the defaults.
type Config struct {
	Title  string  `json:"title,omitempty" toml:"title,omitempty" yaml:"title,omitempty"`
	Width  float64 `json:"width,omitempty" toml:"width,omitempty" yaml:"width,omitempty"`
	Height float64 `json:"height,omitempty" toml:"height,omitempty" yaml:"height,omitempty"`
}

// WithDefaults returns c with zero fields replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.Title == "" {
		c.Title = DefaultTitle
	}
	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	if c.Height <= 0 {
		c.Height = DefaultHeight
	}
	return c
}

// Layer is a top-level full-width band.
type Layer struct {
	ID            string   `json:"id" toml:"id" yaml:"id"`
	Name          string   `json:"name" toml:"name" yaml:"name"`
	Order         *int     `json:"order,omitempty" toml:"order,omitempty" yaml:"order,omitempty"`
	Fill          string   `json:"fill,omitempty" toml:"fill,omitempty" yaml:"fill,omitempty"`
	HeightPercent *float64 `json:"height_percent,omitempty" toml:"height_percent,omitempty" yaml:"height_percent,omitempty"`
}

// Placement carries the optional placement fields shared by boxes and
// components. Row set means row mode; XPercent or WidthPercent set means
// percentage mode.
type Placement struct {
	Row           *int     `json:"row,omitempty" toml:"row,omitempty" yaml:"row,omitempty"`
	XPercent      *float64 `json:"x_percent,omitempty" toml:"x_percent,omitempty" yaml:"x_percent,omitempty"`
	YPercent      *float64 `json:"y_percent,omitempty" toml:"y_percent,omitempty" yaml:"y_percent,omitempty"`
	WidthPercent  *float64 `json:"width_percent,omitempty" toml:"width_percent,omitempty" yaml:"width_percent,omitempty"`
	HeightPercent *float64 `json:"height_percent,omitempty" toml:"height_percent,omitempty" yaml:"height_percent,omitempty"`
}

func (p Placement) hasRow() bool     { return p.Row != nil }
func (p Placement) hasPercent() bool { return p.XPercent != nil || p.WidthPercent != nil }

// rule resolves the placement against the document mode.
func (p Placement) rule(mode geom.RuleKind) geom.Rule {
	y := floatOr(p.YPercent, 0)
	h := floatOr(p.HeightPercent, 100)
	if mode == geom.RuleRow {
		return geom.Row(intOr(p.Row, 1), y, h)
	}
	return geom.Percent(floatOr(p.XPercent, 0), y, floatOr(p.WidthPercent, 100), h)
}

// Box is a container that may hold other boxes or components.
type Box struct {
	ID        string `json:"id" toml:"id" yaml:"id"`
	Name      string `json:"name" toml:"name" yaml:"name"`
	ParentID  string `json:"parent_id,omitempty" toml:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Placement `yaml:",inline"`
	Fill      string    `json:"fill,omitempty" toml:"fill,omitempty" yaml:"fill,omitempty"`
	Border    string    `json:"border,omitempty" toml:"border,omitempty" yaml:"border,omitempty"`
	FontSize  *FontSize `json:"font_size,omitempty" toml:"font_size,omitempty" yaml:"font_size,omitempty"`
}

// Component is a leaf node drawn with a role-specific shape.
type Component struct {
	ID        string `json:"id" toml:"id" yaml:"id"`
	Name      string `json:"name" toml:"name" yaml:"name"`
	ParentID  string `json:"parent_id,omitempty" toml:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Placement `yaml:",inline"`
	Shape     string    `json:"shape,omitempty" toml:"shape,omitempty" yaml:"shape,omitempty"`
	Border    string    `json:"border,omitempty" toml:"border,omitempty" yaml:"border,omitempty"`
	FontSize  *FontSize `json:"font_size,omitempty" toml:"font_size,omitempty" yaml:"font_size,omitempty"`
}

// Connection links two node ids.
type Connection struct {
	From  string `json:"from" toml:"from" yaml:"from"`
	To    string `json:"to" toml:"to" yaml:"to"`
	Kind  string `json:"kind,omitempty" toml:"kind,omitempty" yaml:"kind,omitempty"`
	Label string `json:"label,omitempty" toml:"label,omitempty" yaml:"label,omitempty"`
	Line  string `json:"line,omitempty" toml:"line,omitempty" yaml:"line,omitempty"`
}

// WithDefaults returns c with an empty kind and line replaced by defaults.
func (c Connection) WithDefaults() Connection {
	if c.Kind == "" {
		c.Kind = DefaultConnKind
	}
	if c.Line == "" {
		c.Line = DefaultLine
	}
	return c
}

// Int returns a pointer to v, for populating optional record fields.
func Int(v int) *int { return &v }

// Float returns a pointer to v, for populating optional record fields.
func Float(v float64) *float64 { return &v }

// Size returns a pointer to a font size, for populating optional record fields.
func Size(v int) *FontSize {
	s := FontSize(v)
	return &s
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func stringOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

package drawio

import (
	"bytes"
	"compress/flate"
	"encoding/base64"
	"encoding/xml"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/archdraw/pkg/errors"
	"github.com/matzehuels/archdraw/pkg/geom"
)

// File-level attributes written on every document.
const (
	Host    = "app.diagrams.net"
	Version = "24.7.17"
	Type    = "device"
)

// Geometry defaults for cells that omit an attribute.
const (
	DefaultCellWidth  = 100.0
	DefaultCellHeight = 50.0
)

const timeLayout = "2006-01-02T15:04:05.000Z"

type mxFile struct {
	XMLName  xml.Name    `xml:"mxfile"`
	Host     string      `xml:"host,attr"`
	Modified string      `xml:"modified,attr,omitempty"`
	Agent    string      `xml:"agent,attr,omitempty"`
	Version  string      `xml:"version,attr,omitempty"`
	Type     string      `xml:"type,attr,omitempty"`
	Diagrams []mxDiagram `xml:"diagram"`
}

type mxDiagram struct {
	ID      string   `xml:"id,attr,omitempty"`
	Name    string   `xml:"name,attr,omitempty"`
	Model   *mxModel `xml:"mxGraphModel"`
	Payload string   `xml:",chardata"`
}

type mxModel struct {
	XMLName    xml.Name `xml:"mxGraphModel"`
	Dx         string   `xml:"dx,attr,omitempty"`
	Dy         string   `xml:"dy,attr,omitempty"`
	Grid       string   `xml:"grid,attr,omitempty"`
	GridSize   string   `xml:"gridSize,attr,omitempty"`
	Guides     string   `xml:"guides,attr,omitempty"`
	Tooltips   string   `xml:"tooltips,attr,omitempty"`
	Connect    string   `xml:"connect,attr,omitempty"`
	Arrows     string   `xml:"arrows,attr,omitempty"`
	Fold       string   `xml:"fold,attr,omitempty"`
	Page       string   `xml:"page,attr,omitempty"`
	PageScale  string   `xml:"pageScale,attr,omitempty"`
	PageWidth  string   `xml:"pageWidth,attr,omitempty"`
	PageHeight string   `xml:"pageHeight,attr,omitempty"`
	Math       string   `xml:"math,attr,omitempty"`
	Shadow     string   `xml:"shadow,attr,omitempty"`
	Root       mxRoot   `xml:"root"`
}

type mxRoot struct {
	Cells []mxCell `xml:"mxCell"`
}

// mxCell omits value only for the reserved cells, where Value is nil.
type mxCell struct {
	ID       string      `xml:"id,attr"`
	Value    *string     `xml:"value,attr"`
	Style    string      `xml:"style,attr,omitempty"`
	Parent   string      `xml:"parent,attr,omitempty"`
	Vertex   string      `xml:"vertex,attr,omitempty"`
	Edge     string      `xml:"edge,attr,omitempty"`
	Source   string      `xml:"source,attr,omitempty"`
	Target   string      `xml:"target,attr,omitempty"`
	Geometry *mxGeometry `xml:"mxGeometry"`
}

type mxGeometry struct {
	X        *string `xml:"x,attr"`
	Y        *string `xml:"y,attr"`
	Width    *string `xml:"width,attr"`
	Height   *string `xml:"height,attr"`
	Relative string  `xml:"relative,attr,omitempty"`
	As       string  `xml:"as,attr"`
}

// mxObject is the wrapper the editor writes for cells with custom
// properties. Its id and label override the inner cell's.
type mxObject struct {
	ID    string `xml:"id,attr"`
	Label string `xml:"label,attr"`
	Cell  mxCell `xml:"mxCell"`
}

// UnmarshalXML keeps plain and wrapped cells in document order.
func (r *mxRoot) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "mxCell":
				var c mxCell
				if err := d.DecodeElement(&c, &t); err != nil {
					return err
				}
				r.Cells = append(r.Cells, c)
			case "object", "UserObject":
				var o mxObject
				if err := d.DecodeElement(&o, &t); err != nil {
					return err
				}
				c := o.Cell
				c.ID = o.ID
				label := o.Label
				c.Value = &label
				r.Cells = append(r.Cells, c)
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

// Marshal encodes d as an uncompressed mxfile document.
func Marshal(d *Document) ([]byte, error) {
	f := encodeFile(d)
	f.Diagrams[0].Model = encodeModel(d)
	return writeFile(f)
}

// MarshalCompressed encodes d with the diagram payload compressed the way
// the desktop editor saves it.
func MarshalCompressed(d *Document) ([]byte, error) {
	model, err := xml.Marshal(encodeModel(d))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode diagram model")
	}
	payload, err := deflatePayload(model)
	if err != nil {
		return nil, err
	}
	f := encodeFile(d)
	f.Diagrams[0].Payload = payload
	return writeFile(f)
}

func writeFile(f mxFile) ([]byte, error) {
	out, err := xml.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode document")
	}
	return append(out, '\n'), nil
}

func encodeFile(d *Document) mxFile {
	f := mxFile{
		Host:    Host,
		Agent:   d.Agent,
		Version: Version,
		Type:    Type,
	}
	if !d.Modified.IsZero() {
		f.Modified = d.Modified.UTC().Format(timeLayout)
	}
	f.Diagrams = []mxDiagram{{ID: d.ID, Name: d.Title}}
	return f
}

func encodeModel(d *Document) *mxModel {
	m := &mxModel{
		Dx: "1422", Dy: "794",
		Grid: "1", GridSize: "10",
		Guides: "1", Tooltips: "1", Connect: "1", Arrows: "1", Fold: "1",
		Page: "1", PageScale: "1",
		PageWidth:  formatInt(d.Width),
		PageHeight: formatInt(d.Height),
		Math:       "0", Shadow: "0",
	}

	cells := make([]mxCell, 0, d.Len()+2)
	cells = append(cells, mxCell{ID: RootID}, mxCell{ID: LayerID, Parent: RootID})
	for _, c := range d.Nodes {
		cells = append(cells, encodeCell(c))
	}
	for _, c := range d.Edges {
		cells = append(cells, encodeCell(c))
	}
	m.Root.Cells = cells
	return m
}

func encodeCell(c Cell) mxCell {
	value := c.Value
	out := mxCell{
		ID:     c.ID,
		Value:  &value,
		Style:  c.Style,
		Parent: c.Parent,
		Source: c.Source,
		Target: c.Target,
	}
	if out.Parent == "" {
		out.Parent = LayerID
	}
	switch {
	case c.Edge:
		out.Edge = "1"
		out.Geometry = &mxGeometry{Relative: "1", As: "geometry"}
	default:
		out.Vertex = "1"
		g := c.Geometry
		out.Geometry = &mxGeometry{
			X:      ptr(formatInt(g.X)),
			Y:      ptr(formatInt(g.Y)),
			Width:  ptr(formatInt(g.Width)),
			Height: ptr(formatInt(g.Height)),
			As:     "geometry",
		}
	}
	return out
}

// Unmarshal decodes an mxfile document or a bare mxGraphModel. Only the
// first diagram page is read. Cells that are neither vertices nor edges
// (the reserved root and layer cells) are dropped.
func Unmarshal(data []byte) (*Document, error) {
	root, err := rootElement(data)
	if err != nil {
		return nil, err
	}

	doc := &Document{}
	var model *mxModel

	switch root {
	case "mxfile":
		var f mxFile
		if err := xml.Unmarshal(data, &f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode mxfile")
		}
		if len(f.Diagrams) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidDocument, "mxfile has no diagram")
		}
		page := f.Diagrams[0]
		doc.ID, doc.Title, doc.Agent = page.ID, page.Name, f.Agent
		if t, err := time.Parse(time.RFC3339, f.Modified); err == nil {
			doc.Modified = t
		}
		model = page.Model
		if model == nil {
			if model, err = inflateModel(page.Payload); err != nil {
				return nil, err
			}
		}
	case "mxGraphModel":
		model = &mxModel{}
		if err := xml.Unmarshal(data, model); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode mxGraphModel")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidDocument, "unexpected root element <%s>", root)
	}

	doc.Width = parseFloat(model.PageWidth, 0)
	doc.Height = parseFloat(model.PageHeight, 0)
	for _, c := range model.Root.Cells {
		cell := decodeCell(c)
		switch {
		case cell.Vertex:
			doc.Nodes = append(doc.Nodes, cell)
		case cell.Edge:
			doc.Edges = append(doc.Edges, cell)
		}
	}
	return doc, nil
}

func rootElement(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return "", errors.New(errors.ErrCodeInvalidDocument, "document is empty")
		}
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeInvalidDocument, err, "read document")
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start.Name.Local, nil
		}
	}
}

func decodeCell(c mxCell) Cell {
	out := Cell{
		ID:     c.ID,
		Style:  c.Style,
		Parent: c.Parent,
		Vertex: c.Vertex == "1",
		Edge:   c.Edge == "1",
		Source: c.Source,
		Target: c.Target,
	}
	if c.Value != nil {
		out.Value = *c.Value
	}
	if !out.Vertex {
		return out
	}
	out.Geometry = geom.Rect{Width: DefaultCellWidth, Height: DefaultCellHeight}
	if g := c.Geometry; g != nil {
		out.Geometry = geom.Rect{
			X:      parseAttr(g.X, 0),
			Y:      parseAttr(g.Y, 0),
			Width:  parseAttr(g.Width, DefaultCellWidth),
			Height: parseAttr(g.Height, DefaultCellHeight),
		}
	}
	return out
}

func inflateModel(payload string) (*mxModel, error) {
	text, err := inflatePayload(payload)
	if err != nil {
		return nil, err
	}
	m := &mxModel{}
	if err := xml.Unmarshal(text, m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode compressed diagram")
	}
	return m, nil
}

// deflatePayload compresses model XML as base64(deflate(urlencode(xml))).
func deflatePayload(model []byte) (string, error) {
	var b bytes.Buffer
	zw, err := flate.NewWriter(&b, flate.BestCompression)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "compress diagram")
	}
	if _, err := io.Copy(zw, strings.NewReader(url.PathEscape(string(model)))); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "compress diagram")
	}
	if err := zw.Close(); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "compress diagram")
	}
	return base64.StdEncoding.EncodeToString(b.Bytes()), nil
}

func inflatePayload(payload string) ([]byte, error) {
	payload = strings.Join(strings.Fields(payload), "")
	if payload == "" {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "diagram has no content")
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode diagram payload")
	}

	zr := flate.NewReader(bytes.NewReader(raw))
	defer zr.Close()
	var b bytes.Buffer
	if _, err := io.Copy(&b, zr); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "inflate diagram payload")
	}

	text, err := url.PathUnescape(b.String())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "unescape diagram payload")
	}
	return []byte(text), nil
}

func formatInt(v float64) string { return strconv.Itoa(int(v)) }

func parseFloat(s string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	return f
}

func parseAttr(s *string, def float64) float64 {
	if s == nil {
		return def
	}
	return parseFloat(*s, def)
}

func ptr[T any](v T) *T { return &v }

// Package drawio builds draw.io (mxGraph) documents and implements the
// layout engine's output factory, so laid-out diagrams serialize directly
// into files the draw.io editor can open and live-reload.
package drawio

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/seqgen/pkg/layout"
)

// File is a draw.io document holding one or more pages. All pages share one
// ID generator so cell IDs stay unique across the file.
type File struct {
	ids   *idGenerator
	pages []*Page
}

// NewFile creates an empty document. idPrefix overrides the cell ID prefix;
// leave it empty to use the SEQGEN_ID_PREFIX environment variable or, failing
// that, a random prefix.
func NewFile(idPrefix string) *File {
	return &File{ids: newIDGenerator(idPrefix)}
}

// NewPage appends a named page to the file.
func (f *File) NewPage(name string) *Page {
	p := &Page{name: name, id: f.ids.create(), ids: f.ids}
	f.pages = append(f.pages, p)
	return p
}

// XML serializes the file into draw.io's mxfile format.
func (f *File) XML() ([]byte, error) {
	return xml.MarshalIndent(f.model(), "", "  ")
}

// Write serializes the file to w.
func (f *File) Write(w io.Writer) error {
	data, err := f.XML()
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n"))
	return err
}

func (f *File) model() mxFile {
	file := mxFile{
		Host:    "seqgen",
		Agent:   "seqgen",
		Version: "26.2.2",
	}
	for _, p := range f.pages {
		file.Diagrams = append(file.Diagrams, p.model())
	}
	return file
}

// Page is one diagram within a file. It implements the layout engine's
// document factory: every factory method registers the new object so it is
// serialized in creation order.
type Page struct {
	name    string
	id      string
	ids     *idGenerator
	objects []object
}

var _ layout.Document = (*Page)(nil)

type object interface {
	cell() mxCell
}

func (p *Page) add(o object) {
	p.objects = append(p.objects, o)
}

// NewLifeline creates a participant lifeline.
func (p *Page) NewLifeline(label string) layout.Lifeline {
	l := &Lifeline{id: p.ids.create(), value: label, width: 100, height: 300}
	p.add(l)
	return l
}

// NewActivation creates an activation bar nested inside its lifeline.
func (p *Page) NewActivation(owner layout.Lifeline) layout.Activation {
	a := &Activation{id: p.ids.create(), owner: owner.(*Lifeline), height: 100}
	p.add(a)
	return a
}

// NewMessage creates an edge between two previously created objects.
func (p *Page) NewMessage(source, target layout.Element, text string) layout.Message {
	m := &Message{id: p.ids.create(), value: text, source: source.ID(), target: target.ID()}
	p.add(m)
	return m
}

// NewFrame creates a UML frame (title or control fragment).
func (p *Page) NewFrame(label string) layout.Frame {
	f := &Frame{id: p.ids.create(), value: label, boxWidth: 160, boxHeight: 30}
	p.add(f)
	return f
}

// NewSeparator creates a dashed divider spanning a frame's width.
func (p *Page) NewSeparator(frame layout.Frame) layout.Separator {
	s := &Separator{id: p.ids.create(), frame: frame.(*Frame)}
	p.add(s)
	return s
}

// NewLabel creates a text element positioned relative to a frame.
func (p *Page) NewLabel(frame layout.Frame, text string) layout.Label {
	t := &Text{id: p.ids.create(), value: text, parent: frame.(*Frame), width: 100, height: 20}
	p.add(t)
	return t
}

// NewNote creates a sticky-note shape.
func (p *Page) NewNote(text string) layout.Note {
	n := &Note{id: p.ids.create(), value: text, width: 120, height: 60}
	p.add(n)
	return n
}

// NewDot creates the filled endpoint circle of a found or lost message.
func (p *Page) NewDot() layout.Dot {
	d := &Dot{id: p.ids.create()}
	p.add(d)
	return d
}

func (p *Page) model() mxDiagram {
	root := mxRoot{Cells: []mxCell{
		{ID: "0"},
		{ID: "1", Parent: "0"},
	}}
	for _, o := range p.objects {
		root.Cells = append(root.Cells, o.cell())
	}

	return mxDiagram{
		Name: p.name,
		ID:   p.id,
		Model: mxGraphModel{
			DX:         "0",
			DY:         "0",
			Grid:       "1",
			GridSize:   "10",
			Guides:     "1",
			Tooltips:   "1",
			Connect:    "1",
			Arrows:     "1",
			Fold:       "1",
			Page:       "0",
			PageScale:  "1",
			PageWidth:  "851",
			PageHeight: "1100",
			Background: "#ffffff",
			Math:       "0",
			Shadow:     "0",
			Root:       root,
		},
	}
}

// =============================================================================
// XML Model
// =============================================================================

type mxFile struct {
	XMLName  xml.Name    `xml:"mxfile"`
	Host     string      `xml:"host,attr"`
	Agent    string      `xml:"agent,attr"`
	Version  string      `xml:"version,attr"`
	Diagrams []mxDiagram `xml:"diagram"`
}

type mxDiagram struct {
	Name  string       `xml:"name,attr"`
	ID    string       `xml:"id,attr"`
	Model mxGraphModel `xml:"mxGraphModel"`
}

type mxGraphModel struct {
	DX         string `xml:"dx,attr"`
	DY         string `xml:"dy,attr"`
	Grid       string `xml:"grid,attr"`
	GridSize   string `xml:"gridSize,attr"`
	Guides     string `xml:"guides,attr"`
	Tooltips   string `xml:"tooltips,attr"`
	Connect    string `xml:"connect,attr"`
	Arrows     string `xml:"arrows,attr"`
	Fold       string `xml:"fold,attr"`
	Page       string `xml:"page,attr"`
	PageScale  string `xml:"pageScale,attr"`
	PageWidth  string `xml:"pageWidth,attr"`
	PageHeight string `xml:"pageHeight,attr"`
	Background string `xml:"background,attr"`
	Math       string `xml:"math,attr"`
	Shadow     string `xml:"shadow,attr"`
	Root       mxRoot `xml:"root"`
}

type mxRoot struct {
	Cells []mxCell `xml:"mxCell"`
}

type mxCell struct {
	ID       string      `xml:"id,attr"`
	Value    *string     `xml:"value,attr"`
	Parent   string      `xml:"parent,attr,omitempty"`
	Style    string      `xml:"style,attr,omitempty"`
	Vertex   string      `xml:"vertex,attr,omitempty"`
	Edge     string      `xml:"edge,attr,omitempty"`
	Source   string      `xml:"source,attr,omitempty"`
	Target   string      `xml:"target,attr,omitempty"`
	Geometry *mxGeometry `xml:"mxGeometry,omitempty"`
}

type mxGeometry struct {
	X        string    `xml:"x,attr,omitempty"`
	Y        string    `xml:"y,attr,omitempty"`
	Width    string    `xml:"width,attr,omitempty"`
	Height   string    `xml:"height,attr,omitempty"`
	Relative string    `xml:"relative,attr,omitempty"`
	As       string    `xml:"as,attr"`
	Points   []mxPoint `xml:"mxPoint"`
	Array    *mxArray  `xml:"Array,omitempty"`
}

type mxPoint struct {
	X  string `xml:"x,attr,omitempty"`
	Y  string `xml:"y,attr,omitempty"`
	As string `xml:"as,attr,omitempty"`
}

type mxArray struct {
	As     string    `xml:"as,attr"`
	Points []mxPoint `xml:"mxPoint"`
}

// vertexCell fills the attributes shared by all vertex objects.
func vertexCell(id, value, parent, style string) mxCell {
	if parent == "" {
		parent = "1"
	}
	return mxCell{ID: id, Value: &value, Parent: parent, Style: style, Vertex: "1"}
}

// edgeCell fills the attributes shared by all edge objects.
func edgeCell(id, value, source, target, style string) mxCell {
	return mxCell{ID: id, Value: &value, Parent: "1", Style: style, Edge: "1", Source: source, Target: target}
}

// num formats a coordinate without a trailing ".0" for whole values.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// style accumulates mxGraph style entries in insertion order; order is part
// of the deterministic-output contract.
type style struct {
	b strings.Builder
}

func (s *style) add(key, value string) {
	s.b.WriteString(key)
	s.b.WriteByte('=')
	s.b.WriteString(value)
	s.b.WriteByte(';')
}

func (s *style) flag(key string) {
	s.b.WriteString(key)
	s.b.WriteByte(';')
}

func (s *style) String() string {
	return s.b.String()
}

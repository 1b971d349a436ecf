package drawio

import (
	"fmt"

	"github.com/matzehuels/seqgen/pkg/layout"
	"github.com/matzehuels/seqgen/pkg/seq"
)

const (
	// activationWidth is the rendered width of an activation bar; the layout
	// engine's sideways stacking offset is half of it.
	activationWidth = 10.0

	// messageAnchorDY nudges anchored arrowheads off the exact corner of an
	// activation bar so they meet the bar edge.
	messageAnchorDY = 5.0

	dotDiameter = 10.0
)

// Lifeline is the vertical participant shape with its header box.
type Lifeline struct {
	id     string
	value  string
	x      float64
	y      float64
	width  float64
	height float64
}

var _ layout.Lifeline = (*Lifeline)(nil)

func (l *Lifeline) ID() string { return l.id }

func (l *Lifeline) SetBounds(x, width float64) { l.x, l.width = x, width }

func (l *Lifeline) SetHeight(height float64) { l.height = height }

func (l *Lifeline) cell() mxCell {
	var s style
	s.add("shape", "umlLifeline")
	s.add("perimeter", "lifelinePerimeter")
	s.add("whiteSpace", "wrap")
	s.add("html", "1")
	s.add("container", "1")
	s.add("dropTarget", "0")
	s.add("collapsible", "0")
	s.add("recursiveResize", "0")
	s.add("outlineConnect", "0")
	s.add("portConstraint", "eastwest")
	s.add("newEdgeStyle", `{"curved":0,"rounded":0}`)

	c := vertexCell(l.id, l.value, "", s.String())
	c.Geometry = &mxGeometry{
		X: num(l.x), Y: num(l.y), Width: num(l.width), Height: num(l.height),
		As: "geometry",
	}
	return c
}

// Activation is a bar on a lifeline marking an active span. Its geometry is
// relative to the owning lifeline.
type Activation struct {
	id     string
	owner  *Lifeline
	dx     float64
	y      float64
	height float64
}

var _ layout.Activation = (*Activation)(nil)

func (a *Activation) ID() string { return a.id }

func (a *Activation) SetStart(dx, y float64) { a.dx, a.y = dx, y }

func (a *Activation) SetHeight(height float64) { a.height = height }

func (a *Activation) cell() mxCell {
	var s style
	s.add("html", "1")
	s.add("points", "[[0,0,0,0,5],[0,1,0,0,-5],[1,0,0,0,5],[1,1,0,0,-5]]")
	s.add("perimeter", "orthogonalPerimeter")
	s.add("outlineConnect", "0")
	s.add("targetShapes", "umlLifeline")
	s.add("portConstraint", "eastwest")
	s.add("newEdgeStyle", `{"curved":0,"rounded":0}`)

	c := vertexCell(a.id, "", a.owner.id, s.String())
	c.Geometry = &mxGeometry{
		X:      num(a.owner.width/2 - activationWidth/2 + a.dx),
		Y:      num(a.y),
		Width:  num(activationWidth),
		Height: num(a.height),
		As:     "geometry",
	}
	return c
}

// Message is an edge between two objects, optionally pinned to a corner of
// an activation bar and routed through explicit waypoints.
type Message struct {
	id     string
	value  string
	source string
	target string
	anchor layout.Anchor
	align  layout.Alignment
	line   seq.LineStyle
	arrow  seq.ArrowStyle
	points []layout.Point
}

var _ layout.Message = (*Message)(nil)

func (m *Message) ID() string { return m.id }

func (m *Message) SetStyle(line seq.LineStyle, arrow seq.ArrowStyle) {
	m.line, m.arrow = line, arrow
}

func (m *Message) SetAnchor(anchor layout.Anchor) { m.anchor = anchor }

func (m *Message) SetAlignment(align layout.Alignment) { m.align = align }

func (m *Message) AddPoint(p layout.Point) { m.points = append(m.points, p) }

func (m *Message) cell() mxCell {
	var s style
	s.add("html", "1")
	s.add("curved", "0")
	s.add("rounded", "0")

	switch m.align {
	case layout.AlignMiddleRight:
		s.add("align", "left")
		s.add("spacingLeft", "2")
	default:
		s.add("verticalAlign", "bottom")
	}

	if m.arrow == seq.ArrowOpen {
		s.add("endArrow", "open")
	} else {
		s.add("endArrow", "block")
	}
	if m.line == seq.LineDashed {
		s.add("dashed", "1")
	} else {
		s.add("dashed", "0")
	}

	switch m.anchor {
	case layout.AnchorTopLeft:
		s.add("entryX", "0")
		s.add("entryY", "0")
		s.add("entryDx", "0")
		s.add("entryDy", num(messageAnchorDY))
	case layout.AnchorTopRight:
		s.add("entryX", "1")
		s.add("entryY", "0")
		s.add("entryDx", "0")
		s.add("entryDy", num(messageAnchorDY))
	case layout.AnchorBottomLeft:
		s.add("exitX", "0")
		s.add("exitY", "1")
		s.add("exitDx", "0")
		s.add("exitDy", num(-messageAnchorDY))
	case layout.AnchorBottomRight:
		s.add("exitX", "1")
		s.add("exitY", "1")
		s.add("exitDx", "0")
		s.add("exitDy", num(-messageAnchorDY))
	}

	c := edgeCell(m.id, m.value, m.source, m.target, s.String())

	geo := &mxGeometry{Relative: "1", As: "geometry"}
	// The floating end of the edge needs a placeholder point; fully anchored
	// ends resolve against the target shape instead.
	switch m.anchor {
	case layout.AnchorTopLeft, layout.AnchorTopRight:
		geo.Points = []mxPoint{{As: "sourcePoint"}}
	case layout.AnchorBottomLeft, layout.AnchorBottomRight:
		geo.Points = []mxPoint{{As: "targetPoint"}}
	default:
		geo.Points = []mxPoint{{As: "targetPoint"}, {As: "sourcePoint"}}
	}
	if len(m.points) > 0 {
		arr := &mxArray{As: "points"}
		for _, p := range m.points {
			arr.Points = append(arr.Points, mxPoint{X: num(p.X), Y: num(p.Y)})
		}
		geo.Array = arr
	}
	c.Geometry = geo
	return c
}

// Frame is a UML frame shape used for the diagram title and for control
// fragments. The label box in its top-left corner is part of the shape.
type Frame struct {
	id        string
	value     string
	x         float64
	y         float64
	width     float64
	height    float64
	boxWidth  float64
	boxHeight float64
}

var _ layout.Frame = (*Frame)(nil)

func (f *Frame) ID() string { return f.id }

func (f *Frame) SetLabelBox(width, height float64) { f.boxWidth, f.boxHeight = width, height }

func (f *Frame) SetTop(y float64) { f.y = y }

func (f *Frame) SetHorizontal(x, width float64) { f.x, f.width = x, width }

func (f *Frame) SetHeight(height float64) { f.height = height }

func (f *Frame) Y() float64 { return f.y }

func (f *Frame) cell() mxCell {
	var s style
	s.add("shape", "umlFrame")
	s.add("whiteSpace", "wrap")
	s.add("html", "1")
	s.add("pointerEvents", "0")
	s.add("width", num(f.boxWidth))
	s.add("height", num(f.boxHeight))

	c := vertexCell(f.id, f.value, "", s.String())
	c.Geometry = &mxGeometry{
		X: num(f.x), Y: num(f.y), Width: num(f.width), Height: num(f.height),
		As: "geometry",
	}
	return c
}

// Separator is the dashed divider between the sections of an alt or par
// frame. It is an edge from the frame to itself, pinned at the same relative
// height on both sides.
type Separator struct {
	id    string
	frame *Frame
	y     float64
}

var _ layout.Separator = (*Separator)(nil)

func (s *Separator) ID() string { return s.id }

func (s *Separator) SetY(y float64) { s.y = y }

func (s *Separator) cell() mxCell {
	relY := fmt.Sprintf("%.3f", s.y/s.frame.height)

	var st style
	st.add("html", "1")
	st.add("endArrow", "none")
	st.add("dashed", "1")
	st.add("rounded", "0")
	st.add("entryX", "1")
	st.add("entryY", relY)
	st.add("entryDx", "0")
	st.add("entryDy", "0")
	st.add("entryPerimeter", "0")
	st.add("exitX", "0")
	st.add("exitY", relY)
	st.add("exitDx", "0")
	st.add("exitDy", "0")
	st.add("exitPerimeter", "0")

	c := edgeCell(s.id, "", s.frame.id, s.frame.id, st.String())
	c.Geometry = &mxGeometry{
		Relative: "1",
		As:       "geometry",
		Points:   []mxPoint{{As: "targetPoint"}, {As: "sourcePoint"}},
	}
	return c
}

// Text is a plain label positioned relative to its parent frame.
type Text struct {
	id     string
	value  string
	parent *Frame
	x      float64
	y      float64
	width  float64
	height float64
}

var _ layout.Label = (*Text)(nil)

func (t *Text) ID() string { return t.id }

func (t *Text) SetPosition(x, y float64) { t.x, t.y = x, y }

func (t *Text) cell() mxCell {
	var s style
	s.flag("text")
	s.add("html", "1")
	s.add("align", "left")
	s.add("verticalAlign", "middle")
	s.add("rounded", "0")
	s.add("labelPosition", "center")
	s.add("verticalLabelPosition", "middle")
	s.add("labelBackgroundColor", "default")

	c := vertexCell(t.id, t.value, t.parent.id, s.String())
	c.Geometry = &mxGeometry{
		X: num(t.x), Y: num(t.y), Width: num(t.width), Height: num(t.height),
		As: "geometry",
	}
	return c
}

// Note is a sticky-note annotation.
type Note struct {
	id     string
	value  string
	x      float64
	y      float64
	width  float64
	height float64
}

var _ layout.Note = (*Note)(nil)

func (n *Note) ID() string { return n.id }

func (n *Note) SetBounds(x, y, width, height float64) {
	n.x, n.y, n.width, n.height = x, y, width, height
}

func (n *Note) cell() mxCell {
	var s style
	s.add("shape", "note")
	s.add("whiteSpace", "wrap")
	s.add("html", "1")
	s.add("backgroundOutline", "1")
	s.add("darkOpacity", "0.05")
	s.add("size", "10")
	s.add("align", "left")
	s.add("spacing", "8")

	c := vertexCell(n.id, n.value, "", s.String())
	c.Geometry = &mxGeometry{
		X: num(n.x), Y: num(n.y), Width: num(n.width), Height: num(n.height),
		As: "geometry",
	}
	return c
}

// Dot is the filled circle terminating a found or lost message.
type Dot struct {
	id string
	x  float64
	y  float64
}

var _ layout.Dot = (*Dot)(nil)

func (d *Dot) ID() string { return d.id }

func (d *Dot) SetCenter(x, y float64) { d.x, d.y = x, y }

func (d *Dot) cell() mxCell {
	var s style
	s.flag("ellipse")
	s.add("html", "1")
	s.add("fillColor", "#000000")
	s.add("strokeColor", "#000000")

	c := vertexCell(d.id, "", "", s.String())
	c.Geometry = &mxGeometry{
		X:      num(d.x - dotDiameter/2),
		Y:      num(d.y - dotDiameter/2),
		Width:  num(dotDiameter),
		Height: num(dotDiameter),
		As:     "geometry",
	}
	return c
}

package layout

import "github.com/matzehuels/seqgen/pkg/seq"

// Anchor selects where a message attaches to an activation bar. The top
// variants pin the arrowhead to the upper corner of a freshly opened
// activation; the bottom variants pin the tail to the lower corner of an
// activation about to close.
type Anchor int

const (
	AnchorNone Anchor = iota
	AnchorTopLeft
	AnchorTopRight
	AnchorBottomLeft
	AnchorBottomRight
)

// Alignment positions a message label relative to its line.
type Alignment int

const (
	AlignTopCenter Alignment = iota
	AlignMiddleRight
)

// Element is any document object a message can attach to.
type Element interface {
	ID() string
}

// Lifeline is the geometry sink for one participant's vertical line.
type Lifeline interface {
	Element
	SetBounds(x, width float64)
	SetHeight(height float64)
}

// Activation is the geometry sink for one activation bar.
type Activation interface {
	Element
	SetStart(dx, y float64)
	SetHeight(height float64)
}

// Message is the geometry sink for one routed message edge.
type Message interface {
	Element
	SetStyle(line seq.LineStyle, arrow seq.ArrowStyle)
	SetAnchor(anchor Anchor)
	SetAlignment(align Alignment)
	AddPoint(p Point)
}

// Frame is the geometry sink for a control or title frame box.
type Frame interface {
	Element
	SetLabelBox(width, height float64)
	SetTop(y float64)
	SetHorizontal(x, width float64)
	SetHeight(height float64)
	Y() float64
}

// Separator is the dashed section divider inside a frame. Its y coordinate
// is relative to the frame's top edge.
type Separator interface {
	Element
	SetY(y float64)
}

// Label is a free-standing text box, used for frame and section captions.
type Label interface {
	Element
	SetPosition(x, y float64)
}

// Note is the geometry sink for a comment box.
type Note interface {
	Element
	SetBounds(x, y, width, height float64)
}

// Dot is the synthetic off-diagram endpoint of a found or lost message.
type Dot interface {
	Element
	SetCenter(x, y float64)
}

// Document is the output-model factory the layouter populates. Object
// creation order is the document's z-order; the layouter only ever sets
// geometry fields on what the factories hand back, so the document owns
// identity, styling and serialization.
type Document interface {
	NewLifeline(label string) Lifeline
	NewActivation(owner Lifeline) Activation
	NewMessage(source, target Element, text string) Message
	NewFrame(label string) Frame
	NewSeparator(frame Frame) Separator
	NewLabel(frame Frame, text string) Label
	NewNote(text string) Note
	NewDot() Dot
}

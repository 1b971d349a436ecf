// Package seq defines the statement types a sequence-diagram source is parsed
// into. The statement list is the contract between the parser (pkg/seq/parse)
// and the layout engine (pkg/layout): statements are immutable value types
// carrying their 1-based source line number for error reporting, and the set
// of kinds is closed — every statement embeds Span and implements the
// unexported marker method, so the layouter's type switch is exhaustive over
// this package.
package seq

// LineStyle selects the stroke of a message line.
type LineStyle int

const (
	LineSolid LineStyle = iota
	LineDashed
)

// ArrowStyle selects the arrowhead of a message.
type ArrowStyle int

const (
	ArrowBlock ArrowStyle = iota
	ArrowOpen
)

// ActivationMode describes the activation side effect of a message.
type ActivationMode int

const (
	// ActivationRegular draws a plain message between two active participants.
	ActivationRegular ActivationMode = iota
	// ActivationActivate opens an activation on the receiver.
	ActivationActivate
	// ActivationDeactivate closes the sender's topmost activation.
	ActivationDeactivate
	// ActivationFireForget brackets the message in a short-lived activation
	// on the receiver.
	ActivationFireForget
)

// Direction is the off-diagram side of a found or lost message.
type Direction int

const (
	DirectionLeft Direction = iota
	DirectionRight
)

// FrameKind names the control construct a Frame statement represents.
type FrameKind string

const (
	FrameOpt   FrameKind = "opt"
	FrameLoop  FrameKind = "loop"
	FrameAlt   FrameKind = "alt"
	FramePar   FrameKind = "par"
	FrameGroup FrameKind = "group"
)

// Stmt is a single parsed statement. Implementations live only in this
// package; the layouter dispatches on the concrete type.
type Stmt interface {
	// Line returns the 1-based source line the statement was parsed from.
	Line() int

	isStmt()
}

// Span carries the source position shared by every statement.
type Span struct {
	SourceLine int
}

// Line returns the 1-based source line number.
func (s Span) Line() int { return s.SourceLine }

func (Span) isStmt() {}

// Title sets the diagram title. BoxWidth/BoxHeight override the title label
// box dimensions when positive.
type Title struct {
	Span
	Text      string
	BoxWidth  int
	BoxHeight int
}

// Participant declares a lifeline. Name is the stable key other statements
// reference; Text is the display label. Width and Spacing override the
// registry defaults when positive; Spacing is the gap to the previous
// participant.
type Participant struct {
	Span
	Name    string
	Text    string
	Width   int
	Spacing int
}

// Activate explicitly opens an activation on each target, in order.
type Activate struct {
	Span
	Targets []string
}

// Deactivate explicitly closes the topmost activation of each target.
type Deactivate struct {
	Span
	Targets []string
}

// Message is a message between two distinct declared participants.
type Message struct {
	Span
	Sender     string
	Receiver   string
	Text       string
	Activation ActivationMode
	LineStyle  LineStyle
	ArrowStyle ArrowStyle
}

// FoundMessage arrives from an undeclared off-diagram actor on the given
// side of the receiver. Width is the distance of the synthetic endpoint from
// the receiver's lifeline center (0 = default). Only ActivationRegular and
// ActivationActivate are legal.
type FoundMessage struct {
	Span
	Receiver   string
	Text       string
	Direction  Direction
	Width      int
	Activation ActivationMode
	LineStyle  LineStyle
	ArrowStyle ArrowStyle
}

// LostMessage departs to an undeclared off-diagram actor on the given side
// of the sender. Only ActivationRegular and ActivationDeactivate are legal.
type LostMessage struct {
	Span
	Sender     string
	Text       string
	Direction  Direction
	Width      int
	Activation ActivationMode
	LineStyle  LineStyle
	ArrowStyle ArrowStyle
}

// SelfCall is a participant messaging itself via a nested activation.
type SelfCall struct {
	Span
	Target string
	Text   string
}

// Section is one labeled branch of a Frame (the "else" arms of alt/par).
type Section struct {
	Label string
	Inner []Stmt
}

// Frame is a control construct wrapping a nested statement sequence, plus
// zero or more labeled sections stacked beneath it.
type Frame struct {
	Span
	Kind     FrameKind
	Text     string
	Inner    []Stmt
	Sections []Section
}

// Note attaches a comment box near a participant. Offsets and dimensions are
// optional; zero values select the defaults.
type Note struct {
	Span
	Target string
	Text   string
	DX     int
	DY     int
	Width  int
	Height int
}

// VerticalOffset inserts explicit extra vertical space.
type VerticalOffset struct {
	Span
	Spacing int
}

// ExtendFrame widens the currently open frame's horizontal extent to include
// the target's lifeline center shifted by DX. It draws nothing.
type ExtendFrame struct {
	Span
	Target string
	DX     int
}

// Package layout converts an ordered sequence-diagram statement list into
// absolute two-dimensional geometry on an output document.
//
// The engine is a single-pass, stateful visitor. While walking the statement
// list it maintains:
//   - per-participant activation stacks,
//   - a monotonically advancing vertical cursor (elapsed diagram "time"),
//   - a marker arena enforcing minimum vertical separation between elements
//     crossing the same lane boundary, and
//   - a stack of horizontal-extent accumulators sizing nested control frames.
//
// Given the same statement list a Layouter always produces identical
// coordinates: there is no randomness, wall-clock input, or unordered
// iteration anywhere in the hot path. All output objects are created through
// the injected Document factory, so the engine knows nothing about how the
// result is serialized.
package layout

import (
	goerrors "errors"
	"fmt"

	"github.com/matzehuels/seqgen/pkg/errors"
	"github.com/matzehuels/seqgen/pkg/seq"
)

// Defaults for participant geometry; overridable per run via Options and per
// participant via declaration arguments.
const (
	DefaultLifelineWidth   = 160.0
	DefaultLifelineSpacing = 40.0
)

// Layout constants, in layout units. These match the draw.io shape library's
// expectations for UML sequence elements.
const (
	lifelineBoxHeight = 40.0

	titleBoxWidth     = 160.0
	titleBoxHeight    = 40.0
	titleFramePadding = 30.0

	controlBoxWidth    = 60.0
	controlBoxHeight   = 20.0
	framePadding       = 30.0
	nestedFramePadding = 20.0
	frameBodySpacing   = 30.0

	noteDefaultWidth  = 100.0
	noteDefaultHeight = 40.0

	selfCallWidth = 30.0
	selfCallElbow = 25.0

	directedDefaultWidth = 80.0

	statementStep     = 10.0
	messageMinSpacing = 20.0

	// anchorOffsetY is the distance between a message's nominal row and the
	// corner of the activation bar it anchors to.
	anchorOffsetY = 5.0

	// activationStackOffset is half an activation bar's width; concurrent
	// activations on one lifeline lean sideways by this much per level.
	activationStackOffset = 5.0
)

// Options configures a Layouter. Zero fields select the defaults.
type Options struct {
	LifelineWidth   float64
	LifelineSpacing float64
}

// Layouter lays out one diagram. An instance is single-use: a second Layout
// call fails with ErrCodeAlreadyExecuted.
type Layouter struct {
	doc     Document
	reg     *registry
	markers markerArena
	extents extentStack
	cursor  float64

	title     Frame
	titleBoxW float64
	titleBoxH float64

	executed bool
}

// New creates a Layouter writing into doc.
func New(doc Document, opts Options) *Layouter {
	width := opts.LifelineWidth
	if width <= 0 {
		width = DefaultLifelineWidth
	}
	spacing := opts.LifelineSpacing
	if spacing <= 0 {
		spacing = DefaultLifelineSpacing
	}

	l := &Layouter{
		doc:    doc,
		reg:    newRegistry(doc, width, spacing),
		cursor: lifelineBoxHeight + 2*statementStep,
	}

	// Implicit page-level extent; the origin is always part of the page.
	l.extents.open()
	l.extents.extend(0)

	return l
}

// Layout processes the statement list and finalizes all geometry. It either
// fully succeeds or fails atomically with a single error locating the
// offending statement; no partial output contract is made on failure.
func (l *Layouter) Layout(stmts []seq.Stmt) error {
	if l.executed {
		return errors.New(errors.ErrCodeAlreadyExecuted, "layouter instance can only be used once")
	}
	l.executed = true

	if err := l.process(stmts); err != nil {
		return err
	}
	return l.finalize()
}

// process dispatches each statement, wrapping the first failure with the
// statement's source line. Nested sequences (frames) re-enter process; the
// innermost statement wins the location, outer frames pass it through.
func (l *Layouter) process(stmts []seq.Stmt) error {
	for _, st := range stmts {
		if err := l.dispatch(st); err != nil {
			var le *locatedError
			if goerrors.As(err, &le) {
				return err
			}
			return &locatedError{line: st.Line(), err: err}
		}
	}
	return nil
}

func (l *Layouter) dispatch(st seq.Stmt) error {
	switch s := st.(type) {
	case *seq.Title:
		return l.handleTitle(s)
	case *seq.Participant:
		return l.handleParticipant(s)
	case *seq.Activate:
		return l.handleActivate(s)
	case *seq.Deactivate:
		return l.handleDeactivate(s)
	case *seq.Message:
		return l.handleMessage(s)
	case *seq.FoundMessage:
		return l.handleFound(s)
	case *seq.LostMessage:
		return l.handleLost(s)
	case *seq.SelfCall:
		return l.handleSelfCall(s)
	case *seq.Frame:
		return l.handleFrame(s)
	case *seq.Note:
		return l.handleNote(s)
	case *seq.VerticalOffset:
		return l.handleVerticalOffset(s)
	case *seq.ExtendFrame:
		return l.handleExtendFrame(s)
	default:
		// The statement set is closed; reaching this is a programming error,
		// not bad input.
		panic(fmt.Sprintf("layout: unhandled statement type %T", st))
	}
}

func (l *Layouter) finalize() error {
	l.advance(2 * statementStep)

	for _, p := range l.reg.order {
		if p.active() {
			return errors.New(errors.ErrCodeUnclosedActivation, "participant must be inactive at end: %s", p.name)
		}
		p.lifeline.SetHeight(l.cursor)
	}

	ext, err := l.extents.close()
	if err != nil {
		return err
	}

	if l.title != nil {
		x := ext.Min() - titleFramePadding
		top := -titleFramePadding - l.titleBoxH
		l.title.SetTop(top)
		l.title.SetHorizontal(x, ext.Max()+titleFramePadding-x)
		l.title.SetHeight(l.cursor - top + titleFramePadding)
	}
	return nil
}

// =============================================================================
// Statement Handlers
// =============================================================================

func (l *Layouter) handleTitle(s *seq.Title) error {
	if l.title != nil {
		return errors.New(errors.ErrCodeInvalidInput, "title may occur only once")
	}

	l.titleBoxW, l.titleBoxH = titleBoxWidth, titleBoxHeight
	if s.BoxWidth > 0 {
		l.titleBoxW = float64(s.BoxWidth)
	}
	if s.BoxHeight > 0 {
		l.titleBoxH = float64(s.BoxHeight)
	}

	l.title = l.doc.NewFrame(s.Text)
	l.title.SetLabelBox(l.titleBoxW, l.titleBoxH)
	return nil
}

func (l *Layouter) handleParticipant(s *seq.Participant) error {
	_, err := l.reg.declare(s.Name, s.Text, float64(s.Width), float64(s.Spacing))
	if err != nil {
		return err
	}
	l.markers.addParticipant()
	l.extents.extend(l.reg.endX)
	return nil
}

func (l *Layouter) handleActivate(s *seq.Activate) error {
	for _, name := range s.Targets {
		p, err := l.reg.lookup(name)
		if err != nil {
			return err
		}
		l.activate(p, nil)
		l.extents.extend(p.centerX)
		l.advance(statementStep)
	}
	return nil
}

func (l *Layouter) handleDeactivate(s *seq.Deactivate) error {
	for _, name := range s.Targets {
		p, err := l.reg.lookup(name)
		if err != nil {
			return err
		}
		if err := l.deactivate(p); err != nil {
			return err
		}
		l.extents.extend(p.centerX)
		l.advance(statementStep)
	}
	return nil
}

func (l *Layouter) handleMessage(s *seq.Message) error {
	sender, err := l.reg.lookup(s.Sender)
	if err != nil {
		return err
	}
	receiver, err := l.reg.lookup(s.Receiver)
	if err != nil {
		return err
	}
	if sender == receiver {
		return errors.New(errors.ErrCodeSelfMessage, "use self call syntax for %s", s.Sender)
	}
	if !sender.active() {
		return errors.New(errors.ErrCodeInactiveParticipant, "sender must be active to send a message: %s", s.Sender)
	}

	switch s.Activation {
	case seq.ActivationRegular:
		err = l.messageRegular(sender, receiver, s)
	case seq.ActivationActivate:
		err = l.messageActivate(sender, receiver, s)
	case seq.ActivationDeactivate:
		err = l.messageDeactivate(sender, receiver, s)
	case seq.ActivationFireForget:
		err = l.messageFireForget(sender, receiver, s)
	}
	if err != nil {
		return err
	}

	l.extents.extend(sender.centerX, receiver.centerX)
	l.advance(statementStep)
	return nil
}

func (l *Layouter) messageRegular(sender, receiver *participant, s *seq.Message) error {
	if !receiver.active() {
		return errors.New(errors.ErrCodeInactiveParticipant, "receiver must be active to receive a message: %s", s.Receiver)
	}

	span := l.markers.between(sender.index, receiver.index)
	l.ensureSpacing(span, 0)

	msg := l.newMessage(sender, receiver, s)
	msg.AddPoint(Point{X: (sender.centerX + receiver.centerX) / 2, Y: l.cursor})

	l.updateMarkers(span, 0)
	return nil
}

func (l *Layouter) messageActivate(sender, receiver *participant, s *seq.Message) error {
	span := l.markers.between(sender.index, receiver.index)
	l.ensureSpacing(span, anchorOffsetY)

	l.activate(receiver, &sender.centerX)
	msg := l.newMessage(sender, receiver, s)
	if sender.index < receiver.index {
		msg.SetAnchor(AnchorTopLeft)
	} else {
		msg.SetAnchor(AnchorTopRight)
	}

	l.updateMarkers(span, anchorOffsetY)
	return nil
}

func (l *Layouter) messageDeactivate(sender, receiver *participant, s *seq.Message) error {
	if !receiver.active() {
		return errors.New(errors.ErrCodeNotActive, "deactivation not possible, participant is inactive: %s", s.Receiver)
	}

	span := l.markers.between(sender.index, receiver.index)
	l.ensureSpacing(span, -anchorOffsetY)

	msg := l.newMessage(sender, receiver, s)
	if sender.index < receiver.index {
		msg.SetAnchor(AnchorBottomRight)
	} else {
		msg.SetAnchor(AnchorBottomLeft)
	}

	l.updateMarkers(span, -anchorOffsetY)
	return l.deactivate(sender)
}

func (l *Layouter) messageFireForget(sender, receiver *participant, s *seq.Message) error {
	l.activate(receiver, &sender.centerX)
	l.advance(statementStep)

	span := l.markers.between(sender.index, receiver.index)
	l.ensureSpacing(span, statementStep)

	msg := l.newMessage(sender, receiver, s)
	msg.AddPoint(Point{X: (sender.centerX + receiver.centerX) / 2, Y: l.cursor})

	l.updateMarkers(span, statementStep)
	l.advance(statementStep)
	return l.deactivate(receiver)
}

func (l *Layouter) handleSelfCall(s *seq.SelfCall) error {
	p, err := l.reg.lookup(s.Target)
	if err != nil {
		return err
	}
	if !p.active() {
		return errors.New(errors.ErrCodeInactiveParticipant, "participant must be active for self call: %s", s.Target)
	}

	l.advance(statementStep)
	l.activate(p, nil)

	outer := p.activations[len(p.activations)-2]
	inner := p.top()

	msg := l.doc.NewMessage(outer.bar, inner.bar, s.Text)
	msg.SetAlignment(AlignMiddleRight)

	elbowX := p.centerX + inner.dx + selfCallElbow
	msg.AddPoint(Point{X: elbowX, Y: l.cursor - statementStep})
	msg.AddPoint(Point{X: elbowX, Y: l.cursor + statementStep})

	l.advance(2 * statementStep)
	if err := l.deactivate(p); err != nil {
		return err
	}

	l.extents.extend(p.centerX, p.centerX+selfCallWidth)
	l.advance(statementStep)
	return nil
}

func (l *Layouter) handleFound(s *seq.FoundMessage) error {
	p, err := l.reg.lookup(s.Receiver)
	if err != nil {
		return err
	}
	if s.Activation != seq.ActivationRegular && s.Activation != seq.ActivationActivate {
		return errors.New(errors.ErrCodeDirectedActivation, "found message supports only regular or activating modes")
	}

	width := directedDefaultWidth
	if s.Width > 0 {
		width = float64(s.Width)
	}
	side := sideRight
	dotX := p.centerX + width
	if s.Direction == seq.DirectionLeft {
		side = sideLeft
		dotX = p.centerX - width
	}
	span := l.markers.beside(p.index, side)

	if s.Activation == seq.ActivationActivate {
		l.ensureSpacing(span, anchorOffsetY)
		l.activate(p, &dotX)

		dot := l.doc.NewDot()
		dot.SetCenter(dotX, l.cursor)

		msg := l.doc.NewMessage(dot, p.top().bar, s.Text)
		msg.SetStyle(s.LineStyle, s.ArrowStyle)
		if side == sideLeft {
			msg.SetAnchor(AnchorTopLeft)
		} else {
			msg.SetAnchor(AnchorTopRight)
		}

		l.updateMarkers(span, anchorOffsetY)
	} else {
		if !p.active() {
			return errors.New(errors.ErrCodeInactiveParticipant, "receiver must be active to receive a message: %s", s.Receiver)
		}
		l.ensureSpacing(span, 0)

		dot := l.doc.NewDot()
		dot.SetCenter(dotX, l.cursor)

		msg := l.doc.NewMessage(dot, p.top().bar, s.Text)
		msg.SetStyle(s.LineStyle, s.ArrowStyle)
		msg.AddPoint(Point{X: (dotX + p.centerX) / 2, Y: l.cursor})

		l.updateMarkers(span, 0)
	}

	l.extents.extend(dotX, p.centerX)
	l.advance(statementStep)
	return nil
}

func (l *Layouter) handleLost(s *seq.LostMessage) error {
	p, err := l.reg.lookup(s.Sender)
	if err != nil {
		return err
	}
	if s.Activation != seq.ActivationRegular && s.Activation != seq.ActivationDeactivate {
		return errors.New(errors.ErrCodeDirectedActivation, "lost message supports only regular or deactivating modes")
	}

	width := directedDefaultWidth
	if s.Width > 0 {
		width = float64(s.Width)
	}
	side := sideRight
	dotX := p.centerX + width
	if s.Direction == seq.DirectionLeft {
		side = sideLeft
		dotX = p.centerX - width
	}
	span := l.markers.beside(p.index, side)

	if s.Activation == seq.ActivationDeactivate {
		if !p.active() {
			return errors.New(errors.ErrCodeNotActive, "deactivation not possible, participant is inactive: %s", s.Sender)
		}
		l.ensureSpacing(span, -anchorOffsetY)

		dot := l.doc.NewDot()
		dot.SetCenter(dotX, l.cursor)

		msg := l.doc.NewMessage(p.top().bar, dot, s.Text)
		msg.SetStyle(s.LineStyle, s.ArrowStyle)
		if side == sideRight {
			msg.SetAnchor(AnchorBottomRight)
		} else {
			msg.SetAnchor(AnchorBottomLeft)
		}

		l.updateMarkers(span, -anchorOffsetY)
		if err := l.deactivate(p); err != nil {
			return err
		}
	} else {
		if !p.active() {
			return errors.New(errors.ErrCodeInactiveParticipant, "sender must be active to send a message: %s", s.Sender)
		}
		l.ensureSpacing(span, 0)

		dot := l.doc.NewDot()
		dot.SetCenter(dotX, l.cursor)

		msg := l.doc.NewMessage(p.top().bar, dot, s.Text)
		msg.SetStyle(s.LineStyle, s.ArrowStyle)
		msg.AddPoint(Point{X: (dotX + p.centerX) / 2, Y: l.cursor})

		l.updateMarkers(span, 0)
	}

	l.extents.extend(p.centerX, dotX)
	l.advance(statementStep)
	return nil
}

func (l *Layouter) handleFrame(s *seq.Frame) error {
	l.advance(statementStep)

	frame := l.doc.NewFrame(string(s.Kind))
	frame.SetTop(l.cursor)
	frame.SetLabelBox(controlBoxWidth, controlBoxHeight)

	label := l.doc.NewLabel(frame, "["+s.Text+"]")
	label.SetPosition(10, controlBoxHeight+5)

	l.extents.open()

	l.advance(controlBoxHeight + frameBodySpacing)
	l.updateMarkers(l.markers.all(), 0)
	l.advance(statementStep)

	if err := l.process(s.Inner); err != nil {
		return err
	}

	for _, sec := range s.Sections {
		l.advance(statementStep)

		sep := l.doc.NewSeparator(frame)
		sep.SetY(l.cursor - frame.Y())

		secLabel := l.doc.NewLabel(frame, "["+sec.Label+"]")
		secLabel.SetPosition(10, l.cursor-frame.Y()+5)

		l.advance(frameBodySpacing)
		l.updateMarkers(l.markers.all(), 0)
		l.advance(statementStep)

		if err := l.process(sec.Inner); err != nil {
			return err
		}
	}

	return l.closeFrame(frame)
}

// closeFrame finishes a control frame: fixes its height at the cursor, pops
// its extent and derives the box width, then re-registers the padded result
// with the enclosing level so ancestors grow to contain it.
func (l *Layouter) closeFrame(frame Frame) error {
	l.advance(statementStep)
	frame.SetHeight(l.cursor - frame.Y())
	l.updateMarkers(l.markers.all(), 0)
	l.advance(statementStep)

	ext, err := l.extents.close()
	if err != nil {
		return err
	}

	// Outermost control frames get the full padding; frames nested inside
	// another control frame use less to avoid visual crowding.
	pad := framePadding
	if l.extents.depth() > 1 {
		pad = nestedFramePadding
	}

	x := ext.Min() - pad
	width := ext.Max() + pad - x
	frame.SetHorizontal(x, width)

	l.extents.extend(x, x+width)
	return nil
}

func (l *Layouter) handleNote(s *seq.Note) error {
	p, err := l.reg.lookup(s.Target)
	if err != nil {
		return err
	}

	width := noteDefaultWidth
	if s.Width > 0 {
		width = float64(s.Width)
	}
	height := noteDefaultHeight
	if s.Height > 0 {
		height = float64(s.Height)
	}

	note := l.doc.NewNote(s.Text)
	note.SetBounds(p.centerX+float64(s.DX), l.cursor+float64(s.DY), width, height)
	return nil
}

func (l *Layouter) handleVerticalOffset(s *seq.VerticalOffset) error {
	dy := float64(s.Spacing)
	if dy < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "vertical offset must not be negative")
	}
	l.advance(dy)
	l.markers.shiftAll(dy)
	return nil
}

func (l *Layouter) handleExtendFrame(s *seq.ExtendFrame) error {
	p, err := l.reg.lookup(s.Target)
	if err != nil {
		return err
	}
	l.extents.extend(p.centerX + float64(s.DX))
	return nil
}

// =============================================================================
// Activation Stack
// =============================================================================

// activate opens an activation on p at the current cursor. The horizontal
// offset is purely cosmetic but must be deterministic: the first activation
// sits centered; a second leans toward +offset if the activator is to the
// right of p (or absent), else toward -offset; deeper levels keep stacking
// in whichever direction the top two entries already diverge.
func (l *Layouter) activate(p *participant, activatorX *float64) {
	rec := &activationRecord{y: l.cursor}

	switch n := len(p.activations); {
	case n == 0:
		rec.dx = 0
	case n == 1:
		if activatorX == nil || *activatorX > p.centerX {
			rec.dx = activationStackOffset
		} else {
			rec.dx = -activationStackOffset
		}
	default:
		prev, prev2 := p.activations[n-1], p.activations[n-2]
		if prev.dx > prev2.dx {
			rec.dx = prev.dx + activationStackOffset
		} else {
			rec.dx = prev.dx - activationStackOffset
		}
	}

	rec.bar = l.doc.NewActivation(p.lifeline)
	rec.bar.SetStart(rec.dx, rec.y)
	p.activations = append(p.activations, rec)
}

// deactivate closes p's topmost activation, fixing its height at the cursor.
func (l *Layouter) deactivate(p *participant) error {
	if !p.active() {
		return errors.New(errors.ErrCodeNotActive, "deactivation not possible, participant is inactive: %s", p.name)
	}
	rec := p.top()
	p.activations = p.activations[:len(p.activations)-1]
	rec.bar.SetHeight(l.cursor - rec.y)
	return nil
}

// =============================================================================
// Cursor & Spacing
// =============================================================================

// advance moves the vertical cursor forward. The cursor never moves backward.
func (l *Layouter) advance(dy float64) {
	l.cursor += dy
}

// ensureSpacing advances the cursor just enough that the element about to be
// drawn stays at least the minimum spacing away from whatever last occupied
// the given markers. messageDY shifts the requirement for asymmetric anchors
// (an arrowhead pinned to an activation corner sits off the nominal row).
// The advance is computed as a single maximum over all markers and applied
// once, rounded up to the statement step.
func (l *Layouter) ensureSpacing(idx []int, messageDY float64) {
	need := l.markers.maxShortfall(idx, l.cursor, messageMinSpacing-messageDY)
	if need > 0 {
		l.advance(roundUpTo(need, statementStep))
	}
}

// updateMarkers records the row just drawn as the new occupied position of
// the given markers.
func (l *Layouter) updateMarkers(idx []int, dy float64) {
	l.markers.stamp(idx, l.cursor+dy)
}

// newMessage creates a message between the topmost activations of two
// participants with the statement's visual style.
func (l *Layouter) newMessage(sender, receiver *participant, s *seq.Message) Message {
	msg := l.doc.NewMessage(sender.top().bar, receiver.top().bar, s.Text)
	msg.SetStyle(s.LineStyle, s.ArrowStyle)
	return msg
}

// locatedError pins an error to the source line of the statement that
// caused it. Wrapping happens exactly once, at the innermost statement.
type locatedError struct {
	line int
	err  error
}

func (e *locatedError) Error() string { return fmt.Sprintf("line %d: %v", e.line, e.err) }

func (e *locatedError) Unwrap() error { return e.err }

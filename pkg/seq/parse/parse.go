// Package parse reads the seqgen DSL into the statement AST. The language is
// line-oriented: one statement per line, `#` starts a comment line, blank
// lines are skipped. Only syntax lives here; all semantic validation (unknown
// participants, activation balance, frame contents) happens in the layout
// engine.
package parse

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/seqgen/pkg/errors"
	"github.com/matzehuels/seqgen/pkg/seq"
)

// arrowPattern matches a message arrow: line style (- or --), arrow head
// (> or >>), and an optional activation mode suffix (+ activate, - deactivate,
// | fire-and-forget).
var arrowPattern = regexp.MustCompile(`^(-{1,2})(>{1,2})([-+|]?)$`)

// Parse reads statements from r.
func Parse(r io.Reader) ([]seq.Stmt, error) {
	p := &parser{}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		p.line++
		if err := p.parseLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSyntax, err, "reading input")
	}

	if len(p.frames) > 0 {
		f := p.frames[len(p.frames)-1]
		return nil, p.syntaxError("unclosed %s frame opened on line %d", f.Kind, f.Line())
	}
	return p.stmts, nil
}

// ParseString reads statements from a string.
func ParseString(s string) ([]seq.Stmt, error) {
	return Parse(strings.NewReader(s))
}

type parser struct {
	line   int
	stmts  []seq.Stmt
	frames []*seq.Frame
	title  *seq.Title
}

// emit appends a statement to the innermost open frame (to its last section
// once sections exist) or to the top level.
func (p *parser) emit(st seq.Stmt) {
	if len(p.frames) == 0 {
		p.stmts = append(p.stmts, st)
		return
	}
	f := p.frames[len(p.frames)-1]
	if n := len(f.Sections); n > 0 {
		f.Sections[n-1].Inner = append(f.Sections[n-1].Inner, st)
		return
	}
	f.Inner = append(f.Inner, st)
}

func (p *parser) span() seq.Span {
	return seq.Span{SourceLine: p.line}
}

func (p *parser) syntaxError(format string, args ...any) error {
	return errors.New(errors.ErrCodeSyntax, "line %d: "+format, append([]any{p.line}, args...)...)
}

func (p *parser) parseLine(raw string) error {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	// Statements carrying free text put it after the first colon.
	head, text := line, ""
	if i := strings.IndexByte(line, ':'); i >= 0 {
		head, text = strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:])
	}

	toks, err := splitTokens(head)
	if err != nil {
		return p.syntaxError("%v", err)
	}
	if len(toks) == 0 {
		return p.syntaxError("statement expected before %q", ":")
	}

	switch toks[0] {
	case "title":
		return p.parseTitle(line, toks)
	case "participant":
		return p.parseParticipant(toks)
	case "activate":
		return p.parseActivation(toks, true)
	case "deactivate":
		return p.parseActivation(toks, false)
	case "self":
		return p.parseSelf(toks, text)
	case "found":
		return p.parseFound(toks, text)
	case "note":
		return p.parseNote(toks, text)
	case "offset":
		return p.parseOffset(toks)
	case "extend":
		return p.parseExtend(toks)
	case "alt", "opt", "loop", "par", "group":
		return p.parseFrameOpen(seq.FrameKind(toks[0]), line)
	case "else":
		return p.parseSection(seq.FrameAlt, "else", line)
	case "and":
		return p.parseSection(seq.FramePar, "and", line)
	case "end":
		return p.parseFrameClose(toks)
	}

	if len(toks) >= 2 && arrowPattern.MatchString(toks[1]) {
		return p.parseMessage(toks, text)
	}
	return errors.New(errors.ErrCodeUnknownStatement, "line %d: unknown statement %q", p.line, toks[0])
}

func (p *parser) parseTitle(line string, toks []string) error {
	if len(toks) >= 2 && toks[1] == "size" {
		if p.title == nil {
			return p.syntaxError("title size requires a preceding title")
		}
		if len(toks) != 4 {
			return p.syntaxError("title size expects width and height")
		}
		w, err1 := strconv.Atoi(toks[2])
		h, err2 := strconv.Atoi(toks[3])
		if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
			return p.syntaxError("title size expects two positive integers")
		}
		p.title.BoxWidth, p.title.BoxHeight = w, h
		return nil
	}

	if p.title != nil {
		return p.syntaxError("title already declared on line %d", p.title.Line())
	}
	text := strings.TrimSpace(strings.TrimPrefix(line, "title"))
	if text == "" {
		return p.syntaxError("title expects a text")
	}
	p.title = &seq.Title{Span: p.span(), Text: text}
	p.emit(p.title)
	return nil
}

func (p *parser) parseParticipant(toks []string) error {
	args, opts, err := p.splitOptions(toks[1:], "width", "spacing")
	if err != nil {
		return err
	}

	var name, display string
	switch {
	case len(args) == 1 && !isQuoted(args[0]):
		name = args[0]
		display = name
	case len(args) == 3 && isQuoted(args[0]) && args[1] == "as":
		display = unquote(args[0])
		name = args[2]
	default:
		return p.syntaxError(`participant expects a name or "display" as name`)
	}

	st := &seq.Participant{Span: p.span(), Name: name, Text: display}
	if st.Width, err = p.intOption(opts, "width"); err != nil {
		return err
	}
	if st.Spacing, err = p.intOption(opts, "spacing"); err != nil {
		return err
	}
	p.emit(st)
	return nil
}

func (p *parser) parseActivation(toks []string, activate bool) error {
	if len(toks) < 2 {
		return p.syntaxError("%s expects at least one participant", toks[0])
	}
	if activate {
		p.emit(&seq.Activate{Span: p.span(), Targets: toks[1:]})
	} else {
		p.emit(&seq.Deactivate{Span: p.span(), Targets: toks[1:]})
	}
	return nil
}

func (p *parser) parseSelf(toks []string, text string) error {
	if len(toks) != 2 {
		return p.syntaxError("self expects exactly one participant")
	}
	p.emit(&seq.SelfCall{Span: p.span(), Target: toks[1], Text: text})
	return nil
}

func (p *parser) parseMessage(toks []string, text string) error {
	line, arrow, mode, err := p.parseArrow(toks[1])
	if err != nil {
		return err
	}

	// "A -> lost right" sends off-diagram.
	if len(toks) >= 3 && toks[2] == "lost" {
		args, opts, err := p.splitOptions(toks[3:], "width")
		if err != nil {
			return err
		}
		dir, err := p.parseDirection(args)
		if err != nil {
			return err
		}
		st := &seq.LostMessage{
			Span: p.span(), Sender: toks[0], Text: text,
			Direction: dir, Activation: mode, LineStyle: line, ArrowStyle: arrow,
		}
		if st.Width, err = p.intOption(opts, "width"); err != nil {
			return err
		}
		p.emit(st)
		return nil
	}

	if len(toks) != 3 {
		return p.syntaxError("message expects sender, arrow and receiver")
	}
	p.emit(&seq.Message{
		Span: p.span(), Sender: toks[0], Receiver: toks[2], Text: text,
		Activation: mode, LineStyle: line, ArrowStyle: arrow,
	})
	return nil
}

func (p *parser) parseFound(toks []string, text string) error {
	if len(toks) < 4 {
		return p.syntaxError("found expects a direction, an arrow and a participant")
	}
	dir, err := p.parseDirection(toks[1:2])
	if err != nil {
		return err
	}
	line, arrow, mode, err := p.parseArrow(toks[2])
	if err != nil {
		return err
	}
	args, opts, err := p.splitOptions(toks[3:], "width")
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return p.syntaxError("found expects exactly one receiver")
	}

	st := &seq.FoundMessage{
		Span: p.span(), Receiver: args[0], Text: text,
		Direction: dir, Activation: mode, LineStyle: line, ArrowStyle: arrow,
	}
	if st.Width, err = p.intOption(opts, "width"); err != nil {
		return err
	}
	p.emit(st)
	return nil
}

func (p *parser) parseNote(toks []string, text string) error {
	args, opts, err := p.splitOptions(toks[1:], "dx", "dy", "width", "height")
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return p.syntaxError("note expects exactly one participant")
	}

	st := &seq.Note{Span: p.span(), Target: args[0], Text: text}
	if st.DX, err = p.intOption(opts, "dx"); err != nil {
		return err
	}
	if st.DY, err = p.intOption(opts, "dy"); err != nil {
		return err
	}
	if st.Width, err = p.intOption(opts, "width"); err != nil {
		return err
	}
	if st.Height, err = p.intOption(opts, "height"); err != nil {
		return err
	}
	p.emit(st)
	return nil
}

func (p *parser) parseOffset(toks []string) error {
	if len(toks) != 2 {
		return p.syntaxError("offset expects a spacing value")
	}
	dy, err := strconv.Atoi(toks[1])
	if err != nil {
		return p.syntaxError("offset expects an integer, got %q", toks[1])
	}
	p.emit(&seq.VerticalOffset{Span: p.span(), Spacing: dy})
	return nil
}

func (p *parser) parseExtend(toks []string) error {
	if len(toks) != 3 {
		return p.syntaxError("extend expects a participant and a distance")
	}
	dx, err := strconv.Atoi(toks[2])
	if err != nil {
		return p.syntaxError("extend expects an integer distance, got %q", toks[2])
	}
	p.emit(&seq.ExtendFrame{Span: p.span(), Target: toks[1], DX: dx})
	return nil
}

func (p *parser) parseFrameOpen(kind seq.FrameKind, line string) error {
	text := strings.TrimSpace(strings.TrimPrefix(line, string(kind)))
	f := &seq.Frame{Span: p.span(), Kind: kind, Text: text}
	p.emit(f)
	p.frames = append(p.frames, f)
	return nil
}

func (p *parser) parseSection(kind seq.FrameKind, keyword, line string) error {
	if len(p.frames) == 0 {
		return p.syntaxError("%s outside of a frame", keyword)
	}
	f := p.frames[len(p.frames)-1]
	if f.Kind != kind {
		return p.syntaxError("%s is not allowed in a %s frame", keyword, f.Kind)
	}
	label := strings.TrimSpace(strings.TrimPrefix(line, keyword))
	f.Sections = append(f.Sections, seq.Section{Label: label})
	return nil
}

func (p *parser) parseFrameClose(toks []string) error {
	if len(toks) != 1 {
		return p.syntaxError("end takes no arguments")
	}
	if len(p.frames) == 0 {
		return p.syntaxError("end without an open frame")
	}
	p.frames = p.frames[:len(p.frames)-1]
	return nil
}

// =============================================================================
// Token Helpers
// =============================================================================

func (p *parser) parseArrow(tok string) (seq.LineStyle, seq.ArrowStyle, seq.ActivationMode, error) {
	m := arrowPattern.FindStringSubmatch(tok)
	if m == nil {
		return 0, 0, 0, p.syntaxError("invalid arrow %q", tok)
	}

	line := seq.LineSolid
	if m[1] == "--" {
		line = seq.LineDashed
	}
	arrow := seq.ArrowBlock
	if m[2] == ">>" {
		arrow = seq.ArrowOpen
	}

	mode := seq.ActivationRegular
	switch m[3] {
	case "+":
		mode = seq.ActivationActivate
	case "-":
		mode = seq.ActivationDeactivate
	case "|":
		mode = seq.ActivationFireForget
	}
	return line, arrow, mode, nil
}

func (p *parser) parseDirection(args []string) (seq.Direction, error) {
	if len(args) == 0 {
		return 0, p.syntaxError("expected direction left or right")
	}
	switch args[0] {
	case "left":
		return seq.DirectionLeft, nil
	case "right":
		return seq.DirectionRight, nil
	}
	return 0, p.syntaxError("expected direction left or right, got %q", args[0])
}

// splitOptions separates plain arguments from [key=value] options, rejecting
// keys outside the allowed set and duplicate keys.
func (p *parser) splitOptions(toks []string, allowed ...string) ([]string, map[string]string, error) {
	var args []string
	opts := make(map[string]string)

	for _, tok := range toks {
		if !strings.HasPrefix(tok, "[") {
			args = append(args, tok)
			continue
		}
		if !strings.HasSuffix(tok, "]") {
			return nil, nil, p.syntaxError("malformed option %q", tok)
		}
		key, value, ok := strings.Cut(tok[1:len(tok)-1], "=")
		if !ok || key == "" || value == "" {
			return nil, nil, p.syntaxError("malformed option %q", tok)
		}
		found := false
		for _, a := range allowed {
			if a == key {
				found = true
				break
			}
		}
		if !found {
			return nil, nil, p.syntaxError("unknown option %q", key)
		}
		if _, dup := opts[key]; dup {
			return nil, nil, p.syntaxError("duplicate option %q", key)
		}
		opts[key] = value
	}
	return args, opts, nil
}

func (p *parser) intOption(opts map[string]string, key string) (int, error) {
	value, ok := opts[key]
	if !ok {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, p.syntaxError("option %q expects an integer, got %q", key, value)
	}
	return n, nil
}

// splitTokens splits on whitespace, keeping double-quoted segments intact.
func splitTokens(s string) ([]string, error) {
	var toks []string
	for i := 0; i < len(s); {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
		if i >= len(s) {
			break
		}
		if s[i] == '"' {
			j := strings.IndexByte(s[i+1:], '"')
			if j < 0 {
				return nil, errors.New(errors.ErrCodeSyntax, "unterminated quote")
			}
			toks = append(toks, s[i:i+j+2])
			i += j + 2
			continue
		}
		j := i
		for j < len(s) && s[j] != ' ' && s[j] != '\t' {
			j++
		}
		toks = append(toks, s[i:j])
		i = j
	}
	return toks, nil
}

func isQuoted(s string) bool {
	return len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"'
}

func unquote(s string) string {
	return s[1 : len(s)-1]
}

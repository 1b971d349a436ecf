package parse

import (
	"testing"

	"github.com/matzehuels/seqgen/pkg/errors"
	"github.com/matzehuels/seqgen/pkg/seq"
)

func TestParseScript(t *testing.T) {
	src := `
# payment flow
title Payment flow
title size 200 50

participant "Order Service" as orders [width=200]
participant billing

activate orders billing
orders ->+ billing: reserve funds
billing -->- orders: ok
self orders: recompute totals
note orders [dx=20] [dy=-10]: uses ledger v2
offset 40
deactivate billing orders
`
	stmts, err := ParseString(src)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	if len(stmts) != 10 {
		t.Fatalf("len(stmts) = %d, want 10", len(stmts))
	}

	title, ok := stmts[0].(*seq.Title)
	if !ok {
		t.Fatalf("stmts[0] = %T, want *seq.Title", stmts[0])
	}
	if title.Text != "Payment flow" || title.BoxWidth != 200 || title.BoxHeight != 50 {
		t.Errorf("title = %+v, want text %q box 200x50", title, "Payment flow")
	}
	if title.Line() != 3 {
		t.Errorf("title line = %d, want 3", title.Line())
	}

	part := stmts[1].(*seq.Participant)
	if part.Name != "orders" || part.Text != "Order Service" || part.Width != 200 {
		t.Errorf("participant = %+v, want orders/Order Service/width 200", part)
	}

	msg := stmts[4].(*seq.Message)
	if msg.Sender != "orders" || msg.Receiver != "billing" || msg.Text != "reserve funds" {
		t.Errorf("message = %+v", msg)
	}
	if msg.Activation != seq.ActivationActivate || msg.LineStyle != seq.LineSolid {
		t.Errorf("message style = %+v, want activating solid", msg)
	}

	reply := stmts[5].(*seq.Message)
	if reply.Activation != seq.ActivationDeactivate || reply.LineStyle != seq.LineDashed {
		t.Errorf("reply style = %+v, want deactivating dashed", reply)
	}

	note := stmts[7].(*seq.Note)
	if note.DX != 20 || note.DY != -10 {
		t.Errorf("note offsets = (%d, %d), want (20, -10)", note.DX, note.DY)
	}

	deact := stmts[9].(*seq.Deactivate)
	if len(deact.Targets) != 2 || deact.Targets[0] != "billing" {
		t.Errorf("deactivate targets = %v, want [billing orders]", deact.Targets)
	}
}

func TestParseArrows(t *testing.T) {
	tests := []struct {
		arrow string
		line  seq.LineStyle
		head  seq.ArrowStyle
		mode  seq.ActivationMode
	}{
		{"->", seq.LineSolid, seq.ArrowBlock, seq.ActivationRegular},
		{"-->", seq.LineDashed, seq.ArrowBlock, seq.ActivationRegular},
		{"->>", seq.LineSolid, seq.ArrowOpen, seq.ActivationRegular},
		{"-->>", seq.LineDashed, seq.ArrowOpen, seq.ActivationRegular},
		{"->+", seq.LineSolid, seq.ArrowBlock, seq.ActivationActivate},
		{"->-", seq.LineSolid, seq.ArrowBlock, seq.ActivationDeactivate},
		{"->|", seq.LineSolid, seq.ArrowBlock, seq.ActivationFireForget},
		{"-->>-", seq.LineDashed, seq.ArrowOpen, seq.ActivationDeactivate},
	}

	for _, tt := range tests {
		t.Run(tt.arrow, func(t *testing.T) {
			stmts, err := ParseString("a " + tt.arrow + " b: x")
			if err != nil {
				t.Fatalf("ParseString() error = %v", err)
			}
			m := stmts[0].(*seq.Message)
			if m.LineStyle != tt.line || m.ArrowStyle != tt.head || m.Activation != tt.mode {
				t.Errorf("parsed %q = line %d head %d mode %d, want %d/%d/%d",
					tt.arrow, m.LineStyle, m.ArrowStyle, m.Activation, tt.line, tt.head, tt.mode)
			}
		})
	}
}

func TestParseDirectedMessages(t *testing.T) {
	stmts, err := ParseString(`
found left ->+ orders: webhook
orders ->> lost right [width=120]: audit event
`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	found := stmts[0].(*seq.FoundMessage)
	if found.Receiver != "orders" || found.Direction != seq.DirectionLeft {
		t.Errorf("found = %+v, want receiver orders from left", found)
	}
	if found.Activation != seq.ActivationActivate || found.Text != "webhook" {
		t.Errorf("found = %+v, want activating %q", found, "webhook")
	}

	lost := stmts[1].(*seq.LostMessage)
	if lost.Sender != "orders" || lost.Direction != seq.DirectionRight || lost.Width != 120 {
		t.Errorf("lost = %+v, want sender orders to right width 120", lost)
	}
	if lost.ArrowStyle != seq.ArrowOpen {
		t.Errorf("lost arrow = %d, want open", lost.ArrowStyle)
	}
}

func TestParseFrames(t *testing.T) {
	stmts, err := ParseString(`
participant a
participant b
alt happy path
  a -> b: yes
  opt retry
    a -> b: again
  end
else timeout
  b -> a: no
end
par
  a -> b: fan out
and
  a -> b: more
end
`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	if len(stmts) != 4 {
		t.Fatalf("len(stmts) = %d, want 4", len(stmts))
	}

	alt := stmts[2].(*seq.Frame)
	if alt.Kind != seq.FrameAlt || alt.Text != "happy path" {
		t.Errorf("frame = %+v, want alt %q", alt, "happy path")
	}
	if len(alt.Inner) != 2 {
		t.Fatalf("len(alt.Inner) = %d, want 2", len(alt.Inner))
	}
	if nested, ok := alt.Inner[1].(*seq.Frame); !ok || nested.Kind != seq.FrameOpt {
		t.Errorf("alt.Inner[1] = %+v, want nested opt frame", alt.Inner[1])
	}
	if len(alt.Sections) != 1 || alt.Sections[0].Label != "timeout" {
		t.Fatalf("alt.Sections = %+v, want one %q section", alt.Sections, "timeout")
	}
	if len(alt.Sections[0].Inner) != 1 {
		t.Errorf("len(section inner) = %d, want 1", len(alt.Sections[0].Inner))
	}

	par := stmts[3].(*seq.Frame)
	if par.Kind != seq.FramePar || len(par.Sections) != 1 {
		t.Errorf("par frame = %+v, want one and-section", par)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code errors.Code
	}{
		{"unknown statement", "frobnicate a b", errors.ErrCodeUnknownStatement},
		{"unknown statement inside frame", "opt x\nfrobnicate\nend", errors.ErrCodeUnknownStatement},
		{"unclosed frame", "opt waiting\na -> b: x", errors.ErrCodeSyntax},
		{"end without frame", "end", errors.ErrCodeSyntax},
		{"else outside frame", "else x", errors.ErrCodeSyntax},
		{"else in opt frame", "opt x\nelse y\nend", errors.ErrCodeSyntax},
		{"and in alt frame", "alt x\nand y\nend", errors.ErrCodeSyntax},
		{"title size first", "title size 10 10", errors.ErrCodeSyntax},
		{"duplicate title", "title a\ntitle b", errors.ErrCodeSyntax},
		{"bad option key", "participant a [color=red]", errors.ErrCodeSyntax},
		{"bad option value", "note a [dx=wide]: x", errors.ErrCodeSyntax},
		{"duplicate option", "participant a [width=1] [width=2]", errors.ErrCodeSyntax},
		{"unterminated quote", `participant "half as p`, errors.ErrCodeSyntax},
		{"bad direction", "found up -> a: x", errors.ErrCodeSyntax},
		{"offset not a number", "offset soon", errors.ErrCodeSyntax},
		{"activate without target", "activate", errors.ErrCodeSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.src)
			if !errors.Is(err, tt.code) {
				t.Errorf("ParseString(%q) error = %v, want code %s", tt.src, err, tt.code)
			}
		})
	}
}

func TestParseLineNumbers(t *testing.T) {
	stmts, err := ParseString("\n# comment\nparticipant a\n\nactivate a\n")
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	if got := stmts[0].Line(); got != 3 {
		t.Errorf("participant line = %d, want 3", got)
	}
	if got := stmts[1].Line(); got != 5 {
		t.Errorf("activate line = %d, want 5", got)
	}
}

func TestParseEmptyInput(t *testing.T) {
	stmts, err := ParseString("# nothing but comments\n\n")
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	if len(stmts) != 0 {
		t.Errorf("len(stmts) = %d, want 0", len(stmts))
	}
}

package drawio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/seqgen/pkg/layout"
	"github.com/matzehuels/seqgen/pkg/seq"
)

func TestIDGeneratorPrefix(t *testing.T) {
	g := newIDGenerator("p-")
	if got := g.create(); got != "p-1" {
		t.Errorf("create() = %q, want %q", got, "p-1")
	}
	if got := g.create(); got != "p-2" {
		t.Errorf("create() = %q, want %q", got, "p-2")
	}
}

func TestIDGeneratorEnvOverride(t *testing.T) {
	t.Setenv(idPrefixEnv, "env-")
	g := newIDGenerator("")
	if got := g.create(); got != "env-1" {
		t.Errorf("create() = %q, want %q", got, "env-1")
	}
}

func TestIDGeneratorRandomPrefix(t *testing.T) {
	t.Setenv(idPrefixEnv, "")
	a := newIDGenerator("").create()
	b := newIDGenerator("").create()
	if a == b {
		t.Errorf("two generators produced the same ID %q, want distinct random prefixes", a)
	}
}

func TestFileXML(t *testing.T) {
	f := NewFile("t-")
	p := f.NewPage("Page-1")

	l := p.NewLifeline("service")
	l.SetBounds(0, 160)
	l.SetHeight(300)

	data, err := f.XML()
	if err != nil {
		t.Fatalf("XML() error = %v", err)
	}
	out := string(data)

	for _, want := range []string{
		`<mxfile host="seqgen" agent="seqgen" version="26.2.2">`,
		`<diagram name="Page-1" id="t-1">`,
		`pageWidth="851"`,
		`<mxCell id="0"></mxCell>`,
		`<mxCell id="1" parent="0"></mxCell>`,
		`value="service"`,
		`shape=umlLifeline;`,
		`x="0" y="0" width="160" height="300"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("XML() missing %q in:\n%s", want, out)
		}
	}
}

func TestActivationGeometry(t *testing.T) {
	f := NewFile("t-")
	p := f.NewPage("x")

	l := p.NewLifeline("a")
	l.SetBounds(0, 160)
	bar := p.NewActivation(l)
	bar.SetStart(5, 60)
	bar.SetHeight(40)

	cell := bar.(*Activation).cell()
	if cell.Parent != l.(*Lifeline).id {
		t.Errorf("activation parent = %q, want lifeline id %q", cell.Parent, l.(*Lifeline).id)
	}
	// Centered at half the lifeline width, shifted by dx.
	if got := cell.Geometry.X; got != "80" {
		t.Errorf("activation x = %q, want %q", got, "80")
	}
	if got := cell.Geometry.Width; got != "10" {
		t.Errorf("activation width = %q, want %q", got, "10")
	}
}

func TestMessageAnchorStyles(t *testing.T) {
	tests := []struct {
		name       string
		anchor     layout.Anchor
		wantStyle  string
		wantPoints []string
	}{
		{
			name:       "none keeps both floating endpoints",
			anchor:     layout.AnchorNone,
			wantStyle:  "endArrow=block;dashed=0;",
			wantPoints: []string{"targetPoint", "sourcePoint"},
		},
		{
			name:       "top left pins the entry",
			anchor:     layout.AnchorTopLeft,
			wantStyle:  "entryX=0;entryY=0;entryDx=0;entryDy=5;",
			wantPoints: []string{"sourcePoint"},
		},
		{
			name:       "top right pins the entry",
			anchor:     layout.AnchorTopRight,
			wantStyle:  "entryX=1;entryY=0;entryDx=0;entryDy=5;",
			wantPoints: []string{"sourcePoint"},
		},
		{
			name:       "bottom left pins the exit",
			anchor:     layout.AnchorBottomLeft,
			wantStyle:  "exitX=0;exitY=1;exitDx=0;exitDy=-5;",
			wantPoints: []string{"targetPoint"},
		},
		{
			name:       "bottom right pins the exit",
			anchor:     layout.AnchorBottomRight,
			wantStyle:  "exitX=1;exitY=1;exitDx=0;exitDy=-5;",
			wantPoints: []string{"targetPoint"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFile("t-")
			p := f.NewPage("x")
			a := p.NewLifeline("a")
			b := p.NewLifeline("b")

			m := p.NewMessage(a, b, "msg")
			m.SetAnchor(tt.anchor)

			cell := m.(*Message).cell()
			if !strings.Contains(cell.Style, tt.wantStyle) {
				t.Errorf("style = %q, want substring %q", cell.Style, tt.wantStyle)
			}
			if len(cell.Geometry.Points) != len(tt.wantPoints) {
				t.Fatalf("len(points) = %d, want %d", len(cell.Geometry.Points), len(tt.wantPoints))
			}
			for i, want := range tt.wantPoints {
				if cell.Geometry.Points[i].As != want {
					t.Errorf("points[%d].as = %q, want %q", i, cell.Geometry.Points[i].As, want)
				}
			}
		})
	}
}

func TestMessageLineAndArrowStyles(t *testing.T) {
	f := NewFile("t-")
	p := f.NewPage("x")
	a := p.NewLifeline("a")
	b := p.NewLifeline("b")

	m := p.NewMessage(a, b, "reply")
	m.SetStyle(seq.LineDashed, seq.ArrowOpen)

	cell := m.(*Message).cell()
	if !strings.Contains(cell.Style, "endArrow=open;dashed=1;") {
		t.Errorf("style = %q, want open dashed arrow", cell.Style)
	}
}

func TestMessageRoutingPoints(t *testing.T) {
	f := NewFile("t-")
	p := f.NewPage("x")
	a := p.NewLifeline("a")
	b := p.NewLifeline("b")

	m := p.NewMessage(a, b, "m")
	m.AddPoint(layout.Point{X: 110, Y: 70})
	m.AddPoint(layout.Point{X: 110, Y: 90})

	cell := m.(*Message).cell()
	arr := cell.Geometry.Array
	if arr == nil || arr.As != "points" {
		t.Fatalf("geometry array = %+v, want as=points", arr)
	}
	if len(arr.Points) != 2 || arr.Points[0].X != "110" || arr.Points[1].Y != "90" {
		t.Errorf("routing points = %+v, want (110,70) (110,90)", arr.Points)
	}
}

func TestSeparatorRelativeY(t *testing.T) {
	f := NewFile("t-")
	p := f.NewPage("x")
	fr := p.NewFrame("alt")
	fr.SetTop(100)
	fr.SetHeight(200)

	sep := p.NewSeparator(fr)
	sep.SetY(50)

	cell := sep.(*Separator).cell()
	if !strings.Contains(cell.Style, "entryY=0.250;") || !strings.Contains(cell.Style, "exitY=0.250;") {
		t.Errorf("style = %q, want relative y 0.250 on both ends", cell.Style)
	}
	if cell.Source != cell.Target {
		t.Errorf("separator source %q != target %q, want self-edge", cell.Source, cell.Target)
	}
}

func TestLabelParent(t *testing.T) {
	f := NewFile("t-")
	p := f.NewPage("x")
	fr := p.NewFrame("opt")

	lbl := p.NewLabel(fr, "[cond]")
	lbl.SetPosition(10, 25)

	cell := lbl.(*Text).cell()
	if cell.Parent != fr.(*Frame).id {
		t.Errorf("label parent = %q, want frame id %q", cell.Parent, fr.(*Frame).id)
	}
	if cell.Geometry.X != "10" || cell.Geometry.Y != "25" {
		t.Errorf("label at (%s, %s), want (10, 25)", cell.Geometry.X, cell.Geometry.Y)
	}
}

func TestDotGeometry(t *testing.T) {
	f := NewFile("t-")
	p := f.NewPage("x")

	d := p.NewDot()
	d.SetCenter(140, 70)

	cell := d.(*Dot).cell()
	if cell.Geometry.X != "135" || cell.Geometry.Y != "65" {
		t.Errorf("dot at (%s, %s), want (135, 65)", cell.Geometry.X, cell.Geometry.Y)
	}
	if cell.Geometry.Width != "10" || cell.Geometry.Height != "10" {
		t.Errorf("dot size = %sx%s, want 10x10", cell.Geometry.Width, cell.Geometry.Height)
	}
}

func TestOutputDeterministic(t *testing.T) {
	render := func() []byte {
		f := NewFile("fixed-")
		p := f.NewPage("Page-1")

		doc := layout.Document(p)
		a := doc.NewLifeline("a")
		a.SetBounds(0, 160)
		a.SetHeight(120)
		bar := doc.NewActivation(a)
		bar.SetStart(0, 60)
		bar.SetHeight(20)

		var buf bytes.Buffer
		if err := f.Write(&buf); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		return buf.Bytes()
	}

	if !bytes.Equal(render(), render()) {
		t.Error("identical input produced different output")
	}
}

package pipeline

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/seqgen/pkg/cache"
	"github.com/matzehuels/seqgen/pkg/errors"
	"github.com/matzehuels/seqgen/pkg/observability"
)

const testSource = `
title Checkout
participant orders
participant billing
activate orders billing
orders ->+ billing: reserve funds
billing -->- orders: ok
deactivate billing orders
`

func TestExecute(t *testing.T) {
	runner := NewRunner(nil, nil)

	result, err := runner.Execute(context.Background(), Options{
		Source:   testSource,
		IDPrefix: "test-",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.CacheHit {
		t.Error("Execute() with NullCache reported a cache hit")
	}
	if result.Stats.StatementCount != 7 {
		t.Errorf("StatementCount = %d, want 7", result.Stats.StatementCount)
	}
	if result.Stats.ParticipantCount != 2 {
		t.Errorf("ParticipantCount = %d, want 2", result.Stats.ParticipantCount)
	}

	out := string(result.XML)
	for _, want := range []string{
		`<mxfile`,
		`<diagram name="Page-1"`,
		`shape=umlLifeline;`,
		`value="Checkout"`,
		`id="test-`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("XML missing %q", want)
		}
	}
}

func TestExecuteDeterministic(t *testing.T) {
	runner := NewRunner(nil, nil)
	opts := Options{Source: testSource, IDPrefix: "fixed-"}

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !bytes.Equal(first.XML, second.XML) {
		t.Error("identical options produced different XML")
	}
}

func TestExecuteCaching(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	runner := NewRunner(c, nil)
	opts := Options{Source: testSource, IDPrefix: "test-"}

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if first.CacheHit {
		t.Error("first run reported a cache hit")
	}

	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !second.CacheHit {
		t.Error("second run missed the cache")
	}
	if !bytes.Equal(first.XML, second.XML) {
		t.Error("cached XML differs from rendered XML")
	}

	opts.Refresh = true
	third, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if third.CacheHit {
		t.Error("refresh run reported a cache hit")
	}
}

func TestExecuteErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		code   errors.Code
	}{
		{"empty source", "", errors.ErrCodeInvalidInput},
		{"syntax error", "participant \"broken", errors.ErrCodeSyntax},
		{"unknown statement", "launch missiles", errors.ErrCodeUnknownStatement},
		{"self message", "participant a\na -> a: loop", errors.ErrCodeSelfMessage},
		{"unknown participant", "participant a\nactivate b", errors.ErrCodeUnknownParticipant},
		{"unclosed activation", "participant a\nactivate a", errors.ErrCodeUnclosedActivation},
	}

	runner := NewRunner(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runner.Execute(context.Background(), Options{Source: tt.source})
			if !errors.Is(err, tt.code) {
				t.Errorf("Execute() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	runner := NewRunner(nil, nil)

	stmts, err := runner.Check(testSource, Options{})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if len(stmts) != 7 {
		t.Errorf("len(stmts) = %d, want 7", len(stmts))
	}

	_, err = runner.Check("participant a\ndeactivate a", Options{})
	if !errors.Is(err, errors.ErrCodeNotActive) {
		t.Errorf("Check() error = %v, want code %s", err, errors.ErrCodeNotActive)
	}
}

type captureHooks struct {
	observability.NoopPipelineHooks
	parsed   int
	laidOut  int
	rendered int
}

func (h *captureHooks) OnParseComplete(_ context.Context, stmtCount int, _ time.Duration, err error) {
	if err == nil {
		h.parsed = stmtCount
	}
}

func (h *captureHooks) OnLayoutComplete(_ context.Context, _ time.Duration, err error) {
	if err == nil {
		h.laidOut++
	}
}

func (h *captureHooks) OnRenderComplete(_ context.Context, _ string, size int, _ time.Duration, err error) {
	if err == nil {
		h.rendered = size
	}
}

func TestExecuteEmitsHooks(t *testing.T) {
	observability.Reset()
	t.Cleanup(observability.Reset)

	hooks := &captureHooks{}
	observability.SetPipelineHooks(hooks)

	runner := NewRunner(nil, nil)
	result, err := runner.Execute(context.Background(), Options{Source: testSource})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if hooks.parsed != result.Stats.StatementCount {
		t.Errorf("OnParseComplete stmtCount = %d, want %d", hooks.parsed, result.Stats.StatementCount)
	}
	if hooks.laidOut != 1 {
		t.Errorf("OnLayoutComplete calls = %d, want 1", hooks.laidOut)
	}
	if hooks.rendered != len(result.XML) {
		t.Errorf("OnRenderComplete size = %d, want %d", hooks.rendered, len(result.XML))
	}
}

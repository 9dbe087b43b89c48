package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLevelShouldEmit(t *testing.T) {
	tests := []struct {
		level Level
		kind  Kind
		scope Scope
		want  bool
	}{
		{LevelOff, KindError, ScopeDriver, false},
		{LevelError, KindError, ScopeFile, true},
		{LevelError, KindSpanBegin, ScopeDriver, false},
		{LevelPhase, KindSpanBegin, ScopePass, true},
		{LevelPhase, KindSpanBegin, ScopeFile, false},
		{LevelPhase, KindError, ScopeFile, true},
		{LevelDetail, KindSpanEnd, ScopeFile, true},
		{LevelDetail, KindPoint, ScopeFile, false},
		{LevelDetail, KindPoint, ScopeDriver, true},
		{LevelDebug, KindPoint, ScopeFile, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.kind, tt.scope); got != tt.want {
			t.Errorf("%s.ShouldEmit(%s, %s) = %v, want %v", tt.level, tt.kind, tt.scope, got, tt.want)
		}
	}
}

func TestParseLevelAndMode(t *testing.T) {
	for in, want := range map[string]Level{"": LevelOff, "Phase": LevelPhase, "debug": LevelDebug} {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
	if m, err := ParseMode("Ring"); err != nil || m != ModeRing {
		t.Errorf("ParseMode(Ring) = %v, %v", m, err)
	}
	for _, bad := range []string{"disk", "both"} {
		if _, err := ParseMode(bad); err == nil {
			t.Errorf("expected error for mode %q", bad)
		}
	}
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)

	root := Begin(tr, ScopeDriver, "fmt", 0)
	file := Begin(tr, ScopeFile, "a.chpl", root.ID()).WithExtra("changed", "true")
	file.End("")
	Point(tr, ScopeFile, "skipped", "", root.ID()) // отфильтровано на LevelDetail
	root.End("1 file")

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "[driver] → fmt") {
		t.Errorf("unexpected first line %q", lines[0])
	}
	if !strings.Contains(lines[1], "[file]   → a.chpl") {
		t.Errorf("child span must be indented: %q", lines[1])
	}
	if !strings.Contains(lines[2], "← a.chpl") || !strings.HasSuffix(lines[2], "{changed=true}") {
		t.Errorf("unexpected end line %q", lines[2])
	}
	if !strings.Contains(lines[3], "← fmt (1 file)") {
		t.Errorf("unexpected last line %q", lines[3])
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelError, FormatNDJSON)

	ok := Begin(tr, ScopePass, "collect", 0)
	ok.End("")
	bad := Begin(tr, ScopeFile, "b.chpl", 0)
	bad.Fail(errors.New("permission denied"))

	var got jsonEvent
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &got); err != nil {
		t.Fatalf("expected exactly one JSON event, got %q: %v", buf.String(), err)
	}
	if got.Kind != "error" || got.Name != "b.chpl" || got.Detail != "permission denied" {
		t.Fatalf("unexpected event %+v", got)
	}
}

func TestRingTracerWraps(t *testing.T) {
	r := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(r, ScopeFile, name, "", 0)
	}
	snap := r.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 events, got %d", len(snap))
	}
	for i, want := range []string{"c", "d", "e"} {
		if snap[i].Name != want {
			t.Errorf("snapshot[%d] = %q, want %q", i, snap[i].Name, want)
		}
	}
	if snap[0].Seq >= snap[2].Seq {
		t.Errorf("sequence must grow: %d then %d", snap[0].Seq, snap[2].Seq)
	}

	var buf bytes.Buffer
	if err := r.Dump(&buf, FormatText); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "\n") != 4 || !strings.HasPrefix(buf.String(), "... 2 earlier events dropped\n") {
		t.Errorf("unexpected dump:\n%s", buf.String())
	}
	if r.Dropped() != 2 {
		t.Errorf("Dropped() = %d, want 2", r.Dropped())
	}

	buf.Reset()
	if err := r.Dump(&buf, FormatNDJSON); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "\n") != 3 || strings.Contains(buf.String(), "dropped") {
		t.Errorf("NDJSON dump must hold only events:\n%s", buf.String())
	}
}

func TestNewModes(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatalf("LevelOff must give a disabled tracer, got %v, %v", tr, err)
	}

	var buf bytes.Buffer
	tr, err = New(Config{Level: LevelPhase, Mode: ModeRing, Output: &buf, RingSize: 8})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := tr.(*RingTracer); !ok {
		t.Fatalf("ModeRing must build a RingTracer, got %T", tr)
	}
	Begin(tr, ScopeDriver, "check", 0).End("")
	if err := tr.Flush(); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Fatalf("ring must not write before Close, got %q", buf.String())
	}
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(buf.String(), "check"); got != 2 {
		t.Errorf("dump holds %d check events, want 2:\n%s", got, buf.String())
	}
	if err := tr.Close(); err != nil || strings.Count(buf.String(), "check") != 2 {
		t.Errorf("second Close must not dump again: %v\n%s", err, buf.String())
	}

	buf.Reset()
	tr, err = New(Config{Level: LevelPhase, Mode: ModeStream, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	Begin(tr, ScopeDriver, "fmt", 0).End("")
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "fmt") {
		t.Errorf("stream output missing events: %q", buf.String())
	}

	if _, err := New(Config{Level: LevelPhase}); err == nil {
		t.Error("expected error for missing mode")
	}
}

func TestContextPropagation(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatal("empty context must yield Nop")
	}

	r := NewRingTracer(8, LevelDetail)
	ctx := WithTracer(context.Background(), r)
	ctx, parent := BeginCtx(ctx, ScopePass, "format")
	_, child := BeginCtx(ctx, ScopeFile, "x.chpl")
	child.End("")
	parent.End("")

	snap := r.Snapshot()
	if len(snap) != 4 {
		t.Fatalf("expected 4 events, got %d", len(snap))
	}
	if snap[1].ParentID != parent.ID() {
		t.Errorf("child parent = %d, want %d", snap[1].ParentID, parent.ID())
	}

	// выключенный трейсер не меняет контекст
	base := context.Background()
	got, span := BeginCtx(base, ScopePass, "noop")
	if got != base || span.ID() != 0 {
		t.Error("disabled tracing must not allocate spans")
	}
	span.End("")
}

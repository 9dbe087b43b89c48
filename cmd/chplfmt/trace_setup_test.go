package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"chplfmt/internal/trace"
)

func newGlobalFlagsCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "chplfmt"}
	registerGlobalFlags(cmd)
	if err := cmd.PersistentFlags().Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	cmd.SetContext(context.Background())
	return cmd
}

func TestSetupTracingRingDumpsOnCleanup(t *testing.T) {
	out := filepath.Join(t.TempDir(), "run.trace")
	cmd := newGlobalFlagsCmd(t, "--trace", out, "--trace-mode", "ring", "--trace-ring-size", "2")

	cleanup, err := setupTracing(cmd)
	if err != nil {
		t.Fatal(err)
	}
	tr := trace.FromContext(cmd.Context())
	for _, name := range []string{"collect", "format", "write"} {
		trace.Begin(tr, trace.ScopePass, name, 0).End("")
	}

	if data, _ := os.ReadFile(out); len(data) != 0 {
		t.Fatalf("ring mode wrote before cleanup: %q", data)
	}
	cleanup()

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	if !strings.HasPrefix(got, "... 4 earlier events dropped\n") {
		t.Errorf("missing dropped header:\n%s", got)
	}
	if strings.Count(got, "write") != 2 || strings.Contains(got, "format") {
		t.Errorf("dump must hold only the last two events:\n%s", got)
	}
}

func TestSetupTracingStreamAndOff(t *testing.T) {
	out := filepath.Join(t.TempDir(), "run.ndjson")
	cmd := newGlobalFlagsCmd(t, "--trace", out)
	cleanup, err := setupTracing(cmd)
	if err != nil {
		t.Fatal(err)
	}
	tr := trace.FromContext(cmd.Context())
	if tr.Level() != trace.LevelPhase {
		t.Errorf("--trace alone must enable phase level, got %s", tr.Level())
	}
	trace.Begin(tr, trace.ScopeDriver, "fmt", 0).End("")
	cleanup()
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(string(data), "\n") != 2 || !strings.Contains(string(data), `"name":"fmt"`) {
		t.Errorf("unexpected stream output:\n%s", data)
	}

	cmd = newGlobalFlagsCmd(t)
	if _, err := setupTracing(cmd); err != nil {
		t.Fatal(err)
	}
	if trace.FromContext(cmd.Context()).Enabled() {
		t.Error("tracing must stay off without --trace")
	}

	cmd = newGlobalFlagsCmd(t, "--trace", out, "--trace-mode", "both")
	if _, err := setupTracing(cmd); err == nil {
		t.Error("expected error for unknown trace mode")
	}
}

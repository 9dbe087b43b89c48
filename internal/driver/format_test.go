package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

const (
	messySource     = "proc main(){\nvar x=1;\n}\n"
	formattedSource = "proc main() {\n  var x = 1;\n}\n"
	cleanSource     = "writeln(42);\n"
)

func TestFormatPathsWritesChangedFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.chpl":    messySource,
		"b.chpl":    cleanSource,
		"notes.txt": "x=1",
	})
	a := filepath.Join(root, "a.chpl")
	if err := os.Chmod(a, 0o600); err != nil {
		t.Fatal(err)
	}

	results, err := FormatPaths(context.Background(), []string{root}, FormatOptions{Jobs: 2})
	if err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Path != a || !results[0].Changed || results[0].Err != nil {
		t.Errorf("unexpected result for a.chpl: %+v", results[0])
	}
	if results[1].Changed || results[1].Err != nil {
		t.Errorf("b.chpl must be unchanged: %+v", results[1])
	}

	if got := readFile(t, a); got != formattedSource {
		t.Errorf("a.chpl = %q, want %q", got, formattedSource)
	}
	info, err := os.Stat(a)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
	if got := readFile(t, filepath.Join(root, "notes.txt")); got != "x=1" {
		t.Errorf("non-source file touched: %q", got)
	}
}

func TestFormatPathsCheckAndStdout(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.chpl": messySource})
	a := filepath.Join(root, "a.chpl")

	results, err := FormatPaths(context.Background(), []string{a}, FormatOptions{Check: true})
	if err != nil {
		t.Fatal(err)
	}
	if !results[0].Changed || results[0].Formatted != nil {
		t.Errorf("check mode result %+v", results[0])
	}

	results, err = FormatPaths(context.Background(), []string{a}, FormatOptions{Stdout: true, Verify: true})
	if err != nil {
		t.Fatal(err)
	}
	if string(results[0].Formatted) != formattedSource {
		t.Errorf("stdout mode Formatted = %q", results[0].Formatted)
	}

	if got := readFile(t, a); got != messySource {
		t.Errorf("file modified in check/stdout mode: %q", got)
	}
}

func TestFormatPathsKeepsBOM(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"bom.chpl": "\xEF\xBB\xBFvar x=1;\n"})

	if _, err := FormatPaths(context.Background(), []string{root}, FormatOptions{}); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, filepath.Join(root, "bom.chpl")); got != "\xEF\xBB\xBFvar x = 1;\n" {
		t.Errorf("got %q", got)
	}
}

func TestFormatPathsErrors(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"readme.md": "# hi\n"})

	_, err := FormatPaths(context.Background(), []string{root}, FormatOptions{})
	if !errors.Is(err, ErrNoSourceFiles) {
		t.Errorf("expected ErrNoSourceFiles, got %v", err)
	}

	_, err = FormatPaths(context.Background(), []string{filepath.Join(root, "missing")}, FormatOptions{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := FormatPaths(ctx, []string{root}, FormatOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestFormatPathsUsesCache(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.chpl": messySource, "b.chpl": cleanSource})
	cache, err := OpenCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	run := func(opts FormatOptions) []FormatResult {
		t.Helper()
		opts.Cache = cache
		results, err := FormatPaths(context.Background(), []string{root}, opts)
		if err != nil {
			t.Fatal(err)
		}
		return results
	}

	first := run(FormatOptions{Check: true})
	if first[0].Cached || first[1].Cached {
		t.Fatalf("cold cache must not hit: %+v", first)
	}

	second := run(FormatOptions{Check: true})
	if !second[0].Cached || !second[0].Changed {
		t.Errorf("a.chpl: want cached and changed, got %+v", second[0])
	}
	if !second[1].Cached || second[1].Changed {
		t.Errorf("b.chpl: want cached and clean, got %+v", second[1])
	}

	// запись форматирует заново и кладёт чистую запись для результата
	third := run(FormatOptions{})
	if third[0].Cached || !third[0].Changed {
		t.Errorf("write run must reformat a.chpl: %+v", third[0])
	}

	fourth := run(FormatOptions{Check: true})
	if !fourth[0].Cached || fourth[0].Changed {
		t.Errorf("formatted a.chpl must hit a clean entry: %+v", fourth[0])
	}
}

func TestFormatPathsProgress(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.chpl": messySource, "b.chpl": cleanSource})

	events := make(chan Event, 64)
	_, err := FormatPaths(context.Background(), []string{root}, FormatOptions{Check: true, Progress: ChannelSink{Ch: events}})
	if err != nil {
		t.Fatal(err)
	}
	close(events)

	final := make(map[string]Status)
	queued := 0
	for ev := range events {
		if ev.Status == StatusQueued {
			queued++
		}
		if ev.Stage == StageFormat && ev.Status != StatusWorking {
			final[filepath.Base(ev.Path)] = ev.Status
		}
	}
	if queued != 2 {
		t.Errorf("expected 2 queued events, got %d", queued)
	}
	if final["a.chpl"] != StatusChanged || final["b.chpl"] != StatusDone {
		t.Errorf("unexpected final statuses %v", final)
	}
}

package driver

import (
	"context"
	"path/filepath"
	"slices"
	"testing"

	"chplfmt/internal/config"
	"chplfmt/internal/observ"
	"chplfmt/internal/trace"
)

func TestCollectFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/b.chpl":         "",
		"src/a.chpl":         "",
		"src/parse_gen.chpl": "",
		"vendor/lib.chpl":    "",
		"docs/readme.md":     "",
	})

	cfg := config.Default()
	cfg.Root = root
	cfg.Format.Exclude = []string{"vendor/**", "**/*_gen.chpl"}

	explicit := filepath.Join(root, "vendor", "lib.chpl")
	got, err := CollectFiles(context.Background(), []string{root, filepath.Join(root, "src"), explicit, filepath.Join(root, "docs", "readme.md")}, &cfg)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(root, "src", "a.chpl"),
		filepath.Join(root, "src", "b.chpl"),
		explicit,
	}
	if !slices.Equal(got, want) {
		t.Errorf("CollectFiles() =\n%q\nwant\n%q", got, want)
	}
}

func TestCollectFilesDefaultConfig(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"x.chpl": "", "y.CHPL": "", "z.go": ""})

	got, err := CollectFiles(context.Background(), []string{root}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 files, got %q", got)
	}
}

func TestCollectRecordsPhase(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.chpl": "", "b.chpl": ""})

	timer := observ.NewTimer()
	ring := trace.NewRingTracer(8, trace.LevelPhase)
	ctx := trace.WithTracer(context.Background(), ring)
	files, err := Collect(ctx, []string{root}, nil, timer)
	if err != nil || len(files) != 2 {
		t.Fatalf("Collect() = %q, %v", files, err)
	}

	phases := timer.Report().Phases
	if len(phases) != 1 || phases[0].Name != "collect" || phases[0].Note != "2 files" {
		t.Errorf("unexpected phases %+v", phases)
	}
	events := ring.Snapshot()
	if len(events) != 2 || events[1].Name != "collect" || events[1].Extra["files"] != "2" {
		t.Errorf("unexpected trace events %+v", events)
	}

	if _, err := Collect(context.Background(), []string{filepath.Join(root, "missing")}, nil, nil); err == nil {
		t.Error("expected error for a missing path")
	}
}

func TestFormatPathsRecordsCollect(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.chpl": "var x=1;\n"})

	timer := observ.NewTimer()
	if _, err := FormatPaths(context.Background(), []string{root}, FormatOptions{Check: true, Timer: timer}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := CheckPaths(context.Background(), []string{root}, CheckOptions{Timer: timer}); err != nil {
		t.Fatal(err)
	}
	var collects int
	for _, p := range timer.Report().Phases {
		if p.Name == "collect" {
			collects++
		}
	}
	if collects != 2 {
		t.Errorf("expected a collect phase per run, got %d", collects)
	}
}

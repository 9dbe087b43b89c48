package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"chplfmt/internal/diag"
	"chplfmt/internal/source"
)

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	fs := source.NewFileSetWithBase("/home/user/project")
	fileID := fs.AddVirtual("/home/user/project/src/test.chpl", []byte("var x = 1;   \n"))

	bag := diag.NewBag(10)
	bag.Add(diag.New(
		diag.SevWarning,
		diag.FmtTrailingWhitespace,
		source.Span{File: fileID, Start: 10, End: 13},
		"Trailing whitespace",
	))

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"Absolute path", PathModeAbsolute, "/home/user/project/src/test.chpl:1:11"},
		{"Relative path", PathModeRelative, "src/test.chpl:1:11"},
		{"Basename only", PathModeBasename, "test.chpl:1:11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: tt.mode})
			output := buf.String()

			if !strings.Contains(output, tt.contains) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.contains, output)
			}
			if !strings.Contains(output, "WARNING FMT1001: Trailing whitespace") {
				t.Errorf("Expected header in output, got:\n%s", output)
			}
		})
	}
}

func TestPrettyCaret(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("c.chpl", []byte("a;\n\tvar x = 1;  \nb;\n"))

	bag := diag.NewBag(10)
	// хвостовые пробелы второй строки: байты 14..16
	bag.Add(diag.New(diag.SevWarning, diag.FmtTrailingWhitespace, source.Span{File: fileID, Start: 14, End: 16}, "Trailing whitespace"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: PathModeBasename})

	want := "c.chpl:2:12: WARNING FMT1001: Trailing whitespace\n" +
		"1 | a;\n" +
		"2 |   var x = 1;  \n" +
		"  |" + strings.Repeat(" ", 13) + "^~\n" +
		"3 | b;\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected pretty output:\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestPrettyNotesAndFixes(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.chpl", []byte("\tvar x = 1;\n"))

	bag := diag.NewBag(4)
	tab := source.Span{File: fileID, Start: 0, End: 1}
	d := diag.New(diag.SevWarning, diag.FmtTabCharacter, tab, "Contains tab character").
		WithNote(source.Span{File: fileID, Start: 1, End: 4}, "indentation starts here").
		WithFix("expand tab", diag.FixEdit{Span: tab, NewText: "  "})
	bag.Add(d)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{
		Context:     0,
		PathMode:    PathModeBasename,
		ShowNotes:   true,
		ShowFixes:   true,
		ShowPreview: true,
	})
	output := buf.String()

	for _, want := range []string{
		"note: test.chpl:1:2 indentation starts here",
		"fix #1: expand tab",
		`apply="  "`,
		"preview:",
		"- \tvar x = 1;",
		"+   var x = 1;",
	} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in output, got:\n%s", want, output)
		}
	}
}

func TestPrettyDroppedAndColor(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("d.chpl", []byte("x"))

	bag := diag.NewBag(1)
	for range 3 {
		bag.Add(diag.New(diag.SevWarning, diag.FmtMissingFinalNewline, source.Span{File: fileID, Start: 1, End: 1}, "Missing final newline"))
	}

	var plain, colored bytes.Buffer
	Pretty(&plain, bag, fs, PrettyOpts{PathMode: PathModeBasename, Context: -1})
	Pretty(&colored, bag, fs, PrettyOpts{PathMode: PathModeBasename, Context: -1, Color: true})

	if !strings.Contains(plain.String(), "... 2 more diagnostics not shown") {
		t.Fatalf("expected dropped counter, got:\n%s", plain.String())
	}
	if strings.Contains(plain.String(), "\x1b[") {
		t.Fatalf("plain output contains escape codes:\n%q", plain.String())
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Fatalf("colored output has no escape codes:\n%q", colored.String())
	}
}

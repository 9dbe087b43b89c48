package source

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/zeebo/blake3"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("test.chpl", []byte("hello world"), 0)
	id2 := fs.Add("./test.chpl", []byte("hello universe"), 0)
	if id1 != 0 || id2 != 1 {
		t.Fatalf("expected ids 0 and 1, got %d and %d", id1, id2)
	}

	// Последняя версия файла побеждает
	f, ok := fs.GetByPath("test.chpl")
	if !ok {
		t.Fatal("expected file to exist after Add")
	}
	if f.ID != id2 {
		t.Errorf("expected latest ID %d, got %d", id2, f.ID)
	}
	if got := fs.Get(id1).Text(); got != "hello world" {
		t.Errorf("old version lost, got %q", got)
	}
	if fs.Len() != 2 {
		t.Errorf("expected 2 files, got %d", fs.Len())
	}
}

func TestAddVirtualLineIdx(t *testing.T) {
	fs := NewFileSet()
	file := fs.Get(fs.AddVirtual("a.chpl", []byte("a\nb\n")))

	expected := []uint32{1, 3} // позиции символов \n
	if len(file.LineIdx) != len(expected) {
		t.Fatalf("expected LineIdx length %d, got %d", len(expected), len(file.LineIdx))
	}
	for i, val := range expected {
		if file.LineIdx[i] != val {
			t.Errorf("expected LineIdx[%d] = %d, got %d", i, val, file.LineIdx[i])
		}
	}
	if file.Flags&FileVirtual == 0 {
		t.Error("expected FileVirtual flag to be set")
	}
	if file.Hash != blake3.Sum256([]byte("a\nb\n")) {
		t.Error("hash is not the blake3 sum of the content")
	}
	if file.LineCount() != 2 {
		t.Errorf("expected 2 lines, got %d", file.LineCount())
	}
}

func TestCRLFIsKept(t *testing.T) {
	fs := NewFileSet()
	file := fs.Get(fs.AddVirtual("crlf.chpl", []byte("a;\r\nb;\r\n")))
	if file.Flags&FileHasCRLF == 0 {
		t.Fatal("expected FileHasCRLF")
	}
	if got := file.GetLine(1); got != "a;\r" {
		t.Fatalf("GetLine(1) = %q, want %q", got, "a;\r")
	}
}

func TestResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("r.chpl", []byte("ab\ncd\n\nxyz"))

	cases := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{1, LineCol{1, 2}},
		{2, LineCol{1, 3}}, // сам \n относится к своей строке
		{3, LineCol{2, 1}},
		{6, LineCol{3, 1}},
		{7, LineCol{4, 1}},
		{10, LineCol{4, 4}},
	}
	for _, tc := range cases {
		start, _ := fs.Resolve(Span{File: id, Start: tc.off, End: tc.off})
		if start != tc.want {
			t.Errorf("offset %d: want %+v, got %+v", tc.off, tc.want, start)
		}
	}
}

func TestOffsetRoundTrip(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("o.chpl", []byte("var x;\n  y;\nlast"))
	file := fs.Get(id)

	for off := uint32(0); off <= uint32(len(file.Content)); off++ {
		pos, _ := fs.Resolve(Span{File: id, Start: off, End: off})
		if got := file.Offset(pos); got != off {
			t.Fatalf("offset %d -> %+v -> %d", off, pos, got)
		}
	}

	if got := file.Offset(LineCol{Line: 2, Col: 99}); got != 11 {
		t.Errorf("column past line end should clamp to the newline, got %d", got)
	}
	if got := file.Offset(LineCol{Line: 9, Col: 1}); got != uint32(len(file.Content)) {
		t.Errorf("line past EOF should clamp to size, got %d", got)
	}
	sp := file.SpanAt(LineCol{Line: 1, Col: 5}, 10)
	if sp.Start != 4 || sp.End != 6 {
		t.Errorf("SpanAt should clip to the line, got %s", sp)
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	file := fs.Get(fs.AddVirtual("l.chpl", []byte("one\ntwo\nthree")))
	for i, want := range []string{"", "one", "two", "three", ""} {
		if got := file.GetLine(uint32(i)); got != want {
			t.Errorf("GetLine(%d) = %q, want %q", i, got, want)
		}
	}
}

func TestDecodeEncode(t *testing.T) {
	text := []byte("var x = 1;\n")
	cases := []struct {
		name  string
		raw   []byte
		flags FileFlags
	}{
		{"plain", text, 0},
		{"utf8 bom", append([]byte{0xEF, 0xBB, 0xBF}, text...), FileHadBOM},
		{"utf16le", utf16LE(text), FileUTF16LE},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, flags, err := Decode(tc.raw)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !bytes.Equal(got, text) {
				t.Fatalf("Decode: want %q, got %q", text, got)
			}
			if flags != tc.flags {
				t.Fatalf("Decode flags: want %b, got %b", tc.flags, flags)
			}
			back, err := Encode(got, flags)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if !bytes.Equal(back, tc.raw) {
				t.Fatalf("Encode: want % x, got % x", tc.raw, back)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "m.chpl")
	if err := os.WriteFile(path, append([]byte{0xEF, 0xBB, 0xBF}, "module M {}\n"...), 0o600); err != nil {
		t.Fatal(err)
	}

	fs := NewFileSetWithBase(dir)
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	file := fs.Get(id)
	if file.Text() != "module M {}\n" || file.Flags&FileHadBOM == 0 {
		t.Fatalf("unexpected file %q flags %b", file.Text(), file.Flags)
	}
	if got := file.FormatPath("relative", fs.BaseDir()); got != "m.chpl" {
		t.Errorf("relative path: got %q", got)
	}

	if _, err := fs.Load(filepath.Join(dir, "missing.chpl")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestRelativePathOutsideBase(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "other", "file.chpl")
	got := RelativePath(target, filepath.Join(tmp, "base"))
	if want := normalizePath(target); got != want {
		t.Fatalf("expected absolute fallback %q, got %q", want, got)
	}
}

func utf16LE(text []byte) []byte {
	out := []byte{0xFF, 0xFE}
	for _, b := range text {
		out = append(out, b, 0)
	}
	return out
}

package source

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"fortio.org/safecast"
	"github.com/zeebo/blake3"
)

// FileSet manages the sources of one run and resolves spans to positions.
type FileSet struct {
	files   []File
	index   map[string]FileID // path -> id
	baseDir string            // базовая директория для относительных путей
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0),
		index: make(map[string]FileID),
	}
}

// NewFileSetWithBase создаёт FileSet с заданной базовой директорией.
func NewFileSetWithBase(baseDir string) *FileSet {
	fs := NewFileSet()
	fs.baseDir = baseDir
	return fs
}

// BaseDir возвращает базовую директорию, по умолчанию рабочую.
func (fileSet *FileSet) BaseDir() string {
	if fileSet.baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	return fileSet.baseDir
}

// Len returns the number of files in the set.
func (fileSet *FileSet) Len() int {
	return len(fileSet.files)
}

// Add stores decoded text and returns a new FileID. A later Add for the same
// path shadows the earlier one in GetByPath.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	if bytes.Contains(content, []byte("\r\n")) {
		flags |= FileHasCRLF
	}
	normalizedPath := normalizePath(path)

	lenFiles, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id := FileID(lenFiles)
	fileSet.files = append(fileSet.files, File{
		ID:      id,
		Path:    normalizedPath,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    blake3.Sum256(content),
		Flags:   flags,
	})
	fileSet.index[normalizedPath] = id
	return id
}

// Load reads a file from disk, decodes it and calls Add.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	content, flags, err := Decode(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return fileSet.Add(path, content, flags), nil
}

// AddVirtual adds an in-memory file (stdin, tests) with the FileVirtual flag.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	return fileSet.Add(name, content, FileVirtual)
}

// Get returns the file for id. It panics on an id from another set.
func (fileSet *FileSet) Get(id FileID) *File {
	return &fileSet.files[id]
}

// GetByPath возвращает последний *File, загруженный по этому пути.
func (fileSet *FileSet) GetByPath(path string) (*File, bool) {
	if id, ok := fileSet.index[normalizePath(path)]; ok {
		return &fileSet.files[id], true
	}
	return nil, false
}

// Resolve converts a span into line and column positions.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fileSet.files[span.File]
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// Offset converts a 1-based position back into a byte offset, clamped to the
// file. Columns past the end of a line land on the line terminator.
func (f *File) Offset(pos LineCol) uint32 {
	size := f.size()
	if pos.Line == 0 {
		return 0
	}
	start := f.lineStart(pos.Line)
	if start >= size {
		return size
	}
	end := f.lineEnd(pos.Line)
	off := start + max(pos.Col, 1) - 1
	return min(off, end)
}

// SpanAt returns a span of length bytes starting at pos, clipped to the line.
func (f *File) SpanAt(pos LineCol, length uint32) Span {
	start := f.Offset(pos)
	end := min(start+length, f.lineEnd(pos.Line))
	return Span{File: f.ID, Start: start, End: max(start, end)}
}

// GetLine возвращает строку с заданным номером (1-based) без терминатора.
// Если строки нет, возвращает пустую строку.
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 {
		return ""
	}
	start := f.lineStart(lineNum)
	if start >= f.size() {
		return ""
	}
	return string(f.Content[start:f.lineEnd(lineNum)])
}

// LineCount returns the number of lines; a final newline does not open a new
// line.
func (f *File) LineCount() int {
	n := len(f.LineIdx)
	if len(f.Content) > 0 && f.Content[len(f.Content)-1] != '\n' {
		n++
	}
	return n
}

// Text returns Content as a string.
func (f *File) Text() string {
	return string(f.Content)
}

// Encode returns text in the encoding the file was loaded with.
func (f *File) Encode(text []byte) ([]byte, error) {
	return Encode(text, f.Flags)
}

// FormatPath форматирует путь к файлу в зависимости от режима.
// mode: "absolute", "relative", "basename", "auto"
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := filepath.Abs(f.Path); err == nil {
			return normalizePath(abs)
		}
		return f.Path
	case "relative":
		if baseDir == "" {
			if wd, err := os.Getwd(); err == nil {
				baseDir = wd
			}
		}
		return RelativePath(f.Path, baseDir)
	case "basename":
		return filepath.Base(f.Path)
	case "auto":
		if len(f.Path) < 40 || !filepath.IsAbs(f.Path) {
			return f.Path
		}
		return filepath.Base(f.Path)
	default:
		return f.Path
	}
}

func (f *File) size() uint32 {
	n, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}
	return n
}

// lineStart returns the offset of the first byte of line (1-based).
func (f *File) lineStart(line uint32) uint32 {
	if line <= 1 {
		return 0
	}
	if int(line-2) >= len(f.LineIdx) {
		return f.size()
	}
	return f.LineIdx[line-2] + 1
}

// lineEnd returns the offset of the '\n' closing line, or the file size.
func (f *File) lineEnd(line uint32) uint32 {
	if line == 0 || int(line-1) >= len(f.LineIdx) {
		return f.size()
	}
	return f.LineIdx[line-1]
}

func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, bytes.Count(content, []byte{'\n'}))
	for i, b := range content {
		if b == '\n' {
			off, err := safecast.Conv[uint32](i)
			if err != nil {
				panic(fmt.Errorf("line offset overflow: %w", err))
			}
			out = append(out, off)
		}
	}
	return out
}

func toLineCol(lineIdx []uint32, off uint32) LineCol {
	// n = число \n строго до off
	n, _ := slices.BinarySearch(lineIdx, off)
	var start uint32
	if n > 0 {
		start = lineIdx[n-1] + 1
	}
	line, err := safecast.Conv[uint32](n + 1)
	if err != nil {
		panic(fmt.Errorf("line number overflow: %w", err))
	}
	return LineCol{Line: line, Col: off - start + 1}
}

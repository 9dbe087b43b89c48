package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags records how the bytes on disk were turned into Text.
	FileFlags uint8 // метаданные кодировки
)

const (
	// FileVirtual marks a file added from memory (stdin, tests).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM          // UTF-8 BOM снят при загрузке
	FileUTF16LE         // декодирован из UTF-16 little endian
	FileUTF16BE         // декодирован из UTF-16 big endian
	FileHasCRLF         // содержит \r\n; текст НЕ нормализуется
)

// File captures one loaded source. Content is UTF-8 text exactly as the
// formatter sees it: encoding marks are removed, line endings are not.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of '\n'
	Hash    [32]byte // blake3 of Content
	Flags   FileFlags
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based, bytes
}

package source

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decode turns raw file bytes into UTF-8 text. A UTF-8 byte order mark is
// removed; UTF-16 input (recognised by its BOM) is transcoded. Anything else
// is returned unchanged, invalid UTF-8 included: the formatter works on bytes.
func Decode(raw []byte) ([]byte, FileFlags, error) {
	var flags FileFlags
	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		return raw[len(bomUTF8):], FileHadBOM, nil
	case bytes.HasPrefix(raw, bomUTF16LE):
		flags = FileUTF16LE
	case bytes.HasPrefix(raw, bomUTF16BE):
		flags = FileUTF16BE
	default:
		return raw, 0, nil
	}

	text, _, err := transform.Bytes(utf16For(flags).NewDecoder(), raw)
	if err != nil {
		return nil, 0, fmt.Errorf("decode utf-16: %w", err)
	}
	return text, flags, nil
}

// Encode is the inverse of Decode: text is written back with the encoding
// marks recorded in flags, so an unchanged file round-trips byte for byte.
func Encode(text []byte, flags FileFlags) ([]byte, error) {
	switch {
	case flags&FileHadBOM != 0:
		out := make([]byte, 0, len(bomUTF8)+len(text))
		out = append(out, bomUTF8...)
		return append(out, text...), nil
	case flags&(FileUTF16LE|FileUTF16BE) != 0:
		out, _, err := transform.Bytes(utf16For(flags).NewEncoder(), text)
		if err != nil {
			return nil, fmt.Errorf("encode utf-16: %w", err)
		}
		return out, nil
	default:
		return text, nil
	}
}

func utf16For(flags FileFlags) encoding.Encoding {
	if flags&FileUTF16BE != 0 {
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	}
	return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)
}

package format

import (
	"bytes"

	"chplfmt/internal/lexer"
)

// lineEditor rewrites one line left to right. Literal spans reported by the
// scanner are copied through untouched; rule steps only ever see code bytes.
type lineEditor struct {
	src   string
	spans []lexer.Span
	next  int // index of the first span not yet copied
	pos   int
	out   []byte
}

func newLineEditor(line string) *lineEditor {
	return &lineEditor{
		src:   line,
		spans: lexer.Scan(line),
		out:   make([]byte, 0, len(line)+8),
	}
}

// run drives step over every code byte. step returns false when it did not
// consume anything, in which case the byte is copied as is.
func (e *lineEditor) run(step func(e *lineEditor) bool) string {
	for e.pos < len(e.src) {
		if sp, ok := e.spanAt(e.pos); ok {
			e.out = append(e.out, e.src[sp.Start:sp.End]...)
			e.pos = sp.End
			e.next++
			continue
		}
		if !step(e) {
			e.out = append(e.out, e.src[e.pos])
			e.pos++
		}
	}
	return string(e.out)
}

// spanAt returns the literal span starting exactly at off.
func (e *lineEditor) spanAt(off int) (lexer.Span, bool) {
	if e.next < len(e.spans) && e.spans[e.next].Start == off {
		return e.spans[e.next], true
	}
	return lexer.Span{}, false
}

// literalAt reports whether off is the first byte of a literal span.
func (e *lineEditor) literalAt(off int) bool {
	for _, sp := range e.spans[e.next:] {
		if sp.Start == off {
			return true
		}
		if sp.Start > off {
			break
		}
	}
	return false
}

func (e *lineEditor) commentAt(off int) bool {
	for _, sp := range e.spans[e.next:] {
		if sp.Start == off {
			return sp.Kind == lexer.KindComment
		}
		if sp.Start > off {
			break
		}
	}
	return false
}

func (e *lineEditor) byteAt(off int) byte {
	if off < 0 || off >= len(e.src) {
		return 0
	}
	return e.src[off]
}

// blanksFrom returns the offset of the first non-blank byte at or after off.
func (e *lineEditor) blanksFrom(off int) int {
	for off < len(e.src) && isBlank(e.src[off]) {
		off++
	}
	return off
}

func (e *lineEditor) write(s string) {
	e.out = append(e.out, s...)
}

// trimOut drops blanks at the end of the output, but never the indentation
// of an otherwise empty line.
func (e *lineEditor) trimOut() {
	trimmed := bytes.TrimRight(e.out, " \t")
	if len(trimmed) == 0 {
		return
	}
	e.out = trimmed
}

// lastCode returns the last non-blank output byte, or 0.
func (e *lineEditor) lastCode() byte {
	trimmed := bytes.TrimRight(e.out, " \t")
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[len(trimmed)-1]
}

// lastByte returns the last output byte, or 0.
func (e *lineEditor) lastByte() byte {
	if len(e.out) == 0 {
		return 0
	}
	return e.out[len(e.out)-1]
}

// trailingWord returns the identifier the output ends with, ignoring blanks
// when skipBlanks is set.
func (e *lineEditor) trailingWord(skipBlanks bool) string {
	buf := e.out
	if skipBlanks {
		buf = bytes.TrimRight(buf, " \t")
	}
	end := len(buf)
	start := end
	for start > 0 && isWordByte(buf[start-1]) {
		start--
	}
	return string(buf[start:end])
}

func isBlank(b byte) bool {
	return b == ' ' || b == '\t'
}

// isWordByte treats every non-ASCII byte as part of an identifier so UTF-8
// names are never split.
func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9') ||
		b >= 0x80
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

package lexer

// Kind tags a literal span.
type Kind uint8

const (
	// KindString marks a double-quoted string literal, quotes included.
	KindString Kind = iota + 1
	// KindComment marks a line comment from "//" to the end of the line.
	KindComment
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindComment:
		return "comment"
	default:
		return "unknown"
	}
}

// Span is a half-open byte range [Start, End) of a single line that lies
// inside a string literal or a line comment.
type Span struct {
	Start int
	End   int
	Kind  Kind
}

// Len returns the span length in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// Contains reports whether off falls inside the span.
func (s Span) Contains(off int) bool {
	return off >= s.Start && off < s.End
}

type state uint8

const (
	stateNormal state = iota
	stateString
)

// Scan returns the ordered, non-overlapping literal spans of one line.
// Strings and comments never continue past the end of the line: an
// unterminated string runs to the end, and a "//" outside a string ends the
// scan. Scan never panics, whatever bytes the line holds.
func Scan(line string) []Span {
	var spans []Span
	cur := newCursor(line)
	st := stateNormal
	start := 0

	for !cur.EOF() {
		switch st {
		case stateNormal:
			b0, b1, ok := cur.Peek2()
			if ok && b0 == '/' && b1 == '/' {
				spans = append(spans, Span{Start: cur.Off, End: len(line), Kind: KindComment})
				return spans
			}
			if cur.Peek() == '"' {
				start = cur.Off
				st = stateString
			}
			cur.Bump()

		case stateString:
			switch cur.Bump() {
			case '\\':
				// escape съедается парой, даже если это \"
				cur.Bump()
			case '"':
				spans = append(spans, Span{Start: start, End: cur.Off, Kind: KindString})
				st = stateNormal
			}
		}
	}

	if st == stateString {
		spans = append(spans, Span{Start: start, End: len(line), Kind: KindString})
	}
	return spans
}

// Mask returns line with every byte covered by spans replaced by a space.
// Byte offsets are preserved, so the result can be searched for code tokens
// without tripping over quoted or commented text.
func Mask(line string, spans []Span) string {
	if len(spans) == 0 {
		return line
	}
	buf := []byte(line)
	for _, sp := range spans {
		for i := sp.Start; i < sp.End && i < len(buf); i++ {
			buf[i] = ' '
		}
	}
	return string(buf)
}

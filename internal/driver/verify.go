package driver

import (
	"errors"
	"fmt"
	"strings"

	"chplfmt/internal/format"
	"chplfmt/internal/lexer"
)

var (
	// ErrNotIdempotent means formatting the output again changed it.
	ErrNotIdempotent = errors.New("formatter output is not stable")
	// ErrLiteralChanged means a string or comment differs after formatting.
	ErrLiteralChanged = errors.New("formatter changed a string or comment")
)

// Verify checks formatted (the formatter output for original) the way a
// round trip would: formatting it again must be a no-op, and every string
// and comment must survive in the same order. Layer 1 edits (tab expansion,
// trailing blanks) are applied to original before comparing literals.
func Verify(original, formatted []byte) error {
	again := format.Format(string(formatted))
	if again != string(formatted) {
		return fmt.Errorf("%w: first difference on line %d", ErrNotIdempotent, firstDiffLine(string(formatted), again))
	}

	want := literals(format.NormalizeWhitespace(string(original)))
	got := literals(string(formatted))
	for i := range min(len(want), len(got)) {
		if want[i] != got[i] {
			return fmt.Errorf("%w: %q became %q", ErrLiteralChanged, want[i], got[i])
		}
	}
	if len(want) != len(got) {
		return fmt.Errorf("%w: %d literals before, %d after", ErrLiteralChanged, len(want), len(got))
	}
	return nil
}

func literals(text string) []string {
	var out []string
	for line := range strings.SplitSeq(text, "\n") {
		for _, sp := range lexer.Scan(line) {
			out = append(out, line[sp.Start:sp.End])
		}
	}
	return out
}

func firstDiffLine(a, b string) int {
	al := strings.Split(a, "\n")
	bl := strings.Split(b, "\n")
	for i := range min(len(al), len(bl)) {
		if al[i] != bl[i] {
			return i + 1
		}
	}
	return min(len(al), len(bl)) + 1
}

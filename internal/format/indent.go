package format

import (
	"strings"

	"chplfmt/internal/lexer"
)

// Reindent is the third formatting layer. It recomputes the leading
// indentation of every line from a running brace depth. Braces inside string
// literals and comments do not count. A line starting with closing braces is
// dedented before it is emitted; opening braces only affect later lines.
// The depth never drops below zero, so excess closers are absorbed.
func Reindent(text string) string {
	lines := splitLines(text)
	depth := 0
	for i, line := range lines {
		content := strings.TrimLeft(line, " \t")
		if content == "" {
			continue
		}

		opens, closes, leading := countBraces(content)
		depth = max(depth-leading, 0)
		lines[i] = strings.Repeat(" ", depth*IndentWidth) + content

		if net := opens - (closes - leading); net > 0 {
			depth += net
		}
	}
	return joinLines(lines)
}

// countBraces counts code braces of a trimmed line. leading is the number of
// closing braces before any other code byte; blanks between them are allowed.
func countBraces(content string) (opens, closes, leading int) {
	for i := 0; i < len(content); i++ {
		if b := content[i]; b == '}' {
			leading++
		} else if !isBlank(b) {
			break
		}
	}

	masked := lexer.Mask(content, lexer.Scan(content))
	opens = strings.Count(masked, "{")
	closes = strings.Count(masked, "}")
	return opens, closes, leading
}

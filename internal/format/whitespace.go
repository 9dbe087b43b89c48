package format

import "strings"

// IndentWidth is the number of spaces per nesting level. Tabs expand to the
// same width.
const IndentWidth = 2

var tabExpansion = strings.Repeat(" ", IndentWidth)

// NormalizeWhitespace is the first formatting layer. It unifies line endings
// to "\n", expands every tab to two spaces, strips trailing blanks and makes
// the text end with exactly one newline. Text holding nothing but whitespace,
// Unicode spaces included, becomes the empty string.
func NormalizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\t", tabExpansion)

	// \f, \v и U+00A0 тоже пробельные: такой текст пуст
	if strings.TrimSpace(text) == "" {
		return ""
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}

	// хвостовые пустые строки из Split не нужны: финальный \n добавляем сами
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n") + "\n"
}

// splitLines splits normalized text into lines without terminators. The
// trailing newline of normalized text does not produce an extra empty line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

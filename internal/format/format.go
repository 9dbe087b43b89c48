package format

// Format runs the three layers over text: whitespace normalization, token
// spacing and brace indentation. It accepts any input, including invalid or
// unbalanced code, and Format(Format(t)) == Format(t) for every t.
func Format(text string) string {
	normalized := NormalizeWhitespace(text)
	if normalized == "" {
		return ""
	}
	return Reindent(ApplySpacing(normalized))
}

// Bytes is Format for byte slices.
func Bytes(src []byte) []byte {
	return []byte(Format(string(src)))
}

// Changed reports whether formatting src would modify it.
func Changed(src []byte) bool {
	return string(src) != Format(string(src))
}

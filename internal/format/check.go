package format

import (
	"fmt"
	"strings"
)

// IssueKind classifies a formatting problem found by Check.
type IssueKind uint8

const (
	IssueTrailingWhitespace IssueKind = iota + 1
	IssueMissingFinalNewline
	IssueTabCharacter
	IssueCarriageReturn
)

func (k IssueKind) String() string {
	switch k {
	case IssueTrailingWhitespace:
		return "trailing-whitespace"
	case IssueMissingFinalNewline:
		return "missing-final-newline"
	case IssueTabCharacter:
		return "tab-character"
	case IssueCarriageReturn:
		return "carriage-return"
	default:
		return "unknown"
	}
}

// Issue is a single problem reported by Check. Line and Column are 1-based;
// Column points at the first offending byte. For a missing final newline
// they point just past the last byte of the text.
type Issue struct {
	Line    int
	Column  int
	Kind    IssueKind
	Message string
}

// String renders the issue for CheckFormatting. A missing final newline is a
// whole-file issue and carries no line prefix.
func (i Issue) String() string {
	if i.Kind == IssueMissingFinalNewline {
		return i.Message
	}
	return fmt.Sprintf("Line %d: %s", i.Line, i.Message)
}

// Check inspects text as written, without formatting it, and reports
// trailing whitespace, tab characters, carriage returns and a missing final
// newline. Issues are ordered by line; Check never modifies its input.
func Check(text string) []Issue {
	if text == "" {
		return nil
	}

	var issues []Issue
	lines := strings.Split(text, "\n")
	last := len(lines) - 1
	for idx, line := range lines {
		if idx == last && line == "" {
			break
		}
		lineNo := idx + 1

		body := strings.TrimSuffix(line, "\r")
		if cr := strings.IndexByte(line, '\r'); cr >= 0 {
			issues = append(issues, Issue{
				Line:    lineNo,
				Column:  cr + 1,
				Kind:    IssueCarriageReturn,
				Message: "Carriage return line ending",
			})
		}
		if trimmed := strings.TrimRight(body, " \t"); len(trimmed) < len(body) {
			issues = append(issues, Issue{
				Line:    lineNo,
				Column:  len(trimmed) + 1,
				Kind:    IssueTrailingWhitespace,
				Message: "Trailing whitespace",
			})
		}
		if tab := strings.IndexByte(body, '\t'); tab >= 0 {
			issues = append(issues, Issue{
				Line:    lineNo,
				Column:  tab + 1,
				Kind:    IssueTabCharacter,
				Message: "Contains tab character",
			})
		}
	}

	if !strings.HasSuffix(text, "\n") {
		issues = append(issues, Issue{
			Line:    len(lines),
			Column:  len(lines[last]) + 1,
			Kind:    IssueMissingFinalNewline,
			Message: "Missing final newline",
		})
	}
	return issues
}

// CheckFormatting returns the issues of Check as human-readable strings.
func CheckFormatting(text string) []string {
	issues := Check(text)
	out := make([]string, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.String())
	}
	return out
}

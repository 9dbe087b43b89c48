package driver

import (
	"fmt"

	"fortio.org/safecast"

	"chplfmt/internal/diag"
	"chplfmt/internal/format"
	"chplfmt/internal/source"
)

var issueCodes = map[format.IssueKind]diag.Code{
	format.IssueTrailingWhitespace:  diag.FmtTrailingWhitespace,
	format.IssueMissingFinalNewline: diag.FmtMissingFinalNewline,
	format.IssueTabCharacter:        diag.FmtTabCharacter,
	format.IssueCarriageReturn:      diag.FmtCarriageReturn,
}

// reportIssue turns a checker issue into a warning anchored in file, with a
// one-edit fix that removes the problem.
func reportIssue(r diag.Reporter, file *source.File, issue format.Issue) {
	span := issueSpan(file, issue.Line, issue.Column)
	code, ok := issueCodes[issue.Kind]
	if !ok {
		code = diag.UnknownCode
	}

	var (
		title string
		edit  = diag.FixEdit{Span: span}
	)
	switch issue.Kind {
	case format.IssueTrailingWhitespace:
		edit.Span.End = blankRunEnd(file.Content, span.Start)
		title = "remove trailing whitespace"
	case format.IssueTabCharacter:
		edit.Span.End = min(span.Start+1, uint32(len(file.Content)))
		edit.NewText = "  "
		title = "expand tab"
	case format.IssueCarriageReturn:
		edit.Span.End = min(span.Start+1, uint32(len(file.Content)))
		title = "use LF line ending"
	case format.IssueMissingFinalNewline:
		edit.NewText = "\n"
		title = "add final newline"
	}

	b := diag.ReportWarning(r, code, edit.Span, issue.Message)
	if title != "" {
		b = b.WithFix(title, edit)
	}
	b.Emit()
}

// reportUnformatted flags a file the formatter would rewrite. The note points
// at the first line that changes.
func reportUnformatted(r diag.Reporter, file *source.File, formatted string) {
	whole := source.Span{File: file.ID}
	line := firstChangedLine(file.Text(), formatted)
	at := issueSpan(file, line, 1)
	diag.ReportWarning(r, diag.FmtNeedsFormatting, whole, "File is not formatted; run chplfmt fmt").
		WithNote(at, fmt.Sprintf("first change at line %d", line)).
		Emit()
}

// firstChangedLine returns the 1-based line where a and b first differ.
func firstChangedLine(a, b string) int {
	line := 1
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return line
		}
		if a[i] == '\n' {
			line++
		}
	}
	return line
}

func issueSpan(file *source.File, line, col int) source.Span {
	l, errLine := safecast.Conv[uint32](line)
	c, errCol := safecast.Conv[uint32](col)
	if errLine != nil || errCol != nil {
		l, c = 1, 1
	}
	start := file.Offset(source.LineCol{Line: l, Col: c})
	return source.Span{File: file.ID, Start: start, End: start}
}

func blankRunEnd(content []byte, off uint32) uint32 {
	end := off
	for int(end) < len(content) && (content[end] == ' ' || content[end] == '\t') {
		end++
	}
	return end
}

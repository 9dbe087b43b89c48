// Package diag defines the diagnostic model used to report formatting issues
// and I/O failures.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning or Error (severity.go). Formatting issues are
//     warnings; failures to read or write a file are errors.
//   - Code – compact numeric identifier with a stable string form (FMT1001).
//   - Message – human oriented text, one line.
//   - Primary – the source.Span of the issue; zero-width at end of file for a
//     missing final newline.
//   - Notes and Fixes – optional context and text edits.
//
// # Emitting diagnostics
//
// Producers use a Reporter; BagReporter stores into a Bag that enforces the
// per-file limit from --max-diagnostics and keeps count of what was dropped.
//
// Package diag does no rendering beyond the short one-line form; the pretty
// and JSON renderers live in internal/diagfmt.
package diag

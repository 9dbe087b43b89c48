package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"chplfmt/internal/diag"
	"chplfmt/internal/source"
)

type palette struct {
	err, warn, info *color.Color
	note, path      *color.Color
	gutter, caret   *color.Color
	add, del        *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan),
		note:   mk(color.FgBlue, color.Bold),
		path:   mk(color.Bold),
		gutter: mk(color.FgBlue),
		caret:  mk(color.FgGreen, color.Bold),
		add:    mk(color.FgGreen),
		del:    mk(color.FgRed),
	}
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes и Fixes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	items := bag.Items()
	for i := range items {
		if i > 0 {
			fmt.Fprintln(w)
		}
		prettyOne(w, &items[i], fs, opts, p)
	}
	if n := bag.Dropped(); n > 0 {
		fmt.Fprintf(w, "\n... %d more diagnostics not shown\n", n)
	}
}

func prettyOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) {
	file := fs.Get(d.Primary.File)
	start, _ := fs.Resolve(d.Primary)

	fmt.Fprintf(w, "%s: %s %s: %s\n",
		p.path.Sprint(location(fs, d.Primary, opts.PathMode)),
		p.severity(d.Severity).Sprint(d.Severity.String()),
		d.Code.ID(),
		d.Message,
	)

	printContext(w, file, d.Primary, start, opts.Context, p)

	if opts.ShowNotes {
		for _, note := range d.Notes {
			fmt.Fprintf(w, "  %s %s %s\n", p.note.Sprint("note:"), location(fs, note.Span, opts.PathMode), note.Msg)
		}
	}

	if opts.ShowFixes {
		for i, fix := range d.Fixes {
			fmt.Fprintf(w, "  %s %s\n", p.note.Sprintf("fix #%d:", i+1), fix.Title)
			for _, edit := range fix.Edits {
				fmt.Fprintf(w, "    edit %s apply=%s\n", location(fs, edit.Span, opts.PathMode), strconv.Quote(edit.NewText))
				if !opts.ShowPreview {
					continue
				}
				preview, err := buildFixEditPreview(fs, edit)
				if err != nil {
					fmt.Fprintf(w, "    preview unavailable: %v\n", err)
					continue
				}
				fmt.Fprintln(w, "    preview:")
				for _, line := range preview.before {
					fmt.Fprintf(w, "      %s\n", p.del.Sprint("- "+line))
				}
				for _, line := range preview.after {
					fmt.Fprintf(w, "      %s\n", p.add.Sprint("+ "+line))
				}
			}
		}
	}
}

// printContext prints the primary line with up to ctx lines around it and a
// caret line under the span.
func printContext(w io.Writer, file *source.File, span source.Span, start source.LineCol, ctx int8, p palette) {
	if ctx < 0 {
		return
	}
	c := uint32(ctx)
	first := max(start.Line, c+1) - c
	last := start.Line + c
	if total := uint32(file.LineCount()); last > total {
		last = max(total, start.Line)
	}
	width := len(strconv.FormatUint(uint64(last), 10))

	for ln := first; ln <= last; ln++ {
		line := file.GetLine(ln)
		fmt.Fprintf(w, "%s %s\n", p.gutter.Sprintf("%*d |", width, ln), displayLine(line))
		if ln != start.Line {
			continue
		}
		col := min(int(start.Col-1), len(line))
		pad := runewidth.StringWidth(displayLine(line[:col]))
		end := min(int(span.End-span.Start)+col, len(line))
		underline := max(runewidth.StringWidth(displayLine(line[col:end])), 1)
		marker := "^" + strings.Repeat("~", underline-1)
		fmt.Fprintf(w, "%s %s%s\n", p.gutter.Sprintf("%*s |", width, ""), strings.Repeat(" ", pad), p.caret.Sprint(marker))
	}
}

// displayLine makes a source line printable: tabs take two columns, the way
// the formatter expands them, and carriage returns are dropped.
func displayLine(line string) string {
	line = strings.ReplaceAll(line, "\t", "  ")
	return strings.ReplaceAll(line, "\r", "")
}

func location(fs *source.FileSet, span source.Span, mode PathMode) string {
	file := fs.Get(span.File)
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", formatPath(file, fs, mode), start.Line, start.Col)
}

func formatPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	switch mode {
	case PathModeRelative:
		return f.FormatPath("relative", fs.BaseDir())
	default:
		return f.FormatPath(mode.String(), "")
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"chplfmt/internal/diag"
	"chplfmt/internal/diagfmt"
	"chplfmt/internal/driver"
	"chplfmt/internal/source"
	"chplfmt/internal/trace"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <path> [path...]",
	Short: "Report whitespace issues as diagnostics",
	Long:  `check lists trailing whitespace, tab characters, carriage returns and missing final newlines without changing any file`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|short|json)")
	checkCmd.Flags().Bool("strict", false, "also report files the formatter would change")
	checkCmd.Flags().Bool("full-path", false, "print absolute file paths")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes")
	checkCmd.Flags().Bool("suggest", false, "show suggested fixes")
	checkCmd.Flags().Bool("preview", false, "show previews of suggested fixes")
}

type checkFlags struct {
	format    string
	strict    bool
	fullPath  bool
	withNotes bool
	suggest   bool
	preview   bool
	color     bool
}

func readCheckFlags(cmd *cobra.Command) (checkFlags, error) {
	var f checkFlags
	var err error
	if f.format, err = cmd.Flags().GetString("format"); err != nil {
		return f, err
	}
	if f.strict, err = cmd.Flags().GetBool("strict"); err != nil {
		return f, err
	}
	if f.fullPath, err = cmd.Flags().GetBool("full-path"); err != nil {
		return f, err
	}
	if f.withNotes, err = cmd.Flags().GetBool("with-notes"); err != nil {
		return f, err
	}
	if f.suggest, err = cmd.Flags().GetBool("suggest"); err != nil {
		return f, err
	}
	if f.preview, err = cmd.Flags().GetBool("preview"); err != nil {
		return f, err
	}
	switch f.format {
	case "pretty", "short", "json":
	default:
		return f, fmt.Errorf("check: unknown format %q", f.format)
	}
	return f, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	flags, err := readCheckFlags(cmd)
	if err != nil {
		return err
	}
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	if flags.color, err = resolveColor(colorFlag, isTerminal(os.Stdout)); err != nil {
		return err
	}

	settings, err := loadRunSettings(cmd, args)
	if err != nil {
		return err
	}

	ctx, span := trace.BeginCtx(cmd.Context(), trace.ScopeDriver, "check")
	files, err := driver.Collect(ctx, args, &settings.cfg, settings.timer)
	if err != nil {
		span.Fail(err)
		return err
	}
	opts := driver.CheckOptions{
		MaxDiagnostics: settings.maxDiagnostics,
		Strict:         flags.strict,
		Jobs:           settings.jobs,
		Config:         &settings.cfg,
		Timer:          settings.timer,
	}
	var (
		fileSet *source.FileSet
		results []driver.CheckResult
	)
	if flags.format == "pretty" && shouldUseTUI(settings.ui, len(files)) {
		fileSet, results, err = runCheckWithUI(ctx, "checking", files, opts)
	} else {
		fileSet, results, err = driver.CheckFiles(ctx, files, opts)
	}
	span.Fail(err)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch flags.format {
	case "json":
		if err := renderCheckJSON(out, fileSet, results, flags, settings); err != nil {
			return err
		}
	case "short":
		renderCheckShort(out, fileSet, results, flags)
	default:
		renderCheckPretty(out, fileSet, results, flags)
	}
	if flags.format != "json" {
		for _, r := range results {
			if r.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "check: %s: %v\n", r.Path, r.Err)
			}
		}
		settings.printTimings(cmd)
	}

	flagged := countFlagged(results)
	if flagged > 0 {
		return fmt.Errorf("check: %d file(s) need attention", flagged)
	}
	return nil
}

func countFlagged(results []driver.CheckResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil || r.Bag.Len() > 0 || r.Bag.Dropped() > 0 {
			n++
		}
	}
	return n
}

func (f checkFlags) pathMode() diagfmt.PathMode {
	if f.fullPath {
		return diagfmt.PathModeAbsolute
	}
	return diagfmt.PathModeAuto
}

func renderCheckPretty(out io.Writer, fileSet *source.FileSet, results []driver.CheckResult, flags checkFlags) {
	showFixes := flags.suggest || flags.preview
	opts := diagfmt.PrettyOpts{
		Color:       flags.color,
		Context:     2,
		PathMode:    flags.pathMode(),
		ShowNotes:   flags.withNotes,
		ShowFixes:   showFixes,
		ShowPreview: flags.preview,
	}
	printed := false
	for _, r := range results {
		if r.Err != nil || r.Bag.Len() == 0 {
			continue
		}
		if printed {
			fmt.Fprintln(out)
		}
		r.Bag.Sort()
		diagfmt.Pretty(out, r.Bag, fileSet, opts)
		printed = true
	}
}

func renderCheckShort(out io.Writer, fileSet *source.FileSet, results []driver.CheckResult, flags checkFlags) {
	for _, r := range results {
		if r.Err != nil || r.Bag.Len() == 0 {
			continue
		}
		r.Bag.Sort()
		if text := diag.FormatShortDiagnostics(r.Bag.Items(), fileSet, flags.withNotes); text != "" {
			fmt.Fprintln(out, text)
		}
	}
}

type checkJSONOutput struct {
	Files   map[string]diagfmt.DiagnosticsOutput `json:"files"`
	Errors  map[string]string                    `json:"errors,omitempty"`
	Timings *driver.TimingPayload                `json:"timings,omitempty"`
}

func renderCheckJSON(out io.Writer, fileSet *source.FileSet, results []driver.CheckResult, flags checkFlags, settings *runSettings) error {
	showFixes := flags.suggest || flags.preview
	opts := diagfmt.JSONOpts{
		IncludePositions: true,
		PathMode:         flags.pathMode(),
		IncludeNotes:     flags.withNotes,
		IncludeFixes:     showFixes,
		IncludePreviews:  flags.preview,
	}

	payload := checkJSONOutput{Files: make(map[string]diagfmt.DiagnosticsOutput, len(results))}
	for _, r := range results {
		if r.Err != nil {
			if payload.Errors == nil {
				payload.Errors = make(map[string]string)
			}
			payload.Errors[r.Path] = r.Err.Error()
			continue
		}
		r.Bag.Sort()
		payload.Files[r.Path] = diagfmt.BuildDiagnosticsOutput(r.Bag, fileSet, opts)
	}
	if settings != nil && settings.timer != nil {
		payload.Timings = driver.NewTimingPayload("check", "", settings.timer.Report())
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

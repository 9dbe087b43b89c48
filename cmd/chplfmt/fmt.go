package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"chplfmt/internal/driver"
	"chplfmt/internal/trace"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [flags] <path> [path...]",
	Short: "Format Chapel source files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFmt,
}

func init() {
	fmtCmd.Flags().Bool("check", false, "check if files are properly formatted")
	fmtCmd.Flags().String("format", "text", "output format (text|json)")
	fmtCmd.Flags().Bool("stdout", false, "print formatted code to stdout instead of rewriting files")
	fmtCmd.Flags().Bool("verify", false, "re-check idempotence and literal preservation of every result")
}

func runFmt(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	check, err := cmd.Flags().GetBool("check")
	if err != nil {
		return err
	}
	outputFormat, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	writeToStdout, err := cmd.Flags().GetBool("stdout")
	if err != nil {
		return err
	}
	verify, err := cmd.Flags().GetBool("verify")
	if err != nil {
		return err
	}

	if writeToStdout && check {
		return fmt.Errorf("fmt: --stdout cannot be used with --check")
	}
	switch outputFormat {
	case "text":
	case "json":
		if writeToStdout {
			return fmt.Errorf("fmt: --stdout is only supported with text output")
		}
	default:
		return fmt.Errorf("fmt: unsupported output format %q", outputFormat)
	}

	settings, err := loadRunSettings(cmd, args)
	if err != nil {
		return err
	}

	ctx, span := trace.BeginCtx(cmd.Context(), trace.ScopeDriver, "fmt")
	results, err := formatWithSettings(ctx, args, settings, driver.FormatOptions{
		Check:  check,
		Stdout: writeToStdout,
		Verify: verify,
	}, outputFormat == "text" && !writeToStdout)
	span.Fail(err)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	var summary fmtSummary
	switch {
	case outputFormat == "json":
		summary = summarizeFmt(results)
		if err := renderFmtJSON(out, results, check, settings); err != nil {
			return err
		}
	case writeToStdout:
		summary = renderFmtStdout(out, errOut, results)
	default:
		summary = renderFmtText(out, errOut, results, check, settings.quiet)
	}
	if outputFormat == "text" {
		settings.printTimings(cmd)
	}

	if summary.errors > 0 {
		return fmt.Errorf("fmt: failed to format %d file(s)", summary.errors)
	}
	if check && summary.changed > 0 {
		return fmt.Errorf("fmt: formatting changes required in %d file(s)", summary.changed)
	}
	return nil
}

// formatWithSettings collects files and formats them, through the progress
// UI when allowUI is set and the run qualifies.
func formatWithSettings(ctx context.Context, args []string, settings *runSettings, opts driver.FormatOptions, allowUI bool) ([]driver.FormatResult, error) {
	files, err := driver.Collect(ctx, args, &settings.cfg, settings.timer)
	if err != nil {
		return nil, err
	}
	opts.Jobs = settings.jobs
	opts.Config = &settings.cfg
	opts.Cache = settings.cache
	opts.Timer = settings.timer

	if allowUI && shouldUseTUI(settings.ui, len(files)) {
		title := "formatting"
		if opts.Check {
			title = "checking format"
		}
		return runFormatWithUI(ctx, title, files, opts)
	}
	return driver.FormatFiles(ctx, files, opts)
}

type fmtSummary struct {
	changed int
	errors  int
}

func summarizeFmt(results []driver.FormatResult) fmtSummary {
	var s fmtSummary
	for _, res := range results {
		switch {
		case res.Err != nil:
			s.errors++
		case res.Changed:
			s.changed++
		}
	}
	return s
}

func renderFmtStdout(out, errOut io.Writer, results []driver.FormatResult) fmtSummary {
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(errOut, "fmt: %s: %v\n", res.Path, res.Err)
			continue
		}
		_, _ = out.Write(res.Formatted)
	}
	return summarizeFmt(results)
}

func renderFmtText(out, errOut io.Writer, results []driver.FormatResult, check, quiet bool) fmtSummary {
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(errOut, "fmt: %s: %v\n", res.Path, res.Err)
			continue
		}
		if !res.Changed || quiet {
			continue
		}
		if check {
			fmt.Fprintln(out, res.Path)
		} else {
			fmt.Fprintf(out, "reformatted %s\n", res.Path)
		}
	}
	return summarizeFmt(results)
}

type fmtJSONResult struct {
	Path    string `json:"path"`
	Changed bool   `json:"changed"`
	Cached  bool   `json:"cached,omitempty"`
	Error   string `json:"error,omitempty"`
}

type fmtJSONOutput struct {
	Check   bool                  `json:"check"`
	Files   []fmtJSONResult       `json:"files"`
	Timings *driver.TimingPayload `json:"timings,omitempty"`
}

func renderFmtJSON(out io.Writer, results []driver.FormatResult, check bool, settings *runSettings) error {
	payload := fmtJSONOutput{Check: check, Files: make([]fmtJSONResult, 0, len(results))}
	for _, res := range results {
		jr := fmtJSONResult{Path: res.Path, Changed: res.Changed, Cached: res.Cached}
		if res.Err != nil {
			jr.Error = res.Err.Error()
		}
		payload.Files = append(payload.Files, jr)
	}
	if settings != nil && settings.timer != nil {
		payload.Timings = driver.NewTimingPayload("fmt", "", settings.timer.Report())
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

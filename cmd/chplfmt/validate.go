package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"chplfmt/internal/driver"
)

var validateCmd = &cobra.Command{
	Use:   "validate [flags] <file> [file...]",
	Short: "Print a pass/fail verdict per file",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().Bool("fix", false, "write the formatted text back")
	validateCmd.Flags().Bool("json", false, "print results as JSON")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	fix, err := cmd.Flags().GetBool("fix")
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	validator := driver.Validator{Config: &cfg}
	results := make([]driver.ValidationResult, 0, len(args))
	for _, path := range args {
		if !validator.CanHandle(path) && !quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s does not have a %s source extension\n", path, validator.Name())
		}
		results = append(results, validator.Validate(cmd.Context(), path, fix))
	}

	if asJSON {
		if err := renderValidateJSON(cmd.OutOrStdout(), results); err != nil {
			return err
		}
	} else {
		renderValidateText(cmd.OutOrStdout(), results, quiet)
	}

	failed := 0
	for i := range results {
		if !results[i].Success {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("validate: %d of %d file(s) failed", failed, len(results))
	}
	return nil
}

func renderValidateText(out io.Writer, results []driver.ValidationResult, quiet bool) {
	for i := range results {
		res := &results[i]
		status := "ok"
		switch {
		case !res.Success:
			status = "FAIL"
		case res.Fixed:
			status = "fixed"
		}
		if quiet && res.Success && !res.Fixed {
			continue
		}
		fmt.Fprintf(out, "%-5s %s (%d ms)\n", status, res.Filepath, res.DurationMS)
		for _, msg := range res.Errors {
			fmt.Fprintf(out, "  error: %s\n", msg)
		}
		for _, msg := range res.Warnings {
			fmt.Fprintf(out, "  warning: %s\n", msg)
		}
	}
}

func renderValidateJSON(out io.Writer, results []driver.ValidationResult) error {
	payload := make([]map[string]any, 0, len(results))
	for i := range results {
		payload = append(payload, results[i].ToMap())
	}
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"chplfmt/internal/config"
	"chplfmt/internal/format"
	"chplfmt/internal/source"
	"chplfmt/internal/trace"
)

// ToolName identifies this formatter in validation reports.
const ToolName = "chapel"

// ValidationResult is the per-file verdict handed to a validation
// orchestrator.
type ValidationResult struct {
	Tool       string   `json:"tool"`
	Filepath   string   `json:"filepath"`
	Success    bool     `json:"success"`
	Messages   []string `json:"messages"`
	Errors     []string `json:"errors"`
	Warnings   []string `json:"warnings"`
	Fixed      bool     `json:"fixed"`
	DurationMS int64    `json:"duration_ms"`
}

// ErrorCount returns len(Errors).
func (r *ValidationResult) ErrorCount() int { return len(r.Errors) }

// WarningCount returns len(Warnings).
func (r *ValidationResult) WarningCount() int { return len(r.Warnings) }

// ToMap returns the result keyed by its JSON field names. Nil lists come
// back empty.
func (r *ValidationResult) ToMap() map[string]any {
	orEmpty := func(s []string) []string {
		if s == nil {
			return []string{}
		}
		return s
	}
	return map[string]any{
		"tool":        r.Tool,
		"filepath":    r.Filepath,
		"success":     r.Success,
		"messages":    orEmpty(r.Messages),
		"errors":      orEmpty(r.Errors),
		"warnings":    orEmpty(r.Warnings),
		"fixed":       r.Fixed,
		"duration_ms": r.DurationMS,
	}
}

// Validator adapts the formatter to the orchestrator contract.
type Validator struct {
	Config *config.Config
}

// Name returns ToolName.
func (Validator) Name() string { return ToolName }

// Extensions returns the handled file extensions.
func (v Validator) Extensions() []string {
	if v.Config != nil && len(v.Config.Format.Extensions) > 0 {
		return v.Config.Format.Extensions
	}
	return []string{config.DefaultExtension}
}

// CanHandle reports whether path has one of Extensions.
func (v Validator) CanHandle(path string) bool {
	ext := filepath.Ext(path)
	for _, want := range v.Extensions() {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

// Validate runs ValidateFile within ctx's tracer.
func (v Validator) Validate(ctx context.Context, path string, fix bool) ValidationResult {
	_, span := trace.BeginCtx(ctx, trace.ScopeFile, "validate:"+path)
	res := ValidateFile(path, fix)
	if !res.Success && len(res.Errors) > 0 {
		span.Fail(errors.New(res.Errors[0]))
	} else {
		span.End(fmt.Sprintf("success=%t fixed=%t", res.Success, res.Fixed))
	}
	return res
}

// ValidateFile checks one file. A file passes when formatting leaves it
// unchanged. Without fix, the checker issues become errors and a note that
// the file needs formatting is added. With fix, the formatted text is written
// back and the result succeeds with Fixed set when something changed.
// ValidateFile never panics and reports I/O failures in Errors.
func ValidateFile(path string, fix bool) (res ValidationResult) {
	started := time.Now()
	res = ValidationResult{Tool: ToolName, Filepath: path}
	defer func() {
		res.DurationMS = time.Since(started).Milliseconds()
	}()

	fileSet := source.NewFileSet()
	id, err := fileSet.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			res.Errors = append(res.Errors, fmt.Sprintf("File not found: %s", path))
		} else {
			res.Errors = append(res.Errors, fmt.Sprintf("Failed to read %s: %v", path, err))
		}
		return res
	}
	file := fileSet.Get(id)
	text := file.Text()
	formatted := format.Format(text)

	if formatted == text {
		res.Success = true
		res.Messages = append(res.Messages, "Code is properly formatted")
		return res
	}

	issues := format.CheckFormatting(text)
	if !fix {
		res.Errors = append(res.Errors, issues...)
		res.Errors = append(res.Errors, "Code needs formatting")
		return res
	}

	out, err := file.Encode([]byte(formatted))
	if err == nil {
		err = writeFileAtomic(path, out)
	}
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("Failed to write %s: %v", path, err))
		return res
	}
	res.Success = true
	res.Fixed = true
	res.Warnings = append(res.Warnings, issues...)
	res.Messages = append(res.Messages, "Code formatted")
	return res
}

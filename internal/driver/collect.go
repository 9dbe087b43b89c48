package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"chplfmt/internal/config"
	"chplfmt/internal/observ"
	"chplfmt/internal/trace"
)

// ErrNoSourceFiles is returned when the given paths contain no source files.
var ErrNoSourceFiles = errors.New("no source files found")

// Collect runs CollectFiles as the "collect" phase: it records a timer phase
// when timer is non-nil and a pass span on the context tracer.
func Collect(ctx context.Context, paths []string, cfg *config.Config, timer *observ.Timer) ([]string, error) {
	var endCollect func(string)
	if timer != nil {
		endCollect = timer.Track("collect")
	}
	_, span := trace.BeginCtx(ctx, trace.ScopePass, "collect")
	files, err := CollectFiles(ctx, paths, cfg)
	span.WithExtra("files", fmt.Sprint(len(files))).Fail(err)
	if endCollect != nil {
		endCollect(fmt.Sprintf("%d files", len(files)))
	}
	return files, err
}

// CollectFiles expands paths into a sorted, deduplicated list of source
// files. Directories are walked recursively; files and directories matching
// an exclude pattern are skipped. Files named explicitly are kept when they
// have a source extension, even if excluded.
func CollectFiles(ctx context.Context, paths []string, cfg *config.Config) ([]string, error) {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}

	var files []string
	seen := make(map[string]struct{})
	addFile := func(path string) {
		path = filepath.Clean(path)
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if cfg.HasSourceExt(p) {
				addFile(p)
			}
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && cfg.Excluded(path) {
					return filepath.SkipDir
				}
				return nil
			}
			if cfg.HasSourceExt(path) && !cfg.Excluded(path) {
				addFile(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

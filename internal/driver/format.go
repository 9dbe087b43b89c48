package driver

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"chplfmt/internal/config"
	"chplfmt/internal/format"
	"chplfmt/internal/observ"
	"chplfmt/internal/source"
	"chplfmt/internal/trace"
)

// FormatOptions configures code formatting.
type FormatOptions struct {
	Check    bool           // report changes without writing
	Stdout   bool           // return formatted text instead of writing
	Verify   bool           // re-run the formatter on its output and compare literals
	Jobs     int            // parallel workers, <= 0 means GOMAXPROCS
	Config   *config.Config // nil means config.Default()
	Cache    *Cache         // nil disables caching
	Progress ProgressSink
	Timer    *observ.Timer
}

// FormatResult captures the result of formatting a single file.
type FormatResult struct {
	Path      string
	Changed   bool
	Cached    bool // answer came from the cache
	Err       error
	Formatted []byte
}

// FormatPaths formats provided files or directories (recursively collecting
// source files). When opts.Check is true, files are not modified; Changed
// indicates whether formatting would update the file contents. When
// opts.Stdout is true, formatted content is returned in the results without
// touching files on disk.
func FormatPaths(ctx context.Context, paths []string, opts FormatOptions) ([]FormatResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	files, err := Collect(ctx, paths, opts.Config, opts.Timer)
	if err != nil {
		return nil, err
	}
	return FormatFiles(ctx, files, opts)
}

// FormatFiles formats an already collected file list. Per-file failures are
// reported in FormatResult.Err; the returned error is only set for an empty
// list or a cancelled context.
func FormatFiles(ctx context.Context, files []string, opts FormatOptions) ([]FormatResult, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("format: %w", ErrNoSourceFiles)
	}

	for _, path := range files {
		notify(opts.Progress, Event{Path: path, Stage: StageRead, Status: StatusQueued})
	}

	fileSet, fileIDs, loadErrors := loadFiles(ctx, files, opts.Timer)

	var endFormat func(string)
	if opts.Timer != nil {
		endFormat = opts.Timer.Track("format")
	}
	ctx, passSpan := trace.BeginCtx(ctx, trace.ScopePass, "format")

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]FormatResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobsOrDefault(opts.Jobs), len(files)))

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			if loadErr, failed := loadErrors[path]; failed {
				results[i] = FormatResult{Path: path, Err: loadErr}
				notify(opts.Progress, Event{Path: path, Stage: StageRead, Status: StatusError, Err: loadErr})
				return nil
			}
			results[i] = formatOne(gctx, fileSet.Get(fileIDs[path]), path, opts)
			return nil
		})
	}

	err := g.Wait()
	changed := 0
	for _, r := range results {
		if r.Changed {
			changed++
		}
	}
	passSpan.WithExtra("changed", fmt.Sprint(changed)).Fail(err)
	if endFormat != nil {
		endFormat(fmt.Sprintf("%d of %d changed", changed, len(files)))
	}
	return results, err
}

// loadFiles reads every file into one FileSet before the workers start;
// FileSet is not safe for concurrent Add.
func loadFiles(ctx context.Context, files []string, timer *observ.Timer) (*source.FileSet, map[string]source.FileID, map[string]error) {
	if timer != nil {
		defer timer.Track("load")("")
	}
	_, span := trace.BeginCtx(ctx, trace.ScopePass, "load")
	defer span.End("")

	fileSet := source.NewFileSet()
	fileIDs := make(map[string]source.FileID, len(files))
	loadErrors := make(map[string]error)
	for _, path := range files {
		id, err := fileSet.Load(path)
		if err != nil {
			loadErrors[path] = fmt.Errorf("failed to load file: %w", err)
			continue
		}
		fileIDs[path] = id
	}
	return fileSet, fileIDs, loadErrors
}

func formatOne(ctx context.Context, file *source.File, path string, opts FormatOptions) (result FormatResult) {
	result.Path = path
	started := time.Now()
	_, span := trace.BeginCtx(ctx, trace.ScopeFile, path)
	defer func() {
		status := StatusDone
		switch {
		case result.Err != nil:
			status = StatusError
		case result.Changed:
			status = StatusChanged
		}
		span.WithExtra("status", string(status)).Fail(result.Err)
		notify(opts.Progress, Event{Path: path, Stage: StageFormat, Status: status, Err: result.Err, Elapsed: time.Since(started)})
	}()
	notify(opts.Progress, Event{Path: path, Stage: StageFormat, Status: StatusWorking})

	key := CacheKey(file.Content)
	if entry, ok, err := opts.Cache.Get(key); err == nil && ok {
		if entry.Clean {
			result.Cached = true
			if opts.Stdout {
				result.Formatted = file.Content
			}
			return result
		}
		if opts.Check && !opts.Verify {
			result.Cached = true
			result.Changed = true
			return result
		}
	}

	formatted := format.Bytes(file.Content)
	result.Changed = !bytes.Equal(file.Content, formatted)
	if opts.Verify {
		if err := Verify(file.Content, formatted); err != nil {
			result.Err = fmt.Errorf("%s: %w", path, err)
			return result
		}
	}
	formattedKey := CacheKey(formatted)
	if err := opts.Cache.Put(key, &CacheEntry{Path: path, Clean: !result.Changed, FormattedHash: formattedKey}); err != nil {
		trace.Point(trace.FromContext(ctx), trace.ScopeFile, "cache-put-failed", err.Error(), span.ID())
	}

	switch {
	case opts.Check:
	case opts.Stdout:
		result.Formatted = formatted
	case result.Changed:
		notify(opts.Progress, Event{Path: path, Stage: StageWrite, Status: StatusWorking})
		out, err := file.Encode(formatted)
		if err == nil {
			err = writeFileAtomic(path, out)
		}
		if err != nil {
			result.Err = err
			return result
		}
		// отформатированный текст сразу считается чистым
		_ = opts.Cache.Put(formattedKey, &CacheEntry{Path: path, Clean: true, FormattedHash: formattedKey})
	}
	return result
}

func jobsOrDefault(jobs int) int {
	if jobs <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return jobs
}

package driver

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"chplfmt/internal/config"
	"chplfmt/internal/diag"
	"chplfmt/internal/format"
	"chplfmt/internal/observ"
	"chplfmt/internal/source"
	"chplfmt/internal/trace"
)

// CheckOptions configures a check run.
type CheckOptions struct {
	MaxDiagnostics int  // per-file bag limit, <= 0 means unlimited
	Strict         bool // also report files the formatter would change
	Jobs           int
	Config         *config.Config
	Progress       ProgressSink
	Timer          *observ.Timer
}

// CheckResult holds the diagnostics of one file. A file that could not be
// loaded has Err set, an empty Bag and no valid FileID.
type CheckResult struct {
	Path   string
	FileID source.FileID
	Bag    *diag.Bag
	Err    error
}

// CheckPaths collects source files under paths and runs the checker on each.
func CheckPaths(ctx context.Context, paths []string, opts CheckOptions) (*source.FileSet, []CheckResult, error) {
	files, err := Collect(ctx, paths, opts.Config, opts.Timer)
	if err != nil {
		return nil, nil, err
	}
	return CheckFiles(ctx, files, opts)
}

// CheckFiles runs the checker over an already collected file list.
func CheckFiles(ctx context.Context, files []string, opts CheckOptions) (*source.FileSet, []CheckResult, error) {
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("check: %w", ErrNoSourceFiles)
	}
	for _, path := range files {
		notify(opts.Progress, Event{Path: path, Stage: StageRead, Status: StatusQueued})
	}

	fileSet, fileIDs, loadErrors := loadFiles(ctx, files, opts.Timer)

	var endCheck func(string)
	if opts.Timer != nil {
		endCheck = opts.Timer.Track("check")
	}
	ctx, passSpan := trace.BeginCtx(ctx, trace.ScopePass, "check")

	results := make([]CheckResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobsOrDefault(opts.Jobs), len(files)))

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			bag := diag.NewBag(opts.MaxDiagnostics)
			if loadErr, failed := loadErrors[path]; failed {
				results[i] = CheckResult{Path: path, Bag: bag, Err: loadErr}
				notify(opts.Progress, Event{Path: path, Stage: StageRead, Status: StatusError, Err: loadErr})
				return nil
			}

			file := fileSet.Get(fileIDs[path])
			results[i] = CheckResult{Path: path, FileID: file.ID, Bag: bag}
			checkOne(gctx, file, path, bag, opts)
			return nil
		})
	}

	err := g.Wait()
	flagged := 0
	for _, r := range results {
		if r.Err != nil || r.Bag.Len() > 0 {
			flagged++
		}
	}
	passSpan.WithExtra("flagged", fmt.Sprint(flagged)).Fail(err)
	if endCheck != nil {
		endCheck(fmt.Sprintf("%d of %d flagged", flagged, len(files)))
	}
	return fileSet, results, err
}

func checkOne(ctx context.Context, file *source.File, path string, bag *diag.Bag, opts CheckOptions) {
	started := time.Now()
	_, span := trace.BeginCtx(ctx, trace.ScopeFile, path)
	notify(opts.Progress, Event{Path: path, Stage: StageFormat, Status: StatusWorking})

	r := diag.BagReporter{Bag: bag}
	text := file.Text()
	for _, issue := range format.Check(text) {
		reportIssue(r, file, issue)
	}
	if opts.Strict {
		if formatted := format.Format(text); formatted != text {
			reportUnformatted(r, file, formatted)
		}
	}

	status := StatusDone
	if bag.Len() > 0 || bag.Dropped() > 0 {
		status = StatusChanged
	}
	span.WithExtra("issues", fmt.Sprint(bag.Len()+bag.Dropped())).End("")
	notify(opts.Progress, Event{Path: path, Stage: StageFormat, Status: status, Elapsed: time.Since(started)})
}

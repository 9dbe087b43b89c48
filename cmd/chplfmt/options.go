package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"chplfmt/internal/config"
	"chplfmt/internal/driver"
	"chplfmt/internal/observ"
)

// runSettings gathers the persistent flags and chplfmt.toml values shared by
// fmt and check.
type runSettings struct {
	cfg            config.Config
	cache          *driver.Cache
	jobs           int
	quiet          bool
	maxDiagnostics int
	ui             uiMode
	timer          *observ.Timer // nil без --timings
}

func loadRunSettings(cmd *cobra.Command, args []string) (*runSettings, error) {
	flags := cmd.Root().PersistentFlags()

	quiet, err := flags.GetBool("quiet")
	if err != nil {
		return nil, err
	}
	maxDiagnostics, err := flags.GetInt("max-diagnostics")
	if err != nil {
		return nil, err
	}
	showTimings, err := flags.GetBool("timings")
	if err != nil {
		return nil, err
	}
	uiFlag, err := flags.GetString("ui")
	if err != nil {
		return nil, err
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return nil, err
	}

	jobs, err := flags.GetInt("jobs")
	if err != nil {
		return nil, err
	}
	if jobs < 0 {
		return nil, fmt.Errorf("invalid --jobs value %d", jobs)
	}
	if !flags.Changed("jobs") {
		jobs = cfg.Format.Jobs
	}

	settings := &runSettings{
		cfg:            cfg,
		jobs:           jobs,
		quiet:          quiet,
		maxDiagnostics: maxDiagnostics,
		ui:             mode,
	}
	if showTimings {
		settings.timer = observ.NewTimer()
	}
	settings.cache = openCache(cmd, &cfg, quiet)
	return settings, nil
}

// loadConfig reads --config, or discovers chplfmt.toml upward from the
// directory of the first path argument.
func loadConfig(cmd *cobra.Command, args []string) (config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	if path != "" {
		return config.Load(path)
	}

	start := "."
	if len(args) > 0 {
		start = args[0]
		if info, statErr := os.Stat(start); statErr != nil || !info.IsDir() {
			start = filepath.Dir(start)
		}
	}
	return config.Discover(start)
}

// openCache returns nil when caching is disabled or the directory cannot be
// prepared; the run continues uncached in that case. --clear-cache empties the
// cache first, even when this run does not use it.
func openCache(cmd *cobra.Command, cfg *config.Config, quiet bool) *driver.Cache {
	flags := cmd.Root().PersistentFlags()
	noCache, err := flags.GetBool("no-cache")
	if err != nil {
		return nil
	}
	clearCache, err := flags.GetBool("clear-cache")
	if err != nil {
		return nil
	}
	use := !noCache && cfg.Cache.Enabled
	if !use && !clearCache {
		return nil
	}

	cache, err := driver.OpenCache(cfg.Cache.Dir)
	if err != nil {
		if !quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: format cache disabled: %v\n", err)
		}
		return nil
	}
	if clearCache {
		if err := cache.DropAll(); err != nil && !quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not clear format cache: %v\n", err)
		}
	}
	if !use {
		return nil
	}
	return cache
}

func (s *runSettings) printTimings(cmd *cobra.Command) {
	if s.timer == nil {
		return
	}
	fmt.Fprint(cmd.ErrOrStderr(), s.timer.Summary())
}

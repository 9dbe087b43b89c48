// Package config loads chplfmt.toml, the optional per-project settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
)

// FileName is the name of the project settings file.
const FileName = "chplfmt.toml"

// DefaultExtension is the source extension used when none is configured.
const DefaultExtension = ".chpl"

// Config is the merged project configuration.
type Config struct {
	Path   string        `toml:"-"` // settings file, "" when defaults are used
	Root   string        `toml:"-"` // directory patterns are relative to
	Format FormatSection `toml:"format"`
	Cache  CacheSection  `toml:"cache"`
}

// FormatSection is the [format] table.
type FormatSection struct {
	Extensions []string `toml:"extensions"`
	Exclude    []string `toml:"exclude"`
	Jobs       int      `toml:"jobs"`
}

// CacheSection is the [cache] table.
type CacheSection struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// Default returns the configuration used when no chplfmt.toml exists.
func Default() Config {
	return Config{
		Format: FormatSection{Extensions: []string{DefaultExtension}},
		Cache:  CacheSection{Enabled: true},
	}
}

// Find walks up from startDir looking for chplfmt.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds and loads chplfmt.toml above startDir. Without one the
// defaults are returned with Root set to startDir.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		cfg := Default()
		root, absErr := filepath.Abs(startDir)
		if absErr != nil {
			return Config{}, fmt.Errorf("failed to resolve start directory: %w", absErr)
		}
		cfg.Root = root
		return cfg, nil
	}
	return Load(path)
}

// Load parses one settings file. Keys it does not set keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if meta.IsDefined("format", "extensions") && len(cfg.Format.Extensions) == 0 {
		return Config{}, fmt.Errorf("%s: [format].extensions must not be empty", path)
	}
	if cfg.Format.Jobs < 0 {
		return Config{}, fmt.Errorf("%s: [format].jobs must be >= 0, got %d", path, cfg.Format.Jobs)
	}
	for i, ext := range cfg.Format.Extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			return Config{}, fmt.Errorf("%s: [format].extensions[%d] is empty", path, i)
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.Format.Extensions[i] = ext
	}
	for _, pattern := range cfg.Format.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return Config{}, fmt.Errorf("%s: invalid exclude pattern %q", path, pattern)
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return Config{}, err
	}
	cfg.Path = abs
	cfg.Root = filepath.Dir(abs)
	if cfg.Cache.Dir != "" && !filepath.IsAbs(cfg.Cache.Dir) {
		cfg.Cache.Dir = filepath.Join(cfg.Root, cfg.Cache.Dir)
	}
	return cfg, nil
}

// HasSourceExt reports whether path carries one of the configured extensions.
func (c *Config) HasSourceExt(path string) bool {
	ext := filepath.Ext(path)
	exts := c.Format.Extensions
	if len(exts) == 0 {
		exts = []string{DefaultExtension}
	}
	for _, want := range exts {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

// Excluded reports whether path matches an exclude pattern. Patterns are
// matched against the slash-separated path relative to Root; paths outside
// Root are matched as given.
func (c *Config) Excluded(path string) bool {
	if len(c.Format.Exclude) == 0 {
		return false
	}
	rel := path
	if c.Root != "" {
		if abs, err := filepath.Abs(path); err == nil {
			if r, err := filepath.Rel(c.Root, abs); err == nil && r != ".." && !strings.HasPrefix(r, ".."+string(filepath.Separator)) {
				rel = r
			}
		}
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range c.Format.Exclude {
		// шаблоны проверены в Load
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

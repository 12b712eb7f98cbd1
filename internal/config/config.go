// Package config loads and validates the LoadSearch configuration.
// Configuration lives in <data-dir>/config.yaml so that it syncs with the
// rest of the data directory; the search index itself is kept out of sync
// by directory boundary (see paths.go).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	enginerr "github.com/loadsearch/loadsearch/internal/errors"
)

// Config represents the complete LoadSearch configuration.
type Config struct {
	Version int            `yaml:"version"`
	Folders []string       `yaml:"folders_to_index"`
	Crawl   CrawlConfig    `yaml:"crawl"`
	Search  SearchConfig   `yaml:"search"`
	Watch   WatchConfig    `yaml:"watch"`
	Logging LoggingConfig  `yaml:"logging"`
	// LastIndexed records the completion time of the most recent run.
	// Written back by the orchestrator, preserved across saves.
	LastIndexed time.Time `yaml:"last_indexed,omitempty"`
}

// CrawlConfig configures file discovery and extraction limits.
type CrawlConfig struct {
	// Exclude lists directory names skipped during crawling.
	Exclude []string `yaml:"exclude_patterns"`
	// MaxFileSizeKB is the admission cap for plain-text files.
	MaxFileSizeKB int `yaml:"max_file_size_kb"`
	// MaxDocumentSizeKB is the size above which a PDF is read only up to
	// the page limit and recorded as truncated.
	MaxDocumentSizeKB int `yaml:"max_document_size_kb"`
	// Workers bounds the extraction worker pool (0 = NumCPU).
	Workers int `yaml:"workers"`
}

// SearchConfig configures the query engine.
type SearchConfig struct {
	// MaxResults is the default result limit.
	MaxResults int `yaml:"max_results"`
	// CacheSize is the number of cached query results.
	CacheSize int `yaml:"cache_size"`
}

// WatchConfig configures the filesystem watcher.
type WatchConfig struct {
	// Debounce is the window for coalescing file events (e.g. "500ms").
	Debounce string `yaml:"debounce"`
}

// DebounceDuration parses the debounce window, falling back to 500ms.
func (w WatchConfig) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(w.Debounce)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// defaultExcludePatterns are directory names never crawled.
var defaultExcludePatterns = []string{
	".git",
	"__pycache__",
	"node_modules",
	".venv",
	"venv",
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Version: 1,
		Folders: []string{},
		Crawl: CrawlConfig{
			Exclude:           defaultExcludePatterns,
			MaxFileSizeKB:     512,
			MaxDocumentSizeKB: 10 * 1024,
			Workers:           runtime.NumCPU(),
		},
		Search: SearchConfig{
			MaxResults: 50,
			CacheSize:  256,
		},
		Watch: WatchConfig{
			Debounce: "500ms",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the configuration for the given data directory.
// Precedence, lowest first: defaults, config.yaml, LOADSEARCH_* env vars.
// A missing config file is not an error; defaults apply.
func Load(dataDir string) (*Config, error) {
	cfg := New()

	path := FilePath(dataDir)
	if data, err := os.ReadFile(path); err == nil {
		var parsed Config
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
		cfg.mergeWith(&parsed)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to <data-dir>/config.yaml.
func (c *Config) Save(dataDir string) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(FilePath(dataDir), data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// mergeWith overlays non-zero values from other onto c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}
	if len(other.Folders) > 0 {
		c.Folders = other.Folders
	}
	if len(other.Crawl.Exclude) > 0 {
		c.Crawl.Exclude = other.Crawl.Exclude
	}
	if other.Crawl.MaxFileSizeKB > 0 {
		c.Crawl.MaxFileSizeKB = other.Crawl.MaxFileSizeKB
	}
	if other.Crawl.MaxDocumentSizeKB > 0 {
		c.Crawl.MaxDocumentSizeKB = other.Crawl.MaxDocumentSizeKB
	}
	if other.Crawl.Workers > 0 {
		c.Crawl.Workers = other.Crawl.Workers
	}
	if other.Search.MaxResults > 0 {
		c.Search.MaxResults = other.Search.MaxResults
	}
	if other.Search.CacheSize > 0 {
		c.Search.CacheSize = other.Search.CacheSize
	}
	if other.Watch.Debounce != "" {
		c.Watch.Debounce = other.Watch.Debounce
	}
	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if !other.LastIndexed.IsZero() {
		c.LastIndexed = other.LastIndexed
	}
}

// applyEnvOverrides applies LOADSEARCH_* environment variables.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("LOADSEARCH_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LOADSEARCH_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Crawl.Workers = n
		}
	}
	if v := os.Getenv("LOADSEARCH_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Search.MaxResults = n
		}
	}
}

// Validate checks the configuration for values the engine cannot work with.
func (c *Config) Validate() error {
	for _, folder := range c.Folders {
		if folder == "" {
			return enginerr.New(enginerr.ErrCodeConfigInvalid,
				"folders_to_index contains an empty path", nil)
		}
		if !filepath.IsAbs(folder) {
			return enginerr.New(enginerr.ErrCodeConfigInvalid,
				fmt.Sprintf("folders_to_index requires absolute paths, got %q", folder), nil)
		}
	}
	if c.Crawl.MaxFileSizeKB <= 0 {
		return enginerr.New(enginerr.ErrCodeConfigInvalid, "max_file_size_kb must be positive", nil)
	}
	if c.Crawl.MaxDocumentSizeKB <= 0 {
		return enginerr.New(enginerr.ErrCodeConfigInvalid, "max_document_size_kb must be positive", nil)
	}
	if c.Search.MaxResults <= 0 {
		return enginerr.New(enginerr.ErrCodeConfigInvalid, "max_results must be positive", nil)
	}
	return nil
}

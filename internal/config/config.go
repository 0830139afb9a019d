package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-html2pdf/internal/fileutil"
	"github.com/alnah/go-html2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Defaults applied when neither config, env nor flags set a value.
const (
	DefaultTimeout = 30 * time.Second
	DefaultWorkDir = "temp_pdfs"

	// MinTimeout keeps navigation waits above Chrome's own startup jitter.
	MinTimeout = time.Second
	MaxTimeout = 30 * time.Minute

	// MaxStyles bounds the injected stylesheet list.
	MaxStyles = 64
)

// userConfigDirName is the directory under os.UserConfigDir() searched for named configs.
const userConfigDirName = "go-html2pdf"

// Config holds all file-based configuration for a conversion run.
type Config struct {
	Styles      []string      `yaml:"styles"`      // Stylesheets injected after any given on the command line
	Timeout     string        `yaml:"timeout"`     // Navigation timeout, Go duration ("45s", "2m")
	WorkDir     string        `yaml:"workDir"`     // Directory for per-document PDFs
	KeepTemp    bool          `yaml:"keepTemp"`    // Keep per-document PDFs after a successful run
	MetricsFile string        `yaml:"metricsFile"` // Prometheus textfile output (empty = disabled)
	Browser     BrowserConfig `yaml:"browser"`
}

// BrowserConfig defines how headless Chrome is launched.
type BrowserConfig struct {
	Bin       string `yaml:"bin"`       // Chrome binary (empty = ROD_BROWSER_BIN or auto-download)
	NoSandbox bool   `yaml:"noSandbox"` // Disable the Chrome sandbox (containers)
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Timeout: DefaultTimeout.String(),
		WorkDir: DefaultWorkDir,
	}
}

// TimeoutDuration parses Timeout, falling back to DefaultTimeout when empty.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return DefaultTimeout, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: timeout %q: %v", ErrInvalidValue, c.Timeout, err)
	}
	return d, nil
}

// Validate checks value ranges.
// Called automatically by LoadConfig, but available for callers that build
// Config manually or merge flags into it.
func (c *Config) Validate() error {
	d, err := c.TimeoutDuration()
	if err != nil {
		return err
	}
	if d < MinTimeout || d > MaxTimeout {
		return fmt.Errorf("%w: timeout %s (must be between %s and %s)", ErrInvalidValue, d, MinTimeout, MaxTimeout)
	}

	if len(c.Styles) > MaxStyles {
		return fmt.Errorf("%w: styles has %d entries (max %d)", ErrInvalidValue, len(c.Styles), MaxStyles)
	}
	for i, s := range c.Styles {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: styles[%d] is empty", ErrInvalidValue, i)
		}
	}

	if strings.ContainsRune(c.WorkDir, '\x00') {
		return fmt.Errorf("%w: workDir contains a null byte", ErrInvalidValue)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in SearchPaths order.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.Decode(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Relative style paths in a config file are relative to the file itself.
	base := filepath.Dir(configPath)
	for i, s := range cfg.Styles {
		if !filepath.IsAbs(s) {
			cfg.Styles[i] = filepath.Join(base, s)
		}
	}

	return cfg, nil
}

// SearchPaths lists where a named config is looked up, in order:
// current directory (.yaml, .yml), then the user config directory.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, userConfigDirName, name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing entry of SearchPaths.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}

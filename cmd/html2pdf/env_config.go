package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-html2pdf/internal/config"
)

const envPrefix = "HTML2PDF_"

// envConfig holds configuration from environment variables.
// Zero values mean "not set".
type envConfig struct {
	ConfigPath string        // HTML2PDF_CONFIG: config file name or path
	Timeout    time.Duration // HTML2PDF_TIMEOUT: navigation timeout
	WorkDir    string        // HTML2PDF_WORKDIR: per-document PDF directory
	KeepTemp   *bool         // HTML2PDF_KEEP_TEMP: keep per-document PDFs
}

// knownEnvVars lists valid HTML2PDF_* environment variables.
var knownEnvVars = []string{
	"HTML2PDF_CONFIG",
	"HTML2PDF_TIMEOUT",
	"HTML2PDF_WORKDIR",
	"HTML2PDF_KEEP_TEMP",
	"HTML2PDF_CONTAINER", // read by doctor
}

// loadEnvConfig reads HTML2PDF_* variables. Unparsable values are reported
// to w and ignored, so a bad variable never hides a valid config file.
func loadEnvConfig(w io.Writer) *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("HTML2PDF_CONFIG"),
		WorkDir:    os.Getenv("HTML2PDF_WORKDIR"),
	}

	if v := os.Getenv("HTML2PDF_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		} else {
			fmt.Fprintf(w, "warning: ignoring HTML2PDF_TIMEOUT=%q (want a positive duration like 45s)\n", v)
		}
	}

	if v := os.Getenv("HTML2PDF_KEEP_TEMP"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.KeepTemp = &b
		} else {
			fmt.Fprintf(w, "warning: ignoring HTML2PDF_KEEP_TEMP=%q (want true or false)\n", v)
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized HTML2PDF_* variables.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !slices.Contains(knownEnvVars, name) {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig overlays set environment values on cfg.
// Environment beats the config file; flags are applied later by mergeFlags.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Timeout > 0 {
		cfg.Timeout = env.Timeout.String()
	}
	if env.WorkDir != "" {
		cfg.WorkDir = env.WorkDir
	}
	if env.KeepTemp != nil {
		cfg.KeepTemp = *env.KeepTemp
	}
}

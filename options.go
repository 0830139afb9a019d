package html2pdf

import (
	"log/slog"
	"time"

	"github.com/alnah/go-html2pdf/internal/metrics"
)

// Defaults used when no option overrides them.
const (
	defaultTimeout = 30 * time.Second
	defaultWorkDir = "temp_pdfs"
)

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout  time.Duration
	workDir  string
	keepTemp bool
	port     int
	browser  BrowserConfig
	logger   *slog.Logger
	recorder metrics.Recorder
}

// WithTimeout sets the per-document navigation timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("html2pdf: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithLogger sets the logger. Runs are silent by default.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.cfg.logger = l
		}
	}
}

// WithWorkDir sets the directory receiving per-document PDFs (default "temp_pdfs").
func WithWorkDir(dir string) Option {
	return func(c *Converter) {
		if dir != "" {
			c.cfg.workDir = dir
		}
	}
}

// WithKeepTemp keeps per-document PDFs after a successful run.
// They are always kept after a failed run.
func WithKeepTemp(keep bool) Option {
	return func(c *Converter) {
		c.cfg.keepTemp = keep
	}
}

// WithPort overrides the content server port. 0 picks a free port.
// Panics if port is outside 0-65535.
func WithPort(port int) Option {
	if port < 0 || port > 65535 {
		panic("html2pdf: WithPort port out of range")
	}
	return func(c *Converter) {
		c.cfg.port = port
	}
}

// WithBrowser sets how headless Chrome is launched.
func WithBrowser(b BrowserConfig) Option {
	return func(c *Converter) {
		c.cfg.browser = b
	}
}

// WithMetrics sets the recorder receiving run metrics.
func WithMetrics(r metrics.Recorder) Option {
	return func(c *Converter) {
		if r != nil {
			c.cfg.recorder = r
		}
	}
}

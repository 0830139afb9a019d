package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	flag "github.com/spf13/pflag"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/config"
	"github.com/alnah/go-html2pdf/internal/hints"
	"github.com/alnah/go-html2pdf/internal/logfields"
	"github.com/alnah/go-html2pdf/internal/metrics"
)

// runMain dispatches a command line and returns the process exit code.
// args[0] is the program name.
func runMain(ctx context.Context, args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	switch args[1] {
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "html2pdf %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		return runHelp(args[2:], env)
	case "doctor":
		return runDoctorCmd(args[2:], env)
	}

	if err := runConvert(ctx, args[1:], env); err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// runConvert resolves configuration, runs one job and reports the result.
func runConvert(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		printUsage(env.Stdout)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if len(positional) < 2 {
		return fmt.Errorf("%w: expected <input-dir> <output.pdf> [style.css ...]", ErrUsage)
	}
	if flags.common.quiet && flags.common.verbose {
		return fmt.Errorf("%w: --quiet and --verbose are mutually exclusive", ErrUsage)
	}

	warnUnknownEnvVars(env.Stderr)
	envCfg := loadEnvConfig(env.Stderr)

	cfg, err := loadConfig(flags.common.config, envCfg.ConfigPath)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, positional[2:], cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return err
	}

	logger := newLogger(env.Stderr, flags.common.quiet, flags.common.verbose)
	opts := []html2pdf.Option{
		html2pdf.WithTimeout(timeout),
		html2pdf.WithWorkDir(cfg.WorkDir),
		html2pdf.WithKeepTemp(cfg.KeepTemp),
		html2pdf.WithLogger(logger),
		html2pdf.WithBrowser(html2pdf.BrowserConfig{
			Bin:       cfg.Browser.Bin,
			NoSandbox: cfg.Browser.NoSandbox,
		}),
	}

	var recorder *metrics.PrometheusRecorder
	if cfg.MetricsFile != "" {
		recorder = metrics.NewPrometheusRecorder(nil)
		opts = append(opts, html2pdf.WithMetrics(recorder))
	}

	job := html2pdf.Job{
		InputDir:    positional[0],
		OutputPath:  positional[1],
		Stylesheets: cfg.Styles,
	}
	result, runErr := env.NewRunner(opts...).Run(ctx, job)

	// Metrics are written for failed runs too; the outcome counter says which.
	if recorder != nil {
		if err := recorder.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Warn("metrics not written", logfields.Path(cfg.MetricsFile), logfields.Error(err))
		}
	}
	if runErr != nil {
		return runErr
	}

	if !flags.common.quiet {
		printResult(env.Stdout, job, result)
	}
	return nil
}

// loadConfig loads the config named by the flag, else by HTML2PDF_CONFIG.
// With neither set, defaults apply.
func loadConfig(flagName, envName string) (*config.Config, error) {
	name := flagName
	if name == "" {
		name = envName
	}
	if name == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.LoadConfig(name)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// mergeFlags applies command-line values over cfg (CLI wins).
// Positional stylesheets come first, then --style values; together they
// replace the config file's list.
func mergeFlags(flags *convertFlags, positionalStyles []string, cfg *config.Config) {
	styles := make([]string, 0, len(positionalStyles)+len(flags.styles))
	styles = append(styles, positionalStyles...)
	styles = append(styles, flags.styles...)
	if len(styles) > 0 {
		cfg.Styles = styles
	}

	if flags.timeout != "" {
		cfg.Timeout = flags.timeout
	}
	if flags.workDir != "" {
		cfg.WorkDir = flags.workDir
	}
	if flags.keepTemp {
		cfg.KeepTemp = true
	}
	if flags.metricsFile != "" {
		cfg.MetricsFile = flags.metricsFile
	}
}

// newLogger builds the stderr text logger for the chosen verbosity.
func newLogger(w io.Writer, quiet, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case quiet:
		level = slog.LevelWarn
	case verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// printResult outputs a one-line summary of a finished run.
func printResult(w io.Writer, job html2pdf.Job, r *html2pdf.Result) {
	if r.Empty {
		fmt.Fprintf(w, "No HTML documents in %s, nothing to merge\n", job.InputDir)
		return
	}
	fmt.Fprintf(w, "Merged %d document(s), %d page(s) -> %s (%v)\n",
		len(r.Documents), r.Pages, r.OutputPath, r.Duration.Round(time.Millisecond))
}

// hintFor returns an actionable hint for well-known failures, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, html2pdf.ErrResourceBusy):
		return hints.ForPortBusy(html2pdf.DefaultPort)
	case errors.Is(err, html2pdf.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, html2pdf.ErrNavigation):
		return hints.ForNavigation()
	case errors.Is(err, html2pdf.ErrMerge):
		return hints.ForMerge()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths("html2pdf"))
	}

	var se *html2pdf.StageError
	if errors.As(err, &se) && errors.Is(err, html2pdf.ErrFilesystem) &&
		(se.Stage == html2pdf.StageRendering || se.Stage == html2pdf.StageFinalizing) {
		return hints.ForWorkDir()
	}
	return ""
}

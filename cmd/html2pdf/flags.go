package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// convertFlags holds all flags for the default convert command.
type convertFlags struct {
	common      commonFlags
	styles      []string
	timeout     string
	workDir     string
	keepTemp    bool
	metricsFile string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show per-document progress and timings")
}

// newConvertFlagSet registers every convert flag on a fresh FlagSet.
func newConvertFlagSet(f *convertFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("html2pdf", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	// StringArray, not StringSlice: paths may contain commas.
	fs.StringArrayVarP(&f.styles, "style", "s", nil, "stylesheet injected after positional ones (repeatable)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "navigation timeout per document (e.g., 30s, 2m)")
	fs.StringVar(&f.workDir, "workdir", "", "directory for per-document PDFs (default temp_pdfs)")
	fs.BoolVar(&f.keepTemp, "keep-temp", false, "keep per-document PDFs after a successful run")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "write run metrics in Prometheus text format")

	addCommonFlags(fs, &f.common)
	return fs
}

// parseConvertFlags parses convert command flags and returns positional args.
// A help flag surfaces as flag.ErrHelp.
func parseConvertFlags(args []string) (*convertFlags, []string, error) {
	f := &convertFlags{}
	fs := newConvertFlagSet(f)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// hasVerboseFlag reports whether -v or --verbose appears before "--".
// main needs it before flags are parsed.
func hasVerboseFlag(args []string) bool {
	for _, a := range args {
		switch a {
		case "--":
			return false
		case "-v", "--verbose":
			return true
		}
	}
	return false
}

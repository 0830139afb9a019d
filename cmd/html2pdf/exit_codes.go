package main

import (
	"context"
	"errors"
	"os"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/config"
)

// Exit codes follow Unix conventions: 0 success, 1 general, 2 usage.
// The rest let scripts tell apart what to retry or fix.
const (
	ExitSuccess  = 0 // Success, including an input directory with no documents
	ExitGeneral  = 1 // Unclassified failure, interruption
	ExitUsage    = 2 // Bad arguments, config or job
	ExitIO       = 3 // Filesystem: input dir, stylesheets, work dir, output
	ExitBrowser  = 4 // Chrome launch, navigation or print failure
	ExitPortBusy = 5 // Content server port already taken
	ExitMerge    = 6 // Per-document PDFs could not be merged
)

// ErrUsage marks command-line mistakes.
var ErrUsage = errors.New("invalid usage")

// exitCodeFor maps an error to the appropriate exit code.
// Order matters: a run error can wrap several sentinels, the most specific wins.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, context.Canceled):
		return ExitGeneral

	case errors.Is(err, html2pdf.ErrResourceBusy):
		return ExitPortBusy

	case errors.Is(err, html2pdf.ErrMerge):
		return ExitMerge

	case errors.Is(err, html2pdf.ErrBrowserConnect),
		errors.Is(err, html2pdf.ErrNavigation),
		errors.Is(err, html2pdf.ErrRender):
		return ExitBrowser

	case errors.Is(err, ErrUsage),
		errors.Is(err, html2pdf.ErrInvalidJob),
		errors.Is(err, config.ErrConfigNotFound),
		errors.Is(err, config.ErrEmptyConfigName),
		errors.Is(err, config.ErrConfigParse),
		errors.Is(err, config.ErrInvalidValue):
		return ExitUsage

	case errors.Is(err, html2pdf.ErrFilesystem),
		errors.Is(err, os.ErrNotExist),
		errors.Is(err, os.ErrPermission):
		return ExitIO

	default:
		return ExitGeneral
	}
}

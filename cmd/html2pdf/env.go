package main

import (
	"context"
	"io"
	"os"

	html2pdf "github.com/alnah/go-html2pdf"
)

// jobRunner runs one conversion job.
type jobRunner interface {
	Run(ctx context.Context, job html2pdf.Job) (*html2pdf.Result, error)
}

// Compile-time interface implementation check.
var _ jobRunner = (*html2pdf.Converter)(nil)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdout io.Writer
	Stderr io.Writer

	// NewRunner builds the converter for a run from the resolved options.
	NewRunner func(opts ...html2pdf.Option) jobRunner
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		NewRunner: func(opts ...html2pdf.Option) jobRunner {
			return html2pdf.NewConverter(opts...)
		},
	}
}

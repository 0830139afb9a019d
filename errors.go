package html2pdf

import (
	"errors"
	"fmt"
)

// Sentinel errors for library operations.
var (
	ErrInvalidJob     = errors.New("invalid job")
	ErrFilesystem     = errors.New("filesystem error")
	ErrResourceBusy   = errors.New("resource busy")
	ErrServerStart    = errors.New("content server failed to start")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrNavigation     = errors.New("navigation failed")
	ErrRender         = errors.New("render failed")
	ErrMerge          = errors.New("merge failed")
)

// StageError records where in the pipeline a run failed.
// It unwraps to the underlying sentinel, so errors.Is(err, ErrMerge) works
// on anything Converter.Run returns.
type StageError struct {
	Stage    Stage
	Document string // input path, empty when the failure is not tied to one document
	Err      error
}

func (e *StageError) Error() string {
	if e.Document != "" {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Document, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// stageErr wraps err unless it already carries a stage.
func stageErr(stage Stage, doc string, err error) error {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return err
	}
	return &StageError{Stage: stage, Document: doc, Err: err}
}

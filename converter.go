package html2pdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/alnah/go-html2pdf/internal/fileutil"
	"github.com/alnah/go-html2pdf/internal/logfields"
	"github.com/alnah/go-html2pdf/internal/metrics"
)

// serverShutdownTimeout bounds the content server's graceful shutdown.
const serverShutdownTimeout = 5 * time.Second

// contentServer is the part of *ContentServer the pipeline uses.
type contentServer interface {
	URL(doc Document) string
	Addr() string
	Close(ctx context.Context) error
}

// renderSession is the part of *RodSession the pipeline uses.
type renderSession interface {
	Render(ctx context.Context, job RenderJob) error
	Close() error
}

// pdfMerger is the part of *PDFMerger the pipeline uses.
type pdfMerger interface {
	Merge(ctx context.Context, inputs []string, dest string) (int, error)
}

// Compile-time interface implementation checks.
var (
	_ contentServer = (*ContentServer)(nil)
	_ renderSession = (*RodSession)(nil)
	_ pdfMerger     = (*PDFMerger)(nil)
)

// Converter runs the directory-to-PDF pipeline. A Converter holds no
// resources between runs; each Run starts and releases its own server and
// browser. Runs must not overlap: they share the fixed server port.
type Converter struct {
	cfg converterConfig

	startServer func(ctx context.Context, cfg ServerConfig) (contentServer, error)
	openSession func(ctx context.Context, cfg BrowserConfig) (renderSession, error)
	merger      pdfMerger
	newRunID    func() string
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithTimeout, WithWorkDir, WithLogger).
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		cfg: converterConfig{
			timeout:  defaultTimeout,
			workDir:  defaultWorkDir,
			port:     DefaultPort,
			logger:   logfields.Discard(),
			recorder: metrics.NoopRecorder{},
		},
		startServer: func(ctx context.Context, cfg ServerConfig) (contentServer, error) {
			return StartServer(ctx, cfg)
		},
		openSession: func(ctx context.Context, cfg BrowserConfig) (renderSession, error) {
			return OpenSession(ctx, cfg)
		},
		merger:   NewPDFMerger(),
		newRunID: uuid.NewString,
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// run carries per-run state through the stages.
type run struct {
	id         string
	log        *slog.Logger
	recorder   metrics.Recorder
	result     *Result
	stageStart time.Time
}

// enter moves the run to stage s and records how long the previous stage took.
func (r *run) enter(s Stage) {
	now := time.Now()
	if prev := r.result.Stage; prev != StageIdle {
		r.recorder.ObserveStageDuration(prev.String(), now.Sub(r.stageStart))
	}
	r.result.Stage = s
	r.stageStart = now
	r.log.Debug("stage", logfields.Stage(s.String()))
}

// Run converts every document of job.InputDir into job.OutputPath.
// A directory with no eligible documents is not an error: the result has
// Empty set and nothing is written. Every error returned is a *StageError.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Run(ctx context.Context, job Job) (result *Result, err error) {
	start := time.Now()
	r := &run{
		id:       c.newRunID(),
		recorder: c.cfg.recorder,
		result:   &Result{OutputPath: job.OutputPath, Stage: StageIdle},
	}
	r.log = c.cfg.logger.With(logfields.RunID(r.id))

	defer func() {
		if rec := recover(); rec != nil {
			err = stageErr(r.result.Stage, "", fmt.Errorf("internal error: %v", rec))
		}
		c.finish(r, start, err)
		if err != nil {
			result = nil
		}
	}()

	if err := validateJob(job); err != nil {
		return nil, stageErr(StageIdle, "", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, stageErr(StageIdle, "", err)
	}

	workDir, err := filepath.Abs(c.cfg.workDir)
	if err != nil {
		return nil, stageErr(StageIdle, "", fmt.Errorf("%w: resolving work dir: %v", ErrFilesystem, err))
	}

	r.log.Info("conversion started",
		logfields.Path(job.InputDir),
		logfields.Output(job.OutputPath),
		logfields.Count(len(job.Stylesheets)))

	artifacts, err := c.renderStage(ctx, r, job, workDir)
	if err != nil {
		return nil, err
	}
	if r.result.Empty {
		r.enter(StageDone)
		return r.result, nil
	}

	r.enter(StageMerging)
	pages, err := c.merger.Merge(ctx, artifactPaths(artifacts), job.OutputPath)
	if err != nil {
		return nil, stageErr(StageMerging, "", err)
	}
	r.result.Pages = pages
	r.recorder.SetPages(pages)

	r.enter(StageFinalizing)
	if !c.cfg.keepTemp {
		c.removeArtifacts(r, artifacts, workDir)
	}

	r.enter(StageDone)
	return r.result, nil
}

// renderStage covers everything that needs the content server: discovery,
// stylesheet loading and rendering. The server and browser are released
// before it returns, on every path.
func (c *Converter) renderStage(ctx context.Context, r *run, job Job, workDir string) (artifacts []Artifact, err error) {
	r.enter(StageServerStarting)
	err = c.withServer(ctx, r, job.InputDir, func(srv contentServer) error {
		r.enter(StageDiscovering)
		docs, err := Discover(job.InputDir)
		if err != nil {
			return stageErr(StageDiscovering, "", err)
		}
		r.result.Documents = docs
		r.recorder.SetDocuments(len(docs))

		if len(docs) == 0 {
			r.enter(StageEmpty)
			r.result.Empty = true
			r.log.Info("no documents to convert", logfields.Path(job.InputDir))
			return nil
		}
		r.log.Info("documents discovered", logfields.Count(len(docs)))

		r.enter(StageLoadingStyles)
		styles, err := LoadStyles(job.Stylesheets)
		if err != nil {
			return stageErr(StageLoadingStyles, "", err)
		}

		r.enter(StageRendering)
		if _, err := fileutil.EnsureDir(workDir); err != nil {
			return stageErr(StageRendering, "", fmt.Errorf("%w: %v", ErrFilesystem, err))
		}
		return c.withSession(ctx, r, func(sess renderSession) error {
			artifacts, err = c.renderAll(ctx, r, sess, srv, docs, styles, workDir)
			return err
		})
	})
	return artifacts, err
}

// withServer starts the content server, runs fn and always stops the server.
// A failure to stop is logged; it becomes the run's error only when fn succeeded.
func (c *Converter) withServer(ctx context.Context, r *run, root string, fn func(contentServer) error) (err error) {
	srv, err := c.startServer(ctx, ServerConfig{Root: root, Port: c.cfg.port, Logger: r.log})
	if err != nil {
		return stageErr(StageServerStarting, "", err)
	}
	r.log.Debug("content server listening", logfields.Addr(srv.Addr()))

	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), serverShutdownTimeout)
		defer cancel()
		if cerr := srv.Close(closeCtx); cerr != nil {
			r.log.Warn("stopping content server", logfields.Error(cerr))
			if err == nil {
				err = stageErr(r.result.Stage, "", fmt.Errorf("stopping content server: %w", cerr))
			}
		}
	}()

	return fn(srv)
}

// withSession opens the browser, runs fn and always closes the browser.
// A failure to close is logged; it becomes the run's error only when fn succeeded.
func (c *Converter) withSession(ctx context.Context, r *run, fn func(renderSession) error) (err error) {
	browser := c.cfg.browser
	browser.Logger = r.log
	sess, err := c.openSession(ctx, browser)
	if err != nil {
		return stageErr(StageRendering, "", err)
	}

	defer func() {
		if cerr := sess.Close(); cerr != nil {
			r.log.Warn("closing browser", logfields.Error(cerr))
			if err == nil {
				err = stageErr(r.result.Stage, "", fmt.Errorf("closing browser: %w", cerr))
			}
		}
	}()

	return fn(sess)
}

// renderAll prints each document, in order, to <workDir>/<index>.pdf.
func (c *Converter) renderAll(ctx context.Context, r *run, sess renderSession, srv contentServer,
	docs []Document, styles []StyleSheet, workDir string,
) ([]Artifact, error) {
	artifacts := make([]Artifact, 0, len(docs))
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, stageErr(StageRendering, doc.Path, err)
		}

		a := Artifact{
			Index:    i,
			Document: doc,
			Path:     filepath.Join(workDir, artifactName(i)),
		}
		job := RenderJob{
			URL:        srv.URL(doc),
			OutputPath: a.Path,
			Styles:     styles,
			Timeout:    c.cfg.timeout,
		}

		docStart := time.Now()
		if err := sess.Render(ctx, job); err != nil {
			return nil, stageErr(StageRendering, doc.Path, err)
		}
		elapsed := time.Since(docStart)
		r.recorder.IncRendered()
		r.recorder.ObserveRenderDuration(elapsed)
		r.log.Info("document rendered",
			logfields.Index(i),
			logfields.Document(doc.RelPath),
			logfields.Title(doc.Title),
			logfields.Duration(elapsed))

		artifacts = append(artifacts, a)
		r.result.Artifacts = artifacts
	}
	return artifacts, nil
}

// artifactName names a per-document PDF by its position.
func artifactName(i int) string {
	return fmt.Sprintf("%04d.pdf", i)
}

func artifactPaths(artifacts []Artifact) []string {
	paths := make([]string, len(artifacts))
	for i, a := range artifacts {
		paths[i] = a.Path
	}
	return paths
}

// removeArtifacts deletes the per-document PDFs, then the work dir if empty.
// Failures are logged only: the merged output already exists.
func (c *Converter) removeArtifacts(r *run, artifacts []Artifact, workDir string) {
	for _, a := range artifacts {
		if err := os.Remove(a.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			r.log.Warn("removing temporary PDF", logfields.Path(a.Path), logfields.Error(err))
		}
	}
	// Fails harmlessly when the directory holds other files.
	_ = os.Remove(workDir)
}

// finish logs the outcome and records run metrics.
func (c *Converter) finish(r *run, start time.Time, err error) {
	elapsed := time.Since(start)
	r.result.Duration = elapsed
	r.recorder.ObserveRunDuration(elapsed)

	switch {
	case err == nil && r.result.Empty:
		r.recorder.IncOutcome(metrics.OutcomeEmpty)
		r.log.Info("conversion finished", logfields.Stage(r.result.Stage.String()), logfields.Duration(elapsed))
	case err == nil:
		r.recorder.IncOutcome(metrics.OutcomeSuccess)
		r.log.Info("conversion finished",
			logfields.Output(r.result.OutputPath),
			logfields.Count(len(r.result.Documents)),
			logfields.Pages(r.result.Pages),
			logfields.Duration(elapsed))
	default:
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			r.recorder.IncOutcome(metrics.OutcomeCanceled)
		} else {
			r.recorder.IncOutcome(metrics.OutcomeFailed)
		}
		failedAt := r.result.Stage
		r.enter(StageFailed)
		r.log.Error("conversion failed",
			logfields.Stage(failedAt.String()),
			logfields.Error(err),
			logfields.Duration(elapsed))
	}
}

// validateJob rejects jobs that cannot run before any resource is acquired.
func validateJob(job Job) error {
	if job.InputDir == "" {
		return fmt.Errorf("%w: input directory is empty", ErrInvalidJob)
	}
	if job.OutputPath == "" {
		return fmt.Errorf("%w: output path is empty", ErrInvalidJob)
	}
	if err := fileutil.RequireDir(job.InputDir); err != nil {
		return fmt.Errorf("%w: input directory: %v", ErrFilesystem, err)
	}
	return nil
}

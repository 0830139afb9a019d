package html2pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-html2pdf/internal/fileutil"
	"github.com/alnah/go-html2pdf/internal/hints"
	"github.com/alnah/go-html2pdf/internal/logfields"
	"github.com/alnah/go-html2pdf/internal/process"
)

// Page geometry: A4 portrait with 20mm margins on every side, in inches.
const (
	paperWidthInches  = 8.27
	paperHeightInches = 11.69
	marginInches      = 20 / 25.4
)

// BrowserConfig configures OpenSession.
type BrowserConfig struct {
	Bin       string // Chrome binary; empty uses ROD_BROWSER_BIN, then rod's download
	NoSandbox bool   // forced on in CI, containers and with ROD_NO_SANDBOX=1
	Logger    *slog.Logger
}

// RenderJob is one document to print.
type RenderJob struct {
	URL        string
	OutputPath string
	Styles     []StyleSheet
	Timeout    time.Duration // bounds navigation and the network-idle wait
}

// RodSession owns one headless Chrome process and one tab, reused for every
// document of a run. It is not safe for concurrent use.
type RodSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	logger   *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

// OpenSession launches Chrome and opens the tab used for rendering.
func OpenSession(ctx context.Context, cfg BrowserConfig) (*RodSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logfields.Discard()
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	bin := cfg.Bin
	if bin == "" {
		bin = os.Getenv("ROD_BROWSER_BIN")
	}
	if bin != "" {
		l = l.Bin(bin)
	}

	if cfg.NoSandbox || needsNoSandbox() {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	s := &RodSession{launcher: l, logger: logger}
	s.browser = rod.New().ControlURL(u)
	if err := s.browser.Connect(); err != nil {
		s.kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	s.page, err = s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("%w: creating page: %v", ErrBrowserConnect, err)
	}

	logger.Debug("browser session opened", logfields.URL(u))
	return s, nil
}

// needsNoSandbox reports whether the environment requires Chrome's sandbox off.
func needsNoSandbox() bool {
	return os.Getenv("ROD_NO_SANDBOX") == "1" || hints.InCI() || hints.IsInContainer()
}

// Render loads job.URL in the session tab, waits for the network to go idle,
// injects the stylesheets in order and writes the printed PDF to job.OutputPath.
func (s *RodSession) Render(ctx context.Context, job RenderJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	timeout := job.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	page := s.page.Context(ctx).Timeout(timeout)
	defer page.CancelTimeout()

	// Armed before navigating so the idle event cannot be missed.
	waitIdle, err := waitNetworkIdle(page)
	if err != nil {
		return navigationError(ctx, job.URL, err)
	}
	if err := page.Navigate(job.URL); err != nil {
		return navigationError(ctx, job.URL, err)
	}
	waitIdle()
	if err := page.GetContext().Err(); err != nil {
		return navigationError(ctx, job.URL, err)
	}

	for _, style := range job.Styles {
		if _, err := page.Eval(appendStyleJS, style.Content); err != nil {
			return fmt.Errorf("%w: injecting %s: %v", ErrRender, style.Path, err)
		}
	}

	reader, err := page.PDF(printOptions())
	if err != nil {
		return fmt.Errorf("%w: printing %s: %v", ErrRender, job.URL, err)
	}
	pdf, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("%w: reading PDF stream: %v", ErrRender, err)
	}

	if err := fileutil.WriteFileAtomic(job.OutputPath, pdf, fileutil.FilePermissions); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrFilesystem, job.OutputPath, err)
	}
	return nil
}

// appendStyleJS adds one <style> element at the end of <head>. Repeated
// content gets its own element, so the cascade follows list order exactly.
const appendStyleJS = `(css) => {
	const el = document.createElement('style');
	el.textContent = css;
	(document.head || document.documentElement).appendChild(el);
}`

// waitNetworkIdle returns a wait that ends on networkIdle of the next main
// frame document. The tab is reused, and Chrome replays the previous
// document's lifecycle events when they are enabled again; those carry the
// old loader ID and are ignored.
func waitNetworkIdle(page *rod.Page) (func(), error) {
	if err := (proto.PageSetLifecycleEventsEnabled{Enabled: true}).Call(page); err != nil {
		return nil, err
	}
	var loaderID proto.NetworkLoaderID
	wait := page.EachEvent(func(e *proto.PageFrameNavigated) {
		if e.Frame != nil && e.Frame.ParentID == "" {
			loaderID = e.Frame.LoaderID
		}
	}, func(e *proto.PageLifecycleEvent) bool {
		return loaderID != "" && e.LoaderID == loaderID &&
			e.Name == proto.PageLifecycleEventNameNetworkIdle
	})
	return func() {
		wait()
		_ = proto.PageSetLifecycleEventsEnabled{Enabled: false}.Call(page)
	}, nil
}

// navigationError keeps caller cancellation distinguishable from a document
// that failed to load in time.
func navigationError(ctx context.Context, url string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: timed out waiting for network idle", ErrNavigation, url)
	}
	return fmt.Errorf("%w: %s: %v", ErrNavigation, url, err)
}

// printOptions returns the fixed A4 print settings.
func printOptions() *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(paperWidthInches),
		PaperHeight:     floatPtr(paperHeightInches),
		MarginTop:       floatPtr(marginInches),
		MarginBottom:    floatPtr(marginInches),
		MarginLeft:      floatPtr(marginInches),
		MarginRight:     floatPtr(marginInches),
		PrintBackground: true,
	}
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}

// Close closes the tab and the browser, then kills whatever is left of the
// Chrome process tree. Calls after the first return nil.
func (s *RodSession) Close() error {
	first := false
	s.closeOnce.Do(func() {
		first = true
		var errs []error
		if s.page != nil {
			if err := s.page.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing page: %w", err))
			}
		}
		if s.browser != nil {
			if err := s.browser.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing browser: %w", err))
			}
		}
		s.kill()
		s.closeErr = errors.Join(errs...)
		s.logger.Debug("browser session closed")
	})
	if !first {
		return nil
	}
	return s.closeErr
}

// kill terminates the launcher's process group.
func (s *RodSession) kill() {
	pid := s.launcher.PID()
	s.launcher.Kill()
	process.KillProcessGroup(pid)
}

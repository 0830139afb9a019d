package html2pdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/alnah/go-html2pdf/internal/logfields"
)

// Content server address. Documents are loaded by the browser from here.
const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 3000
)

const readHeaderTimeout = 10 * time.Second

// Go's built-in MIME table lacks .xhtml; without /etc/mime.types the file
// server would sniff it as HTML and Chrome would parse it leniently.
var registerXHTMLOnce sync.Once

func registerXHTML() {
	_ = mime.AddExtensionType(".xhtml", "application/xhtml+xml")
}

// ServerConfig configures StartServer.
type ServerConfig struct {
	Root   string // directory served at "/"
	Host   string // defaults to DefaultHost
	Port   int    // 0 picks a free port
	Logger *slog.Logger
}

// ContentServer serves one input directory over loopback HTTP for the
// duration of a run.
type ContentServer struct {
	srv     *http.Server
	ln      net.Listener
	baseURL *url.URL
	logger  *slog.Logger
	done    chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// StartServer binds the listener and starts serving cfg.Root. The port is
// bound before returning, so a busy port fails here with ErrResourceBusy.
// Any other bind failure is ErrServerStart.
func StartServer(ctx context.Context, cfg ServerConfig) (*ContentServer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.Root == "" {
		return nil, fmt.Errorf("%w: server root is empty", ErrInvalidJob)
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving %s: %v", ErrFilesystem, cfg.Root, err)
	}
	host := cfg.Host
	if host == "" {
		host = DefaultHost
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logfields.Discard()
	}

	addr := net.JoinHostPort(host, strconv.Itoa(cfg.Port))
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return nil, fmt.Errorf("%w: %s already in use", ErrResourceBusy, addr)
		}
		return nil, fmt.Errorf("%w: binding %s: %v", ErrServerStart, addr, err)
	}
	registerXHTMLOnce.Do(registerXHTML)

	s := &ContentServer{
		ln:      ln,
		baseURL: &url.URL{Scheme: "http", Host: ln.Addr().String()},
		logger:  logger,
		done:    make(chan struct{}),
	}
	s.srv = &http.Server{
		Handler:           newContentRouter(root, logger),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		defer close(s.done)
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("content server stopped", logfields.Error(err))
		}
	}()

	logger.Debug("content server started", logfields.Addr(s.Addr()), logfields.Path(root))
	return s, nil
}

// newContentRouter maps the static subfolders and the root directory.
// Missing subfolders answer 404; they never fail startup.
func newContentRouter(root string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)
	r.Use(requestLogger(logger))

	reader := filepath.Join(root, "static", "reader")
	static := filepath.Join(root, "static")

	r.Handle("/static/reader/*", http.StripPrefix("/static/reader/", http.FileServer(http.Dir(reader))))
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(static))))
	r.Handle("/*", http.FileServer(http.Dir(root)))
	return r
}

// requestLogger logs every request at debug level.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debug("http request",
				logfields.Method(r.Method),
				logfields.Path(r.URL.Path),
				logfields.Status(status),
				logfields.Duration(time.Since(start)))
		})
	}
}

// Addr returns the bound host:port.
func (s *ContentServer) Addr() string {
	return s.ln.Addr().String()
}

// URL returns the address the browser loads doc from.
func (s *ContentServer) URL(doc Document) string {
	u := *s.baseURL
	u.Path = "/" + doc.RelPath
	return u.String()
}

// Close shuts the server down and waits for the serve loop to exit.
// Calls after the first return nil.
func (s *ContentServer) Close(ctx context.Context) error {
	first := false
	s.closeOnce.Do(func() {
		first = true
		err := s.srv.Shutdown(ctx)
		if err != nil {
			// Shutdown timed out; drop remaining connections.
			err = errors.Join(err, s.srv.Close())
		}
		<-s.done
		s.closeErr = err
		s.logger.Debug("content server stopped", logfields.Addr(s.Addr()))
	})
	if !first {
		return nil
	}
	return s.closeErr
}

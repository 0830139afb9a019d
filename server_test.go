package html2pdf

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
)

// startTestServer serves root on a free port and closes it with the test.
func startTestServer(t *testing.T, root string) *ContentServer {
	t.Helper()
	srv, err := StartServer(context.Background(), ServerConfig{Root: root, Port: 0})
	if err != nil {
		t.Fatalf("StartServer() error = %v", err)
	}
	t.Cleanup(func() { _ = srv.Close(context.Background()) })
	return srv
}

func get(t *testing.T, url string) (int, string, http.Header) {
	t.Helper()
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body), resp.Header
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// ---------------------------------------------------------------------------
// TestContentServer - Routing
// ---------------------------------------------------------------------------

func TestContentServer_Routes(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "cover.html"), "<p>root doc</p>")
	mustWrite(t, filepath.Join(root, "static", "app.css"), "body{color:red}")
	mustWrite(t, filepath.Join(root, "static", "reader", "reader.js"), "console.log(1)")

	srv := startTestServer(t, root)
	base := "http://" + srv.Addr()

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{name: "root document", path: "/cover.html", wantStatus: http.StatusOK, wantBody: "root doc"},
		{name: "static asset", path: "/static/app.css", wantStatus: http.StatusOK, wantBody: "color:red"},
		{name: "reader asset", path: "/static/reader/reader.js", wantStatus: http.StatusOK, wantBody: "console.log"},
		{name: "missing file", path: "/nope.html", wantStatus: http.StatusNotFound},
		{name: "missing reader file", path: "/static/reader/nope.js", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body, _ := get(t, base+tt.path)
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			if tt.wantBody != "" && !strings.Contains(body, tt.wantBody) {
				t.Errorf("body = %q, want it to contain %q", body, tt.wantBody)
			}
		})
	}
}

func TestContentServer_XHTMLContentType(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "ch1.xhtml"), `<?xml version="1.0"?><html xmlns="http://www.w3.org/1999/xhtml"><body/></html>`)
	mustWrite(t, filepath.Join(root, "ch2.html"), "<p>html</p>")
	srv := startTestServer(t, root)
	base := "http://" + srv.Addr()

	_, _, header := get(t, base+"/ch1.xhtml")
	if ct := header.Get("Content-Type"); !strings.HasPrefix(ct, "application/xhtml+xml") {
		t.Errorf("xhtml Content-Type = %q, want application/xhtml+xml", ct)
	}
	_, _, header = get(t, base+"/ch2.html")
	if ct := header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("html Content-Type = %q, want text/html", ct)
	}
}

func TestContentServer_MissingStaticFolders(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "doc.html"), "ok")

	srv := startTestServer(t, root)
	base := "http://" + srv.Addr()

	for _, p := range []string{"/static/x.css", "/static/reader/x.js"} {
		if status, _, _ := get(t, base+p); status != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", p, status)
		}
	}
	if status, _, _ := get(t, base+"/doc.html"); status != http.StatusOK {
		t.Errorf("root document status = %d, want 200", status)
	}
}

func TestContentServer_NoCacheHeaders(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "doc.html"), "ok")
	srv := startTestServer(t, root)

	_, _, header := get(t, "http://"+srv.Addr()+"/doc.html")
	if cc := header.Get("Cache-Control"); !strings.Contains(cc, "no-cache") {
		t.Errorf("Cache-Control = %q, want no-cache", cc)
	}
}

func TestContentServer_URL(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "chapter one.html"), "spaced")
	srv := startTestServer(t, root)

	url := srv.URL(Document{RelPath: "chapter one.html"})
	if !strings.HasPrefix(url, "http://"+srv.Addr()+"/") {
		t.Errorf("URL() = %q, want server prefix", url)
	}
	if strings.Contains(url, " ") {
		t.Errorf("URL() = %q, want escaped path", url)
	}
	if status, body, _ := get(t, url); status != http.StatusOK || body != "spaced" {
		t.Errorf("GET %s = %d %q, want 200 %q", url, status, body, "spaced")
	}
}

// ---------------------------------------------------------------------------
// TestContentServer - Lifecycle
// ---------------------------------------------------------------------------

func TestStartServer_PortBusy(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	_, err = StartServer(context.Background(), ServerConfig{Root: t.TempDir(), Port: port})
	if !errors.Is(err, ErrResourceBusy) {
		t.Fatalf("error = %v, want ErrResourceBusy", err)
	}
	if !strings.Contains(err.Error(), strconv.Itoa(port)) {
		t.Errorf("error %q should name the port", err)
	}
}

func TestStartServer_BindFailureIsNotPortBusy(t *testing.T) {
	t.Parallel()

	// 192.0.2.0/24 is reserved for documentation and never assigned locally.
	_, err := StartServer(context.Background(), ServerConfig{Root: t.TempDir(), Host: "192.0.2.1", Port: 0})
	if err == nil {
		t.Fatal("StartServer() on a non-local address should fail")
	}
	if errors.Is(err, ErrResourceBusy) {
		t.Errorf("error = %v, must not be ErrResourceBusy", err)
	}
	if !errors.Is(err, ErrServerStart) {
		t.Errorf("error = %v, want ErrServerStart", err)
	}
}

func TestStartServer_Validation(t *testing.T) {
	t.Parallel()

	if _, err := StartServer(context.Background(), ServerConfig{}); !errors.Is(err, ErrInvalidJob) {
		t.Errorf("empty root error = %v, want ErrInvalidJob", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := StartServer(ctx, ServerConfig{Root: t.TempDir()}); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled context error = %v, want context.Canceled", err)
	}
}

func TestContentServer_CloseIdempotent(t *testing.T) {
	t.Parallel()

	srv, err := StartServer(context.Background(), ServerConfig{Root: t.TempDir(), Port: 0})
	if err != nil {
		t.Fatal(err)
	}
	addr := srv.Addr()

	if err := srv.Close(context.Background()); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := srv.Close(context.Background()); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}

	// The port is free again.
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		t.Fatalf("port not released after Close: %v", err)
	}
	_ = ln.Close()
}

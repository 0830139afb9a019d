// Package html2pdf converts a directory of HTML/XHTML documents into one
// ordered PDF using headless Chrome.
//
// # Quick Start
//
//	conv := html2pdf.NewConverter(
//	    html2pdf.WithTimeout(45 * time.Second),
//	)
//
//	result, err := conv.Run(ctx, html2pdf.Job{
//	    InputDir:    "book/",
//	    OutputPath:  "book.pdf",
//	    Stylesheets: []string{"print.css"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if result.Empty {
//	    log.Print("nothing to convert")
//	}
//
// # Conversion Pipeline
//
// A run goes through these stages:
//
//  1. Start a local HTTP server for the input directory (127.0.0.1:3000)
//  2. Discover .html/.xhtml files, oldest modification time first
//  3. Load the extra stylesheets
//  4. Render each document in one Chrome tab: navigate, wait for network
//     idle, inject the stylesheets, print to an A4 PDF with 20mm margins
//  5. Merge the per-document PDFs into the output with pdfcpu
//  6. Remove the per-document PDFs (kept on failure or with WithKeepTemp)
//
// The server and the browser are released on every exit path. Documents are
// rendered one at a time; there is no parallel rendering.
//
// # Ordering
//
// Documents are sorted by modification time ascending. Files with the same
// modification time keep name order. Only the top level of the input
// directory is scanned.
//
// # Served Paths
//
// The browser loads documents from http://127.0.0.1:3000/<name>. Assets
// referenced as /static/... and /static/reader/... resolve to the matching
// subfolders of the input directory.
//
// # Errors
//
// Converter.Run returns a *StageError naming the failed stage and document.
// It unwraps to one of the sentinel errors:
//
//	ErrInvalidJob     - missing input directory or output path
//	ErrFilesystem     - unreadable input, stylesheet or work directory
//	ErrResourceBusy   - the server port is taken
//	ErrBrowserConnect - Chrome could not be launched
//	ErrNavigation     - a document did not load within the timeout
//	ErrRender         - stylesheet injection or printing failed
//	ErrMerge          - a per-document PDF is missing or invalid
//
// Use errors.Is() to check error types:
//
//	if errors.Is(err, html2pdf.ErrResourceBusy) {
//	    // another run holds the port
//	}
//
// # Browser Requirements
//
// Chrome is launched through go-rod. Set ROD_BROWSER_BIN to use an installed
// binary; otherwise rod downloads Chromium on first use. The sandbox is
// disabled in CI, in containers, or when ROD_NO_SANDBOX=1.
package html2pdf

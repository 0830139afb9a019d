package html2pdf

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// titleScanLimit caps how much of a document is read looking for <title>.
const titleScanLimit = 64 << 10

// documentExtensions lists eligible file extensions (compared lowercase).
var documentExtensions = []string{".html", ".xhtml"}

// Discover lists the .html and .xhtml files directly inside dir, oldest
// modification time first. Ties keep directory listing order, which is by
// file name. Subdirectories are not descended. An empty result is not an error.
func Discover(dir string) ([]Document, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving %s: %v", ErrFilesystem, dir, err)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %v", ErrFilesystem, root, err)
	}

	docs := make([]Document, 0, len(entries))
	for _, e := range entries {
		if !isDocumentName(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("%w: reading metadata of %s: %v", ErrFilesystem, e.Name(), err)
		}
		if !info.Mode().IsRegular() {
			continue
		}

		path := filepath.Join(root, e.Name())
		docs = append(docs, Document{
			Path:    path,
			RelPath: filepath.ToSlash(e.Name()),
			ModTime: info.ModTime(),
			Title:   readTitle(path),
		})
	}

	slices.SortStableFunc(docs, func(a, b Document) int {
		return a.ModTime.Compare(b.ModTime)
	})

	return docs, nil
}

func isDocumentName(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return slices.Contains(documentExtensions, ext)
}

// readTitle returns the text of the first <title> element, or "" if the
// file cannot be read or has none.
func readTitle(path string) string {
	f, err := os.Open(path) // #nosec G304 -- path comes from the listed input directory
	if err != nil {
		return ""
	}
	defer f.Close()

	z := html.NewTokenizer(io.LimitReader(f, titleScanLimit))
	inTitle := false
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			name, _ := z.TagName()
			if string(name) == "title" {
				inTitle = true
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "title":
				return strings.Join(strings.Fields(b.String()), " ")
			case "head":
				return ""
			}
		case html.TextToken:
			if inTitle {
				b.Write(z.Text())
			}
		}
	}
}

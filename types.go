package html2pdf

import (
	"time"
)

// Stage is a step of the conversion pipeline.
type Stage int

// Pipeline stages, in the order a successful run visits them.
const (
	StageIdle Stage = iota
	StageServerStarting
	StageDiscovering
	StageEmpty
	StageLoadingStyles
	StageRendering
	StageMerging
	StageFinalizing
	StageDone
	StageFailed
)

var stageNames = [...]string{
	StageIdle:           "idle",
	StageServerStarting: "server_starting",
	StageDiscovering:    "discovering",
	StageEmpty:          "empty",
	StageLoadingStyles:  "loading_styles",
	StageRendering:      "rendering",
	StageMerging:        "merging",
	StageFinalizing:     "finalizing",
	StageDone:           "done",
	StageFailed:         "failed",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// Document is one eligible input file.
type Document struct {
	Path    string    // absolute path on disk
	RelPath string    // slash-separated path relative to the input root, used in URLs
	ModTime time.Time // snapshot taken at discovery
	Title   string    // <title> text if present; diagnostics only
}

// Label returns the title when known, else the relative path.
func (d Document) Label() string {
	if d.Title != "" {
		return d.Title
	}
	return d.RelPath
}

// StyleSheet is the raw text of one external stylesheet.
type StyleSheet struct {
	Path    string
	Content string
}

// Artifact is the temporary single-document PDF rendered for Document.
// Index is the document's position in the ordered sequence and therefore
// its position in the merged output.
type Artifact struct {
	Index    int
	Document Document
	Path     string
}

// Job describes one conversion run.
type Job struct {
	InputDir    string   // directory holding the .html/.xhtml documents
	OutputPath  string   // merged PDF destination
	Stylesheets []string // injected into every document, in order
}

// Result describes what a run produced.
type Result struct {
	OutputPath string
	Documents  []Document
	Artifacts  []Artifact
	Pages      int
	Stage      Stage
	Duration   time.Duration
	Empty      bool // no eligible documents; no output was written
}

package html2pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/alnah/go-html2pdf/internal/fileutil"
)

// pdfcpu otherwise creates and reads a user config directory on first use.
var disableConfigDirOnce sync.Once

// PDFMerger concatenates single-document PDFs into one file. Pages are
// copied as PDF objects; nothing is re-rendered.
type PDFMerger struct {
	validation int // one of pdfcpu's model.Validation* modes
}

// NewPDFMerger returns a merger validating inputs in pdfcpu's relaxed mode,
// which accepts what Chrome emits.
func NewPDFMerger() *PDFMerger {
	disableConfigDirOnce.Do(api.DisableConfigDir)
	return &PDFMerger{validation: model.ValidationRelaxed}
}

// Merge validates every input, concatenates them in order and writes the
// result to dest in one step. It returns the page count of the output.
// On failure dest is left as it was.
func (m *PDFMerger) Merge(ctx context.Context, inputs []string, dest string) (int, error) {
	if len(inputs) == 0 {
		return 0, fmt.Errorf("%w: no inputs", ErrMerge)
	}

	readers := make([]io.ReadSeeker, 0, len(inputs))
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		data, err := os.ReadFile(in) // #nosec G304 -- inputs are this run's rendered artifacts
		if err != nil {
			return 0, fmt.Errorf("%w: reading %s: %v", ErrMerge, in, err)
		}
		if err := api.Validate(bytes.NewReader(data), m.newConf()); err != nil {
			return 0, fmt.Errorf("%w: invalid PDF %s: %v", ErrMerge, in, err)
		}
		readers = append(readers, bytes.NewReader(data))
	}

	var buf bytes.Buffer
	if err := api.MergeRaw(readers, &buf, false, m.newConf()); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMerge, err)
	}

	pages, err := api.PageCount(bytes.NewReader(buf.Bytes()), m.newConf())
	if err != nil {
		return 0, fmt.Errorf("%w: counting pages: %v", ErrMerge, err)
	}

	if err := fileutil.WriteFileAtomic(dest, buf.Bytes(), fileutil.FilePermissions); err != nil {
		return 0, fmt.Errorf("%w: writing %s: %v", ErrFilesystem, dest, err)
	}
	return pages, nil
}

// newConf returns a fresh configuration; pdfcpu commands mutate the one they get.
func (m *PDFMerger) newConf() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = m.validation
	return conf
}

package ocr

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/rotisserie/eris"
)

// PdfToText shells out to the poppler pdftotext binary. The -layout flag
// keeps column alignment, which Rows depends on to split cells.
type PdfToText struct {
	bin string
}

// NewPdfToText builds a PdfToText extractor. An empty bin falls back to
// "pdftotext" on PATH.
func NewPdfToText(bin string) *PdfToText {
	if bin == "" {
		bin = "pdftotext"
	}
	return &PdfToText{bin: bin}
}

// ExtractText converts the PDF at pdfPath to layout-preserving text.
func (p *PdfToText) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	var out, errOut bytes.Buffer
	cmd := exec.CommandContext(ctx, p.bin, "-layout", pdfPath, "-")
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	if err := cmd.Run(); err != nil {
		return "", eris.Wrapf(err, "ocr: pdftotext %s: %s", pdfPath, strings.TrimSpace(errOut.String()))
	}
	return out.String(), nil
}

// Package ocr pulls text out of PDF rent rolls. Most rent rolls arrive
// as spreadsheets, but a share of them are exported or scanned PDFs;
// this package turns those into the tabular rows the ingest parser
// expects.
package ocr

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/cre-analytics/internal/config"
)

// Extractor pulls the text content out of a PDF document.
type Extractor interface {
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// NewExtractor builds the extractor named by cfg.Provider. An empty
// provider selects the local pdftotext binary.
func NewExtractor(cfg config.OCRConfig) (Extractor, error) {
	switch cfg.Provider {
	case "local", "":
		return NewPdfToText(cfg.PdfToTextPath), nil
	case "mistral":
		if cfg.MistralKey == "" {
			return nil, eris.New("ocr: mistral provider requires ocr.mistral_key")
		}
		return NewMistralOCR(cfg.MistralKey, cfg.MistralModel), nil
	default:
		return nil, eris.Errorf("ocr: unknown provider %q", cfg.Provider)
	}
}

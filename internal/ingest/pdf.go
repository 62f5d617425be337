package ingest

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/cre-analytics/internal/model"
	"github.com/sells-group/cre-analytics/internal/ocr"
)

// ExtractPDF runs OCR over a PDF rent roll and parses the recognized
// rows. The extractor decides whether that is a local pdftotext pass or
// a remote OCR call.
func ExtractPDF(ctx context.Context, ex ocr.Extractor, path string) (*model.RentRoll, error) {
	text, err := ex.ExtractText(ctx, path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: ocr %s", path)
	}

	rows := ocr.Rows(text)
	if len(rows) == 0 {
		return nil, eris.Errorf("ingest: no tabular text recognized in %s", path)
	}
	zap.L().Debug("ocr recognized rows", zap.String("file", path), zap.Int("rows", len(rows)))

	return ExtractRows(rows)
}

// Package extract dispatches text extraction by file extension. PDF and
// image extraction delegate to the ocr package; docx and txt are handled
// in pure Go.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/medpass-app/medpass/constants"
	"github.com/medpass-app/medpass/internal/common"
	"github.com/medpass-app/medpass/internal/ocr"
)

type Dispatcher struct {
	ocr *ocr.Extractor
	log *slog.Logger
}

func NewDispatcher(ocrExtractor *ocr.Extractor, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{ocr: ocrExtractor, log: log}
}

// Extract picks a strategy based on the declared file extension.
func (d *Dispatcher) Extract(ctx context.Context, path, ext string) (string, error) {
	format := constants.MapExtToFormat(ext)
	d.log.Debug("extract.start", "path", path, "ext", ext, "format", string(format))

	switch format {
	case constants.PDF:
		return d.ocr.ExtractPDF(ctx, path)
	case constants.IMAGE:
		return d.ocr.ExtractImage(ctx, path)
	case constants.DOCX:
		return extractDocx(path)
	case constants.TEXT:
		return extractTxt(path)
	default:
		return "", fmt.Errorf("%w: %q", common.ErrUnsupportedFileType, ext)
	}
}

func extractTxt(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read text file: %w", err)
	}
	return string(data), nil
}

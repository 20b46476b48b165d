// Command extract runs the text-extraction and field-extraction stages over a
// single file and prints the result as JSON. Useful for tuning OCR setup
// without going through the HTTP surface.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/medpass-app/medpass/constants"
	"github.com/medpass-app/medpass/internal/common"
	"github.com/medpass-app/medpass/internal/extract"
	"github.com/medpass-app/medpass/internal/fields"
	"github.com/medpass-app/medpass/internal/ocr"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "extract <file>")
		os.Exit(2)
	}
	path := os.Args[1]

	cfg := common.LoadConfig()
	dispatcher := extract.NewDispatcher(ocr.NewExtractor(ocr.Config{
		Pdftotext:     cfg.OCR.Pdftotext,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
	}, logger), logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ext := constants.NormalizeExt(filepath.Ext(path))
	text, err := dispatcher.Extract(ctx, path, ext)
	if err != nil {
		logger.Error("extract failed", "path", path, "error", err)
		os.Exit(1)
	}

	out := struct {
		RecordType string        `json:"recordType"`
		Fields     fields.Fields `json:"fields"`
	}{
		RecordType: string(constants.Categorize(filepath.Base(path), text)),
		Fields:     fields.Extract(text),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Error("encode output", "error", err)
		os.Exit(1)
	}
}

package extract

import "context"

// TextExtractor turns a stored file into best-effort plain text.
// Unsupported extensions fail with common.ErrUnsupportedFileType; callers
// decide whether that is fatal (single-file preview) or resolves to empty
// text (batch ingestion).
type TextExtractor interface {
	Extract(ctx context.Context, path, ext string) (string, error)
}

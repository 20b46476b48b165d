package constants

import "strings"

// Format identifies the extraction strategy for a stored file.
type Format string

const (
	PDF   Format = "PDF"
	IMAGE Format = "IMAGE"
	DOCX  Format = "DOCX"
	TEXT  Format = "TEXT"
)

// AllowedExtensions holds the file extensions accepted for record ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"docx": {},
	"txt":  {},
}

// PreviewExtensions holds the extensions accepted by the single-file OCR
// preview endpoint, which is stricter than batch ingestion.
var PreviewExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a file extension to its extraction format.
// Returns "" for unsupported extensions.
func MapExtToFormat(ext string) Format {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "jpg", "jpeg", "png":
		return IMAGE
	case "docx":
		return DOCX
	case "txt":
		return TEXT
	default:
		return ""
	}
}

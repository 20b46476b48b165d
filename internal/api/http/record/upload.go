package record

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/medpass-app/medpass/constants"
	"github.com/medpass-app/medpass/internal/api/middleware/auth"
	"github.com/medpass-app/medpass/internal/fields"
	"github.com/medpass-app/medpass/internal/pipeline"
)

// UploadConfig bounds the multipart surface.
type UploadConfig struct {
	Dir          string
	MaxFileBytes int64
	MaxBatch     int
}

// UploadHandler serves the two multipart endpoints, which bypass the OpenAPI
// layer: single-file OCR preview and batch ingestion.
type UploadHandler struct {
	h   *Handler
	cfg UploadConfig
}

func NewUploadHandler(h *Handler, cfg UploadConfig) *UploadHandler {
	if cfg.MaxFileBytes <= 0 {
		cfg.MaxFileBytes = 20 << 20
	}
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = 10
	}
	return &UploadHandler{h: h, cfg: cfg}
}

// Preview extracts text and fields from one file without storing a record.
// Only PDF and image uploads are accepted here.
func (u *UploadHandler) Preview(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.GetUserID(r.Context()); !ok {
		writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err := r.ParseMultipartForm(u.cfg.MaxFileBytes); err != nil {
		writeJSONError(w, http.StatusBadRequest, "No file")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "No file")
		return
	}
	defer file.Close()

	ext := constants.NormalizeExt(filepath.Ext(header.Filename))
	if _, ok := constants.PreviewExtensions[ext]; !ok {
		writeJSONError(w, http.StatusBadRequest, "Unsupported file type")
		return
	}

	path, err := u.storeFile(file, header.Filename)
	if err != nil {
		u.h.log.Error("record.preview_store_failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "OCR failed")
		return
	}
	defer os.Remove(path) // preview files are throwaway

	text, err := u.h.pipeline.ExtractText(r.Context(), path, ext)
	if err != nil {
		u.h.log.Error("record.preview_extract_failed", "file", header.Filename, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "OCR failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":     true,
		"fields": fields.Extract(text),
	})
}

// Ingest stores up to MaxBatch files and runs the full pipeline over them.
func (u *UploadHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err := r.ParseMultipartForm(u.cfg.MaxFileBytes); err != nil {
		writeJSONError(w, http.StatusBadRequest, "No files")
		return
	}
	var headers []*multipart.FileHeader
	if r.MultipartForm != nil {
		headers = r.MultipartForm.File["files"]
	}
	if len(headers) == 0 {
		writeJSONError(w, http.StatusBadRequest, "No files")
		return
	}
	if len(headers) > u.cfg.MaxBatch {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Too many files (max %d)", u.cfg.MaxBatch))
		return
	}

	stored := make([]pipeline.StoredFile, 0, len(headers))
	for _, hdr := range headers {
		if hdr.Size > u.cfg.MaxFileBytes {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("File too large: %s", hdr.Filename))
			return
		}
		f, err := hdr.Open()
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "No files")
			return
		}
		path, err := u.storeFile(f, hdr.Filename)
		_ = f.Close()
		if err != nil {
			u.h.log.Error("record.upload_store_failed", "file", hdr.Filename, "error", err)
			writeJSONError(w, http.StatusInternalServerError, "Upload failed")
			return
		}
		stored = append(stored, pipeline.StoredFile{Path: path, OriginalName: hdr.Filename})
	}

	payloads, err := u.h.pipeline.IngestFiles(r.Context(), userID, stored)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Upload processing failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "records": payloads})
}

// Export streams the user's records as an XLSX workbook.
func (u *UploadHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	payloads, err := u.h.pipeline.ListRecords(r.Context(), userID)
	if err != nil {
		u.h.log.Error("record.export_list_failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Export failed")
		return
	}
	data, err := u.h.exporter.RecordsXLSX(userID, payloads)
	if err != nil {
		u.h.log.Error("record.export_failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Export failed")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="medpass-records-%s.xlsx"`, time.Now().Format("2006-01-02")))
	_, _ = w.Write(data)
}

// storeFile writes an upload under the uploads dir with a collision-resistant
// name: <unix-ms>-<rand>-<original>.
func (u *UploadHandler) storeFile(src io.Reader, originalName string) (string, error) {
	if err := os.MkdirAll(u.cfg.Dir, 0o750); err != nil {
		return "", err
	}
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), hex.EncodeToString(buf), filepath.Base(originalName))
	path := filepath.Join(u.cfg.Dir, name)

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, io.LimitReader(src, u.cfg.MaxFileBytes+1)); err != nil {
		_ = dst.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := dst.Close(); err != nil {
		return "", err
	}
	if fi, err := os.Stat(path); err == nil && fi.Size() > u.cfg.MaxFileBytes {
		_ = os.Remove(path)
		return "", errors.New("file exceeds size limit")
	}
	return path, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

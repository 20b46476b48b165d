package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medpass-app/medpass/constants"
	"github.com/medpass-app/medpass/internal/common"
	"github.com/medpass-app/medpass/internal/crypto"
	"github.com/medpass-app/medpass/internal/entity"
	"github.com/medpass-app/medpass/internal/extract"
	"github.com/medpass-app/medpass/internal/fields"
)

const summaryMaxRunes = 200

// RecordStore is the persistence surface the pipeline needs.
type RecordStore interface {
	Insert(ctx context.Context, rec *entity.Record) error
	ListByOwner(ctx context.Context, ownerID string) ([]entity.Record, error)
	GetOwned(ctx context.Context, id, ownerID string) (*entity.Record, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// StoredFile is an uploaded file already written under the uploads directory.
type StoredFile struct {
	Path         string
	OriginalName string
}

// Orchestrator runs the intake pipeline: extract text, pull out structured
// fields, categorize, encrypt, persist. It also owns the decrypt-on-read and
// delete paths so ciphertext never leaves this package.
type Orchestrator struct {
	extractor  extract.TextExtractor
	cipher     *crypto.Cipher
	records    RecordStore
	uploadsDir string
	log        *slog.Logger
}

func NewOrchestrator(ex extract.TextExtractor, c *crypto.Cipher, store RecordStore, uploadsDir string, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		extractor:  ex,
		cipher:     c,
		records:    store,
		uploadsDir: uploadsDir,
		log:        logger,
	}
}

// IngestFiles runs the full pipeline over a batch of stored uploads. Files
// with unsupported extensions still produce a record with empty extracted
// text. Any extraction, encryption, or storage error aborts the remainder of
// the batch; records inserted before the failure are kept.
func (o *Orchestrator) IngestFiles(ctx context.Context, ownerID string, files []StoredFile) ([]entity.Payload, error) {
	payloads := make([]entity.Payload, 0, len(files))
	for _, f := range files {
		payload, err := o.ingestOne(ctx, ownerID, f)
		if err != nil {
			o.log.Error("pipeline.ingest_failed", "file", f.OriginalName, "error", err)
			return payloads, err
		}
		payloads = append(payloads, *payload)
	}
	return payloads, nil
}

func (o *Orchestrator) ingestOne(ctx context.Context, ownerID string, f StoredFile) (*entity.Payload, error) {
	ext := constants.NormalizeExt(filepath.Ext(f.OriginalName))

	var text string
	if constants.MapExtToFormat(ext) != "" {
		extracted, err := o.extractor.Extract(ctx, f.Path, ext)
		if err != nil {
			return nil, fmt.Errorf("extract %q: %w", f.OriginalName, err)
		}
		text = extracted
	} else {
		o.log.Warn("pipeline.unsupported_extension", "file", f.OriginalName, "ext", ext)
	}

	fileURL := "/uploads/" + filepath.Base(f.Path)
	payload := o.buildPayload(ownerID, f.OriginalName, &fileURL, text)
	if err := o.sealAndInsert(ctx, payload); err != nil {
		return nil, err
	}
	o.log.Info("pipeline.record_ingested",
		"record_id", payload.ID,
		"file", f.OriginalName,
		"record_type", payload.RecordType,
		"text_chars", len(text))
	return payload, nil
}

// ExtractText runs only the text-extraction stage, for previews that do not
// persist a record.
func (o *Orchestrator) ExtractText(ctx context.Context, path, ext string) (string, error) {
	return o.extractor.Extract(ctx, path, ext)
}

// IngestText runs field extraction and storage over pasted text. No file is
// involved, so the stored payload has no file URL.
func (o *Orchestrator) IngestText(ctx context.Context, ownerID, title, text string) (*entity.Payload, error) {
	if strings.TrimSpace(text) == "" {
		return nil, common.WrapError(common.ErrInvalidInput, "text is required")
	}
	if strings.TrimSpace(title) == "" {
		title = "Manual entry"
	}
	payload := o.buildPayload(ownerID, title, nil, text)
	if err := o.sealAndInsert(ctx, payload); err != nil {
		return nil, err
	}
	o.log.Info("pipeline.manual_record_ingested", "record_id", payload.ID, "record_type", payload.RecordType)
	return payload, nil
}

// SaveStructured validates and stores an already-structured record, skipping
// extraction entirely.
func (o *Orchestrator) SaveStructured(ctx context.Context, ownerID string, raw json.RawMessage) (*entity.Payload, error) {
	if err := ValidateStructuredRecord(raw); err != nil {
		return nil, err
	}
	var in struct {
		FileName   string        `json:"fileName"`
		RecordType string        `json:"recordType"`
		Summary    string        `json:"summary"`
		Fields     fields.Fields `json:"fields"`
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, common.WrapError(common.ErrInvalidInput, fmt.Sprintf("parse record: %v", err))
	}

	payload := &entity.Payload{
		ID:         uuid.NewString(),
		UserID:     ownerID,
		FileName:   in.FileName,
		RecordType: in.RecordType,
		Summary:    truncateRunes(in.Summary, summaryMaxRunes),
		UploadedAt: time.Now().UTC().Format(time.RFC3339Nano),
		Fields:     in.Fields,
	}
	if err := o.sealAndInsert(ctx, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// ListRecords returns all of the owner's records decrypted, newest first.
// A blob that fails to decrypt fails the whole call; a wrong or rotated key
// should be loud, not silently shrink the list.
func (o *Orchestrator) ListRecords(ctx context.Context, ownerID string) ([]entity.Payload, error) {
	recs, err := o.records.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	payloads := make([]entity.Payload, 0, len(recs))
	for _, rec := range recs {
		var p entity.Payload
		if err := o.cipher.Open(rec.Data, &p); err != nil {
			o.log.Error("pipeline.decrypt_failed", "record_id", rec.ID, "error", err)
			return nil, err
		}
		payloads = append(payloads, p)
	}
	return payloads, nil
}

// DeleteRecord removes a record and, best effort, its uploaded file. The file
// is only unlinked when the stored URL resolves inside the uploads directory.
func (o *Orchestrator) DeleteRecord(ctx context.Context, id, ownerID string) error {
	rec, err := o.records.GetOwned(ctx, id, ownerID)
	if err != nil {
		return err
	}

	var p entity.Payload
	if err := o.cipher.Open(rec.Data, &p); err != nil {
		// Still delete the row; an undecryptable blob is not worth keeping.
		o.log.Warn("pipeline.delete_decrypt_failed", "record_id", id, "error", err)
	} else if p.FileURL != nil {
		o.removeUpload(*p.FileURL)
	}

	return o.records.Delete(ctx, id, ownerID)
}

func (o *Orchestrator) removeUpload(fileURL string) {
	name := filepath.Base(fileURL)
	full := filepath.Join(o.uploadsDir, name)

	absDir, err := filepath.Abs(o.uploadsDir)
	if err != nil {
		return
	}
	absFile, err := filepath.Abs(full)
	if err != nil {
		return
	}
	if !strings.HasPrefix(absFile, absDir+string(os.PathSeparator)) {
		o.log.Warn("pipeline.unlink_refused", "file_url", fileURL)
		return
	}
	if err := os.Remove(absFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		o.log.Warn("pipeline.unlink_failed", "path", absFile, "error", err)
	}
}

func (o *Orchestrator) buildPayload(ownerID, fileName string, fileURL *string, text string) *entity.Payload {
	extracted := fields.Extract(text)
	summary := extracted.Diagnosis
	if summary == "" {
		summary = extracted.RawText
	}
	return &entity.Payload{
		ID:         uuid.NewString(),
		UserID:     ownerID,
		FileName:   fileName,
		FileURL:    fileURL,
		RecordType: string(constants.Categorize(fileName, text)),
		Summary:    truncateRunes(summary, summaryMaxRunes),
		UploadedAt: time.Now().UTC().Format(time.RFC3339Nano),
		Fields:     extracted,
	}
}

func (o *Orchestrator) sealAndInsert(ctx context.Context, p *entity.Payload) error {
	blob, err := o.cipher.Seal(p)
	if err != nil {
		return fmt.Errorf("encrypt record: %w", err)
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, p.UploadedAt)
	return o.records.Insert(ctx, &entity.Record{
		ID:        p.ID,
		OwnerID:   p.UserID,
		CreatedAt: createdAt,
		Data:      blob,
	})
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

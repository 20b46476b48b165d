package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medpass-app/medpass/internal/common"
	"github.com/medpass-app/medpass/internal/crypto"
	"github.com/medpass-app/medpass/internal/entity"
)

type fakeExtractor struct {
	texts map[string]string // keyed by base name
	err   error
}

func (f *fakeExtractor) Extract(_ context.Context, path, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.texts[filepath.Base(path)], nil
}

type memStore struct {
	records   []entity.Record
	failAfter int // -1 means never fail
}

func (m *memStore) Insert(_ context.Context, rec *entity.Record) error {
	if m.failAfter >= 0 && len(m.records) >= m.failAfter {
		return common.ErrDatabase
	}
	m.records = append(m.records, *rec)
	return nil
}

func (m *memStore) ListByOwner(_ context.Context, ownerID string) ([]entity.Record, error) {
	var out []entity.Record
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].OwnerID == ownerID {
			out = append(out, m.records[i])
		}
	}
	return out, nil
}

func (m *memStore) GetOwned(_ context.Context, id, ownerID string) (*entity.Record, error) {
	for _, rec := range m.records {
		if rec.ID == id && rec.OwnerID == ownerID {
			r := rec
			return &r, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m *memStore) Delete(_ context.Context, id, ownerID string) error {
	for i, rec := range m.records {
		if rec.ID == id && rec.OwnerID == ownerID {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

func testCipher(t *testing.T) *crypto.Cipher {
	t.Helper()
	key := sha256.Sum256([]byte("orchestrator test key"))
	c, err := crypto.NewCipher(key[:])
	require.NoError(t, err)
	return c
}

func newTestOrchestrator(t *testing.T, ex *fakeExtractor, store *memStore, uploadsDir string) *Orchestrator {
	t.Helper()
	if store.failAfter == 0 {
		store.failAfter = -1
	}
	return NewOrchestrator(ex, testCipher(t), store, uploadsDir, slog.Default())
}

func writeUpload(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o600))
	return path
}

func TestIngestFiles_FullPipeline(t *testing.T) {
	dir := t.TempDir()
	ex := &fakeExtractor{texts: map[string]string{
		"1-a-visit.pdf": "Diagnosis: Hypertension. Rx: Amlodipine 5mg. Follow up: 2 weeks. Dr. Asha Rao, City Hospital, 12/05/2024",
	}}
	store := &memStore{}
	o := newTestOrchestrator(t, ex, store, dir)

	path := writeUpload(t, dir, "1-a-visit.pdf")
	payloads, err := o.IngestFiles(context.Background(), "u1", []StoredFile{{Path: path, OriginalName: "visit.pdf"}})
	require.NoError(t, err)
	require.Len(t, payloads, 1)

	p := payloads[0]
	assert.Equal(t, "visit.pdf", p.FileName)
	assert.Equal(t, "Prescription", p.RecordType) // "Rx" in the text wins over everything else
	assert.Equal(t, "Hypertension.", p.Fields.Diagnosis)
	assert.Equal(t, "Amlodipine 5mg.", p.Fields.Medicines)
	assert.Equal(t, "Dr. Asha Rao", p.Fields.Doctor)
	assert.Equal(t, "Hypertension.", p.Summary)
	require.NotNil(t, p.FileURL)
	assert.Equal(t, "/uploads/1-a-visit.pdf", *p.FileURL)

	// Stored blob is ciphertext, not plaintext JSON.
	require.Len(t, store.records, 1)
	assert.NotContains(t, string(store.records[0].Data), "Hypertension")
}

func TestIngestFiles_UnsupportedExtensionStoresEmptyText(t *testing.T) {
	dir := t.TempDir()
	store := &memStore{}
	o := newTestOrchestrator(t, &fakeExtractor{err: errors.New("extractor must not run")}, store, dir)

	path := writeUpload(t, dir, "1-b-notes.xyz")
	payloads, err := o.IngestFiles(context.Background(), "u1", []StoredFile{{Path: path, OriginalName: "notes.xyz"}})
	require.NoError(t, err)
	require.Len(t, payloads, 1)
	assert.Empty(t, payloads[0].Fields.RawText)
	assert.Equal(t, "Other", payloads[0].RecordType)
}

func TestIngestFiles_FailureAbortsButKeepsEarlierRecords(t *testing.T) {
	dir := t.TempDir()
	ex := &fakeExtractor{texts: map[string]string{"1-a.txt": "first", "2-b.txt": "second"}}
	store := &memStore{failAfter: 1}
	o := newTestOrchestrator(t, ex, store, dir)

	files := []StoredFile{
		{Path: writeUpload(t, dir, "1-a.txt"), OriginalName: "a.txt"},
		{Path: writeUpload(t, dir, "2-b.txt"), OriginalName: "b.txt"},
	}
	payloads, err := o.IngestFiles(context.Background(), "u1", files)
	require.Error(t, err)
	assert.Len(t, payloads, 1)
	assert.Len(t, store.records, 1) // the first insert survives the abort
}

func TestIngestText(t *testing.T) {
	store := &memStore{}
	o := newTestOrchestrator(t, &fakeExtractor{}, store, t.TempDir())

	p, err := o.IngestText(context.Background(), "u1", "Blood report", "Report: glucose 140 mg/dL")
	require.NoError(t, err)
	assert.Equal(t, "Report", p.RecordType)
	assert.Nil(t, p.FileURL)

	_, err = o.IngestText(context.Background(), "u1", "x", "   ")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestSaveStructured(t *testing.T) {
	store := &memStore{}
	o := newTestOrchestrator(t, &fakeExtractor{}, store, t.TempDir())

	raw := json.RawMessage(`{"fileName":"bp log","recordType":"Report","summary":"home readings","fields":{"rawText":"120/80"}}`)
	p, err := o.SaveStructured(context.Background(), "u1", raw)
	require.NoError(t, err)
	assert.Equal(t, "bp log", p.FileName)
	assert.Equal(t, "Report", p.RecordType)

	_, err = o.SaveStructured(context.Background(), "u1", json.RawMessage(`{"recordType":"Bogus"}`))
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestListRecords_DecryptsNewestFirst(t *testing.T) {
	store := &memStore{}
	o := newTestOrchestrator(t, &fakeExtractor{}, store, t.TempDir())
	ctx := context.Background()

	_, err := o.IngestText(ctx, "u1", "first", "older entry")
	require.NoError(t, err)
	second, err := o.IngestText(ctx, "u1", "second", "newer entry")
	require.NoError(t, err)

	got, err := o.ListRecords(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)

	// Another user sees nothing.
	other, err := o.ListRecords(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestListRecords_CorruptBlobFails(t *testing.T) {
	store := &memStore{}
	o := newTestOrchestrator(t, &fakeExtractor{}, store, t.TempDir())
	ctx := context.Background()

	_, err := o.IngestText(ctx, "u1", "t", "some text")
	require.NoError(t, err)
	store.records[0].Data[len(store.records[0].Data)-1] ^= 0xff

	_, err = o.ListRecords(ctx, "u1")
	assert.ErrorIs(t, err, common.ErrDecrypt)
}

func TestDeleteRecord_RemovesFileInsideUploadsDir(t *testing.T) {
	dir := t.TempDir()
	ex := &fakeExtractor{texts: map[string]string{"1-x-scan.txt": "MRI result"}}
	store := &memStore{}
	o := newTestOrchestrator(t, ex, store, dir)
	ctx := context.Background()

	path := writeUpload(t, dir, "1-x-scan.txt")
	payloads, err := o.IngestFiles(ctx, "u1", []StoredFile{{Path: path, OriginalName: "scan.txt"}})
	require.NoError(t, err)

	require.NoError(t, o.DeleteRecord(ctx, payloads[0].ID, "u1"))
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
	assert.Empty(t, store.records)
}

func TestDeleteRecord_WrongOwner(t *testing.T) {
	store := &memStore{}
	o := newTestOrchestrator(t, &fakeExtractor{}, store, t.TempDir())
	ctx := context.Background()

	p, err := o.IngestText(ctx, "u1", "t", "text")
	require.NoError(t, err)

	err = o.DeleteRecord(ctx, p.ID, "u2")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Len(t, store.records, 1)
}

func TestValidateStructuredRecord(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid minimal", `{"fileName":"a","recordType":"Other"}`, false},
		{"missing fileName", `{"recordType":"Other"}`, true},
		{"bad recordType", `{"fileName":"a","recordType":"Invoice"}`, true},
		{"unknown field", `{"fileName":"a","recordType":"Other","extra":1}`, true},
		{"not JSON", `{`, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStructuredRecord(json.RawMessage(tc.raw))
			if tc.wantErr {
				assert.ErrorIs(t, err, common.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/medpass-app/medpass/internal/common"
	"github.com/medpass-app/medpass/internal/entity"
)

// RecordRepository persists encrypted record blobs. The repository never sees
// plaintext; decryption happens in the pipeline layer.
type RecordRepository struct {
	db  *sql.DB
	log *slog.Logger
}

func NewRecordRepository(db *sql.DB, logger *slog.Logger) *RecordRepository {
	return &RecordRepository{db: db, log: logger}
}

func (r *RecordRepository) Insert(ctx context.Context, rec *entity.Record) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO records (id, user_id, created_at, data_enc) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.OwnerID, fmtTime(rec.CreatedAt), rec.Data)
	if err != nil {
		r.log.Error("record.insert_failed", "record_id", rec.ID, "error", err)
		return common.WrapError(common.ErrDatabase, fmt.Sprintf("insert record: %v", err))
	}
	r.log.Debug("record.inserted", "record_id", rec.ID, "owner_id", rec.OwnerID, "blob_bytes", len(rec.Data))
	return nil
}

// ListByOwner returns the owner's records newest first.
func (r *RecordRepository) ListByOwner(ctx context.Context, ownerID string) ([]entity.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, created_at, data_enc FROM records
		 WHERE user_id = ? ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, common.WrapError(common.ErrDatabase, fmt.Sprintf("list records: %v", err))
	}
	defer rows.Close()

	var out []entity.Record
	for rows.Next() {
		var rec entity.Record
		var created string
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &created, &rec.Data); err != nil {
			return nil, common.WrapError(common.ErrDatabase, fmt.Sprintf("scan record: %v", err))
		}
		rec.CreatedAt = parseTime(created)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, common.WrapError(common.ErrDatabase, fmt.Sprintf("iterate records: %v", err))
	}
	return out, nil
}

// GetOwned fetches a record only if it belongs to ownerID.
func (r *RecordRepository) GetOwned(ctx context.Context, id, ownerID string) (*entity.Record, error) {
	var rec entity.Record
	var created string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, created_at, data_enc FROM records WHERE id = ? AND user_id = ?`,
		id, ownerID).Scan(&rec.ID, &rec.OwnerID, &created, &rec.Data)
	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.WrapError(common.ErrDatabase, fmt.Sprintf("get record: %v", err))
	}
	rec.CreatedAt = parseTime(created)
	return &rec, nil
}

func (r *RecordRepository) Delete(ctx context.Context, id, ownerID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM records WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return common.WrapError(common.ErrDatabase, fmt.Sprintf("delete record: %v", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return common.WrapError(common.ErrDatabase, fmt.Sprintf("delete record: %v", err))
	}
	if n == 0 {
		return common.ErrNotFound
	}
	r.log.Info("record.deleted", "record_id", id, "owner_id", ownerID)
	return nil
}

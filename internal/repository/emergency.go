package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/medpass-app/medpass/internal/common"
)

// EmergencyRepository stores one encrypted emergency profile per user.
type EmergencyRepository struct {
	db  *sql.DB
	log *slog.Logger
}

func NewEmergencyRepository(db *sql.DB, logger *slog.Logger) *EmergencyRepository {
	return &EmergencyRepository{db: db, log: logger}
}

func (r *EmergencyRepository) Upsert(ctx context.Context, userID string, blob []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO emergency_info (user_id, data_enc, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET data_enc = excluded.data_enc, updated_at = excluded.updated_at`,
		userID, blob, fmtTime(time.Now()))
	if err != nil {
		return common.WrapError(common.ErrDatabase, fmt.Sprintf("upsert emergency info: %v", err))
	}
	r.log.Debug("emergency.upserted", "user_id", userID, "blob_bytes", len(blob))
	return nil
}

func (r *EmergencyRepository) Get(ctx context.Context, userID string) ([]byte, error) {
	var blob []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT data_enc FROM emergency_info WHERE user_id = ?`, userID).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.WrapError(common.ErrDatabase, fmt.Sprintf("get emergency info: %v", err))
	}
	return blob, nil
}

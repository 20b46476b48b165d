package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/medpass-app/medpass/internal/common"
)

// SessionRepository stores hashed session tokens. Only the sha256 hex of a
// token is ever persisted, so a database leak cannot be replayed as cookies.
type SessionRepository struct {
	db  *sql.DB
	log *slog.Logger
}

func NewSessionRepository(db *sql.DB, logger *slog.Logger) *SessionRepository {
	return &SessionRepository{db: db, log: logger}
}

func (r *SessionRepository) Create(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (token_hash, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		tokenHash, userID, fmtTime(expiresAt), fmtTime(time.Now()))
	if err != nil {
		return common.WrapError(common.ErrDatabase, fmt.Sprintf("create session: %v", err))
	}
	return nil
}

// Lookup resolves a token hash to its user. Expired sessions are treated as
// absent and removed opportunistically.
func (r *SessionRepository) Lookup(ctx context.Context, tokenHash string) (string, error) {
	var userID, expires string
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, expires_at FROM sessions WHERE token_hash = ?`, tokenHash).
		Scan(&userID, &expires)
	if err == sql.ErrNoRows {
		return "", common.ErrUnauthorized
	}
	if err != nil {
		return "", common.WrapError(common.ErrDatabase, fmt.Sprintf("lookup session: %v", err))
	}
	if time.Now().After(parseTime(expires)) {
		_ = r.Delete(ctx, tokenHash)
		return "", common.ErrUnauthorized
	}
	return userID, nil
}

func (r *SessionRepository) Delete(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = ?`, tokenHash)
	if err != nil {
		return common.WrapError(common.ErrDatabase, fmt.Sprintf("delete session: %v", err))
	}
	return nil
}

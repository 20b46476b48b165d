package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/medpass-app/medpass/internal/common"
)

// CookieName is the session cookie issued on login and signup.
const CookieName = "mp_session"

// SessionTTL bounds how long an issued session stays valid.
const SessionTTL = 7 * 24 * time.Hour

// SessionStore is the persistence surface for hashed session tokens.
type SessionStore interface {
	Create(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error
	Lookup(ctx context.Context, tokenHash string) (string, error)
	Delete(ctx context.Context, tokenHash string) error
}

// Sessions issues and validates opaque session tokens. The raw token lives
// only in the client cookie; the store sees its sha256 hex.
type Sessions struct {
	store SessionStore
	log   *slog.Logger
}

func NewSessions(store SessionStore, logger *slog.Logger) *Sessions {
	return &Sessions{store: store, log: logger}
}

func (s *Sessions) Create(ctx context.Context, userID string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	token := hex.EncodeToString(buf)
	if err := s.store.Create(ctx, hashToken(token), userID, time.Now().Add(SessionTTL)); err != nil {
		return "", err
	}
	s.log.Debug("auth.session_created", "user_id", userID)
	return token, nil
}

func (s *Sessions) Validate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", common.ErrUnauthorized
	}
	return s.store.Lookup(ctx, hashToken(token))
}

func (s *Sessions) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.store.Delete(ctx, hashToken(token))
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/medpass-app/medpass/internal/common"
	"github.com/medpass-app/medpass/internal/entity"
)

// PredictionRepository keeps a history of risk assessments per user.
type PredictionRepository struct {
	db  *sql.DB
	log *slog.Logger
}

func NewPredictionRepository(db *sql.DB, logger *slog.Logger) *PredictionRepository {
	return &PredictionRepository{db: db, log: logger}
}

func (r *PredictionRepository) Insert(ctx context.Context, p *entity.Prediction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO predictions (id, user_id, created_at, input_json, result_json) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.OwnerID, fmtTime(p.CreatedAt), []byte(p.Input), []byte(p.Result))
	if err != nil {
		return common.WrapError(common.ErrDatabase, fmt.Sprintf("insert prediction: %v", err))
	}
	return nil
}

// ChatRepository stores the assistant conversation per user.
type ChatRepository struct {
	db  *sql.DB
	log *slog.Logger
}

func NewChatRepository(db *sql.DB, logger *slog.Logger) *ChatRepository {
	return &ChatRepository{db: db, log: logger}
}

func (r *ChatRepository) Insert(ctx context.Context, m *entity.ChatMessage) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO assistant_chats (id, user_id, created_at, role, message, language) VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.OwnerID, fmtTime(m.CreatedAt), m.Role, m.Message, m.Language)
	if err != nil {
		return common.WrapError(common.ErrDatabase, fmt.Sprintf("insert chat message: %v", err))
	}
	return nil
}

// ListByOwner returns the conversation oldest first, capped at 200 messages.
func (r *ChatRepository) ListByOwner(ctx context.Context, ownerID string) ([]entity.ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, created_at, role, message, language FROM assistant_chats
		 WHERE user_id = ? ORDER BY created_at ASC, id ASC LIMIT 200`, ownerID)
	if err != nil {
		return nil, common.WrapError(common.ErrDatabase, fmt.Sprintf("list chat: %v", err))
	}
	defer rows.Close()

	var out []entity.ChatMessage
	for rows.Next() {
		var m entity.ChatMessage
		var created string
		if err := rows.Scan(&m.ID, &created, &m.Role, &m.Message, &m.Language); err != nil {
			return nil, common.WrapError(common.ErrDatabase, fmt.Sprintf("scan chat: %v", err))
		}
		m.OwnerID = ownerID
		m.CreatedAt = parseTime(created)
		out = append(out, m)
	}
	return out, rows.Err()
}

// SummaryRepository stores generated medical summaries.
type SummaryRepository struct {
	db  *sql.DB
	log *slog.Logger
}

func NewSummaryRepository(db *sql.DB, logger *slog.Logger) *SummaryRepository {
	return &SummaryRepository{db: db, log: logger}
}

func (r *SummaryRepository) Insert(ctx context.Context, s *entity.SummaryRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO medical_summaries (id, user_id, created_at, summary_json) VALUES (?, ?, ?, ?)`,
		s.ID, s.OwnerID, fmtTime(s.CreatedAt), []byte(s.Summary))
	if err != nil {
		return common.WrapError(common.ErrDatabase, fmt.Sprintf("insert summary: %v", err))
	}
	return nil
}

// Latest returns the most recent stored summary for the user.
func (r *SummaryRepository) Latest(ctx context.Context, ownerID string) (*entity.SummaryRecord, error) {
	var s entity.SummaryRecord
	var created string
	var raw []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT id, created_at, summary_json FROM medical_summaries
		 WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`, ownerID).
		Scan(&s.ID, &created, &raw)
	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.WrapError(common.ErrDatabase, fmt.Sprintf("latest summary: %v", err))
	}
	s.OwnerID = ownerID
	s.CreatedAt = parseTime(created)
	s.Summary = raw
	return &s, nil
}

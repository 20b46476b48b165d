package aiapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/medpass-app/medpass/internal/ai"
	"github.com/medpass-app/medpass/internal/api/middleware/auth"
	"github.com/medpass-app/medpass/internal/common"
	"github.com/medpass-app/medpass/internal/entity"
	"github.com/medpass-app/medpass/internal/pipeline"
)

type PredictionStore interface {
	Insert(ctx context.Context, p *entity.Prediction) error
}

type ChatStore interface {
	Insert(ctx context.Context, m *entity.ChatMessage) error
	ListByOwner(ctx context.Context, ownerID string) ([]entity.ChatMessage, error)
}

type SummaryStore interface {
	Insert(ctx context.Context, s *entity.SummaryRecord) error
	Latest(ctx context.Context, ownerID string) (*entity.SummaryRecord, error)
}

type Handler struct {
	pipeline    *pipeline.Orchestrator
	summarizer  *ai.Summarizer
	assistant   *ai.Assistant
	predictions PredictionStore
	chats       ChatStore
	summaries   SummaryStore
	log         *slog.Logger
	middleware  huma.Middlewares
}

func NewHandler(
	p *pipeline.Orchestrator,
	summarizer *ai.Summarizer,
	assistant *ai.Assistant,
	predictions PredictionStore,
	chats ChatStore,
	summaries SummaryStore,
	logger *slog.Logger,
	mws huma.Middlewares,
) *Handler {
	return &Handler{
		pipeline:    p,
		summarizer:  summarizer,
		assistant:   assistant,
		predictions: predictions,
		chats:       chats,
		summaries:   summaries,
		log:         logger,
		middleware:  mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.predictOp(), h.predict)
	huma.Register(api, h.summaryOp(), h.summary)
	huma.Register(api, h.latestSummaryOp(), h.latestSummary)
	huma.Register(api, h.historyOp(), h.history)
	huma.Register(api, h.messageOp(), h.message)
}

func (h *Handler) predict(ctx context.Context, input *predictInput) (*predictOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	result := ai.Predict(input.Body)

	inputJSON, _ := json.Marshal(input.Body)
	resultJSON, _ := json.Marshal(result)
	p := &entity.Prediction{
		ID:        uuid.NewString(),
		OwnerID:   userID,
		CreatedAt: time.Now().UTC(),
		Input:     inputJSON,
		Result:    resultJSON,
	}
	if err := h.predictions.Insert(ctx, p); err != nil {
		h.log.Error("ai.prediction_store_failed", "error", err)
		return nil, huma.Error500InternalServerError("prediction failed")
	}

	return &predictOutput{Body: PredictResponse{
		OK: true,
		Prediction: PredictionDetails{
			ID:        p.ID,
			CreatedAt: p.CreatedAt.Format(time.RFC3339Nano),
			Input:     input.Body,
			Result:    result,
		},
	}}, nil
}

func (h *Handler) summary(ctx context.Context, _ *struct{}) (*summaryOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	payloads, err := h.pipeline.ListRecords(ctx, userID)
	if err != nil {
		h.log.Error("ai.summary_list_failed", "error", err)
		return nil, huma.Error500InternalServerError("summary generation failed")
	}
	if len(payloads) == 0 {
		empty := ai.EmptySummary()
		return &summaryOutput{Body: SummaryResponse{OK: true, Summary: &empty}}, nil
	}

	summary := h.summarizer.Summarize(ctx, recordText(payloads))

	summaryJSON, _ := json.Marshal(summary)
	rec := &entity.SummaryRecord{
		ID:        uuid.NewString(),
		OwnerID:   userID,
		CreatedAt: time.Now().UTC(),
		Summary:   summaryJSON,
	}
	if err := h.summaries.Insert(ctx, rec); err != nil {
		h.log.Error("ai.summary_store_failed", "error", err)
		return nil, huma.Error500InternalServerError("summary generation failed")
	}

	return &summaryOutput{Body: SummaryResponse{
		OK:        true,
		ID:        rec.ID,
		CreatedAt: rec.CreatedAt.Format(time.RFC3339Nano),
		Summary:   &summary,
	}}, nil
}

func (h *Handler) latestSummary(ctx context.Context, _ *struct{}) (*summaryOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	rec, err := h.summaries.Latest(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return &summaryOutput{Body: SummaryResponse{OK: true, Summary: nil}}, nil
		}
		return nil, huma.Error500InternalServerError("summary lookup failed")
	}
	var summary ai.Summary
	if err := json.Unmarshal(rec.Summary, &summary); err != nil {
		h.log.Error("ai.summary_decode_failed", "summary_id", rec.ID, "error", err)
		return nil, huma.Error500InternalServerError("summary lookup failed")
	}
	return &summaryOutput{Body: SummaryResponse{
		OK:        true,
		ID:        rec.ID,
		CreatedAt: rec.CreatedAt.Format(time.RFC3339Nano),
		Summary:   &summary,
	}}, nil
}

func (h *Handler) history(ctx context.Context, _ *struct{}) (*historyOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	items, err := h.chats.ListByOwner(ctx, userID)
	if err != nil {
		h.log.Error("ai.history_failed", "error", err)
		return nil, huma.Error500InternalServerError("history lookup failed")
	}
	if items == nil {
		items = []entity.ChatMessage{}
	}
	return &historyOutput{Body: HistoryResponse{OK: true, Items: items}}, nil
}

func (h *Handler) message(ctx context.Context, input *messageInput) (*messageOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	language := input.Body.Language
	if language == "" {
		language = ai.DetectLanguage(input.Body.Message)
	}

	now := time.Now().UTC()
	userMsg := &entity.ChatMessage{
		ID:        uuid.NewString(),
		OwnerID:   userID,
		CreatedAt: now,
		Role:      "user",
		Message:   input.Body.Message,
		Language:  language,
	}
	if err := h.chats.Insert(ctx, userMsg); err != nil {
		h.log.Error("ai.chat_store_failed", "error", err)
		return nil, huma.Error500InternalServerError("assistant failed")
	}

	reply := h.assistant.Reply(ctx, input.Body.Message, language)

	assistantMsg := &entity.ChatMessage{
		ID:        uuid.NewString(),
		OwnerID:   userID,
		CreatedAt: time.Now().UTC(),
		Role:      "assistant",
		Message:   reply,
		Language:  language,
	}
	if err := h.chats.Insert(ctx, assistantMsg); err != nil {
		h.log.Error("ai.chat_store_failed", "error", err)
		return nil, huma.Error500InternalServerError("assistant failed")
	}

	return &messageOutput{Body: MessageResponse{OK: true, Reply: reply, Language: language}}, nil
}

// recordText flattens decrypted payloads into the text blob handed to the
// summarizer: summary, diagnosis, medicines and raw text per record.
func recordText(payloads []entity.Payload) string {
	blocks := make([]string, 0, len(payloads))
	for _, p := range payloads {
		parts := make([]string, 0, 4)
		for _, s := range []string{p.Summary, p.Fields.Diagnosis, p.Fields.Medicines, p.Fields.RawText} {
			if s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) > 0 {
			blocks = append(blocks, strings.Join(parts, "\n"))
		}
	}
	return strings.Join(blocks, "\n\n")
}

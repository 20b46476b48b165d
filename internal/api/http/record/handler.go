package record

import (
	"context"
	"errors"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"

	"github.com/medpass-app/medpass/internal/api/middleware/auth"
	"github.com/medpass-app/medpass/internal/common"
	"github.com/medpass-app/medpass/internal/entity"
	"github.com/medpass-app/medpass/internal/export"
	"github.com/medpass-app/medpass/internal/pipeline"
)

type Handler struct {
	pipeline   *pipeline.Orchestrator
	exporter   *export.Service
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(p *pipeline.Orchestrator, exporter *export.Service, logger *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		pipeline:   p,
		exporter:   exporter,
		log:        logger,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.manualOp(), h.manual)
	huma.Register(api, h.createOp(), h.create)
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.deleteOp(), h.delete)
}

func (h *Handler) manual(ctx context.Context, input *manualInput) (*recordOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	payload, err := h.pipeline.IngestText(ctx, userID, input.Body.Title, input.Body.Text)
	if err != nil {
		if errors.Is(err, common.ErrInvalidInput) {
			return nil, huma.Error400BadRequest(err.Error())
		}
		h.log.Error("record.manual_failed", "error", err)
		return nil, huma.Error500InternalServerError("save failed")
	}
	return &recordOutput{Body: RecordResponse{OK: true, Record: *payload}}, nil
}

func (h *Handler) create(ctx context.Context, input *createInput) (*recordOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	payload, err := h.pipeline.SaveStructured(ctx, userID, input.RawBody)
	if err != nil {
		if errors.Is(err, common.ErrInvalidInput) {
			return nil, huma.Error400BadRequest(err.Error())
		}
		h.log.Error("record.create_failed", "error", err)
		return nil, huma.Error500InternalServerError("save failed")
	}
	return &recordOutput{Body: RecordResponse{OK: true, Record: *payload}}, nil
}

func (h *Handler) list(ctx context.Context, _ *struct{}) (*listOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	payloads, err := h.pipeline.ListRecords(ctx, userID)
	if err != nil {
		h.log.Error("record.list_failed", "error", err)
		return nil, huma.Error500InternalServerError("list failed")
	}
	if payloads == nil {
		payloads = []entity.Payload{}
	}
	return &listOutput{Body: ListResponse{OK: true, Records: payloads}}, nil
}

func (h *Handler) delete(ctx context.Context, input *deleteInput) (*deleteOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	if err := h.pipeline.DeleteRecord(ctx, input.ID, userID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, huma.Error404NotFound("record not found")
		}
		h.log.Error("record.delete_failed", "record_id", input.ID, "error", err)
		return nil, huma.Error500InternalServerError("delete failed")
	}
	out := &deleteOutput{}
	out.Body.OK = true
	return out, nil
}

package health

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/medpass-app/medpass/internal/repository"
)

type Handler struct {
	db         *sql.DB
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(db *sql.DB, logger *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{db: db, log: logger, middleware: mws}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Liveness and database check",
		Tags:        []string{"health"},
		Middlewares: h.middleware,
	}, h.check)
}

type healthOutput struct {
	Body HealthResponse
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func (h *Handler) check(ctx context.Context, _ *struct{}) (*healthOutput, error) {
	out := &healthOutput{Body: HealthResponse{Status: "ok", Database: "ok"}}
	if err := repository.HealthCheck(ctx, h.db, 2*time.Second); err != nil {
		h.log.Error("health.db_check_failed", "error", err)
		out.Body.Status = "degraded"
		out.Body.Database = "unreachable"
	}
	return out, nil
}

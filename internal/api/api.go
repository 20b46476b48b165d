// Package api assembles the HTTP surface: every JSON endpoint is a huma
// operation on a chi mux, while the multipart upload routes and the static
// uploads directory are mounted as plain chi handlers.
package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/medpass-app/medpass/internal/ai"
	"github.com/medpass-app/medpass/internal/api/http/aiapi"
	"github.com/medpass-app/medpass/internal/api/http/authapi"
	"github.com/medpass-app/medpass/internal/api/http/emergency"
	"github.com/medpass-app/medpass/internal/api/http/health"
	recordAPI "github.com/medpass-app/medpass/internal/api/http/record"
	"github.com/medpass-app/medpass/internal/api/middleware/auth"
	"github.com/medpass-app/medpass/internal/common"
	"github.com/medpass-app/medpass/internal/crypto"
	"github.com/medpass-app/medpass/internal/export"
	"github.com/medpass-app/medpass/internal/notify"
	"github.com/medpass-app/medpass/internal/pipeline"
	"github.com/medpass-app/medpass/internal/repository"
)

// Deps carries the already-constructed services the router wires together.
type Deps struct {
	Config     *common.Config
	DB         *sql.DB
	Cipher     *crypto.Cipher
	Pipeline   *pipeline.Orchestrator
	Summarizer *ai.Summarizer
	Assistant  *ai.Assistant
	SMS        notify.SMSSender
	Log        *slog.Logger
}

// New builds the chi mux with all routes registered.
func New(d Deps) *chi.Mux {
	mux := chi.NewMux()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{d.Config.Server.Origin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	config := huma.DefaultConfig("MedPass API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"session": {Type: "apiKey", In: "cookie", Name: auth.CookieName},
	}
	humaAPI := humachi.New(mux, config)

	sessions := auth.NewSessions(repository.NewSessionRepository(d.DB, d.Log), d.Log)
	authMW := auth.New(sessions, d.Log)
	protected := huma.Middlewares{authMW.Middleware()}

	users := repository.NewUserRepository(d.DB, d.Log)

	authapi.NewHandler(users, sessions, d.Log, nil, protected).SetupRoutes(humaAPI)
	health.NewHandler(d.DB, d.Log, nil).SetupRoutes(humaAPI)

	exporter := export.NewService(d.Log)
	recordHandler := recordAPI.NewHandler(d.Pipeline, exporter, d.Log, protected)
	recordHandler.SetupRoutes(humaAPI)

	aiapi.NewHandler(
		d.Pipeline,
		d.Summarizer,
		d.Assistant,
		repository.NewPredictionRepository(d.DB, d.Log),
		repository.NewChatRepository(d.DB, d.Log),
		repository.NewSummaryRepository(d.DB, d.Log),
		d.Log,
		protected,
	).SetupRoutes(humaAPI)

	emergency.NewHandler(
		repository.NewEmergencyRepository(d.DB, d.Log),
		users,
		d.Cipher,
		d.SMS,
		d.Log,
		protected,
	).SetupRoutes(humaAPI)

	// Multipart endpoints and the uploads file server bypass the OpenAPI
	// layer; the plain auth middleware guards them.
	uploads := recordAPI.NewUploadHandler(recordHandler, recordAPI.UploadConfig{
		Dir:          d.Config.Uploads.Dir,
		MaxFileBytes: d.Config.Uploads.MaxFileBytes,
		MaxBatch:     d.Config.Uploads.MaxBatchFiles,
	})
	mux.Group(func(r chi.Router) {
		r.Use(authMW.HTTPMiddleware)
		r.Post("/api/upload", uploads.Preview)
		r.Post("/api/records/upload", uploads.Ingest)
		r.Get("/api/records/export", uploads.Export)
	})
	mux.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.Config.Uploads.Dir))))

	return mux
}

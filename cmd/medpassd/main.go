package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/medpass-app/medpass/internal/ai"
	"github.com/medpass-app/medpass/internal/api"
	"github.com/medpass-app/medpass/internal/common"
	"github.com/medpass-app/medpass/internal/crypto"
	"github.com/medpass-app/medpass/internal/extract"
	"github.com/medpass-app/medpass/internal/notify"
	"github.com/medpass-app/medpass/internal/ocr"
	"github.com/medpass-app/medpass/internal/pipeline"
	"github.com/medpass-app/medpass/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("config invalid", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var key []byte
	if !cfg.UsesInsecureDefaultKey() {
		parsed, err := crypto.ParseKeyHex(cfg.Crypto.KeyHex)
		if err != nil {
			logger.Error("invalid ENC_KEY", "error", err)
			os.Exit(1)
		}
		key = parsed
	} else {
		logger.Warn("server.insecure_key",
			"hint", "ENC_KEY not set; using the built-in development key. Set a 64-hex-char ENC_KEY in production.")
		key = crypto.FallbackKey()
	}
	cipher, err := crypto.NewCipher(key)
	if err != nil {
		logger.Error("cipher init failed", "error", err)
		os.Exit(1)
	}

	db, err := repository.Open(ctx, cfg.Database.Path, logger)
	if err != nil {
		logger.Error("db open failed", "error", err)
		os.Exit(1)
	}
	defer repository.Close(db, logger)

	extractor := extract.NewDispatcher(ocr.NewExtractor(ocr.Config{
		Pdftotext:     cfg.OCR.Pdftotext,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
	}, logger), logger)

	orchestrator := pipeline.NewOrchestrator(
		extractor, cipher,
		repository.NewRecordRepository(db, logger),
		cfg.Uploads.Dir, logger)

	chat := ai.NewOpenAIClient(ai.OpenAIConfig{
		BaseURL:     cfg.OpenAI.BaseURL,
		APIKey:      cfg.OpenAI.APIKey,
		Model:       cfg.OpenAI.Model,
		Temperature: cfg.OpenAI.Temperature,
		Timeout:     cfg.OpenAI.Timeout,
	}, logger)

	var sms notify.SMSSender
	twilioCfg := notify.TwilioConfig{
		AccountSID: cfg.Twilio.AccountSID,
		AuthToken:  cfg.Twilio.AuthToken,
		From:       cfg.Twilio.From,
	}
	if twilioCfg.Configured() {
		sms = notify.NewTwilioSender(twilioCfg, logger)
	} else {
		logger.Info("server.sms_dev_mode", "hint", "Twilio not configured; alerts are logged only")
		sms = notify.NewDevSender(logger)
	}

	mux := api.New(api.Deps{
		Config:     cfg,
		DB:         db,
		Cipher:     cipher,
		Pipeline:   orchestrator,
		Summarizer: ai.NewSummarizer(chat, chat.Configured(), logger),
		Assistant:  ai.NewAssistant(chat, chat.Configured(), logger),
		SMS:        sms,
		Log:        logger,
	})

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server.listening", "addr", cfg.Server.Addr, "origin", cfg.Server.Origin)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("server.shutting_down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server.shutdown_failed", "error", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server.failed", "error", err)
			os.Exit(1)
		}
	}
	logger.Info("server.stopped")
}

// Package main provides the standalone web chat server for studymate.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/raphaelgruber/studymate/internal/bot"
	"github.com/raphaelgruber/studymate/internal/calendar"
	"github.com/raphaelgruber/studymate/internal/config"
	"github.com/raphaelgruber/studymate/internal/llm"
	"github.com/raphaelgruber/studymate/internal/memory"
	"github.com/raphaelgruber/studymate/internal/server"
)

const version = "0.1.0"

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logger (dual output: stderr text + file JSON)
	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()
	slog.SetDefault(logger)

	logger.Info("studymate-server starting",
		"version", version,
		"port", cfg.ServerPort,
		"llm_provider", cfg.LLMProvider,
	)
	if err := cfg.Validate(); err != nil {
		logger.Warn("incomplete configuration; some features will apologise instead of answering", "error", err)
	}

	// Handle shutdown signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Assemble the external clients; a missing one degrades that feature
	// to an apology rather than failing startup.
	deps := bot.Dependencies{
		Logger:           logger,
		MaxHistory:       cfg.MaxHistory,
		MaxMemoryResults: cfg.MaxMemoryResults,
		MaxEvents:        int64(cfg.MaxEvents),
	}

	if cfg.EnableMemory && cfg.MemoryAPIKey != "" {
		deps.Memory = memory.New(cfg.MemoryURL, cfg.MemoryAPIKey)
	}

	if cfg.EnableCalendar && cfg.GoogleClientID != "" {
		auth := calendar.NewAuthenticator(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.RedirectURL, cfg.TokenFile)
		if client, err := calendar.NewClient(ctx, auth); err != nil {
			logger.Warn("calendar unavailable, run 'studymate auth'", "error", err)
		} else {
			deps.Calendar = client
		}
	}

	if model, err := llm.NewModel(ctx, cfg); err != nil {
		logger.Warn("language model unavailable", "error", err)
	} else {
		deps.LLM = model
		logger.Info("language model ready", "model", model.Model())
	}

	srv := server.New(server.Options{
		Bot:      bot.New(deps),
		UserID:   cfg.UserID,
		Location: cfg.Location(),
		Logger:   logger,
	})

	if err := srv.Run(ctx, ":"+cfg.ServerPort); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}

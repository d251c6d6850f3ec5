// Package cli provides the command-line interface for studymate.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/studymate/internal/bot"
	"github.com/raphaelgruber/studymate/internal/calendar"
	"github.com/raphaelgruber/studymate/internal/config"
	"github.com/raphaelgruber/studymate/internal/llm"
	"github.com/raphaelgruber/studymate/internal/memory"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global config and logger, set up once per invocation.
	cfg        config.Config
	logger     *slog.Logger
	logCleanup func() error
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "studymate",
	Short: "Student schedule and memory assistant",
	Long: `Studymate is a student assistant chatbot. It remembers your preferences
through a hosted memory service, reads your Google Calendar, and chats
through a language model.

Run 'studymate chat' for an interactive session or 'studymate serve' for
the web chat UI.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		logger, logCleanup = config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		slog.SetDefault(logger)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCleanup != nil {
			if err := logCleanup(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// newMemoryClient builds the memory client, or nil when disabled.
func newMemoryClient() *memory.Client {
	if !cfg.EnableMemory || cfg.MemoryAPIKey == "" {
		return nil
	}
	return memory.New(cfg.MemoryURL, cfg.MemoryAPIKey)
}

// newAuthenticator builds the calendar authenticator from config.
func newAuthenticator() *calendar.Authenticator {
	return calendar.NewAuthenticator(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.RedirectURL, cfg.TokenFile)
}

// newCalendarClient builds the calendar client, or nil when the feature is
// disabled or no credential is stored yet.
func newCalendarClient(ctx context.Context) *calendar.Client {
	if !cfg.EnableCalendar || cfg.GoogleClientID == "" {
		return nil
	}
	client, err := calendar.NewClient(ctx, newAuthenticator())
	if err != nil {
		logger.Warn("calendar unavailable", "error", err)
		return nil
	}
	return client
}

// newModel builds the LLM client, or nil when it cannot be configured.
func newModel(ctx context.Context) *llm.Model {
	model, err := llm.NewModel(ctx, cfg)
	if err != nil {
		logger.Warn("language model unavailable", "error", err)
		return nil
	}
	return model
}

// newBot assembles the router over whichever clients are available.
// Missing clients degrade to apologies instead of failing startup.
func newBot(ctx context.Context) *bot.Bot {
	deps := bot.Dependencies{
		Logger:           logger,
		MaxHistory:       cfg.MaxHistory,
		MaxMemoryResults: cfg.MaxMemoryResults,
		MaxEvents:        int64(cfg.MaxEvents),
	}
	if mc := newMemoryClient(); mc != nil {
		deps.Memory = mc
	}
	if cc := newCalendarClient(ctx); cc != nil {
		deps.Calendar = cc
	}
	if model := newModel(ctx); model != nil {
		deps.LLM = model
	}
	return bot.New(deps)
}

func init() {
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(rememberCmd)
	rootCmd.AddCommand(recallCmd)
	rootCmd.AddCommand(reviseCmd)
	rootCmd.AddCommand(forgetCmd)
	rootCmd.AddCommand(agendaCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(configCmd)
}

package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/studymate/internal/server"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web chat UI",
	Long: `Start the web server hosting the chat page and its JSON API.

The server keeps one conversation log per browser session, in process
memory only; restarting it starts fresh conversations.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "port to listen on (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	port := servePort
	if port == "" {
		port = cfg.ServerPort
	}

	srv := server.New(server.Options{
		Bot:      newBot(ctx),
		UserID:   cfg.UserID,
		Location: cfg.Location(),
		Logger:   logger,
	})

	logger.Info("studymate web UI starting", "port", port)
	return srv.Run(ctx, ":"+port)
}

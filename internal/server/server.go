// Package server exposes the assistant over HTTP: an embedded chat page, a
// JSON API, and a websocket for live exchanges.
package server

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/raphaelgruber/studymate/internal/bot"
	"github.com/raphaelgruber/studymate/internal/session"
	"github.com/raphaelgruber/studymate/web"
)

// Server hosts the web chat UI and its API.
type Server struct {
	bot      *bot.Bot
	sessions *session.Store
	userID   string
	location *time.Location
	logger   *slog.Logger
	router   *gin.Engine
	upgrader websocket.Upgrader
}

// Options configures the server.
type Options struct {
	Bot      *bot.Bot
	Sessions *session.Store
	UserID   string
	Location *time.Location
	Logger   *slog.Logger
}

// New creates the server and registers all routes.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Sessions == nil {
		opts.Sessions = session.NewStore()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		bot:      opts.Bot,
		sessions: opts.Sessions,
		userID:   opts.UserID,
		location: opts.Location,
		logger:   opts.Logger,
		router:   router,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // same-origin page; local tool
			},
		},
	}

	// Embedded chat page
	staticFS, err := fs.Sub(web.Static, "static")
	if err == nil {
		router.StaticFS("/static", http.FS(staticFS))
		router.GET("/", func(c *gin.Context) {
			c.FileFromFS("index.html", http.FS(staticFS))
		})
	}

	router.GET("/health", s.handleHealth)
	router.GET("/ws", s.handleSocket)

	api := router.Group("/api")
	{
		api.POST("/chat", s.handleChat)
		api.GET("/history", s.handleHistory)
		api.POST("/reset", s.handleReset)
		api.GET("/stats", s.handleStats)
	}

	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 120 * time.Second, // long for LLM responses
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	s.logger.Info("server listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) session(id string) *session.Session {
	return s.sessions.GetOrCreate(id, s.userID, s.location)
}

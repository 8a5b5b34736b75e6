package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
)

// Server is the API server for the clerk system.
type Server struct {
	config Config
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new API server. Retriever, Assistant, Batch and
// Sessions are required; the MCP handler is optional.
func NewServer(config Config, logger *slog.Logger) (*Server, error) {
	if config.Retriever == nil {
		return nil, errors.New("retriever is required")
	}
	if config.Assistant == nil {
		return nil, errors.New("assistant is required")
	}
	if config.Batch == nil {
		return nil, errors.New("batch runner is required")
	}
	if config.Sessions == nil {
		return nil, errors.New("session store is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	if config.BodyLimit <= 0 {
		config.BodyLimit = DefaultBodyLimit
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             config.BodyLimit,
	})

	s := &Server{
		config: config,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)

	v1 := app.Group("/v1")
	v1.Post("/invoices/analyze", s.handleAnalyze)
	v1.Get("/search", s.handleSearch)
	v1.Post("/chat", s.handleChat)

	v1.Post("/sessions", s.handleCreateSession)
	v1.Get("/sessions", s.handleListSessions)
	v1.Delete("/sessions", s.handleClearSessions)
	v1.Get("/sessions/:id", s.handleGetSession)
	v1.Delete("/sessions/:id", s.handleDeleteSession)

	if config.MCPHandler != nil {
		app.All("/mcp", adaptor.HTTPHandler(config.MCPHandler))
	}

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server", "listen", s.config.ListenAddr)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

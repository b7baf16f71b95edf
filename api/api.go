package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/rubberduck/pkg/panel"
)

// Server is the API server over a conversation panel
type Server struct {
	config Config
	panel  *panel.Panel
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
// The panel is injected so the websocket bridge and the event stream can
// observe the same conversations.
func NewServer(config Config, p *panel.Panel, logger *slog.Logger) (*Server, error) {
	if p == nil {
		return nil, errors.New("panel is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             config.bodyLimit(),
	})

	s := &Server{
		config: config,
		panel:  p,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/conversations", s.handleListConversations)
	app.Post("/conversations", s.handleCreateConversation)
	app.Get("/conversations/:id", s.handleGetConversation)
	app.Delete("/conversations/:id", s.handleCloseConversation)
	app.Post("/conversations/:id/messages", s.handleSubmitMessage)

	if config.MCPHandler != nil {
		app.All("/mcp", adaptor.HTTPHandler(config.MCPHandler))
	}

	return s, nil
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// Package mcp provides an MCP (Model Context Protocol) server that lets agents
// drive editor conversations.
package mcp

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/rubberduck/pkg/panel"
	"github.com/papercomputeco/rubberduck/pkg/utils"
)

type Config struct {
	// Panel hosts the conversations the tools operate on
	Panel *panel.Panel

	// Noop for empty MCP server
	Noop bool

	// Logger is the configured slog logger
	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the conversation tools.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "rubberduck",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	if !c.Noop {
		if c.Panel == nil {
			return nil, errors.New("panel is required")
		}
		if c.Logger == nil {
			return nil, errors.New("logger is required")
		}

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        startToolName,
			Description: startDescription,
		}, s.handleStart)

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        sendToolName,
			Description: sendDescription,
		}, s.handleSend)

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        getToolName,
			Description: getDescription,
		}, s.handleGet)
	}

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Package mcp provides an MCP (Model Context Protocol) server exposing
// invoice search and session history as tools.
package mcp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/clerk/pkg/records"
	"github.com/papercomputeco/clerk/pkg/retrieval"
	"github.com/papercomputeco/clerk/pkg/session"
	"github.com/papercomputeco/clerk/pkg/utils"
)

// Searcher runs the hybrid retrieval pipeline.
type Searcher interface {
	Search(ctx context.Context, query string, bag retrieval.FilterBag, limit int) []records.Result
}

type Config struct {
	// Retriever answers search_invoices calls.
	Retriever Searcher

	// Sessions backs session_history (optional, enables the tool).
	Sessions session.Store

	// Noop for empty MCP server
	Noop bool

	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the invoice tools.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "clerk",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	if !c.Noop {
		if c.Retriever == nil {
			return nil, errors.New("retriever is required")
		}
		if c.Logger == nil {
			return nil, errors.New("logger is required")
		}

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        searchToolName,
			Description: searchDescription,
		}, s.handleSearch)

		if c.Sessions != nil {
			mcp.AddTool(mcpServer, &mcp.Tool{
				Name:        historyToolName,
				Description: historyDescription,
			}, s.handleHistory)
		}
	}

	s.mcpServer = mcpServer

	// Stateless streamable HTTP handler
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

// Package api provides the clerk HTTP API: invoice analysis uploads, hybrid
// search, chat and session management, plus the MCP endpoint.
package api

import (
	"context"
	"net/http"

	"github.com/papercomputeco/clerk/pkg/analysis"
	"github.com/papercomputeco/clerk/pkg/assistant"
	"github.com/papercomputeco/clerk/pkg/records"
	"github.com/papercomputeco/clerk/pkg/retrieval"
	"github.com/papercomputeco/clerk/pkg/session"
)

// DefaultBodyLimit caps multipart uploads (policy plus invoice archive).
const DefaultBodyLimit = 64 << 20

// Searcher runs the hybrid retrieval pipeline.
type Searcher interface {
	Search(ctx context.Context, query string, bag retrieval.FilterBag, limit int) []records.Result
}

// Chatter answers a question within a session.
type Chatter interface {
	Ask(ctx context.Context, req assistant.Request) assistant.Response
}

// BatchRunner analyzes and stores a batch of invoices.
type BatchRunner interface {
	Run(ctx context.Context, req analysis.BatchRequest) analysis.BatchResult
}

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8081")
	ListenAddr string

	// BodyLimit is the maximum request body in bytes. Defaults to DefaultBodyLimit.
	BodyLimit int

	// SearchLimit is used when /v1/search is called without a limit.
	SearchLimit int

	Retriever Searcher
	Assistant Chatter
	Batch     BatchRunner
	Sessions  session.Store

	// MCPHandler is mounted at /mcp when set.
	MCPHandler http.Handler
}

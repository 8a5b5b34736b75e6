package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	historyToolName    = "session_history"
	historyDescription = "Return the recent exchanges of a chat session, oldest first."
)

// HistoryInput represents the input arguments for the session history tool.
type HistoryInput struct {
	SessionID string `json:"session_id" jsonschema:"id of the chat session"`
}

// Turn is one exchange of a session.
type Turn struct {
	User      string `json:"user"`
	Bot       string `json:"bot"`
	Timestamp string `json:"timestamp"`
}

// HistoryOutput represents the output of the session history tool.
type HistoryOutput struct {
	SessionID string `json:"session_id"`
	Turns     []Turn `json:"turns"`
	Count     int    `json:"count"`
}

func (s *Server) handleHistory(_ context.Context, _ *mcp.CallToolRequest, input HistoryInput) (*mcp.CallToolResult, HistoryOutput, error) {
	if !s.config.Sessions.Exists(input.SessionID) {
		return errorResult("session not found: " + input.SessionID), HistoryOutput{}, nil
	}

	history := s.config.Sessions.History(input.SessionID)
	turns := make([]Turn, len(history))
	for i, t := range history {
		turns[i] = Turn{
			User:      t.User,
			Bot:       t.Bot,
			Timestamp: t.Timestamp.Format(time.RFC3339),
		}
	}

	return structuredResult(s, HistoryOutput{
		SessionID: input.SessionID,
		Turns:     turns,
		Count:     len(turns),
	})
}

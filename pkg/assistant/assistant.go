// Package assistant answers natural-language questions about stored invoices.
//
// A question is turned into a FilterBag by the completion provider, run
// through the retrieval pipeline, and answered from the matching records and
// the recent turns of the caller's session. The exchange is then appended to
// the session.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/papercomputeco/clerk/pkg/completion"
	"github.com/papercomputeco/clerk/pkg/llm"
	"github.com/papercomputeco/clerk/pkg/records"
	"github.com/papercomputeco/clerk/pkg/retrieval"
	"github.com/papercomputeco/clerk/pkg/session"
)

// FallbackResponse is returned to the user when no answer could be generated.
const FallbackResponse = "Sorry, I couldn't process your request at the moment."

// HistoryTurns is how many recent turns are included in the answer prompt.
const HistoryTurns = 3

// Searcher runs the retrieval pipeline.
type Searcher interface {
	Search(ctx context.Context, query string, bag retrieval.FilterBag, limit int) []records.Result
}

// Config wires an Assistant.
type Config struct {
	Provider  completion.Provider
	Retriever Searcher
	Sessions  session.Store

	// SearchLimit defaults to retrieval.DefaultLimit.
	SearchLimit int

	Logger *slog.Logger
}

// Assistant is safe for concurrent use.
type Assistant struct {
	provider    completion.Provider
	retriever   Searcher
	sessions    session.Store
	searchLimit int
	logger      *slog.Logger
}

// New creates an assistant.
func New(c Config) *Assistant {
	limit := c.SearchLimit
	if limit <= 0 {
		limit = retrieval.DefaultLimit
	}
	return &Assistant{
		provider:    c.Provider,
		retriever:   c.Retriever,
		sessions:    c.Sessions,
		searchLimit: limit,
		logger:      c.Logger,
	}
}

// Request is one user question.
type Request struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// Response is the answer along with what produced it.
type Response struct {
	Answer    string              `json:"response"`
	SessionID string              `json:"session_id"`
	Filters   retrieval.FilterBag `json:"filters,omitempty"`
	Results   []records.Result    `json:"results,omitempty"`
}

// Ask answers req. It always produces an answer: failures along the way
// degrade to an unfiltered search, an empty context or FallbackResponse.
func (a *Assistant) Ask(ctx context.Context, req Request) Response {
	filters := a.ExtractFilters(ctx, req.Query)

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = a.sessions.Create()
		a.logger.Debug("created session", "session_id", sessionID)
	}

	a.logger.Info("answering query", "session_id", sessionID, "filters", len(filters))

	results := a.retriever.Search(ctx, req.Query, filters, a.searchLimit)
	history := a.sessions.History(sessionID)

	prompt := llm.ChatResponsePrompt(FormatHistory(history, HistoryTurns), FormatContext(results), req.Query)

	answer, err := a.provider.Complete(ctx, prompt)
	answer = strings.TrimSpace(answer)
	if err != nil || answer == "" {
		a.logger.Error("generating answer failed", "session_id", sessionID, "error", err)
		answer = FallbackResponse
	}

	a.sessions.Append(sessionID, req.Query, answer)

	return Response{
		Answer:    answer,
		SessionID: sessionID,
		Filters:   filters,
		Results:   results,
	}
}

// ExtractFilters asks the provider for the filters mentioned in query. Only
// recognized keys with non-empty values are kept. Any failure yields an
// empty bag so the search runs unfiltered.
func (a *Assistant) ExtractFilters(ctx context.Context, query string) retrieval.FilterBag {
	bag := retrieval.FilterBag{}

	reply, err := a.provider.Complete(ctx, llm.FilterExtractionPrompt(query))
	if err != nil {
		a.logger.Warn("filter extraction failed", "error", err)
		return bag
	}

	fields, err := llm.ExtractJSONObject(reply)
	if err != nil {
		a.logger.Warn("filter extraction reply has no JSON", "error", err)
		return bag
	}

	for key, value := range fields {
		if slices.Contains(retrieval.FilterKeys, key) && present(value) {
			bag[key] = value
		}
	}

	a.logger.Debug("extracted filters", "filters", bag)
	return bag
}

func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		return s != "" && s != "null" && s != "none"
	case float64:
		return t != 0
	case bool:
		return false
	case []any, map[string]any:
		return false
	default:
		return true
	}
}

// FormatHistory renders the last n turns as "User: ...\nBot: ..." lines.
func FormatHistory(turns []session.Turn, n int) string {
	if len(turns) > n {
		turns = turns[len(turns)-n:]
	}

	var sb strings.Builder
	for _, t := range turns {
		fmt.Fprintf(&sb, "User: %s\nBot: %s\n", t.User, t.Bot)
	}
	return sb.String()
}

// FormatContext renders one block per retrieved record.
func FormatContext(results []records.Result) string {
	var sb strings.Builder
	for _, r := range results {
		m := r.Metadata
		fmt.Fprintf(&sb, "**Invoice ID:** %s\n", orNA(m.InvoiceID))
		fmt.Fprintf(&sb, "**Employee:** %s\n", orNA(m.EmployeeName))
		fmt.Fprintf(&sb, "**Status:** %s\n", orNA(string(m.Status)))
		fmt.Fprintf(&sb, "**Total Amount:** $%.2f\n", m.TotalAmount)
		fmt.Fprintf(&sb, "**Approved Amount:** $%.2f\n", m.ApprovedAmount)
		fmt.Fprintf(&sb, "**Date:** %s\n", orNA(m.Date))
		sb.WriteString("\n---\n")
	}
	return sb.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

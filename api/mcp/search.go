package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/clerk/pkg/records"
	"github.com/papercomputeco/clerk/pkg/retrieval"
)

var (
	searchToolName    = "search_invoices"
	searchDescription = "Search analyzed invoices by meaning, optionally restricted by employee, status, invoice id, an approximate amount (within 20) or a date (a day or a whole month)."
)

// SearchInput represents the input arguments for the search tool.
type SearchInput struct {
	Query        string `json:"query" jsonschema:"what to look for, in plain language"`
	EmployeeName string `json:"employee_name,omitempty" jsonschema:"employee the invoice belongs to"`
	Status       string `json:"status,omitempty" jsonschema:"Fully Reimbursed, Partially Reimbursed or Declined"`
	InvoiceID    string `json:"invoice_id,omitempty" jsonschema:"exact invoice id"`
	Amount       string `json:"amount,omitempty" jsonschema:"approximate total amount, e.g. 120 or around $120"`
	Date         string `json:"date,omitempty" jsonschema:"a day such as 2024-05-14 or a month such as May 2024"`
	Limit        int    `json:"limit,omitempty" jsonschema:"number of results to return (default: 10)"`
}

// SearchOutput represents the output of the search tool.
type SearchOutput struct {
	Query   string           `json:"query"`
	Results []records.Result `json:"results"`
	Count   int              `json:"count"`
}

// Bag collects the non-empty filters of the input.
func (in SearchInput) Bag() retrieval.FilterBag {
	bag := retrieval.FilterBag{}
	set := func(key, value string) {
		if value != "" {
			bag[key] = value
		}
	}
	set(retrieval.FilterEmployeeName, in.EmployeeName)
	set(retrieval.FilterStatus, in.Status)
	set(retrieval.FilterInvoiceID, in.InvoiceID)
	set(retrieval.FilterAmount, in.Amount)
	set(retrieval.FilterDate, in.Date)
	return bag
}

// handleSearch processes a search request.
func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	if input.Query == "" {
		return errorResult("query is required"), SearchOutput{}, nil
	}

	bag := input.Bag()
	s.config.Logger.Debug("MCP search request",
		"query", input.Query,
		"filters", len(bag),
		"limit", input.Limit,
	)

	results := s.config.Retriever.Search(ctx, input.Query, bag, input.Limit)
	if results == nil {
		results = []records.Result{}
	}

	output := SearchOutput{
		Query:   input.Query,
		Results: results,
		Count:   len(results),
	}
	return structuredResult(s, output)
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
	}
}

// structuredResult also serializes the output as JSON text content for
// clients that ignore structured content.
func structuredResult[T any](s *Server, output T) (*mcp.CallToolResult, T, error) {
	var zero T

	jsonBytes, err := json.Marshal(output)
	if err != nil {
		s.config.Logger.Error("failed to marshal tool output", "error", err)
		return errorResult(fmt.Sprintf("Failed to serialize results: %v", err)), zero, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}

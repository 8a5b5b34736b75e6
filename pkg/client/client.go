// Package client talks to a running clerk API server. The CLI commands use
// it; it mirrors the JSON shapes served by package api.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/papercomputeco/clerk/api"
	"github.com/papercomputeco/clerk/pkg/analysis"
	"github.com/papercomputeco/clerk/pkg/assistant"
	"github.com/papercomputeco/clerk/pkg/retrieval"
	"github.com/papercomputeco/clerk/pkg/session"
)

// ErrNotFound is returned when the server answers 404.
var ErrNotFound = errors.New("not found")

// Client is a clerk API client.
type Client struct {
	target     *url.URL
	httpClient *http.Client
}

// New creates a client for the API at target (scheme + host + port).
func New(target string) (*Client, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid API target URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API target URL: %q", target)
	}

	return &Client{
		target: u,
		// Batch analysis calls the completion provider once per invoice.
		httpClient: &http.Client{Timeout: 10 * time.Minute},
	}, nil
}

// Search calls GET /v1/search.
func (c *Client) Search(ctx context.Context, query string, bag retrieval.FilterBag, limit int) (*api.SearchResponse, error) {
	q := url.Values{}
	q.Set("query", query)
	for k, v := range bag {
		q.Set(k, fmt.Sprint(v))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var out api.SearchResponse
	if err := c.do(ctx, http.MethodGet, "/v1/search", q, nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Chat calls POST /v1/chat.
func (c *Client) Chat(ctx context.Context, req assistant.Request) (*assistant.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding chat request: %w", err)
	}

	var out assistant.Response
	if err := c.do(ctx, http.MethodPost, "/v1/chat", nil, bytes.NewReader(body), "application/json", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Analyze uploads a policy PDF and an invoice archive to
// POST /v1/invoices/analyze.
func (c *Client) Analyze(ctx context.Context, employee, policyName string, policy []byte, archiveName string, archive []byte) (*analysis.BatchResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("employee_name", employee); err != nil {
		return nil, fmt.Errorf("encoding upload: %w", err)
	}
	if err := writeFile(mw, "policy_file", policyName, policy); err != nil {
		return nil, err
	}
	if err := writeFile(mw, "invoices_zip", archiveName, archive); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("encoding upload: %w", err)
	}

	var out analysis.BatchResult
	if err := c.do(ctx, http.MethodPost, "/v1/invoices/analyze", nil, &buf, mw.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListSessions calls GET /v1/sessions.
func (c *Client) ListSessions(ctx context.Context) ([]session.Summary, error) {
	var out struct {
		Sessions []session.Summary `json:"sessions"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/sessions", nil, nil, "", &out); err != nil {
		return nil, err
	}
	return out.Sessions, nil
}

// SessionHistory calls GET /v1/sessions/:id.
func (c *Client) SessionHistory(ctx context.Context, id string) ([]session.Turn, error) {
	var out api.SessionResponse
	if err := c.do(ctx, http.MethodGet, "/v1/sessions/"+url.PathEscape(id), nil, nil, "", &out); err != nil {
		return nil, err
	}
	return out.Turns, nil
}

// DeleteSession calls DELETE /v1/sessions/:id.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/sessions/"+url.PathEscape(id), nil, nil, "", nil)
}

// ClearSessions calls DELETE /v1/sessions.
func (c *Client) ClearSessions(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/v1/sessions", nil, nil, "", nil)
}

func writeFile(mw *multipart.Writer, field, name string, data []byte) error {
	w, err := mw.CreateFormFile(field, name)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", field, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("encoding %s: %w", field, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	u := *c.target
	u.Path = path
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to clerk API at %s: %w", c.target, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, errorMessage(raw))
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("request failed (HTTP %d): %s", resp.StatusCode, errorMessage(raw))
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func errorMessage(raw []byte) string {
	var e api.ErrorResponse
	if err := json.Unmarshal(raw, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return string(raw)
}

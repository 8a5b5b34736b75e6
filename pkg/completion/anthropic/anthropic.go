// Package anthropic implements completion.Provider on the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/papercomputeco/clerk/pkg/completion"
)

const (
	// DefaultModel is the default Claude model.
	DefaultModel = "claude-sonnet-4-5"

	// DefaultMaxTokens bounds each answer.
	DefaultMaxTokens = 2048
)

// Provider wraps the Messages API client.
type Provider struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

var _ completion.Provider = (*Provider)(nil)

// Config holds configuration for the Anthropic provider.
type Config struct {
	APIKey string

	// BaseURL overrides the API endpoint.
	BaseURL string

	// Model defaults to DefaultModel.
	Model string

	// MaxTokens defaults to DefaultMaxTokens.
	MaxTokens int64
}

// NewProvider creates an Anthropic provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic api key is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	return &Provider{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Complete sends prompt as a single user message and joins the text blocks
// of the reply.
func (p *Provider) Complete(ctx context.Context, prompt string) (string, error) {
	rsp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: p.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", completion.ErrCompletion, err)
	}

	var b strings.Builder
	for _, content := range rsp.Content {
		if text, ok := content.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", fmt.Errorf("%w: %w", completion.ErrCompletion, completion.ErrEmptyResponse)
	}
	return out, nil
}

// Close releases resources held by the provider.
func (p *Provider) Close() error {
	return nil
}

// Package openai implements completion.Provider on the OpenAI chat completions API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/papercomputeco/clerk/pkg/completion"
)

// DefaultModel is the default chat model.
const DefaultModel = openai.GPT4oMini

// Provider wraps the chat completions endpoint.
type Provider struct {
	client *openai.Client
	model  string
}

var _ completion.Provider = (*Provider)(nil)

// Config holds configuration for the OpenAI provider.
type Config struct {
	APIKey string

	// BaseURL overrides the API endpoint, for OpenAI compatible servers.
	BaseURL string

	// Model defaults to DefaultModel.
	Model string
}

// NewProvider creates an OpenAI provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Provider{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}, nil
}

// Complete sends prompt as a single user message.
func (p *Provider) Complete(ctx context.Context, prompt string) (string, error) {
	rsp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", completion.ErrCompletion, err)
	}

	if len(rsp.Choices) == 0 {
		return "", fmt.Errorf("%w: %w", completion.ErrCompletion, completion.ErrEmptyResponse)
	}

	out := strings.TrimSpace(rsp.Choices[0].Message.Content)
	if out == "" {
		return "", fmt.Errorf("%w: %w", completion.ErrCompletion, completion.ErrEmptyResponse)
	}
	return out, nil
}

// Close releases resources held by the provider.
func (p *Provider) Close() error {
	return nil
}

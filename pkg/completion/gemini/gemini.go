// Package gemini implements completion.Provider on Google's Gemini models.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/papercomputeco/clerk/pkg/completion"
)

// DefaultModel is the default Gemini model.
const DefaultModel = "gemini-2.5-flash"

// Provider wraps a genai generative model.
type Provider struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

var _ completion.Provider = (*Provider)(nil)

// Config holds configuration for the Gemini provider.
type Config struct {
	APIKey string

	// Model defaults to DefaultModel.
	Model string
}

// NewProvider creates a Gemini provider.
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("google api key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Provider{
		client: client,
		model:  client.GenerativeModel(model),
	}, nil
}

// Complete generates text for prompt and joins the text parts of the first
// candidate.
func (p *Provider) Complete(ctx context.Context, prompt string) (string, error) {
	rsp, err := p.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("%w: %v", completion.ErrCompletion, err)
	}

	if len(rsp.Candidates) == 0 || rsp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: %w", completion.ErrCompletion, completion.ErrEmptyResponse)
	}

	var b strings.Builder
	for _, part := range rsp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", fmt.Errorf("%w: %w", completion.ErrCompletion, completion.ErrEmptyResponse)
	}
	return out, nil
}

// Close releases the underlying client.
func (p *Provider) Close() error {
	return p.client.Close()
}

// Package completionutils selects a completion provider by name.
package completionutils

import (
	"context"
	"fmt"

	"github.com/papercomputeco/clerk/pkg/completion"
	"github.com/papercomputeco/clerk/pkg/completion/anthropic"
	"github.com/papercomputeco/clerk/pkg/completion/gemini"
	"github.com/papercomputeco/clerk/pkg/completion/ollama"
	"github.com/papercomputeco/clerk/pkg/completion/openai"
)

type NewProviderOpts struct {
	ProviderType string
	TargetURL    string
	Model        string
	APIKey       string
}

func NewProvider(ctx context.Context, o *NewProviderOpts) (completion.Provider, error) {
	switch o.ProviderType {
	case "gemini", "google":
		return gemini.NewProvider(ctx, gemini.Config{
			APIKey: o.APIKey,
			Model:  o.Model,
		})
	case "openai":
		return openai.NewProvider(openai.Config{
			APIKey:  o.APIKey,
			BaseURL: o.TargetURL,
			Model:   o.Model,
		})
	case "anthropic":
		return anthropic.NewProvider(anthropic.Config{
			APIKey:  o.APIKey,
			BaseURL: o.TargetURL,
			Model:   o.Model,
		})
	case "ollama":
		return ollama.NewProvider(ollama.Config{
			BaseURL: o.TargetURL,
			Model:   o.Model,
		})
	default:
		return nil, fmt.Errorf("unsupported completion provider: %s", o.ProviderType)
	}
}

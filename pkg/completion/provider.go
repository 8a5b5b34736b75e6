// Package completion defines the text completion contract used for filter
// extraction, invoice analysis and chat answers.
package completion

import (
	"context"
	"errors"
)

// Provider turns a prompt into generated text.
type Provider interface {
	// Complete returns the model's text for prompt. Failures wrap ErrCompletion.
	Complete(ctx context.Context, prompt string) (string, error)

	// Close releases any resources held by the provider.
	Close() error
}

var (
	// ErrCompletion is returned when a completion request fails.
	ErrCompletion = errors.New("completion failed")

	// ErrEmptyResponse is returned when the model produced no text.
	ErrEmptyResponse = errors.New("empty completion response")
)

// Func adapts a plain function to Provider.
type Func func(ctx context.Context, prompt string) (string, error)

// Complete calls f.
func (f Func) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Close is a no-op.
func (f Func) Close() error {
	return nil
}

package genai

import (
	"context"
	"errors"
)

// ErrUnavailable signals the generative backend is unconfigured or failed.
// Callers replace the output with deterministic fallback text.
var ErrUnavailable = errors.New("genai_unavailable")

// Provider turns a prompt into generated text.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// DisabledProvider is used when no generative backend is configured.
type DisabledProvider struct{}

func (DisabledProvider) Generate(ctx context.Context, prompt string) (string, error) {
	return "", ErrUnavailable
}

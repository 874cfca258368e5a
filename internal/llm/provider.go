package llm

import (
	"context"
)

// Provider - interface for any text-completion backend.
// The pipeline depends only on this, so remote APIs and local model servers are interchangeable.
type Provider interface {
	// Complete sends one prompt and returns the raw completion text.
	// maxTokens bounds the completion length.
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)

	// GetName returns the provider name (for logging)
	GetName() string

	// GetModel returns the model in use
	GetModel() string
}

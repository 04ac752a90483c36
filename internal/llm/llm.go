package llm

import (
	"context"
	"errors"
)

// Request is a single prompt-in/text-out invocation of a provider.
type Request struct {
	Prompt      string
	MaxTokens   int
	Temperature float32
}

// Client abstracts generative-text providers used for contract analysis.
// Implementations must honor ctx cancellation and deadlines.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("llm provider not configured")

// PlaceholderClient is a stub implementation used when no provider is wired.
type PlaceholderClient struct{}

// Complete returns ErrNotConfigured.
func (PlaceholderClient) Complete(ctx context.Context, req Request) (string, error) {
	_ = ctx
	_ = req
	return "", ErrNotConfigured
}

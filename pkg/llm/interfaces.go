// Package llm provides text-completion clients for the reply-generation
// fallback. The adapters stay deterministic without one; a client only
// enriches the generic reply branch.
package llm

import "context"

// Client defines the interface for LLM completion.
// Use this interface for dependency injection to enable mocking in tests.
type Client interface {
	// GenerateResponse generates a chat completion for the prompt.
	GenerateResponse(ctx context.Context, prompt, systemMessage string, temperature float64) (string, error)

	// GetModel returns the configured model name.
	GetModel() string
}

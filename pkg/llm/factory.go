package llm

import (
	"fmt"

	"go.uber.org/zap"
)

// NewClient creates a completion client for the configured provider.
// An empty provider returns nil without error; callers treat a nil client
// as "deterministic replies only".
func NewClient(cfg *Config, logger *zap.Logger) (Client, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "openai":
		return NewOpenAIClient(cfg, logger)
	case "anthropic":
		return NewAnthropicClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.Provider)
	}
}

package llm

import (
	"fmt"
	"strings"
)

// NewClient creates an LLM client based on the provided configuration. When a
// rate limit is configured the client is wrapped so callers block until a
// request slot is available.
func NewClient(cfg Config) (Client, error) {
	var client Client
	var err error

	switch strings.ToLower(cfg.Provider) {
	case "openai":
		client, err = newOpenAIClient(cfg)
	case "anthropic":
		client, err = newAnthropicClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	if cfg.RateLimit > 0 {
		client = newLimitedClient(client, cfg.RateLimit)
	}

	return client, nil
}

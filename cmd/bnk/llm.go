package main

import (
	"fmt"
	"log/slog"

	"github.com/philvuai/bnk/internal/config"
	"github.com/philvuai/bnk/internal/llm"
)

// createLLMClient creates a model client from configuration. Shared by the
// analyze and serve commands.
func createLLMClient() (llm.Client, error) {
	cfg, err := config.LoadLLMConfig()
	if err != nil {
		return nil, err
	}

	client, err := llm.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	slog.Debug("created LLM client", "provider", cfg.Provider, "model", cfg.Model)
	return client, nil
}

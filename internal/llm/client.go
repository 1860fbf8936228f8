// Package llm provides clients for large-language-model providers behind a
// single narrow interface. The analysis pipeline only ever sees prompt text
// in and response text out; provider-specific request shapes stay here.
package llm

import (
	"context"
	"time"
)

// Client is the capability the pipeline consumes: send prompt text, receive
// response text. Transport failures surface as errors and the caller decides
// what to do with them.
type Client interface {
	Call(ctx context.Context, prompt string) (string, error)
}

// Config holds configuration for constructing an LLM client.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	Timeout     time.Duration
	MaxTokens   int
	RateLimit   int
}

// systemPrompt is shared by all providers: the repair layer copes with
// near-valid output, but the instruction keeps most responses parseable
// on the first attempt.
const systemPrompt = "You are a financial transaction classifier. You MUST respond with ONLY a valid JSON object. Do not include any explanatory text, markdown formatting, or commentary before or after the JSON. Start your response directly with { and end with }."

// Package ai talks to external language-model backends and wraps them in a
// batched, cached, concurrency-bounded gateway for the normalization
// pipeline's model fallback stage.
package ai

import (
	"context"
	"strings"
)

// Client is a model backend. Chat sends one prompt pair and returns the raw
// completion text; ChatBatch resolves several user prompts against the same
// system prompt and returns completions parallel to the input, with an empty
// string at the index of any prompt that failed. Timeouts come in through
// ctx. Availability is not guaranteed: callers must tolerate errors and
// treat them as misses.
type Client interface {
	Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	ChatBatch(ctx context.Context, systemPrompt string, userPrompts []string) ([]string, error)
	ProviderName() string
	IsEnabled() bool
	Close() error
}

// stripCodeFences removes a markdown code fence wrapper from a model
// response. Models routinely wrap JSON in ```json blocks even when told not
// to.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
		return strings.TrimSpace(text)
	}
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
		return strings.TrimSpace(text)
	}
	return text
}

// chatSequential implements ChatBatch as a loop over Chat for backends
// without a native batch endpoint. Failed prompts leave an empty string at
// their index so the caller can tell which names got no completion.
func chatSequential(ctx context.Context, c Client, systemPrompt string, userPrompts []string) ([]string, error) {
	responses := make([]string, len(userPrompts))
	var lastErr error
	for i, prompt := range userPrompts {
		if err := ctx.Err(); err != nil {
			return responses, err
		}
		response, err := c.Chat(ctx, systemPrompt, prompt)
		if err != nil {
			lastErr = err
			continue
		}
		responses[i] = response
	}
	return responses, lastErr
}
